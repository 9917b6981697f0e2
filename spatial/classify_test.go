package spatial

import "testing"

func TestClassifyScene_Kitchen(t *testing.T) {
	desc := "A large room with a stove, a refrigerator and a sink next to the counter"
	f := ClassifyScene(desc)

	if f.DetectedType != "kitchen" {
		t.Fatalf("DetectedType = %q, want kitchen", f.DetectedType)
	}
	if f.SizeClass != "large" {
		t.Errorf("SizeClass = %q, want large", f.SizeClass)
	}
	if f.Confidence <= 0 || f.Confidence > 1 {
		t.Errorf("Confidence = %v, want in (0, 1]", f.Confidence)
	}
	want := map[string]bool{"stove": true, "refrigerator": true, "sink": true, "counter": true}
	for _, kw := range f.Keywords {
		delete(want, kw)
	}
	if len(want) != 0 {
		t.Errorf("missing keywords %v in %v", want, f.Keywords)
	}
}

func TestClassifyScene_UnknownAndFeatures(t *testing.T) {
	f := ClassifyScene("a tiny empty space with a window and hardwood floors")
	if f.DetectedType != "unknown_room" {
		t.Errorf("DetectedType = %q, want unknown_room", f.DetectedType)
	}
	if f.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", f.Confidence)
	}
	if f.SizeClass != "small" {
		t.Errorf("SizeClass = %q, want small", f.SizeClass)
	}
	if len(f.Features) != 2 {
		t.Errorf("Features = %v, want window and hardwood", f.Features)
	}
}

func TestClassifyScene_PriorityBreaksTies(t *testing.T) {
	// "sink" and "mirror" hit bathroom (priority 0.9); "desk" and "chair"
	// hit office (0.7). Equal keyword counts, bathroom must win on weight.
	f := ClassifyScene("a sink below a mirror, beside a desk and a chair")
	if f.DetectedType != "bathroom" {
		t.Errorf("DetectedType = %q, want bathroom", f.DetectedType)
	}
}
