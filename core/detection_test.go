package core

import "testing"

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in       string
		quadrant int
	}{
		{"top left corner", 7},
		{"upper right", 9},
		{"bottom left", 1},
		{"lower right area", 3},
		{"center of frame", 5},
		{"", 5},
		{"slightly left of center", 4},
	}
	for _, tt := range tests {
		p := ParsePosition(tt.in)
		if got := p.Quadrant(); got != tt.quadrant {
			t.Errorf("ParsePosition(%q).Quadrant() = %d, want %d", tt.in, got, tt.quadrant)
		}
	}

	if !ParsePosition("middle").Centered() {
		t.Error("middle should be centered")
	}
	if ParsePosition("far left").Centered() {
		t.Error("far left should not be centered")
	}
}

func TestParseDistanceClass(t *testing.T) {
	tests := []struct {
		in   string
		want DistanceClass
	}{
		{"very close", DistanceClose},
		{"near the camera", DistanceClose},
		{"far away", DistanceFar},
		{"medium distance", DistanceMedium},
		{"no idea", DistanceUnknown},
	}
	for _, tt := range tests {
		if got := ParseDistanceClass(tt.in); got != tt.want {
			t.Errorf("ParseDistanceClass(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDetection_Matches(t *testing.T) {
	d := Detection{Name: "TV Remote Control", Confidence: 0.8}
	if !d.Matches("remote") {
		t.Error("containment match should succeed")
	}
	if !d.Matches("TV REMOTE CONTROL") {
		t.Error("match should be case-insensitive")
	}
	if d.Matches("phone") {
		t.Error("unrelated target should not match")
	}
	if (Detection{}).Matches("remote") {
		t.Error("empty name should never match")
	}
}

func TestClampConfidence(t *testing.T) {
	if ClampConfidence(1.7) != 1 {
		t.Error("confidence should clamp to 1")
	}
	if ClampConfidence(-0.3) != 0 {
		t.Error("confidence should clamp to 0")
	}
	if ClampConfidence(0.42) != 0.42 {
		t.Error("in-range confidence should pass through")
	}
}
