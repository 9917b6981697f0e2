package vision

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/roverkit/seeker/core"
)

// rawDetection is the strict wire schema a vision model is asked to emit.
type rawDetection struct {
	Name        string  `json:"name"`
	Present     *bool   `json:"present"`
	Position    string  `json:"position"`
	Distance    string  `json:"distance"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

type detectionEnvelope struct {
	Objects []rawDetection `json:"objects"`
}

var numberRe = regexp.MustCompile(`(\d+(\.\d+)?)`)

// ParseDetections turns a vision model's reply into detections. Parsing is
// two-stage: the strict JSON schema first (an {"objects": [...]} envelope
// or a bare array, with or without code fences), then a line-oriented
// heuristic scrape of free text. In the heuristic stage, attribute lines
// arriving before any named object are credited to the target being
// searched for. Both stages produce identical Detection values. When
// neither stage finds anything in a non-empty reply the error carries
// ErrorKindDetectionParse; callers treat that as an empty result, never
// as a failed search.
func ParseDetections(raw string, target string) ([]core.Detection, error) {
	text := stripFences(raw)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if dets, ok := parseStrict(text); ok {
		return dets, nil
	}
	if dets := parseHeuristic(text, target); len(dets) > 0 {
		return dets, nil
	}
	return nil, core.NewRobotError(core.ErrorKindDetectionParse, "parse detections", errors.New("no detections recognized in response"))
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseStrict extracts the JSON envelope or bare array embedded in text.
func parseStrict(text string) ([]core.Detection, bool) {
	var raws []rawDetection

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		var env detectionEnvelope
		if err := json.Unmarshal([]byte(text[start:end+1]), &env); err == nil && env.Objects != nil {
			raws = env.Objects
			return convert(raws), true
		}
	}
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &raws); err == nil {
			return convert(raws), true
		}
	}
	return nil, false
}

func convert(raws []rawDetection) []core.Detection {
	dets := make([]core.Detection, 0, len(raws))
	for _, r := range raws {
		if r.Present != nil && !*r.Present {
			continue
		}
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		dets = append(dets, core.Detection{
			Name:       strings.TrimSpace(r.Name),
			Confidence: core.ClampConfidence(r.Confidence),
			Position:   core.ParsePosition(r.Position),
			Distance:   core.ParseDistanceClass(r.Distance),
		})
	}
	return dets
}

// parseHeuristic scrapes detections out of free-form text: a bare line
// starts an object, "confidence", "position" and "distance" lines refine
// it. Attribute lines with no preceding object line start a sighting
// named after the target.
func parseHeuristic(text, target string) []core.Detection {
	var dets []core.Detection
	var cur *core.Detection

	flush := func() {
		if cur != nil && cur.Name != "" {
			dets = append(dets, *cur)
		}
		cur = nil
	}
	ensure := func() {
		if cur == nil {
			cur = &core.Detection{Name: strings.TrimSpace(target), Confidence: 0.7, Distance: core.DistanceUnknown}
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "confidence"):
			ensure()
			if m := numberRe.FindString(line); m != "" {
				if v, err := strconv.ParseFloat(m, 64); err == nil {
					if v > 1 {
						v /= 100 // percentage form
					}
					cur.Confidence = core.ClampConfidence(v)
				}
			}
		case strings.Contains(lower, "position"):
			ensure()
			cur.Position = core.ParsePosition(lower)
		case strings.Contains(lower, "distance"):
			ensure()
			cur.Distance = core.ParseDistanceClass(lower)
		case !strings.Contains(line, ":"):
			flush()
			cur = &core.Detection{Name: line, Confidence: 0.7, Distance: core.DistanceUnknown}
		}
	}
	flush()
	return dets
}
