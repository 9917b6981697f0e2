package core

import (
	"fmt"
	"strings"
)

// Horizontal is the horizontal third of the frame a detection falls in.
type Horizontal string

const (
	// HorizontalLeft is the left third of the frame.
	HorizontalLeft Horizontal = "left"
	// HorizontalCenter is the middle third of the frame.
	HorizontalCenter Horizontal = "center"
	// HorizontalRight is the right third of the frame.
	HorizontalRight Horizontal = "right"
)

// Vertical is the vertical third of the frame a detection falls in.
type Vertical string

const (
	// VerticalTop is the top third of the frame.
	VerticalTop Vertical = "top"
	// VerticalMiddle is the middle third of the frame.
	VerticalMiddle Vertical = "middle"
	// VerticalBottom is the bottom third of the frame.
	VerticalBottom Vertical = "bottom"
)

// Position locates a detection in a 3x3 grid over the camera frame.
// The zero value is the frame center.
type Position struct {
	Horizontal Horizontal
	Vertical   Vertical
}

// ParsePosition maps a free-text position description onto the 3x3 grid.
// Unrecognized text lands in the center bucket.
func ParsePosition(s string) Position {
	p := Position{Horizontal: HorizontalCenter, Vertical: VerticalMiddle}
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "left"):
		p.Horizontal = HorizontalLeft
	case strings.Contains(s, "right"):
		p.Horizontal = HorizontalRight
	}
	switch {
	case strings.Contains(s, "top") || strings.Contains(s, "upper"):
		p.Vertical = VerticalTop
	case strings.Contains(s, "bottom") || strings.Contains(s, "lower"):
		p.Vertical = VerticalBottom
	}
	return p
}

// Centered reports whether the detection sits in the horizontal center third,
// which is what the homing controller steers toward.
func (p Position) Centered() bool {
	return p.Horizontal == HorizontalCenter || p.Horizontal == ""
}

// Quadrant returns the numpad-style cell index (1 bottom-left .. 9 top-right).
func (p Position) Quadrant() int {
	col := 1
	switch p.Horizontal {
	case HorizontalCenter, "":
		col = 2
	case HorizontalRight:
		col = 3
	}
	row := 1
	switch p.Vertical {
	case VerticalMiddle, "":
		row = 2
	case VerticalTop:
		row = 3
	}
	return (row-1)*3 + col
}

// String renders the position as "vertical-horizontal", e.g. "middle-center".
func (p Position) String() string {
	h, v := p.Horizontal, p.Vertical
	if h == "" {
		h = HorizontalCenter
	}
	if v == "" {
		v = VerticalMiddle
	}
	return fmt.Sprintf("%s-%s", v, h)
}

// DistanceClass is a coarse monocular distance estimate.
type DistanceClass string

const (
	// DistanceUnknown means no usable distance cue was present.
	DistanceUnknown DistanceClass = "unknown"
	// DistanceClose means the object fills a large part of the frame.
	DistanceClose DistanceClass = "close"
	// DistanceMedium is between close and far.
	DistanceMedium DistanceClass = "medium"
	// DistanceFar means the object appears small in the frame.
	DistanceFar DistanceClass = "far"
)

// ParseDistanceClass maps free-text distance cues onto a DistanceClass.
func ParseDistanceClass(s string) DistanceClass {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "close") || strings.Contains(s, "near"):
		return DistanceClose
	case strings.Contains(s, "far") || strings.Contains(s, "distant"):
		return DistanceFar
	case strings.Contains(s, "medium") || strings.Contains(s, "middle"):
		return DistanceMedium
	default:
		return DistanceUnknown
	}
}

// Detection is a single object sighting reported by a Vision provider. Both
// the strict JSON parse and the heuristic text parse produce this shape.
type Detection struct {
	Name       string
	Confidence float64
	Position   Position
	Distance   DistanceClass
}

// Matches reports whether this detection names the target object, using
// case-insensitive containment in either direction.
func (d Detection) Matches(target string) bool {
	name := strings.ToLower(strings.TrimSpace(d.Name))
	t := strings.ToLower(strings.TrimSpace(target))
	if name == "" || t == "" {
		return false
	}
	return strings.Contains(name, t) || strings.Contains(t, name)
}

// ClampConfidence bounds a confidence score to [0, 1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
