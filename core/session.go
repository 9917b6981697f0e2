package core

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SearchSession tracks the mutable state of one search run: its deadline,
// the cooperative cancellation flag, the virtual pose used for visited-area
// deduplication, and the ordered log of scanned areas. It is safe for
// concurrent access.
//
// Contract:
//   - Exactly one session is active per Robot at a time
//   - Cancel is cooperative; strategies poll Cancelled between steps
//   - Areas accumulate in scan order and are returned as defensive copies
//   - Visited positions are keyed by the integer-rounded (x, y) pose.
type SearchSession struct {
	ID       string
	Target   string
	Started  time.Time
	Deadline time.Time

	mu         sync.Mutex
	cancelled  bool
	headingDeg float64
	x, y       float64
	visited    map[[2]int]struct{}
	areas      []string
	detections *DetectionLimiter
}

// NewSearchSession creates a session for the given target with the given
// total time budget. maxDetections bounds vision calls; 0 means unlimited.
func NewSearchSession(target string, budget time.Duration, maxDetections int) *SearchSession {
	now := time.Now()
	return &SearchSession{
		ID:         uuid.NewString(),
		Target:     target,
		Started:    now,
		Deadline:   now.Add(budget),
		visited:    map[[2]int]struct{}{},
		detections: NewDetectionLimiter(maxDetections),
	}
}

// Cancel requests a cooperative stop. The running search observes it at the
// next step boundary and winds down with a TimedOut outcome.
func (s *SearchSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
}

// Cancelled reports whether a stop has been requested.
func (s *SearchSession) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Expired reports whether the deadline has passed at the given instant.
func (s *SearchSession) Expired(now time.Time) bool {
	return !now.Before(s.Deadline)
}

// Remaining returns the time left before the deadline, never negative.
func (s *SearchSession) Remaining(now time.Time) time.Duration {
	if d := s.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// TurnBy rotates the virtual pose by the given angle in degrees.
func (s *SearchSession) TurnBy(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headingDeg = math.Mod(s.headingDeg+deg, 360)
}

// Advance moves the virtual pose the given number of grid units along the
// current heading. Negative units move backward.
func (s *SearchSession) Advance(units float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rad := s.headingDeg * math.Pi / 180
	s.x += units * math.Sin(rad)
	s.y += units * math.Cos(rad)
}

// MoveTo sets the virtual pose to an absolute grid position.
func (s *SearchSession) MoveTo(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = x, y
}

// Pose returns the current virtual heading and position.
func (s *SearchSession) Pose() (headingDeg, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headingDeg, s.x, s.y
}

// MarkVisited records the integer-rounded current position and reports
// whether it was newly visited.
func (s *SearchSession) MarkVisited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int{int(math.Round(s.x)), int(math.Round(s.y))}
	if _, ok := s.visited[key]; ok {
		return false
	}
	s.visited[key] = struct{}{}
	return true
}

// RecordArea appends an area label to the scan log.
func (s *SearchSession) RecordArea(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areas = append(s.areas, name)
}

// Areas returns a defensive copy of the scan log.
func (s *SearchSession) Areas() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	areas := make([]string, len(s.areas))
	copy(areas, s.areas)
	return areas
}

// Detections returns the per-session vision call limiter.
func (s *SearchSession) Detections() *DetectionLimiter {
	return s.detections
}
