package core

import "time"

// Outcome is the sealed result family for a search run. Exactly one of the
// variants below is returned; callers switch on the concrete type instead of
// inspecting sentinel strings.
type Outcome interface {
	outcome()
}

// Found means the target was detected with qualifying confidence.
type Found struct {
	// RoomID is set when the sighting happened during a targeted room pass.
	RoomID string
	// Location is a human readable place description.
	Location string
	// Confidence is the detection confidence in [0, 1].
	Confidence float64
	// Strategy names the strategy that produced the sighting.
	Strategy string
	// Detection is the qualifying sighting itself.
	Detection Detection
	// Areas lists every area scanned up to and including the sighting.
	Areas []string
}

// NotFound means every strategy completed without a qualifying sighting.
type NotFound struct {
	Areas []string
}

// TimedOut means the deadline expired or the search was cancelled before
// the escalation ladder finished.
type TimedOut struct {
	Areas []string
}

// Failed means a non-recoverable error stopped the search.
type Failed struct {
	Kind  ErrorKind
	Err   error
	Areas []string
}

func (Found) outcome()    {}
func (NotFound) outcome() {}
func (TimedOut) outcome() {}
func (Failed) outcome()   {}

// SearchResult is the flat result surface returned by Robot.Search. It
// carries the outcome variant plus the fields callers most commonly need.
type SearchResult struct {
	Object        string
	Found         bool
	Location      string
	Confidence    float64
	StrategyUsed  string
	AreasSearched []string
	TotalTime     time.Duration
	Outcome       Outcome
}
