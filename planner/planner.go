// Package planner turns spatial memory into search plans: which rooms to
// check first, in what order, under which strategy, and how long the whole
// run is expected to take. It also feeds search results back into the
// store so future plans improve.
package planner

import (
	"sort"
	"strings"
	"time"

	"github.com/roverkit/seeker/core"
	"github.com/roverkit/seeker/logging"
	"github.com/roverkit/seeker/spatial"
)

// Plan strategy classifications.
const (
	StrategyHighConfidence = "high_confidence_targeted"
	StrategyMultiRoom      = "multi_room_priority"
	StrategySingleRoom     = "single_room_focused"
	StrategyExploratory    = "exploratory_search"

	// FallbackExhaustive is the fallback every plan carries.
	FallbackExhaustive = "exhaustive_search"
)

const (
	// defaultConfidence is assigned to type-based default predictions.
	defaultConfidence = 0.6
	// maxPredictions caps how many rooms a plan will target.
	maxPredictions = 5
	// highConfidenceThreshold picks the targeted single-room strategy.
	highConfidenceThreshold = 0.7
)

// defaultAssociations maps common household objects to the room types they
// are usually kept in, used when nothing has been learned yet.
var defaultAssociations = map[string][]string{
	"keys":       {"kitchen", "bedroom", "living_room"},
	"remote":     {"living_room", "bedroom"},
	"phone":      {"kitchen", "bedroom", "living_room"},
	"wallet":     {"bedroom", "kitchen"},
	"glasses":    {"bedroom", "bathroom", "living_room"},
	"backpack":   {"bedroom", "hallway"},
	"shoes":      {"hallway", "bedroom"},
	"book":       {"bedroom", "living_room", "office"},
	"charger":    {"bedroom", "office", "kitchen"},
	"medicine":   {"bathroom", "kitchen"},
	"toys":       {"living_room", "bedroom"},
	"laptop":     {"office", "bedroom", "living_room"},
	"headphones": {"bedroom", "office"},
}

// Plan is an executable search plan for one object.
type Plan struct {
	Object            string
	Predictions       []spatial.Prediction
	Strategy          string
	EstimatedDuration time.Duration
	Fallback          string
}

// Options configure a Planner.
type Options struct {
	// MaxDuration caps the plan's estimated duration. Defaults to 5 minutes.
	MaxDuration time.Duration
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Planner builds plans from the spatial store and records outcomes back
// into it.
type Planner struct {
	store  *spatial.Store
	maxDur time.Duration
	logger logging.Logger
}

// New creates a Planner over the given store.
func New(store *spatial.Store, optFns ...func(o *Options)) *Planner {
	opts := Options{MaxDuration: 5 * time.Minute, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Planner{store: store, maxDur: opts.MaxDuration, logger: opts.Logger}
}

// CreatePlan builds a plan for the object. Learned predictions take
// precedence; with none, the default object→room-type table is mapped onto
// the rooms actually discovered so far. An empty prediction list yields an
// exploratory plan.
func (p *Planner) CreatePlan(object string, useLearning bool) *Plan {
	var preds []spatial.Prediction
	if useLearning {
		preds = p.store.PredictRooms(object)
	}
	if len(preds) == 0 {
		preds = p.defaultPredictions(object)
	}
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Confidence > preds[j].Confidence })
	if len(preds) > maxPredictions {
		preds = preds[:maxPredictions]
	}

	strategy := StrategyExploratory
	switch {
	case len(preds) == 0:
	case preds[0].Confidence > highConfidenceThreshold:
		strategy = StrategyHighConfidence
	case len(preds) > 1:
		strategy = StrategyMultiRoom
	default:
		strategy = StrategySingleRoom
	}

	var estimated time.Duration
	switch strategy {
	case StrategyHighConfidence:
		estimated = time.Minute
	case StrategyMultiRoom:
		estimated = 2*time.Minute + time.Duration(len(preds))*30*time.Second
	default:
		estimated = 4 * time.Minute
	}
	if estimated > p.maxDur {
		estimated = p.maxDur
	}

	plan := &Plan{
		Object:            object,
		Predictions:       preds,
		Strategy:          strategy,
		EstimatedDuration: estimated,
		Fallback:          FallbackExhaustive,
	}
	p.logger.Info("Search plan created", "object", object, "strategy", strategy, "predictions", len(preds), "estimated", estimated)
	return plan
}

// defaultPredictions maps the object's default room types onto discovered
// rooms of that detected type at a flat confidence. Matching is by
// detected type, not display name, so renamed rooms stay predictable.
func (p *Planner) defaultPredictions(object string) []spatial.Prediction {
	types := defaultAssociations[strings.ToLower(strings.TrimSpace(object))]
	if len(types) == 0 {
		return nil
	}
	wanted := map[string]struct{}{}
	for _, t := range types {
		wanted[strings.ToLower(t)] = struct{}{}
	}
	var preds []spatial.Prediction
	for _, room := range p.store.Rooms() {
		if _, ok := wanted[strings.ToLower(room.DetectedType)]; ok {
			preds = append(preds, spatial.Prediction{RoomID: room.ID, Confidence: defaultConfidence})
		}
	}
	return preds
}

// Learn feeds a completed search back into spatial memory. A find inside a
// known room strengthens that association; misses are only noted, never
// used to weaken confidence.
func (p *Planner) Learn(object string, result core.SearchResult) {
	found, ok := result.Outcome.(core.Found)
	if !ok || found.RoomID == "" {
		if !result.Found {
			p.logger.Info("Search miss noted", "object", object, "areas_searched", len(result.AreasSearched))
		}
		return
	}
	if err := p.store.LearnObjectLocation(object, found.RoomID); err != nil {
		p.logger.Warn("Failed to record found location", "object", object, "room", found.RoomID, "error", err)
		return
	}
	p.logger.Info("Learned object location", "object", object, "room", found.RoomID)
}

// PatternEntry is one learned room association in a LearningSummary.
type PatternEntry struct {
	Room       string
	Frequency  int
	Confidence float64
	LastSeen   time.Time
}

// LearningSummary reports what has been learned so far.
type LearningSummary struct {
	ObjectsLearned int
	RoomsMapped    int
	Patterns       map[string][]PatternEntry
}

// LearningSummary builds a report of every learned object→room pattern,
// strongest association first.
func (p *Planner) LearningSummary() LearningSummary {
	sum := p.store.Summarize()
	res := LearningSummary{RoomsMapped: sum.RoomCount, Patterns: map[string][]PatternEntry{}}
	for _, pat := range sum.Patterns {
		roomName := pat.RoomID
		if room, ok := p.store.Room(pat.RoomID); ok {
			roomName = room.DisplayName()
		}
		res.Patterns[pat.Object] = append(res.Patterns[pat.Object], PatternEntry{
			Room:       roomName,
			Frequency:  pat.Frequency,
			Confidence: pat.Confidence,
			LastSeen:   pat.LastSeen,
		})
	}
	for obj := range res.Patterns {
		entries := res.Patterns[obj]
		sort.Slice(entries, func(i, j int) bool { return entries[i].Confidence > entries[j].Confidence })
	}
	res.ObjectsLearned = len(res.Patterns)
	return res
}
