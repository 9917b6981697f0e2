// Package seeker provides a high-level façade over the search engine and
// service abstractions (spatial memory, planning, strategies, homing and
// logging) enabling rapid construction of object-finding robots. Most
// applications interact with this package by:
//  1. Creating a Robot via New() (optionally overriding the default sim hardware)
//  2. Teaching it rooms via DiscoverRoom as the robot explores
//  3. Running searches via Search, which plans, executes and learns
//
// The façade delegates strategy execution to strategy.Engine and the final
// close-in to homing.Controller while keeping setup and usage ergonomics
// concise. All defaults are safe for local development and testing;
// deployments on a real chassis supply hardware-backed Vision and
// Drivetrain ports and a structured logger.
package seeker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roverkit/seeker/core"
	"github.com/roverkit/seeker/drive"
	"github.com/roverkit/seeker/guard"
	"github.com/roverkit/seeker/homing"
	"github.com/roverkit/seeker/logging"
	"github.com/roverkit/seeker/planner"
	"github.com/roverkit/seeker/spatial"
	"github.com/roverkit/seeker/strategy"
	"github.com/roverkit/seeker/vision"
)

// Composite strategy labels reported by Search on top of the per-stage
// strategy names.
const (
	// StrategySmartTargeted means the object was found in a predicted room.
	StrategySmartTargeted = "smart_targeted"
	// StrategySmartWithFallback means the predictions missed but the full
	// escalation ladder found it.
	StrategySmartWithFallback = "smart_with_fallback"
	// StrategySmartTargetedIncomplete means time ran out before the search
	// could move past the predicted rooms.
	StrategySmartTargetedIncomplete = "smart_targeted_incomplete"
	// StrategyAllExhausted means every strategy completed without a sighting.
	StrategyAllExhausted = "all_strategies_exhausted"
)

const (
	// targetedRoomSlice caps the engine time spent in one predicted room.
	targetedRoomSlice = 60 * time.Second
	// roomPause is the rest between predicted rooms.
	roomPause = 2 * time.Second
	// fallbackMinimum is the least remaining time worth a full fallback run.
	fallbackMinimum = 30 * time.Second
)

// ErrSearchActive is returned by Search while another search is running.
var ErrSearchActive = errors.New("a search is already in progress")

// Options configures the Robot instance.
type Options struct {
	// Vision is the detection port. Defaults to the scripted simulator.
	Vision core.Vision
	// Drivetrain is the movement port. Defaults to the simulator. It is
	// wrapped with the obstacle guard unless DisableGuard is set.
	Drivetrain core.Drivetrain
	// DisableGuard skips the obstacle-avoidance wrapper.
	DisableGuard bool
	// Store is the spatial memory. Defaults to an in-memory store.
	Store *spatial.Store

	// EngineConfig tunes the strategy escalation ladder.
	EngineConfig strategy.Config
	// HomingConfig tunes the final approach.
	HomingConfig homing.Config
	// PlannerMaxDuration caps plan duration estimates.
	PlannerMaxDuration time.Duration

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Now and Sleep are injectable for tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// SearchOptions configure one Search call.
type SearchOptions struct {
	// UseLearning consults learned object→room patterns when planning.
	// Default true.
	UseLearning bool
	// MaxTotalTime is the overall search budget. Default 5 minutes.
	MaxTotalTime time.Duration
	// MaxDetections bounds vision calls for the session; 0 means unlimited.
	MaxDetections int
	// Approach drives up to the object after a successful sighting.
	Approach bool
}

// Robot is the high-level façade aggregating the planner, the strategy
// engine, the homing controller and spatial memory.
type Robot struct {
	opts    Options
	store   *spatial.Store
	planner *planner.Planner
	engine  *strategy.Engine
	homer   *homing.Controller
	logger  logging.Logger
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	active *core.SearchSession
}

// New creates a new Robot with optional overrides. Any unset port is
// initialized with a simulated implementation.
func New(optFns ...func(o *Options)) *Robot {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Vision == nil {
		opts.Vision = vision.NewSimVision()
	}
	if opts.Drivetrain == nil {
		opts.Drivetrain = drive.NewSimDrivetrain()
	}
	if opts.Store == nil {
		opts.Store = spatial.NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		}
	}
	if opts.PlannerMaxDuration <= 0 {
		opts.PlannerMaxDuration = 5 * time.Minute
	}

	drv := opts.Drivetrain
	if !opts.DisableGuard {
		drv = guard.New(drv, func(o *guard.Options) { o.Logger = opts.Logger })
	}

	pl := planner.New(opts.Store, func(o *planner.Options) {
		o.MaxDuration = opts.PlannerMaxDuration
		o.Logger = opts.Logger
	})
	eng := strategy.New(opts.Vision, drv, func(o *strategy.Options) {
		o.Config = opts.EngineConfig
		o.Logger = opts.Logger
	})
	hom := homing.New(opts.Vision, drv, func(o *homing.Options) {
		o.Config = opts.HomingConfig
		o.Logger = opts.Logger
	})

	return &Robot{
		opts:    opts,
		store:   opts.Store,
		planner: pl,
		engine:  eng,
		homer:   hom,
		logger:  opts.Logger,
		now:     opts.Now,
		sleep:   opts.Sleep,
	}
}

// Search plans and runs a full search for the named object. Plans with
// room predictions search those rooms first in confidence order with a
// bounded time slice each, then fall back to the full escalation ladder
// when enough budget remains. The outcome is fed back into spatial memory
// so future plans improve.
func (r *Robot) Search(ctx context.Context, object string, optFns ...func(o *SearchOptions)) (core.SearchResult, error) {
	opts := SearchOptions{
		UseLearning:  true,
		MaxTotalTime: 5 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxTotalTime <= 0 {
		opts.MaxTotalTime = 5 * time.Minute
	}

	sess := core.NewSearchSession(object, opts.MaxTotalTime, opts.MaxDetections)
	r.mu.Lock()
	if r.active != nil {
		r.mu.Unlock()
		return core.SearchResult{}, ErrSearchActive
	}
	r.active = sess
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active = nil
		r.mu.Unlock()
	}()

	start := r.now()
	plan := r.planner.CreatePlan(object, opts.UseLearning)

	var result core.SearchResult
	if len(plan.Predictions) > 0 && plan.Strategy != planner.StrategyExploratory {
		result = r.targetedSearch(ctx, sess, plan, opts.MaxTotalTime, start)
	} else {
		result = r.ladderSearch(ctx, sess, opts.MaxTotalTime)
	}
	result.Object = object
	result.TotalTime = r.now().Sub(start)

	r.planner.Learn(object, result)

	if result.Found && opts.Approach {
		if found, ok := result.Outcome.(core.Found); ok {
			if _, err := r.homer.Approach(ctx, sess, object, found.Detection); err != nil {
				r.logger.Warn("Approach after sighting failed", "object", object, "error", err)
			}
		}
	}
	return result, nil
}

// targetedSearch works through the plan's predicted rooms in confidence
// order, giving each a bounded engine slice.
func (r *Robot) targetedSearch(ctx context.Context, sess *core.SearchSession, plan *planner.Plan, budget time.Duration, start time.Time) core.SearchResult {
	for i, pred := range plan.Predictions {
		elapsed := r.now().Sub(start)
		if elapsed >= budget {
			break
		}
		roomName := r.roomName(pred.RoomID)
		r.logger.Info("Checking predicted room", "room", roomName, "confidence", pred.Confidence)

		slice := budget - elapsed
		if slice > targetedRoomSlice {
			slice = targetedRoomSlice
		}
		outcome := r.engine.RunBudget(ctx, sess, slice)

		switch o := outcome.(type) {
		case core.Found:
			o.RoomID = pred.RoomID
			o.Location = roomName
			return core.SearchResult{
				Found:         true,
				Location:      roomName,
				Confidence:    o.Confidence,
				StrategyUsed:  StrategySmartTargeted,
				AreasSearched: sess.Areas(),
				Outcome:       o,
			}
		case core.TimedOut:
			if sess.Cancelled() || ctx.Err() != nil {
				return core.SearchResult{
					StrategyUsed:  StrategySmartTargetedIncomplete,
					AreasSearched: sess.Areas(),
					Outcome:       o,
				}
			}
			// The room slice expired; move on to the next prediction.
		}

		if i < len(plan.Predictions)-1 {
			if err := r.sleep(ctx, roomPause); err != nil {
				return core.SearchResult{
					StrategyUsed:  StrategySmartTargetedIncomplete,
					AreasSearched: sess.Areas(),
					Outcome:       core.TimedOut{Areas: sess.Areas()},
				}
			}
		}
	}

	remaining := budget - r.now().Sub(start)
	if remaining > fallbackMinimum && !sess.Cancelled() && ctx.Err() == nil {
		r.logger.Info("Not in the expected rooms, searching other areas", "remaining", remaining)
		outcome := r.engine.RunBudget(ctx, sess, remaining)
		switch o := outcome.(type) {
		case core.Found:
			return core.SearchResult{
				Found:         true,
				Location:      o.Location,
				Confidence:    o.Confidence,
				StrategyUsed:  StrategySmartWithFallback,
				AreasSearched: sess.Areas(),
				Outcome:       o,
			}
		case core.NotFound:
			return core.SearchResult{
				StrategyUsed:  StrategyAllExhausted,
				AreasSearched: sess.Areas(),
				Outcome:       o,
			}
		default:
			return core.SearchResult{
				StrategyUsed:  StrategySmartTargetedIncomplete,
				AreasSearched: sess.Areas(),
				Outcome:       outcome,
			}
		}
	}

	return core.SearchResult{
		StrategyUsed:  StrategySmartTargetedIncomplete,
		AreasSearched: sess.Areas(),
		Outcome:       core.TimedOut{Areas: sess.Areas()},
	}
}

func (r *Robot) roomName(id string) string {
	if room, ok := r.store.Room(id); ok {
		return room.DisplayName()
	}
	return "room " + id
}

// ladderSearch runs the plain escalation ladder with no room routing.
func (r *Robot) ladderSearch(ctx context.Context, sess *core.SearchSession, budget time.Duration) core.SearchResult {
	outcome := r.engine.RunBudget(ctx, sess, budget)
	switch o := outcome.(type) {
	case core.Found:
		return core.SearchResult{
			Found:         true,
			Location:      o.Location,
			Confidence:    o.Confidence,
			StrategyUsed:  o.Strategy,
			AreasSearched: sess.Areas(),
			Outcome:       o,
		}
	default:
		return core.SearchResult{
			StrategyUsed:  StrategyAllExhausted,
			AreasSearched: sess.Areas(),
			Outcome:       o,
		}
	}
}

// StopSearch requests a cooperative stop of the active search and reports
// whether one was running. The search winds down at its next step boundary
// with a TimedOut outcome.
func (r *Robot) StopSearch() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return false
	}
	r.active.Cancel()
	return true
}

// Approach drives up to an already sighted object.
func (r *Robot) Approach(ctx context.Context, target string, initial core.Detection) (homing.Result, error) {
	return r.homer.Approach(ctx, nil, target, initial)
}

// DiscoverRoom classifies a scanned scene and either recognizes it as an
// already known room (recording the revisit) or registers it as a new one.
// It returns the room record and whether it was newly added.
func (r *Robot) DiscoverRoom(description string, objects []string) (spatial.RoomRecord, bool, error) {
	features := spatial.ClassifyScene(description)
	keywords := append(append([]string{}, objects...), features.Keywords...)

	if id, ok := r.store.MatchRoom(keywords, description); ok {
		if err := r.store.TouchRoom(id); err != nil {
			return spatial.RoomRecord{}, false, err
		}
		rec, _ := r.store.Room(id)
		r.logger.Info("Recognized known room", "room", rec.DisplayName(), "visits", rec.VisitCount)
		return rec, false, nil
	}

	rec := spatial.RoomRecord{
		DetectedType: features.DetectedType,
		Keywords:     keywords,
		Description:  description,
		SizeClass:    features.SizeClass,
		Confidence:   features.Confidence,
	}
	id, err := r.store.AddRoom(rec)
	if err != nil {
		return spatial.RoomRecord{}, false, err
	}
	added, _ := r.store.Room(id)
	r.logger.Info("Discovered new room", "room", added.DisplayName(), "type", added.DetectedType, "confidence", added.Confidence)
	return added, true, nil
}

// Rooms lists every discovered room in discovery order.
func (r *Robot) Rooms() []spatial.RoomRecord { return r.store.Rooms() }

// RenameRoom assigns a user-facing name to a room.
func (r *Robot) RenameRoom(id, name string) error { return r.store.RenameRoom(id, name) }

// MapSummary reports the aggregate state of spatial memory.
func (r *Robot) MapSummary() spatial.Summary { return r.store.Summarize() }

// LearningSummary reports every learned object→room pattern.
func (r *Robot) LearningSummary() planner.LearningSummary { return r.planner.LearningSummary() }

// DecayMemory removes object sightings older than the store's retention
// window and returns how many were dropped.
func (r *Robot) DecayMemory() (int, error) { return r.store.Decay() }
