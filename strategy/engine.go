// Package strategy implements the escalating search state machine: five
// strategies from a cheap look-around to an exhaustive scan, sharing one
// time budget, with cooperative cancellation and visited-position
// deduplication between the movement-based stages.
package strategy

import (
	"context"
	"time"

	"github.com/roverkit/seeker/core"
	"github.com/roverkit/seeker/logging"
)

// Strategy names one stage of the escalation ladder.
type Strategy string

const (
	// StrategyCurrentLocation scans from the current position without moving.
	StrategyCurrentLocation Strategy = "current_location"
	// StrategyNearbySweep rotates through eight headings.
	StrategyNearbySweep Strategy = "nearby_sweep"
	// StrategyRoomByRoom visits nine positions within the room.
	StrategyRoomByRoom Strategy = "room_by_room"
	// StrategySystematicExploration drives an exploration pattern.
	StrategySystematicExploration Strategy = "systematic_exploration"
	// StrategyExhaustive is the final low-threshold scan.
	StrategyExhaustive Strategy = "exhaustive_search"
)

// Stage couples a strategy with its time budget, per-pass budget and
// detection confidence threshold.
type Stage struct {
	Strategy   Strategy
	Budget     time.Duration
	PassBudget time.Duration
	Threshold  float64
}

// DefaultStages returns the standard escalation ladder.
func DefaultStages() []Stage {
	return []Stage{
		{StrategyCurrentLocation, 30 * time.Second, 0, 0.3},
		{StrategyNearbySweep, 45 * time.Second, 5 * time.Second, 0.4},
		{StrategyRoomByRoom, 60 * time.Second, 8 * time.Second, 0.3},
		{StrategySystematicExploration, 90 * time.Second, 10 * time.Second, 0.25},
		{StrategyExhaustive, 120 * time.Second, 0, 0.15},
	}
}

// Config tunes the engine. The zero value is completed with defaults by New.
type Config struct {
	// MaxTotalTime is the overall budget for a full Run. Default 5 minutes.
	MaxTotalTime time.Duration
	// Pause is the rest between strategies. Default 2 seconds.
	Pause time.Duration
	// MinStageTime skips a stage when less than this remains. Default 10s.
	MinStageTime time.Duration
	// MoveUnit is the drive duration of one grid unit. Default 500ms.
	MoveUnit time.Duration
	// Stages overrides the escalation ladder.
	Stages []Stage
	// Now and Sleep are injectable for tests. Defaults: time.Now and a
	// context-aware timer sleep.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Options configure engine construction.
type Options struct {
	Config Config
	Logger logging.Logger
}

// Engine runs the escalation ladder against the Vision and Drivetrain ports.
type Engine struct {
	vision core.Vision
	drive  core.Drivetrain
	cfg    Config
	logger logging.Logger
}

// New creates an Engine. The drivetrain is expected to already be wrapped
// by whatever safety layer the caller wants; the engine issues raw
// movement commands.
func New(vision core.Vision, drive core.Drivetrain, optFns ...func(o *Options)) *Engine {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg := opts.Config
	if cfg.MaxTotalTime <= 0 {
		cfg.MaxTotalTime = 5 * time.Minute
	}
	if cfg.Pause <= 0 {
		cfg.Pause = 2 * time.Second
	}
	if cfg.MinStageTime <= 0 {
		cfg.MinStageTime = 10 * time.Second
	}
	if cfg.MoveUnit <= 0 {
		cfg.MoveUnit = 500 * time.Millisecond
	}
	if len(cfg.Stages) == 0 {
		cfg.Stages = DefaultStages()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	return &Engine{vision: vision, drive: drive, cfg: cfg, logger: opts.Logger}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run executes the full escalation ladder under the configured budget.
func (e *Engine) Run(ctx context.Context, sess *core.SearchSession) core.Outcome {
	return e.RunBudget(ctx, sess, e.cfg.MaxTotalTime)
}

// RunBudget executes the ladder under an explicit budget, used for
// targeted per-room time slices. Strategies run in order until one finds
// the target, the budget runs out, or the session is cancelled.
func (e *Engine) RunBudget(ctx context.Context, sess *core.SearchSession, budget time.Duration) core.Outcome {
	start := e.cfg.Now()
	timedOut := false

	for i, stage := range e.cfg.Stages {
		if e.stopped(ctx, sess) {
			_ = e.drive.Stop(ctx)
			return core.TimedOut{Areas: sess.Areas()}
		}
		elapsed := e.cfg.Now().Sub(start)
		if elapsed >= budget {
			timedOut = true
			break
		}
		alloc := stage.Budget
		if rem := budget - elapsed; rem < alloc {
			alloc = rem
		}
		if rem := sess.Remaining(e.cfg.Now()); rem < alloc {
			alloc = rem
		}
		if alloc < e.cfg.MinStageTime {
			timedOut = true
			break
		}

		e.logger.Info("Executing search strategy", "strategy", string(stage.Strategy), "budget", alloc)
		stageStart := e.cfg.Now()
		det, location, found := e.runStage(ctx, sess, stage, alloc)
		e.logStrategy(stage, sess, stageStart, found)

		if e.stopped(ctx, sess) {
			_ = e.drive.Stop(ctx)
			return core.TimedOut{Areas: sess.Areas()}
		}
		if found {
			return core.Found{
				Location:   location,
				Confidence: det.Confidence,
				Strategy:   string(stage.Strategy),
				Detection:  det,
				Areas:      sess.Areas(),
			}
		}
		if i < len(e.cfg.Stages)-1 {
			if err := e.cfg.Sleep(ctx, e.cfg.Pause); err != nil {
				return core.TimedOut{Areas: sess.Areas()}
			}
		}
	}

	if timedOut {
		return core.TimedOut{Areas: sess.Areas()}
	}
	return core.NotFound{Areas: sess.Areas()}
}

func (e *Engine) logStrategy(stage Stage, sess *core.SearchSession, start time.Time, found bool) {
	if rl, ok := e.logger.(*logging.RoverLogger); ok {
		rl.LogStrategy(string(stage.Strategy), len(sess.Areas()), e.cfg.Now().Sub(start), found)
	}
}

// stopped reports whether the run should wind down early: cooperative
// cancellation, context cancellation, or the session deadline passing.
func (e *Engine) stopped(ctx context.Context, sess *core.SearchSession) bool {
	return sess.Cancelled() || ctx.Err() != nil || sess.Expired(e.cfg.Now())
}

func (e *Engine) runStage(ctx context.Context, sess *core.SearchSession, stage Stage, alloc time.Duration) (core.Detection, string, bool) {
	deadline := e.cfg.Now().Add(alloc)
	switch stage.Strategy {
	case StrategyCurrentLocation:
		return e.searchCurrentLocation(ctx, sess, stage, alloc)
	case StrategyNearbySweep:
		return e.searchNearbySweep(ctx, sess, stage, deadline)
	case StrategyRoomByRoom:
		return e.searchRoomByRoom(ctx, sess, stage, deadline)
	case StrategySystematicExploration:
		return e.searchSystematicExploration(ctx, sess, stage, deadline)
	case StrategyExhaustive:
		return e.searchExhaustive(ctx, sess, stage, alloc)
	default:
		e.logger.Warn("Unknown search strategy", "strategy", string(stage.Strategy))
		return core.Detection{}, "", false
	}
}

// detectionPass captures one frame and checks it for the target. Sensor or
// parse trouble logs a warning and counts as "not seen"; it never aborts
// the surrounding strategy.
func (e *Engine) detectionPass(ctx context.Context, sess *core.SearchSession, threshold float64, budget time.Duration) (core.Detection, bool) {
	if err := sess.Detections().Increment(); err != nil {
		e.logger.Warn("Detection budget exhausted", "error", err)
		return core.Detection{}, false
	}

	pctx := ctx
	if budget > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	img, err := e.vision.CaptureImage(pctx)
	if err != nil {
		e.logger.Warn("Frame capture failed", "error", err)
		return core.Detection{}, false
	}
	dets, err := e.vision.Detect(pctx, img, sess.Target)
	if err != nil {
		e.logger.Warn("Detection failed", "error", err)
		return core.Detection{}, false
	}
	for _, d := range dets {
		if d.Matches(sess.Target) && d.Confidence >= threshold {
			e.logger.Info("Target sighted", "object", d.Name, "confidence", d.Confidence, "position", d.Position.String())
			return d, true
		}
	}
	return core.Detection{}, false
}
