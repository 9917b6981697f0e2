// Package guard wraps a Drivetrain with obstacle avoidance. Before any
// forward or turn command it reads the range sensor; below the danger
// distance it interleaves an evasive maneuver, then lets the original
// command proceed. The guard advises and evades, it never vetoes.
package guard

import (
	"context"
	"math/rand"
	"time"

	"github.com/roverkit/seeker/core"
	"github.com/roverkit/seeker/logging"
)

// Options configure a Guard.
type Options struct {
	// DangerDistance triggers evasion, in centimeters. Default 20.
	DangerDistance float64
	// ClearDistance is what counts as clear after an evasive turn. Default 30.
	ClearDistance float64
	// EvasionAngles is the candidate set for the evasive turn, tried in a
	// random order. Default {45, -45, 90, -90}.
	EvasionAngles []float64
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
	// Rand overrides the angle shuffle source for tests.
	Rand *rand.Rand
}

// Guard decorates a Drivetrain with obstacle checks. It implements
// core.Drivetrain itself so callers stay unaware of it.
type Guard struct {
	inner  core.Drivetrain
	danger float64
	clear  float64
	angles []float64
	logger logging.Logger
	rand   *rand.Rand
}

var _ core.Drivetrain = (*Guard)(nil)

// New wraps a drivetrain.
func New(inner core.Drivetrain, optFns ...func(o *Options)) *Guard {
	opts := Options{
		DangerDistance: 20,
		ClearDistance:  30,
		EvasionAngles:  []float64{45, -45, 90, -90},
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Guard{
		inner:  inner,
		danger: opts.DangerDistance,
		clear:  opts.ClearDistance,
		angles: opts.EvasionAngles,
		logger: opts.Logger,
		rand:   opts.Rand,
	}
}

// MoveForward checks for obstacles, evades if needed, then drives.
func (g *Guard) MoveForward(ctx context.Context, speed int, d time.Duration) error {
	g.ensureClear(ctx)
	return g.inner.MoveForward(ctx, speed, d)
}

// MoveBackward passes through; reversing is how the robot leaves an
// obstacle behind.
func (g *Guard) MoveBackward(ctx context.Context, speed int, d time.Duration) error {
	return g.inner.MoveBackward(ctx, speed, d)
}

// Turn checks for obstacles before rotating, since turning sweeps the
// chassis forward.
func (g *Guard) Turn(ctx context.Context, angleDeg float64) error {
	g.ensureClear(ctx)
	return g.inner.Turn(ctx, angleDeg)
}

// Stop passes through.
func (g *Guard) Stop(ctx context.Context) error { return g.inner.Stop(ctx) }

// Distance passes through.
func (g *Guard) Distance(ctx context.Context) (float64, error) { return g.inner.Distance(ctx) }

// ensureClear evades when something sits inside the danger distance: one
// randomized turn from the candidate set, and a full reversal if the path
// is still blocked. Sensor errors are logged and treated as clear.
func (g *Guard) ensureClear(ctx context.Context) {
	d, err := g.inner.Distance(ctx)
	if err != nil {
		g.logger.Warn("Obstacle check failed, proceeding", "error", err)
		return
	}
	if d >= g.danger {
		return
	}
	g.logger.Info("Obstacle ahead, evading", "distance_cm", d)

	angle := g.angles[g.rand.Intn(len(g.angles))]
	if err := g.inner.Turn(ctx, angle); err != nil {
		g.logger.Warn("Evasive turn failed", "angle", angle, "error", err)
		return
	}
	d, err = g.inner.Distance(ctx)
	if err == nil && d >= g.clear {
		g.logger.Debug("Path clear after evasive turn", "angle", angle, "distance_cm", d)
		return
	}
	// Still boxed in; turn around completely.
	if err := g.inner.Turn(ctx, 180); err != nil {
		g.logger.Warn("Reversal turn failed", "error", err)
	}
}
