// Package homing drives the robot toward an already sighted object: read
// the range sensor, re-detect the target, correct heading, advance, and
// repeat until within reach or the object is lost.
package homing

import (
	"context"
	"errors"
	"time"

	"github.com/roverkit/seeker/core"
	"github.com/roverkit/seeker/logging"
)

// Config tunes the approach loop. The zero value is completed with
// defaults by New.
type Config struct {
	// MinDistance is the target standoff in centimeters. Default 15.
	MinDistance float64
	// SuccessMargin widens the success band above MinDistance. Default 5.
	SuccessMargin float64
	// WiggleBand is how far above MinDistance the celebratory wiggle still
	// fires. Default 10.
	WiggleBand float64
	// MaxApproachTime bounds the whole approach. Default 30 seconds.
	MaxApproachTime time.Duration
	// MaxIterations bounds the number of approach steps. Default 8.
	MaxIterations int
	// RedetectThreshold is the confidence needed to keep tracking. Default 0.6.
	RedetectThreshold float64
	// DefaultDistance substitutes for an unreadable initial range. Default 50.
	DefaultDistance float64
	// Samples is how many sensor readings are averaged per range check.
	// Default 3.
	Samples int
	// Now and Sleep are injectable for tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Options configure controller construction.
type Options struct {
	Config Config
	Logger logging.Logger
}

// Result summarizes an approach attempt.
type Result struct {
	Reached       bool
	FinalDistance float64
	Iterations    int
	Duration      time.Duration
}

// Controller runs the visual homing loop over the Vision and Drivetrain
// ports.
type Controller struct {
	vision core.Vision
	drive  core.Drivetrain
	cfg    Config
	logger logging.Logger
}

// New creates a Controller.
func New(vision core.Vision, drive core.Drivetrain, optFns ...func(o *Options)) *Controller {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg := opts.Config
	if cfg.MinDistance <= 0 {
		cfg.MinDistance = 15
	}
	if cfg.SuccessMargin <= 0 {
		cfg.SuccessMargin = 5
	}
	if cfg.WiggleBand <= 0 {
		cfg.WiggleBand = 10
	}
	if cfg.MaxApproachTime <= 0 {
		cfg.MaxApproachTime = 30 * time.Second
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 8
	}
	if cfg.RedetectThreshold <= 0 {
		cfg.RedetectThreshold = 0.6
	}
	if cfg.DefaultDistance <= 0 {
		cfg.DefaultDistance = 50
	}
	if cfg.Samples <= 0 {
		cfg.Samples = 3
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = func(ctx context.Context, d time.Duration) error {
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
	return &Controller{vision: vision, drive: drive, cfg: cfg, logger: opts.Logger}
}

// Approach homes in on the target described by the initial detection.
// sess may be nil; when present its cancellation flag is honored. The
// returned error carries ErrorKindObjectLost when the target could not be
// re-acquired and ErrorKindSearchTimeout when time or iterations ran out.
func (c *Controller) Approach(ctx context.Context, sess *core.SearchSession, target string, initial core.Detection) (Result, error) {
	start := c.cfg.Now()

	// Point at the object before the first leg. Far objects get the
	// stronger correction.
	if turn := correctiveTurn(initial.Position, initial.Distance); turn != 0 {
		c.turn(ctx, turn)
	}

	// The estimate starts at the configured default and is replaced by the
	// first sensor read inside the loop.
	estimate := c.cfg.DefaultDistance
	c.logger.Info("Starting approach", "object", target, "position", initial.Position.String())

	last := initial
	lost := false
	res := Result{FinalDistance: estimate}

	for i := 1; i <= c.cfg.MaxIterations; i++ {
		res.Iterations = i
		if sess != nil && sess.Cancelled() {
			res.Duration = c.cfg.Now().Sub(start)
			return res, core.NewRobotError(core.ErrorKindSearchTimeout, "approach", errors.New("search cancelled"))
		}
		if c.cfg.Now().Sub(start) >= c.cfg.MaxApproachTime {
			res.Duration = c.cfg.Now().Sub(start)
			return res, core.NewRobotError(core.ErrorKindSearchTimeout, "approach", errors.New("approach time exhausted"))
		}

		// One range check per iteration. An unreadable sensor before any
		// movement keeps the default estimate; after a leg it assumes
		// roughly 30% of the gap was closed.
		if d, ok := c.readDistance(ctx); ok {
			estimate = d
		} else if i > 1 {
			estimate *= 0.7
		}
		res.FinalDistance = estimate
		c.logApproach(i, estimate, last.Position.Centered())

		if estimate <= c.cfg.MinDistance+c.cfg.SuccessMargin {
			res.Reached = true
			res.Duration = c.cfg.Now().Sub(start)
			if estimate <= c.cfg.MinDistance+c.cfg.WiggleBand {
				c.wiggle(ctx)
			}
			c.logger.Info("Approach complete", "object", target, "distance", estimate, "iterations", i)
			return res, nil
		}

		det, seen := c.redetect(ctx, target)
		if !seen {
			if lost {
				res.Duration = c.cfg.Now().Sub(start)
				return res, core.NewRobotError(core.ErrorKindObjectLost, "approach", errors.New("target not re-acquired after recovery turn"))
			}
			lost = true
			// One recovery turn toward the side the object was last seen.
			switch last.Position.Horizontal {
			case core.HorizontalLeft:
				c.turn(ctx, -20)
			case core.HorizontalRight:
				c.turn(ctx, 20)
			}
			continue
		}
		lost = false
		last = det

		if !det.Position.Centered() {
			c.turn(ctx, correctiveTurn(det.Position, det.Distance))
			continue // re-center first, advance next iteration
		}

		speed, dur := approachStep(estimate)
		if err := c.drive.MoveForward(ctx, speed, dur); err != nil {
			c.logger.Warn("Approach move failed", "error", err)
		}
		_ = c.cfg.Sleep(ctx, 300*time.Millisecond) // settle before next read
	}

	res.Duration = c.cfg.Now().Sub(start)
	return res, core.NewRobotError(core.ErrorKindSearchTimeout, "approach", errors.New("iteration budget exhausted"))
}

// correctiveTurn picks the heading correction for an off-center sighting.
func correctiveTurn(p core.Position, d core.DistanceClass) float64 {
	magnitude := 20.0
	if d == core.DistanceFar {
		magnitude = 30
	}
	switch p.Horizontal {
	case core.HorizontalLeft:
		return -magnitude
	case core.HorizontalRight:
		return magnitude
	default:
		return 0
	}
}

// approachStep maps the current range estimate onto a speed and leg
// duration, decelerating as the object gets close.
func approachStep(distance float64) (speed int, dur time.Duration) {
	seconds := 0.0
	switch {
	case distance > 100:
		speed, seconds = 40, minf(0.8, distance/150)
	case distance > 50:
		speed, seconds = 30, minf(0.5, distance/200)
	case distance > 25:
		speed, seconds = 20, minf(0.3, distance/250)
	default:
		speed, seconds = 15, minf(0.2, distance/300)
	}
	return speed, time.Duration(seconds * float64(time.Second))
}

// readDistance averages the configured number of sensor samples, ignoring
// readings outside [0, 300) cm. No valid sample means no reading.
func (c *Controller) readDistance(ctx context.Context) (float64, bool) {
	sum := 0.0
	valid := 0
	for i := 0; i < c.cfg.Samples; i++ {
		d, err := c.drive.Distance(ctx)
		if err != nil {
			c.logger.Warn("Range read failed", "error", err)
			continue
		}
		if d < 0 || d >= 300 {
			continue
		}
		sum += d
		valid++
	}
	if valid == 0 {
		return 0, false
	}
	return sum / float64(valid), true
}

// redetect captures a frame and checks the target is still visible with
// tracking confidence.
func (c *Controller) redetect(ctx context.Context, target string) (core.Detection, bool) {
	img, err := c.vision.CaptureImage(ctx)
	if err != nil {
		c.logger.Warn("Frame capture failed during approach", "error", err)
		return core.Detection{}, false
	}
	dets, err := c.vision.Detect(ctx, img, target)
	if err != nil {
		c.logger.Warn("Detection failed during approach", "error", err)
		return core.Detection{}, false
	}
	for _, d := range dets {
		if d.Matches(target) && d.Confidence >= c.cfg.RedetectThreshold {
			return d, true
		}
	}
	return core.Detection{}, false
}

func (c *Controller) turn(ctx context.Context, deg float64) {
	if deg == 0 {
		return
	}
	if err := c.drive.Turn(ctx, deg); err != nil {
		c.logger.Warn("Turn failed during approach", "angle", deg, "error", err)
	}
}

// wiggle is the little celebration shake at the end of a successful
// approach.
func (c *Controller) wiggle(ctx context.Context) {
	c.turn(ctx, 10)
	_ = c.cfg.Sleep(ctx, 200*time.Millisecond)
	c.turn(ctx, -20)
	_ = c.cfg.Sleep(ctx, 200*time.Millisecond)
	c.turn(ctx, 10)
}

func (c *Controller) logApproach(iteration int, distance float64, centered bool) {
	if rl, ok := c.logger.(*logging.RoverLogger); ok {
		rl.LogApproach(iteration, distance, centered)
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
