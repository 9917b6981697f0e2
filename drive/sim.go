package drive

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/roverkit/seeker/core"
)

// maxSteerAngle is the front servo limit of the reference chassis. Turns
// beyond it are executed as successive steer segments with a short forward
// creep between them, the way an Ackermann platform actually turns.
const maxSteerAngle = 30.0

// Move is one recorded drivetrain operation.
type Move struct {
	Op       string
	Speed    int
	Angle    float64
	Duration time.Duration
}

// SimOptions configure the simulated drivetrain.
type SimOptions struct {
	// DistanceScript supplies successive Distance readings; after the
	// script runs out readings fall back to Distance.
	DistanceScript []float64
	// Distance is the steady-state reading in centimeters. Default 100.
	Distance float64
	// SensorErr, when set, is returned by every Distance call.
	SensorErr error
	// TimeScale scales command durations into real sleeps. The default 0
	// makes every command instantaneous, which is what tests want.
	TimeScale float64
	// CreepTime is the synthetic duration of one steer segment during a
	// wide turn. Default 150ms (scaled by TimeScale like everything else).
	CreepTime time.Duration
}

// SimDrivetrain is an in-memory Drivetrain for development and tests. It
// tracks heading and position from the commands it receives and records
// every operation for inspection.
type SimDrivetrain struct {
	mu      sync.Mutex
	opts    SimOptions
	script  []float64
	moves   []Move
	heading float64
	x, y    float64
}

var _ core.Drivetrain = (*SimDrivetrain)(nil)

// NewSimDrivetrain creates a simulated drivetrain.
func NewSimDrivetrain(optFns ...func(o *SimOptions)) *SimDrivetrain {
	opts := SimOptions{
		Distance:  100,
		CreepTime: 150 * time.Millisecond,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SimDrivetrain{opts: opts, script: opts.DistanceScript}
}

// MoveForward advances the simulated pose along the current heading.
func (s *SimDrivetrain) MoveForward(ctx context.Context, speed int, d time.Duration) error {
	if err := s.wait(ctx, d); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(float64(speed) * d.Seconds())
	s.moves = append(s.moves, Move{Op: "forward", Speed: speed, Duration: d})
	return nil
}

// MoveBackward retreats the simulated pose along the current heading.
func (s *SimDrivetrain) MoveBackward(ctx context.Context, speed int, d time.Duration) error {
	if err := s.wait(ctx, d); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(-float64(speed) * d.Seconds())
	s.moves = append(s.moves, Move{Op: "backward", Speed: speed, Duration: d})
	return nil
}

// Turn rotates the simulated heading. Angles past the steering limit run
// as repeated clamped steer segments, each with a creep delay, so a 180
// reversal takes visibly longer than a 20 degree correction.
func (s *SimDrivetrain) Turn(ctx context.Context, angleDeg float64) error {
	remaining := angleDeg
	for remaining != 0 {
		step := remaining
		if step > maxSteerAngle {
			step = maxSteerAngle
		} else if step < -maxSteerAngle {
			step = -maxSteerAngle
		}
		if err := s.wait(ctx, s.opts.CreepTime); err != nil {
			return err
		}
		s.mu.Lock()
		s.heading = math.Mod(s.heading+step+360, 360)
		s.mu.Unlock()
		remaining -= step
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves = append(s.moves, Move{Op: "turn", Angle: angleDeg})
	return nil
}

// Stop records the stop. The simulated chassis has no momentum.
func (s *SimDrivetrain) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves = append(s.moves, Move{Op: "stop"})
	return nil
}

// Distance replays the script, then the steady-state reading.
func (s *SimDrivetrain) Distance(_ context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.SensorErr != nil {
		return 0, s.opts.SensorErr
	}
	if len(s.script) > 0 {
		d := s.script[0]
		s.script = s.script[1:]
		return d, nil
	}
	return s.opts.Distance, nil
}

// Moves returns a copy of the recorded operation log.
func (s *SimDrivetrain) Moves() []Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Move, len(s.moves))
	copy(out, s.moves)
	return out
}

// Pose returns the simulated heading in degrees and position.
func (s *SimDrivetrain) Pose() (heading, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heading, s.x, s.y
}

func (s *SimDrivetrain) advanceLocked(units float64) {
	rad := s.heading * math.Pi / 180
	s.x += units * math.Sin(rad)
	s.y += units * math.Cos(rad)
}

func (s *SimDrivetrain) wait(ctx context.Context, d time.Duration) error {
	scaled := time.Duration(float64(d) * s.opts.TimeScale)
	if scaled <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(scaled)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
