package homing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roverkit/seeker/core"
)

type scriptDrive struct {
	mu        sync.Mutex
	distances []float64 // consumed one per sensor sample
	fallback  float64
	turns     []float64
	forwards  int
	sensorErr error
}

func (d *scriptDrive) MoveForward(context.Context, int, time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forwards++
	return nil
}

func (d *scriptDrive) MoveBackward(context.Context, int, time.Duration) error { return nil }

func (d *scriptDrive) Turn(_ context.Context, angle float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.turns = append(d.turns, angle)
	return nil
}

func (d *scriptDrive) Stop(context.Context) error { return nil }

func (d *scriptDrive) Distance(context.Context) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sensorErr != nil {
		return 0, d.sensorErr
	}
	if len(d.distances) == 0 {
		return d.fallback, nil
	}
	v := d.distances[0]
	d.distances = d.distances[1:]
	return v, nil
}

type scriptVision struct {
	mu    sync.Mutex
	calls int
	reply func(call int) []core.Detection
}

func (v *scriptVision) CaptureImage(context.Context) (*core.Image, error) {
	return &core.Image{Data: []byte("frame"), MIME: "image/jpeg"}, nil
}

func (v *scriptVision) Detect(context.Context, *core.Image, string) ([]core.Detection, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if v.reply == nil {
		return nil, nil
	}
	return v.reply(v.calls), nil
}

// repeat expands per-read values into the per-sample script the 3-sample
// averaging consumes.
func repeat(values ...float64) []float64 {
	var out []float64
	for _, v := range values {
		out = append(out, v, v, v)
	}
	return out
}

func centered(conf float64) []core.Detection {
	return []core.Detection{{Name: "red ball", Confidence: conf, Position: core.ParsePosition("center"), Distance: core.DistanceMedium}}
}

func newTestController(vision core.Vision, drive core.Drivetrain) *Controller {
	clockNow := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return New(vision, drive, func(o *Options) {
		o.Config.Now = func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return clockNow
		}
		o.Config.Sleep = func(_ context.Context, d time.Duration) error {
			mu.Lock()
			defer mu.Unlock()
			clockNow = clockNow.Add(d)
			return nil
		}
	})
}

func TestApproach_ConvergesAndWiggles(t *testing.T) {
	drive := &scriptDrive{distances: repeat(120, 80, 45, 18), fallback: 18}
	vision := &scriptVision{reply: func(int) []core.Detection { return centered(0.8) }}
	c := newTestController(vision, drive)

	res, err := c.Approach(context.Background(), nil, "ball", centered(0.9)[0])

	require.NoError(t, err)
	assert.True(t, res.Reached)
	assert.Equal(t, 4, res.Iterations)
	assert.InDelta(t, 18, res.FinalDistance, 1e-9)
	// Three forward legs (120, 80, 45), then the 18cm read succeeds.
	assert.Equal(t, 3, drive.forwards)
	// Within the wiggle band: 10, -20, 10.
	assert.Equal(t, []float64{10, -20, 10}, drive.turns)
}

func TestApproach_ObjectLostAfterOneRecoveryTurn(t *testing.T) {
	drive := &scriptDrive{fallback: 120}
	vision := &scriptVision{reply: func(call int) []core.Detection {
		if call == 1 {
			return []core.Detection{{Name: "red ball", Confidence: 0.8, Position: core.ParsePosition("left"), Distance: core.DistanceMedium}}
		}
		return nil // vanished
	}}
	c := newTestController(vision, drive)

	initial := core.Detection{Name: "red ball", Confidence: 0.9, Position: core.ParsePosition("left"), Distance: core.DistanceMedium}
	res, err := c.Approach(context.Background(), nil, "ball", initial)

	require.Error(t, err)
	kind, ok := core.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorKindObjectLost, kind)
	assert.False(t, res.Reached)
	// Initial corrective turn left (-20, medium distance), the off-center
	// correction after the first sighting, then exactly one recovery turn.
	require.NotEmpty(t, drive.turns)
	assert.Equal(t, -20.0, drive.turns[len(drive.turns)-1])
}

func TestApproach_OffCenterTurnsInsteadOfAdvancing(t *testing.T) {
	drive := &scriptDrive{fallback: 120}
	vision := &scriptVision{reply: func(call int) []core.Detection {
		if call == 1 {
			return []core.Detection{{Name: "red ball", Confidence: 0.8, Position: core.ParsePosition("right"), Distance: core.DistanceFar}}
		}
		return centered(0.8)
	}}
	c := newTestController(vision, drive)

	_, _ = c.Approach(context.Background(), nil, "ball", centered(0.9)[0])

	// The far off-center sighting triggers a +30 correction with no
	// forward movement in that iteration.
	assert.Contains(t, drive.turns, 30.0)
}

func TestApproach_SensorFallbackDecaysEstimate(t *testing.T) {
	drive := &scriptDrive{sensorErr: errors.New("ultrasonic flaky")}
	vision := &scriptVision{reply: func(int) []core.Detection { return centered(0.8) }}
	c := newTestController(vision, drive)

	res, err := c.Approach(context.Background(), nil, "ball", centered(0.9)[0])

	// The first blind iteration keeps the 50cm default; each later blind
	// iteration decays it by 0.7 (50, 35, 24.5, 17.15), landing inside the
	// 20cm success band on the fourth.
	require.NoError(t, err)
	assert.True(t, res.Reached)
	assert.Equal(t, 4, res.Iterations)
	assert.InDelta(t, 17.15, res.FinalDistance, 1e-9)
	assert.Equal(t, 3, drive.forwards)
}

func TestApproach_IterationBudget(t *testing.T) {
	drive := &scriptDrive{fallback: 250} // never gets closer
	vision := &scriptVision{reply: func(int) []core.Detection { return centered(0.8) }}
	c := newTestController(vision, drive)

	res, err := c.Approach(context.Background(), nil, "ball", centered(0.9)[0])

	require.Error(t, err)
	kind, _ := core.KindOf(err)
	assert.Equal(t, core.ErrorKindSearchTimeout, kind)
	assert.Equal(t, 8, res.Iterations)
	assert.False(t, res.Reached)
}

func TestApproach_TimeBudget(t *testing.T) {
	drive := &scriptDrive{fallback: 250}
	vision := &scriptVision{reply: func(int) []core.Detection { return centered(0.8) }}

	clockNow := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	c := New(vision, drive, func(o *Options) {
		o.Config.MaxApproachTime = 2 * time.Second
		o.Config.Now = func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clockNow = clockNow.Add(time.Second) // every clock check costs a second
			return clockNow
		}
		o.Config.Sleep = func(context.Context, time.Duration) error { return nil }
	})

	_, err := c.Approach(context.Background(), nil, "ball", centered(0.9)[0])

	require.Error(t, err)
	kind, _ := core.KindOf(err)
	assert.Equal(t, core.ErrorKindSearchTimeout, kind)
}
