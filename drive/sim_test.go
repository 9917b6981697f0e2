package drive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimDrivetrain_TracksPose(t *testing.T) {
	d := NewSimDrivetrain()
	ctx := context.Background()

	require.NoError(t, d.Turn(ctx, 90))
	require.NoError(t, d.MoveForward(ctx, 50, 2*time.Second))

	heading, x, y := d.Pose()
	assert.Equal(t, 90.0, heading)
	assert.InDelta(t, 100.0, x, 1e-9)
	assert.InDelta(t, 0.0, y, 1e-9)

	require.NoError(t, d.MoveBackward(ctx, 50, time.Second))
	_, x, _ = d.Pose()
	assert.InDelta(t, 50.0, x, 1e-9)
}

func TestSimDrivetrain_WideTurnWrapsHeading(t *testing.T) {
	d := NewSimDrivetrain()
	ctx := context.Background()

	require.NoError(t, d.Turn(ctx, -45))
	heading, _, _ := d.Pose()
	assert.Equal(t, 315.0, heading)

	require.NoError(t, d.Turn(ctx, 180))
	heading, _, _ = d.Pose()
	assert.Equal(t, 135.0, heading)
}

func TestSimDrivetrain_DistanceScriptThenFallback(t *testing.T) {
	d := NewSimDrivetrain(func(o *SimOptions) {
		o.DistanceScript = []float64{42, 18}
		o.Distance = 250
	})
	ctx := context.Background()

	for _, want := range []float64{42, 18, 250, 250} {
		got, err := d.Distance(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSimDrivetrain_SensorError(t *testing.T) {
	sensorErr := errors.New("echo timeout")
	d := NewSimDrivetrain(func(o *SimOptions) {
		o.SensorErr = sensorErr
	})

	_, err := d.Distance(context.Background())
	assert.ErrorIs(t, err, sensorErr)
}

func TestSimDrivetrain_RecordsMoves(t *testing.T) {
	d := NewSimDrivetrain()
	ctx := context.Background()

	require.NoError(t, d.MoveForward(ctx, 40, time.Second))
	require.NoError(t, d.Turn(ctx, 45))
	require.NoError(t, d.Stop(ctx))

	moves := d.Moves()
	require.Len(t, moves, 3)
	assert.Equal(t, "forward", moves[0].Op)
	assert.Equal(t, 40, moves[0].Speed)
	assert.Equal(t, "turn", moves[1].Op)
	assert.Equal(t, 45.0, moves[1].Angle)
	assert.Equal(t, "stop", moves[2].Op)
}

func TestSimDrivetrain_CancelledContext(t *testing.T) {
	d := NewSimDrivetrain(func(o *SimOptions) {
		o.TimeScale = 1
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.MoveForward(ctx, 50, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.Moves())
}
