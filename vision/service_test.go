package vision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/roverkit/seeker/core"
)

type flakyVision struct {
	calls int
	fail  int
	dets  []core.Detection
}

func (f *flakyVision) CaptureImage(_ context.Context) (*core.Image, error) {
	return &core.Image{Data: []byte("frame"), MIME: "image/jpeg"}, nil
}

func (f *flakyVision) Detect(_ context.Context, _ *core.Image, _ string) ([]core.Detection, error) {
	f.calls++
	if f.calls <= f.fail {
		return nil, errors.New("backend unavailable")
	}
	return f.dets, nil
}

func newTestService(inner core.Vision) *Service {
	return NewService(inner, func(o *ServiceOptions) {
		o.Rate = rate.Inf
		o.OpenTimeout = time.Minute
	})
}

func TestService_PassesThroughDetections(t *testing.T) {
	inner := &flakyVision{dets: []core.Detection{{Name: "keys", Confidence: 0.9}}}
	svc := newTestService(inner)

	img, err := svc.CaptureImage(context.Background())
	require.NoError(t, err)

	dets, err := svc.Detect(context.Background(), img, "keys")
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "keys", dets[0].Name)
}

func TestService_BreakerDegradesToEmpty(t *testing.T) {
	inner := &flakyVision{fail: 1000}
	svc := newTestService(inner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Detect(ctx, nil, "keys")
		require.Error(t, err)
	}

	// Breaker is open now; the backend stops being hit and detection
	// degrades to an empty result instead of an error.
	before := inner.calls
	dets, err := svc.Detect(ctx, nil, "keys")
	require.NoError(t, err)
	assert.Empty(t, dets)
	assert.Equal(t, before, inner.calls)
}

func TestService_RecoversAfterSuccess(t *testing.T) {
	inner := &flakyVision{fail: 2, dets: []core.Detection{{Name: "phone", Confidence: 0.8}}}
	svc := newTestService(inner)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Detect(ctx, nil, "phone")
		require.Error(t, err)
	}

	dets, err := svc.Detect(ctx, nil, "phone")
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "phone", dets[0].Name)
}

func TestService_ContextCancelledWhileQueued(t *testing.T) {
	inner := &flakyVision{}
	svc := NewService(inner, func(o *ServiceOptions) {
		o.Rate = rate.Limit(0.001)
		o.Burst = 1
	})
	ctx := context.Background()

	_, err := svc.Detect(ctx, nil, "keys")
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Detect(cancelled, nil, "keys")
	assert.ErrorIs(t, err, context.Canceled)
}
