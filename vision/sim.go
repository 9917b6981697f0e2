package vision

import (
	"context"
	"sync"
	"time"

	"github.com/roverkit/seeker/core"
)

// simFrame is the static frame the simulated camera hands out.
var simFrame = []byte("simulated-frame")

// SimOptions configure the simulated Vision provider.
type SimOptions struct {
	// Script, when set, supplies the detections per successive Detect
	// call; after the script runs out Detect returns Objects.
	Script [][]core.Detection
	// Objects is the steady-state reply.
	Objects []core.Detection
	// Latency is the synthetic per-call delay. Default 10ms, capped at 1s
	// so a misconfigured sim never stalls a search.
	Latency time.Duration
}

// SimVision is a scripted Vision provider for development and tests, and
// the degrade target when no real camera or detection backend is wired.
type SimVision struct {
	mu      sync.Mutex
	script  [][]core.Detection
	objects []core.Detection
	latency time.Duration
	calls   int
}

var _ core.Vision = (*SimVision)(nil)

// NewSimVision creates a simulated provider.
func NewSimVision(optFns ...func(o *SimOptions)) *SimVision {
	opts := SimOptions{Latency: 10 * time.Millisecond}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Latency > time.Second {
		opts.Latency = time.Second
	}
	return &SimVision{script: opts.Script, objects: opts.Objects, latency: opts.Latency}
}

// CaptureImage returns the static simulated frame.
func (s *SimVision) CaptureImage(ctx context.Context) (*core.Image, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return &core.Image{Data: simFrame, MIME: "image/jpeg"}, nil
}

// Detect replays the script, then the steady-state objects.
func (s *SimVision) Detect(ctx context.Context, _ *core.Image, _ string) ([]core.Detection, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.script) > 0 {
		dets := s.script[0]
		s.script = s.script[1:]
		return dets, nil
	}
	return s.objects, nil
}

// Calls reports how many Detect calls have been made.
func (s *SimVision) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *SimVision) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
