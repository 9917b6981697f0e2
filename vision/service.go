package vision

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/roverkit/seeker/core"
	"github.com/roverkit/seeker/logging"
)

// ServiceOptions configure the hardened Vision wrapper.
type ServiceOptions struct {
	// MaxFailures consecutive detect failures trip the breaker. Default 3.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	// Default 30 seconds.
	OpenTimeout time.Duration
	// Rate limits detect calls toward the backend. Default 2 per second.
	Rate rate.Limit
	// Burst is the rate limiter burst size. Default 2.
	Burst int
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Service hardens a Vision provider with a circuit breaker and a rate
// limiter. A tripped breaker degrades detection to an empty result so a
// flaky backend slows a search down instead of failing it.
type Service struct {
	inner   core.Vision
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  logging.Logger
}

var _ core.Vision = (*Service)(nil)

// NewService wraps a Vision provider.
func NewService(inner core.Vision, optFns ...func(o *ServiceOptions)) *Service {
	opts := ServiceOptions{
		MaxFailures: 3,
		OpenTimeout: 30 * time.Second,
		Rate:        rate.Limit(2),
		Burst:       2,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "vision",
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			opts.Logger.Warn("Vision breaker state change", "from", from.String(), "to", to.String())
		},
	})
	return &Service{
		inner:   inner,
		breaker: breaker,
		limiter: rate.NewLimiter(opts.Rate, opts.Burst),
		logger:  opts.Logger,
	}
}

// CaptureImage passes through; frames come from local hardware, not the
// detection backend.
func (s *Service) CaptureImage(ctx context.Context) (*core.Image, error) {
	return s.inner.CaptureImage(ctx)
}

// Detect runs the wrapped provider under the rate limit and breaker.
// Breaker-open degrades to an empty result; genuine provider errors pass
// through for the caller to log.
func (s *Service) Detect(ctx context.Context, img *core.Image, target string) ([]core.Detection, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err // context cancelled or deadline passed while queued
	}
	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Detect(ctx, img, target)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			s.logger.Warn("Vision breaker open, degrading to empty result", "target", target)
			return nil, nil
		}
		return nil, err
	}
	dets, _ := res.([]core.Detection)
	return dets, nil
}
