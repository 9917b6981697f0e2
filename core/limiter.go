package core

import (
	"fmt"
	"sync"
)

// DetectionLimiter enforces a maximum number of allowed vision detection
// calls per search session.
type DetectionLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewDetectionLimiter creates a new limiter with a max number of calls.
// If max == 0, unlimited calls are allowed.
func NewDetectionLimiter(max int) *DetectionLimiter {
	return &DetectionLimiter{max: max}
}

// Increment increases the call counter and returns an error if the limit is exceeded.
func (dl *DetectionLimiter) Increment() error {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	dl.count++
	if dl.max > 0 && dl.count > dl.max {
		return fmt.Errorf("exceeded max detection calls: %d", dl.max)
	}

	return nil
}

// Count returns the current number of calls made.
func (dl *DetectionLimiter) Count() int {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	return dl.count
}

// Remaining returns how many calls are left before hitting the limit.
func (dl *DetectionLimiter) Remaining() int {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.max == 0 {
		return -1 // unlimited
	}

	return dl.max - dl.count
}
