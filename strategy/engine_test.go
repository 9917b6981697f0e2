package strategy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roverkit/seeker/core"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.Advance(d)
	return nil
}

type mockVision struct {
	mu       sync.Mutex
	calls    int
	onDetect func(call int) []core.Detection
}

func (m *mockVision) CaptureImage(context.Context) (*core.Image, error) {
	return &core.Image{Data: []byte("frame"), MIME: "image/jpeg"}, nil
}

func (m *mockVision) Detect(_ context.Context, _ *core.Image, _ string) ([]core.Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.onDetect == nil {
		return nil, nil
	}
	return m.onDetect(m.calls), nil
}

func (m *mockVision) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockDrive struct {
	mu      sync.Mutex
	ops     []string
	stopped bool
}

func (m *mockDrive) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, op)
}

func (m *mockDrive) MoveForward(context.Context, int, time.Duration) error {
	m.record("forward")
	return nil
}

func (m *mockDrive) MoveBackward(context.Context, int, time.Duration) error {
	m.record("backward")
	return nil
}

func (m *mockDrive) Turn(context.Context, float64) error {
	m.record("turn")
	return nil
}

func (m *mockDrive) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockDrive) Distance(context.Context) (float64, error) { return 100, nil }

func newTestEngine(vision core.Vision, drive core.Drivetrain, clock *fakeClock) *Engine {
	return New(vision, drive, func(o *Options) {
		o.Config.Now = clock.Now
		o.Config.Sleep = clock.Sleep
	})
}

func TestEngine_FindsOnThirdPassInSweep(t *testing.T) {
	clock := newFakeClock()
	vision := &mockVision{onDetect: func(call int) []core.Detection {
		if call == 3 {
			return []core.Detection{{Name: "red ball", Confidence: 0.9, Position: core.ParsePosition("center")}}
		}
		return nil
	}}
	drive := &mockDrive{}
	sess := core.NewSearchSession("ball", 5*time.Minute, 0)

	outcome := newTestEngine(vision, drive, clock).Run(context.Background(), sess)

	found, ok := outcome.(core.Found)
	require.True(t, ok, "expected Found, got %T", outcome)
	assert.Equal(t, string(StrategyNearbySweep), found.Strategy)
	assert.Equal(t, "direction 45 degrees", found.Location)
	assert.InDelta(t, 0.9, found.Confidence, 1e-9)
	// Current location, sweep heading 0, sweep heading 45. Nothing more.
	assert.Equal(t, 3, vision.callCount())
	assert.Equal(t, []string{"current_position", "direction_0", "direction_45"}, found.Areas)
}

func TestEngine_ExhaustsAllStrategies(t *testing.T) {
	clock := newFakeClock()
	vision := &mockVision{}
	drive := &mockDrive{}
	sess := core.NewSearchSession("unicorn", 5*time.Minute, 0)

	outcome := newTestEngine(vision, drive, clock).Run(context.Background(), sess)

	nf, ok := outcome.(core.NotFound)
	require.True(t, ok, "expected NotFound, got %T", outcome)
	// 1 current + 8 sweep headings + 9 room positions + 4 exploration
	// legs + 1 exhaustive scan, all logged even when a scan is skipped.
	assert.Len(t, nf.Areas, 23)
	assert.Equal(t, "current_position", nf.Areas[0])
	assert.Equal(t, "exhaustive_scan", nf.Areas[22])
	// Two exploration legs land on already scanned cells and skip the
	// scan itself, so passes stay below the area count.
	assert.Equal(t, 21, vision.callCount())
}

func TestEngine_BudgetExpiryTimesOut(t *testing.T) {
	clock := newFakeClock()
	vision := &mockVision{onDetect: func(int) []core.Detection {
		clock.Advance(20 * time.Second) // slow detection passes
		return nil
	}}
	drive := &mockDrive{}
	sess := core.NewSearchSession("unicorn", 5*time.Minute, 0)

	start := clock.Now()
	outcome := newTestEngine(vision, drive, clock).RunBudget(context.Background(), sess, 50*time.Second)

	_, ok := outcome.(core.TimedOut)
	require.True(t, ok, "expected TimedOut, got %T", outcome)
	// Never more than one pass plus one pause beyond the budget.
	assert.LessOrEqual(t, clock.Now().Sub(start), 50*time.Second+20*time.Second+2*time.Second)
}

func TestEngine_SkipsStageWithoutMeaningfulTime(t *testing.T) {
	clock := newFakeClock()
	vision := &mockVision{}
	drive := &mockDrive{}
	sess := core.NewSearchSession("unicorn", 5*time.Minute, 0)

	// Under 10 seconds of budget nothing runs at all.
	outcome := newTestEngine(vision, drive, clock).RunBudget(context.Background(), sess, 9*time.Second)

	_, ok := outcome.(core.TimedOut)
	require.True(t, ok, "expected TimedOut, got %T", outcome)
	assert.Zero(t, vision.callCount())
}

func TestEngine_CancellationStopsDrive(t *testing.T) {
	clock := newFakeClock()
	drive := &mockDrive{}
	sess := core.NewSearchSession("keys", 5*time.Minute, 0)
	vision := &mockVision{onDetect: func(call int) []core.Detection {
		if call == 2 {
			sess.Cancel()
		}
		return nil
	}}

	outcome := newTestEngine(vision, drive, clock).Run(context.Background(), sess)

	to, ok := outcome.(core.TimedOut)
	require.True(t, ok, "expected TimedOut, got %T", outcome)
	assert.True(t, drive.stopped, "drive should be stopped on cancellation")
	// The cancelled sweep never got past its second heading.
	assert.LessOrEqual(t, len(to.Areas), 3)
}

func TestEngine_SessionDeadlineStops(t *testing.T) {
	vision := &mockVision{}
	drive := &mockDrive{}
	// Zero budget puts the session deadline in the past immediately.
	sess := core.NewSearchSession("keys", 0, 0)

	outcome := New(vision, drive).Run(context.Background(), sess)

	_, ok := outcome.(core.TimedOut)
	require.True(t, ok, "expected TimedOut, got %T", outcome)
	assert.True(t, drive.stopped, "drive should be stopped on an expired session")
	assert.Zero(t, vision.callCount())
}

func TestEngine_DetectionLimiterCapsCalls(t *testing.T) {
	clock := newFakeClock()
	vision := &mockVision{}
	drive := &mockDrive{}
	sess := core.NewSearchSession("unicorn", 5*time.Minute, 4)

	outcome := newTestEngine(vision, drive, clock).Run(context.Background(), sess)

	_, ok := outcome.(core.NotFound)
	require.True(t, ok, "expected NotFound, got %T", outcome)
	assert.Equal(t, 4, vision.callCount())
}
