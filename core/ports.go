package core

import (
	"context"
	"time"
)

// Image is a captured camera frame handed to Vision providers.
type Image struct {
	Data []byte
	MIME string
}

// Camera captures frames from whatever camera hardware is wired in.
type Camera interface {
	// CaptureImage grabs a single frame.
	CaptureImage(ctx context.Context) (*Image, error)
}

// Vision is the detection port. Providers (LLM vision backends, simulators)
// implement it; the search engine and homing controller depend on it.
type Vision interface {
	Camera

	// Detect analyzes a frame for the target object. A nil or empty slice
	// means nothing qualifying was seen; providers degrade to that rather
	// than failing a search on transient backend trouble.
	Detect(ctx context.Context, img *Image, target string) ([]Detection, error)
}

// Drivetrain is the movement and ranging port. Implementations clamp
// steering to their hardware limits and may add compensating forward
// creep for over-limit turn requests.
type Drivetrain interface {
	// MoveForward drives forward at the given speed for the given duration.
	MoveForward(ctx context.Context, speed int, d time.Duration) error

	// MoveBackward drives backward at the given speed for the given duration.
	MoveBackward(ctx context.Context, speed int, d time.Duration) error

	// Turn rotates by the given angle in degrees, negative for left.
	Turn(ctx context.Context, angleDeg float64) error

	// Stop halts all motion immediately.
	Stop(ctx context.Context) error

	// Distance reads the forward range sensor in centimeters.
	Distance(ctx context.Context) (float64, error)
}
