package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies robot failures into a closed taxonomy so callers can
// branch on the category without string matching.
type ErrorKind int

const (
	// ErrorKindUnknown is the zero value for unclassified errors.
	ErrorKindUnknown ErrorKind = iota
	// ErrorKindSensorRead is a distance or camera sensor failure.
	ErrorKindSensorRead
	// ErrorKindDetectionParse means a vision response could not be parsed.
	ErrorKindDetectionParse
	// ErrorKindObstacleDetected means the guard had to intervene.
	ErrorKindObstacleDetected
	// ErrorKindObjectLost means homing could not re-acquire the target.
	ErrorKindObjectLost
	// ErrorKindSearchTimeout means a search exceeded its time budget.
	ErrorKindSearchTimeout
	// ErrorKindHardwareUnavailable means a hardware port could not be used.
	ErrorKindHardwareUnavailable
)

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindSensorRead:
		return "sensor_read"
	case ErrorKindDetectionParse:
		return "detection_parse"
	case ErrorKindObstacleDetected:
		return "obstacle_detected"
	case ErrorKindObjectLost:
		return "object_lost"
	case ErrorKindSearchTimeout:
		return "search_timeout"
	case ErrorKindHardwareUnavailable:
		return "hardware_unavailable"
	default:
		return "unknown"
	}
}

// RobotError pairs an ErrorKind with the operation that failed and the
// underlying cause.
type RobotError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewRobotError wraps err with a kind and operation name.
func NewRobotError(kind ErrorKind, op string, err error) *RobotError {
	return &RobotError{Kind: kind, Op: op, Err: err}
}

// Error implements the error interface.
func (e *RobotError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RobotError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from an error chain.
func KindOf(err error) (ErrorKind, bool) {
	var re *RobotError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return ErrorKindUnknown, false
}
