package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/roverkit/seeker/core"
)

// Movement speeds per strategy, matching the careful-slow to cover-ground
// progression of the ladder.
const (
	roomSpeed    = 40
	exploreSpeed = 35
)

// searchCurrentLocation scans thoroughly from where the robot stands.
func (e *Engine) searchCurrentLocation(ctx context.Context, sess *core.SearchSession, stage Stage, alloc time.Duration) (core.Detection, string, bool) {
	sess.RecordArea("current_position")
	if det, ok := e.detectionPass(ctx, sess, stage.Threshold, alloc); ok {
		return det, "current location", true
	}
	return core.Detection{}, "", false
}

// searchNearbySweep rotates through eight 45 degree steps, scanning at each
// heading.
func (e *Engine) searchNearbySweep(ctx context.Context, sess *core.SearchSession, stage Stage, deadline time.Time) (core.Detection, string, bool) {
	for heading := 0; heading < 360; heading += 45 {
		if e.stopped(ctx, sess) || !e.cfg.Now().Before(deadline) {
			break
		}
		e.turn(ctx, sess, 45)
		sess.RecordArea(fmt.Sprintf("direction_%d", heading))

		if det, ok := e.detectionPass(ctx, sess, stage.Threshold, stage.PassBudget); ok {
			return det, fmt.Sprintf("direction %d degrees", heading), true
		}
	}
	return core.Detection{}, "", false
}

// roomPositions are the in-room stops: center, four corners, four sides.
var roomPositions = []struct {
	name string
	x, y float64
}{
	{"center", 0, 0},
	{"corner_1", 1, 1},
	{"corner_2", -1, 1},
	{"corner_3", -1, -1},
	{"corner_4", 1, -1},
	{"side_1", 0, 1},
	{"side_2", 1, 0},
	{"side_3", 0, -1},
	{"side_4", -1, 0},
}

// searchRoomByRoom drives to nine positions within the room and scans from
// each. Positions whose integer-rounded coordinates were already scanned
// are logged but not re-scanned.
func (e *Engine) searchRoomByRoom(ctx context.Context, sess *core.SearchSession, stage Stage, deadline time.Time) (core.Detection, string, bool) {
	for _, pos := range roomPositions {
		if e.stopped(ctx, sess) || !e.cfg.Now().Before(deadline) {
			break
		}
		if pos.x != 0 || pos.y != 0 {
			if pos.x != 0 {
				e.forward(ctx, roomSpeed, abs(pos.x))
			}
			if pos.y != 0 {
				turn := 90.0
				if pos.y < 0 {
					turn = -90
				}
				if err := e.drive.Turn(ctx, turn); err != nil {
					e.logger.Warn("Turn failed", "angle", turn, "error", err)
				}
				e.forward(ctx, roomSpeed, abs(pos.y))
			}
		}
		sess.MoveTo(pos.x, pos.y)
		sess.RecordArea(pos.name)
		if !sess.MarkVisited() {
			e.logger.Debug("Skipping already scanned position", "position", pos.name)
			continue
		}

		if det, ok := e.detectionPass(ctx, sess, stage.Threshold, stage.PassBudget); ok {
			return det, "room position: " + pos.name, true
		}
	}
	return core.Detection{}, "", false
}

// searchSystematicExploration pushes out of the room along a fixed pattern,
// scanning after each leg. Legs landing on an already scanned cell keep
// the movement but skip the scan.
func (e *Engine) searchSystematicExploration(ctx context.Context, sess *core.SearchSession, stage Stage, deadline time.Time) (core.Detection, string, bool) {
	legs := []struct {
		name string
		move func()
	}{
		{"forward_explore", func() {
			e.forward(ctx, exploreSpeed, 2)
			sess.Advance(2)
		}},
		{"left_explore", func() {
			e.turn(ctx, sess, -90)
			e.forward(ctx, exploreSpeed, 1)
			sess.Advance(1)
		}},
		{"right_explore", func() {
			e.turn(ctx, sess, 180)
			e.forward(ctx, exploreSpeed, 1)
			sess.Advance(1)
		}},
		{"back_explore", func() {
			e.backward(ctx, exploreSpeed, 1)
			sess.Advance(-1)
		}},
	}

	for _, leg := range legs {
		if e.stopped(ctx, sess) || !e.cfg.Now().Before(deadline) {
			break
		}
		leg.move()
		sess.RecordArea(leg.name)
		if !sess.MarkVisited() {
			e.logger.Debug("Skipping already scanned position", "position", leg.name)
			continue
		}

		if det, ok := e.detectionPass(ctx, sess, stage.Threshold, stage.PassBudget); ok {
			return det, "exploration area: " + leg.name, true
		}
	}
	return core.Detection{}, "", false
}

// searchExhaustive is the last stand: one long scan at a very low
// confidence threshold.
func (e *Engine) searchExhaustive(ctx context.Context, sess *core.SearchSession, stage Stage, alloc time.Duration) (core.Detection, string, bool) {
	sess.RecordArea("exhaustive_scan")
	if det, ok := e.detectionPass(ctx, sess, stage.Threshold, alloc); ok {
		return det, "exhaustive scan", true
	}
	return core.Detection{}, "", false
}

func (e *Engine) turn(ctx context.Context, sess *core.SearchSession, deg float64) {
	if err := e.drive.Turn(ctx, deg); err != nil {
		e.logger.Warn("Turn failed", "angle", deg, "error", err)
	}
	sess.TurnBy(deg)
}

func (e *Engine) forward(ctx context.Context, speed int, units float64) {
	d := time.Duration(units * float64(e.cfg.MoveUnit))
	if err := e.drive.MoveForward(ctx, speed, d); err != nil {
		e.logger.Warn("Forward move failed", "units", units, "error", err)
	}
}

func (e *Engine) backward(ctx context.Context, speed int, units float64) {
	d := time.Duration(units * float64(e.cfg.MoveUnit))
	if err := e.drive.MoveBackward(ctx, speed, d); err != nil {
		e.logger.Warn("Backward move failed", "units", units, "error", err)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
