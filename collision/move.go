package collision

import (
	"github.com/milk9111/gridstep/common"
	"go.uber.org/zap"
)

// MoveDynamic resolves v for a dynamic body, X first then Y. It reports
// whether both axes moved the full whole-unit amount.
func MoveDynamic(b *Body, v common.Vec, cb CollisionFunc, data any) bool {
	okX := MoveX(b, v.X, cb, data)
	okY := MoveY(b, v.Y, cb, data)
	return okX && okY
}

// MoveX adds amount to the body's horizontal remainder and steps the whole
// part one unit at a time, stopping at the first tile or static body in the
// way. cb fires once on blockage; the rest of the queued units are dropped.
func MoveX(b *Body, amount common.Fixed, cb CollisionFunc, data any) bool {
	return moveDynamic(b, true, amount, cb, data)
}

// MoveY is MoveX for the vertical axis.
func MoveY(b *Body, amount common.Fixed, cb CollisionFunc, data any) bool {
	return moveDynamic(b, false, amount, cb, data)
}

func moveDynamic(b *Body, horizontal bool, amount common.Fixed, cb CollisionFunc, data any) bool {
	if b == nil {
		return false
	}
	if !b.Dynamic {
		b.logger().Error("collision: dynamic move requested for a static body", zap.Stringer("entity", b.entity))
		return false
	}
	rem := b.Remainder.Axis(horizontal) + amount
	move := rem.Trunc()
	b.Remainder = b.Remainder.WithAxis(horizontal, rem-move)
	if move == 0 {
		return true
	}
	return step(b, horizontal, move, cb, data)
}

// step moves b by a whole number of units, one unit at a time. It skips the
// remainder so pushes and rides carry exactly what they are given.
func step(b *Body, horizontal bool, move common.Fixed, cb CollisionFunc, data any) bool {
	defer b.sync()
	dir := directionOf(horizontal, move)
	unit := common.Sign(move)
	for move != 0 {
		next := b.Position.WithAxis(horizontal, b.Position.Axis(horizontal)+unit)
		if tileBlocks(b, next, dir) {
			if cb != nil {
				cb(b, nil, dir, data)
			}
			return false
		}
		if blocker := staticBlocker(b, next, dir); blocker != nil {
			if cb != nil {
				cb(b, blocker, dir, data)
			}
			return false
		}
		b.Position = next
		move -= unit
	}
	return true
}

// tileBlocks checks only the tiles the leading edge newly enters when the
// body moves to next. A tile blocks when its layer interacts with the body's
// and its table has the side facing the movement.
func tileBlocks(b *Body, next common.Vec, dir Direction) bool {
	w, ok := b.space.(*World)
	if !ok || w.tiles == nil {
		return false
	}
	tw, th := w.tileSize.X, w.tileSize.Y
	if tw <= 0 || th <= 0 {
		return false
	}

	var from, to int
	col0, col1 := common.FloorDiv(b.Left(), tw), common.FloorDiv(b.Right(), tw)
	row0, row1 := common.FloorDiv(b.Top(), th), common.FloorDiv(b.Bottom(), th)
	switch dir {
	case Right:
		from = common.FloorDiv(next.X+b.Size.X-common.One, tw)
		if from == col1 {
			return false
		}
		col0, col1 = from, from
	case Left:
		from = common.FloorDiv(next.X, tw)
		if from == col0 {
			return false
		}
		col0, col1 = from, from
	case Down:
		to = common.FloorDiv(next.Y+b.Size.Y-common.One, th)
		if to == row1 {
			return false
		}
		row0, row1 = to, to
	case Up:
		to = common.FloorDiv(next.Y, th)
		if to == row0 {
			return false
		}
		row0, row1 = to, to
	}

	matrix := w.reg.matrix
	face := dir.Opposite()
	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			t, ok := w.tiles.TileAt(col, row)
			if !ok {
				continue
			}
			if matrix.Interacts(b.Layer, t.Layer) && t.Directions.Has(face) {
				return true
			}
		}
	}
	return false
}

// staticBlocker returns the first static body, in registration order, that
// the step to next would newly overlap with both tables agreeing on contact.
// Bodies already overlapping b never block it, which lets a pusher's victim
// leave and lets bodies escape something they are stuck in.
func staticBlocker(b *Body, next common.Vec, dir Direction) *Body {
	w, ok := b.space.(*World)
	if !ok || !b.Directions.Has(dir) {
		return nil
	}
	face := dir.Opposite()
	for _, s := range w.reg.bodies {
		if s == b || s.Dynamic || !w.reg.matrix.Interacts(b.Layer, s.Layer) || !s.Directions.Has(face) {
			continue
		}
		if Overlaps(b, s) || !OverlapsAt(b, next, s) {
			continue
		}
		return s
	}
	return nil
}
