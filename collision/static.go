package collision

import (
	"github.com/milk9111/gridstep/common"
	"go.uber.org/zap"
)

// MoveStatic moves a static body by v, X first then Y. The static body is
// never stopped. After each axis, every interacting dynamic body in the same
// space is either pushed clear (crushed if it cannot get clear) or, when it
// is mounted on this body, carried by the same amount.
//
// Pushes are found by overlap after the whole-unit move, not by sweeping the
// span the static body crossed. A static body that moves further in one call
// than its own extent plus a dynamic body's extent passes through that body
// without pushing it. Keep per-tick static speeds below the smallest body
// size on their layers.
func MoveStatic(b *Body, v common.Vec) {
	if b == nil {
		return
	}
	if b.Dynamic {
		b.logger().Error("collision: static move requested for a dynamic body", zap.Stringer("entity", b.entity))
		return
	}
	moveStatic(b, true, v.X)
	moveStatic(b, false, v.Y)
}

func moveStatic(b *Body, horizontal bool, amount common.Fixed) {
	rem := b.Remainder.Axis(horizontal) + amount
	move := rem.Trunc()
	b.Remainder = b.Remainder.WithAxis(horizontal, rem-move)
	if move == 0 {
		return
	}

	old := b.Position
	b.Position = b.Position.WithAxis(horizontal, old.Axis(horizontal)+move)
	b.sync()

	w, ok := b.space.(*World)
	if !ok {
		return
	}
	r := w.reg
	dir := directionOf(horizontal, move)
	for _, d := range r.Bodies() {
		if d == b || !d.Dynamic || d.space == nil || !r.matrix.Interacts(b.Layer, d.Layer) {
			continue
		}
		if Overlaps(b, d) && aheadOf(b, old, d, dir) && b.Directions.Has(dir) && d.Directions.Has(dir.Opposite()) {
			step(d, horizontal, pushGap(b, d, dir), r.crushFunc(d), b)
			continue
		}
		if d.Mount() == b {
			step(d, horizontal, move, nil, nil)
		}
	}
}

// aheadOf reports whether d lay wholly beyond b's leading edge before b
// moved from old.
func aheadOf(b *Body, old common.Vec, d *Body, dir Direction) bool {
	switch dir {
	case Right:
		return d.Left() > old.X+b.Size.X-common.One
	case Left:
		return d.Right() < old.X
	case Down:
		return d.Top() > old.Y+b.Size.Y-common.One
	default:
		return d.Bottom() < old.Y
	}
}

// pushGap is the signed whole-unit distance that moves d just clear of b.
func pushGap(b, d *Body, dir Direction) common.Fixed {
	switch dir {
	case Right:
		return (b.Right() - d.Left() + common.One).Trunc()
	case Left:
		return -(d.Right() - b.Left() + common.One).Trunc()
	case Down:
		return (b.Bottom() - d.Top() + common.One).Trunc()
	default:
		return -(d.Bottom() - b.Top() + common.One).Trunc()
	}
}
