package collision

import (
	"weak"

	"github.com/milk9111/gridstep/common"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/component"
	"go.uber.org/zap"
)

// Body is the axis-aligned box an entity collides with.
//
// Position is the top-left corner. It is distinct from the entity's render
// anchor; ObjectOffset bridges the two (entity position = Position +
// ObjectOffset). Remainder carries the sub-unit part of requested movement
// between ticks and stays in (-1, 1) on each axis after a move.
//
// Dynamic bodies are actively simulated and get stopped, pushed or crushed.
// Static bodies are driven by the environment and always move as asked.
type Body struct {
	Position     common.Vec
	Size         common.Vec
	Remainder    common.Vec
	ObjectOffset common.Vec

	Layer      Layer
	Directions DirectionSet
	Dynamic    bool

	// OnCrush overrides the space's crush handler for this body.
	OnCrush CollisionFunc

	mount  weak.Pointer[Body]
	entity ecs.Entity
	scene  *ecs.World
	space  Space
}

// NewBody returns a static body on layer 0 that blocks on every side. A
// zero Size adopts the entity's render rectangle when the body starts.
func NewBody() *Body {
	return &Body{Directions: AllDirections}
}

func (b *Body) Left() common.Fixed   { return b.Position.X }
func (b *Body) Right() common.Fixed  { return b.Position.X + b.Size.X - common.One }
func (b *Body) Top() common.Fixed    { return b.Position.Y }
func (b *Body) Bottom() common.Fixed { return b.Position.Y + b.Size.Y - common.One }

// Entity returns the owning entity, or NoEntity before attachment.
func (b *Body) Entity() ecs.Entity { return b.entity }

// Space returns the registry the body is a member of, if any.
func (b *Body) Space() Space { return b.space }

// Mount returns the body this one rides on, if it is still alive.
func (b *Body) Mount() *Body {
	return b.mount.Value()
}

// SetMount marks b as riding m. The reference is only compared against, it
// never keeps m alive. Pass nil to dismount.
func (b *Body) SetMount(m *Body) {
	if m == nil || m == b {
		b.mount = weak.Pointer[Body]{}
		return
	}
	b.mount = weak.Make(m)
}

// Overlaps reports whether the two boxes share at least one unit cell.
func Overlaps(a, b *Body) bool {
	return OverlapsAt(a, a.Position, b)
}

// OverlapsAt runs the Overlaps test with a placed at pos instead of its
// current position.
func OverlapsAt(a *Body, pos common.Vec, b *Body) bool {
	if a == nil || b == nil {
		return false
	}
	right := pos.X + a.Size.X - common.One
	bottom := pos.Y + a.Size.Y - common.One
	return !(right < b.Left() || b.Right() < pos.X || bottom < b.Top() || b.Bottom() < pos.Y)
}

// Start settles the body against its entity's transform. A body with no size
// adopts the render rectangle; a sized body keeps its own position and
// records the offset to the entity's anchor.
func (b *Body) Start(t *component.Transform) {
	if t != nil {
		topLeft, size := t.Rect()
		if b.Size.X <= 0 || b.Size.Y <= 0 {
			b.Position = topLeft
			b.Size = size
		}
		b.ObjectOffset = t.Position.Sub(b.Position)
	}
	if b.Size.X <= 0 || b.Size.Y <= 0 {
		b.logger().Error("collision: body started without a size, clamping to one unit",
			zap.Stringer("entity", b.entity))
		b.Size.X = common.Max(b.Size.X, common.One)
		b.Size.Y = common.Max(b.Size.Y, common.One)
	}
}

// sync writes the resolved position back to the entity's transform.
func (b *Body) sync() {
	if b.scene == nil {
		return
	}
	if t, ok := ecs.Get(b.scene, b.entity, component.TransformComponent); ok && t != nil {
		t.Position = b.Position.Add(b.ObjectOffset)
	}
}

func (b *Body) registry() *Registry {
	if b.space == nil {
		return nil
	}
	return b.space.Registry()
}

func (b *Body) logger() *zap.Logger {
	if r := b.registry(); r != nil {
		return r.logger()
	}
	return zap.L()
}

// BodyComponent stores an entity's body. The registry only ever holds
// references to bodies; the entity owns them.
var BodyComponent = component.NewComponent[*Body]()

// AttachBody gives e a body and records the back-reference.
func AttachBody(scene *ecs.World, e ecs.Entity, b *Body) error {
	if b == nil {
		return component.ErrNilComponent
	}
	if err := ecs.Add(scene, e, BodyComponent, b); err != nil {
		return err
	}
	b.scene = scene
	b.entity = e
	return nil
}
