package collision

import (
	"slices"

	"github.com/milk9111/gridstep/common"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/component"
	"go.uber.org/zap"
)

// CollisionFunc is told that body b was stopped while moving in dir.
// blocker is nil when a tile did the stopping.
type CollisionFunc func(b, blocker *Body, dir Direction, data any)

// OverlapFunc receives one overlapping pair from the broad phase.
type OverlapFunc func(a, b *Body, data any)

// Space is implemented by every registry variant an entity can join.
type Space interface {
	Registry() *Registry
	Entity() ecs.Entity
	Add(e ecs.Entity) bool
}

// SpaceComponent marks the entity that owns a space.
var SpaceComponent = component.NewComponent[Space]()

// Registry holds the membership shared by every space kind: the
// authoritative body list, the sweep list (same members, ordered by left
// edge), the layer matrix and the overlap callback. It references bodies but
// never owns them. Not safe for concurrent use.
type Registry struct {
	bodies []*Body
	sweep  []*Body

	matrix    LayerMatrix
	onOverlap OverlapFunc
	data      any
	crush     CollisionFunc

	owner  Space
	entity ecs.Entity
	scene  *ecs.World
	log    *zap.Logger
}

// Option configures a space at construction.
type Option func(*Registry)

// WithLogger routes misuse reports to log instead of the global zap logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// WithCrushHandler replaces the default crush policy (queue destruction of
// the crushed entity) for every body in the space without its own OnCrush.
func WithCrushHandler(fn CollisionFunc) Option {
	return func(r *Registry) { r.crush = fn }
}

func newRegistry(owner Space, data any, onOverlap OverlapFunc, matrix LayerMatrix, opts []Option) *Registry {
	r := &Registry{owner: owner, data: data, onOverlap: onOverlap, matrix: matrix}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Registry) logger() *zap.Logger {
	if r.log != nil {
		return r.log
	}
	return zap.L()
}

func (r *Registry) Matrix() LayerMatrix { return r.matrix }
func (r *Registry) Len() int            { return len(r.bodies) }
func (r *Registry) Scene() *ecs.World   { return r.scene }

// Bodies returns a copy of the authoritative list in registration order.
func (r *Registry) Bodies() []*Body {
	return append([]*Body(nil), r.bodies...)
}

func (r *Registry) Contains(b *Body) bool {
	return slices.Contains(r.bodies, b)
}

// Add parents e under the space's entity if it has no parent, then registers
// its body, if it carries one. It reports whether e's body is a member
// afterwards.
func (r *Registry) Add(e ecs.Entity) bool {
	if r.scene == nil {
		r.logger().Error("collision: add to a space that is not attached to an entity", zap.Stringer("entity", e))
		return false
	}
	if !r.scene.IsAlive(e) {
		r.logger().Error("collision: add of a dead entity", zap.Stringer("entity", e))
		return false
	}
	if _, ok := r.scene.Parent(e); !ok && e != r.entity {
		if err := r.scene.SetParent(e, r.entity); err != nil {
			r.logger().Error("collision: parent under space", zap.Stringer("entity", e), zap.Error(err))
		}
	}
	b, ok := ecs.Get(r.scene, e, BodyComponent)
	if !ok || b == nil {
		return false
	}
	if b.space != nil {
		if b.registry() == r {
			return true
		}
		r.logger().Error("collision: body already registered in another space",
			zap.Stringer("entity", e), zap.Stringer("space", b.space.Entity()))
		return false
	}
	b.scene = r.scene
	b.entity = e
	b.space = r.owner
	r.bodies = append(r.bodies, b)
	r.sweep = append(r.sweep, b)
	return true
}

func (r *Registry) remove(b *Body) {
	r.bodies = slices.DeleteFunc(r.bodies, func(o *Body) bool { return o == b })
	r.sweep = slices.DeleteFunc(r.sweep, func(o *Body) bool { return o == b })
	b.space = nil
}

// Remove takes e's body out of its space without destroying e. An entity
// with no body, or a body in no space, is reported and ignored.
func Remove(scene *ecs.World, e ecs.Entity) bool {
	b, ok := ecs.Get(scene, e, BodyComponent)
	if !ok || b == nil {
		sceneLogger(scene, e).Error("collision: remove of an entity without a body", zap.Stringer("entity", e))
		return false
	}
	r := b.registry()
	if r == nil {
		b.logger().Error("collision: remove of a body that is in no space", zap.Stringer("entity", e))
		return false
	}
	r.remove(b)
	return true
}

// sceneLogger is the logger of the nearest space at or above e, so misuse on
// a bodiless entity still reaches the logger given to WithLogger.
func sceneLogger(scene *ecs.World, e ecs.Entity) *zap.Logger {
	if scene != nil {
		if s, ok := ecs.Get(scene, e, SpaceComponent); ok && s != nil {
			return s.Registry().logger()
		}
		if _, s, ok := ecs.FindAncestor(scene, e, SpaceComponent); ok && s != nil {
			return s.Registry().logger()
		}
	}
	return zap.L()
}

// AttachSpace makes e the owning entity of s.
func AttachSpace(scene *ecs.World, e ecs.Entity, s Space) error {
	if s == nil {
		return component.ErrNilComponent
	}
	if err := ecs.Add(scene, e, SpaceComponent, s); err != nil {
		return err
	}
	r := s.Registry()
	r.scene = scene
	r.entity = e
	return nil
}

// crushFunc picks the crush policy for a pushed body.
func (r *Registry) crushFunc(d *Body) CollisionFunc {
	if d.OnCrush != nil {
		return d.OnCrush
	}
	if r.crush != nil {
		return r.crush
	}
	return DefaultCrush
}

// DefaultCrush queues the crushed body's entity for destruction at the end of
// the tick.
func DefaultCrush(b, _ *Body, _ Direction, _ any) {
	if b == nil || b.scene == nil {
		return
	}
	b.scene.QueueDestroy(b.entity)
}

// World is the solid space: bodies resolve against a bound tile grid and
// against static bodies.
type World struct {
	reg *Registry

	tiles    TileGrid
	tileSize common.Vec
}

// NewWorld creates a solid space. data is handed back to onOverlap.
func NewWorld(data any, onOverlap OverlapFunc, matrix LayerMatrix, opts ...Option) *World {
	w := &World{}
	w.reg = newRegistry(w, data, onOverlap, matrix, opts)
	return w
}

func (w *World) Registry() *Registry   { return w.reg }
func (w *World) Entity() ecs.Entity    { return w.reg.entity }
func (w *World) Add(e ecs.Entity) bool { return w.reg.Add(e) }
func (w *World) Sweep() int            { return w.reg.Sweep() }
func (w *World) Tiles() TileGrid       { return w.tiles }
func (w *World) TileSize() common.Vec  { return w.tileSize }

// Start binds the tile grid when the world's own entity is the tile-grid
// entity. The tile size is read once here.
func (w *World) Start() {
	r := w.reg
	if r.scene == nil {
		return
	}
	g, ok := ecs.Get(r.scene, r.entity, TileGridComponent)
	if !ok || g == nil {
		return
	}
	w.tiles = g
	w.tileSize = g.TileSize()
}

// TriggerWorld only reports overlaps; nothing in it blocks anything.
type TriggerWorld struct {
	reg *Registry
}

func NewTriggerWorld(data any, onOverlap OverlapFunc, matrix LayerMatrix, opts ...Option) *TriggerWorld {
	t := &TriggerWorld{}
	t.reg = newRegistry(t, data, onOverlap, matrix, opts)
	return t
}

func (t *TriggerWorld) Registry() *Registry   { return t.reg }
func (t *TriggerWorld) Entity() ecs.Entity    { return t.reg.entity }
func (t *TriggerWorld) Add(e ecs.Entity) bool { return t.reg.Add(e) }
func (t *TriggerWorld) Sweep() int            { return t.reg.Sweep() }
