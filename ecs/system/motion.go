package system

import (
	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/common"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/component"
	"go.uber.org/zap"
)

// MotionSystem drives every body carrying a Motion component. Static bodies
// go first so pushes and rides are settled before dynamic bodies move on
// their own; within each group bodies move in entity id order.
type MotionSystem struct {
	log     *zap.Logger
	scripts *scriptCache
	running map[ecs.Entity]*motionScript
	blocked map[ecs.Entity]collision.DirectionSet
}

func NewMotionSystem(load ScriptLoader, log *zap.Logger) *MotionSystem {
	if log == nil {
		log = zap.L()
	}
	return &MotionSystem{
		log:     log,
		scripts: newScriptCache(load),
		running: map[ecs.Entity]*motionScript{},
		blocked: map[ecs.Entity]collision.DirectionSet{},
	}
}

// Reload forgets every compiled script. Running bodies pick up the new source
// on their next tick with fresh state.
func (s *MotionSystem) Reload() {
	s.scripts.invalidate()
	s.running = map[ecs.Entity]*motionScript{}
}

// Blocked returns the sides e was stopped on during its last move.
func (s *MotionSystem) Blocked(e ecs.Entity) collision.DirectionSet {
	return s.blocked[e]
}

func (s *MotionSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	movers := w.Query(collision.BodyComponent.ID(), component.MotionComponent.ID())
	for _, dynamic := range []bool{false, true} {
		for _, e := range movers {
			if !w.IsAlive(e) || w.PendingDestroy(e) {
				continue
			}
			b, _ := ecs.Get(w, e, collision.BodyComponent)
			m, _ := ecs.Get(w, e, component.MotionComponent)
			if b == nil || m == nil || b.Dynamic != dynamic || b.Space() == nil {
				continue
			}
			v, ok := s.velocity(w, e, b, m)
			if !ok {
				continue
			}
			if dynamic {
				s.moveDynamic(w, e, b, v)
			} else {
				collision.MoveStatic(b, v)
			}
		}
	}
	s.forgetDead(w)
}

func (s *MotionSystem) velocity(w *ecs.World, e ecs.Entity, b *collision.Body, m *component.Motion) (common.Vec, bool) {
	if m.Script == "" {
		return m.Velocity, true
	}
	rt, ok := s.running[e]
	if !ok || rt.name != m.Script {
		var err error
		rt, err = s.scripts.instance(m.Script)
		if err != nil {
			s.log.Error("motion script load failed", zap.Stringer("entity", e), zap.String("script", m.Script), zap.Error(err))
			return common.Vec{}, false
		}
		s.running[e] = rt
	}
	v, err := rt.velocity(w.Tick(), b, s.blocked[e])
	if err != nil {
		s.log.Error("motion script failed", zap.Stringer("entity", e), zap.String("script", m.Script), zap.Error(err))
		return common.Vec{}, false
	}
	return v, true
}

func (s *MotionSystem) moveDynamic(w *ecs.World, e ecs.Entity, b *collision.Body, v common.Vec) {
	var (
		hit    collision.DirectionSet
		landed bool
		ground *collision.Body
	)
	collision.MoveDynamic(b, v, func(_, blocker *collision.Body, dir collision.Direction, _ any) {
		hit = hit.With(dir)
		if dir == collision.Down {
			landed = true
			ground = blocker
		}
		pushCollision(w, e, blocker, ecs.CollisionEventBlocked, dir.String())
	}, nil)
	s.blocked[e] = hit

	switch {
	case landed:
		// a tile landing has no blocker and clears the mount
		b.SetMount(ground)
	case v.Y < 0:
		b.SetMount(nil)
	case b.Mount() != nil && !restingOn(b, b.Mount()):
		b.SetMount(nil)
	}
}

// restingOn reports whether b sits directly on top of m.
func restingOn(b, m *collision.Body) bool {
	below := b.Position.Add(common.Vec{Y: common.One})
	return !collision.Overlaps(b, m) && collision.OverlapsAt(b, below, m)
}

func (s *MotionSystem) forgetDead(w *ecs.World) {
	for e := range s.running {
		if !w.IsAlive(e) {
			delete(s.running, e)
		}
	}
	for e := range s.blocked {
		if !w.IsAlive(e) {
			delete(s.blocked, e)
		}
	}
}
