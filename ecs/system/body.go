package system

import (
	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/component"
	"go.uber.org/zap"
)

// BodyHooks keeps space membership in step with the scene graph: bodies join
// the nearest ancestor space when they start or are reparented, and leave it
// when their body component is detached or the entity is destroyed.
type BodyHooks struct {
	log *zap.Logger
}

// InstallBodyHooks registers the hooks on w.
func InstallBodyHooks(w *ecs.World, log *zap.Logger) *BodyHooks {
	if log == nil {
		log = zap.L()
	}
	h := &BodyHooks{log: log}
	w.OnStart(h.start)
	w.OnParent(h.reparent)
	w.OnDetach(collision.BodyComponent.ID(), h.detach)
	return h
}

func (h *BodyHooks) start(w *ecs.World, e ecs.Entity) {
	if s, ok := ecs.Get(w, e, collision.SpaceComponent); ok {
		if solid, ok := s.(*collision.World); ok {
			solid.Start()
		}
	}

	b, ok := ecs.Get(w, e, collision.BodyComponent)
	if !ok || b == nil {
		return
	}
	t, _ := ecs.Get(w, e, component.TransformComponent)
	b.Start(t)
	h.join(w, e, b)
}

func (h *BodyHooks) reparent(w *ecs.World, child, _ ecs.Entity) {
	h.rejoin(w, child)
}

func (h *BodyHooks) rejoin(w *ecs.World, e ecs.Entity) {
	if w.Started(e) {
		if b, ok := ecs.Get(w, e, collision.BodyComponent); ok && b != nil {
			h.join(w, e, b)
		}
	}
	for _, c := range w.Children(e) {
		h.rejoin(w, c)
	}
}

func (h *BodyHooks) join(w *ecs.World, e ecs.Entity, b *collision.Body) {
	_, space, ok := ecs.FindAncestor(w, e, collision.SpaceComponent)
	if !ok {
		if b.Space() != nil {
			collision.Remove(w, e)
		}
		h.log.Warn("body has no space above it", zap.Stringer("entity", e))
		return
	}
	if cur := b.Space(); cur != nil {
		if cur == space {
			return
		}
		collision.Remove(w, e)
	}
	space.Add(e)
}

func (h *BodyHooks) detach(w *ecs.World, e ecs.Entity, value any) {
	b, ok := value.(*collision.Body)
	if !ok || b.Space() == nil {
		return
	}
	collision.Remove(w, e)
}
