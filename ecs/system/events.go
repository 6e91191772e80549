package system

import (
	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/ecs"
)

// CollisionEventType is the Event.Type of every collision event.
const CollisionEventType = "collision"

func pushCollision(w *ecs.World, e ecs.Entity, other *collision.Body, kind ecs.CollisionEventKind, dir string) {
	if w == nil {
		return
	}
	otherEntity := ecs.NoEntity
	if other != nil {
		otherEntity = other.Entity()
	}
	w.Events().Push(ecs.Event{Type: CollisionEventType, Data: ecs.CollisionEvent{
		Entity:    e,
		Other:     otherEntity,
		Kind:      kind,
		Direction: dir,
	}})
}

// CollisionEvents returns the collision events pushed since the last Update,
// in the order they happened.
func CollisionEvents(w *ecs.World) []ecs.CollisionEvent {
	var out []ecs.CollisionEvent
	for _, evt := range w.Events().Peek() {
		if ce, ok := evt.Data.(ecs.CollisionEvent); ok && evt.Type == CollisionEventType {
			out = append(out, ce)
		}
	}
	return out
}

// CrushEvents is a space option that reports every crush as an event and
// then applies the default policy.
func CrushEvents(w *ecs.World) collision.Option {
	return collision.WithCrushHandler(func(b, blocker *collision.Body, dir collision.Direction, data any) {
		pushCollision(w, b.Entity(), blocker, ecs.CollisionEventCrushed, dir.String())
		collision.DefaultCrush(b, blocker, dir, data)
	})
}

// OverlapEvents is an overlap callback for spaces created with the scene as
// their data. Each pair is reported once, from the first body's side.
func OverlapEvents(a, b *collision.Body, data any) {
	w, ok := data.(*ecs.World)
	if !ok {
		return
	}
	pushCollision(w, a.Entity(), b, ecs.CollisionEventOverlap, "")
}
