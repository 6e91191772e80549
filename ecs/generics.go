package ecs

import "github.com/milk9111/gridstep/ecs/component"

func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value T) error {
	return w.AddComponent(e, handle.ID(), value)
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.RemoveComponent(e, handle.ID())
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.HasComponent(e, handle.ID())
}

func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (T, bool) {
	var zero T
	value, ok := w.GetComponent(e, handle.ID())
	if !ok {
		return zero, false
	}
	cast, ok := value.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}

// ForEach visits every live entity carrying the component, in storage order.
// The visit list is copied first so fn may add or remove components.
func ForEach[T any](w *World, handle component.ComponentHandle[T], fn func(Entity, T)) {
	if w == nil || fn == nil {
		return
	}
	store := w.stores[handle.ID()]
	for _, e := range append([]Entity(nil), store.Entities()...) {
		if v, ok := Get(w, e, handle); ok {
			fn(e, v)
		}
	}
}

// FindAncestor walks up from e (exclusive) and returns the first ancestor
// carrying the component.
func FindAncestor[T any](w *World, e Entity, handle component.ComponentHandle[T]) (Entity, T, bool) {
	var zero T
	for p, ok := w.Parent(e); ok; p, ok = w.Parent(p) {
		if v, found := Get(w, p, handle); found {
			return p, v, true
		}
	}
	return NoEntity, zero, false
}
