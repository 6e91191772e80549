package ecs

import (
	"sort"

	"github.com/milk9111/gridstep/ecs/component"
)

// Query returns live entities carrying every listed component, in id order
// so callers iterate deterministically.
func (w *World) Query(ids ...component.ComponentID) []Entity {
	if w == nil || len(ids) == 0 {
		return nil
	}
	// iterate smallest set
	smallest := w.stores[ids[0]]
	for _, id := range ids[1:] {
		if s := w.stores[id]; s.Len() < smallest.Len() {
			smallest = s
		}
	}
	out := make([]Entity, 0, smallest.Len())
	for _, e := range smallest.Entities() {
		if !w.IsAlive(e) {
			continue
		}
		all := true
		for _, id := range ids {
			if !w.stores[id].Has(e) {
				all = false
				break
			}
		}
		if all {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id() < out[j].id() })
	return out
}

// First returns the lowest-id entity carrying the component.
func (w *World) First(id component.ComponentID) (Entity, bool) {
	found := w.Query(id)
	if len(found) == 0 {
		return NoEntity, false
	}
	return found[0], true
}

// FindByName returns the lowest-id entity with the given Name component.
func (w *World) FindByName(name string) (Entity, bool) {
	for _, e := range w.Query(component.NameComponent.ID()) {
		if n, ok := Get(w, e, component.NameComponent); ok && string(n) == name {
			return e, true
		}
	}
	return NoEntity, false
}
