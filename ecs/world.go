package ecs

import (
	"fmt"
	"sort"

	"github.com/milk9111/gridstep/ecs/component"
)

// StartFunc runs once for an entity on the first tick after it was created.
type StartFunc func(w *World, e Entity)

// DetachFunc runs right before a component leaves an entity, either through
// RemoveComponent or because the entity is being destroyed.
type DetachFunc func(w *World, e Entity, value any)

// ParentFunc runs after an entity has been moved under a new parent. parent
// is NoEntity when the entity was unparented.
type ParentFunc func(w *World, child, parent Entity)

// World is the scene graph: it owns entities, their components, the parent
// hierarchy and the per-tick lifecycle. It is not safe for concurrent use;
// the frame driver is the only caller.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet

	parents  map[Entity]Entity
	children map[Entity][]Entity

	pendingStart []Entity
	started      map[Entity]bool
	destroyQueue []Entity

	startHooks  []StartFunc
	parentHooks []ParentFunc
	detachHooks map[component.ComponentID][]DetachFunc

	scheduler Scheduler
	events    EventQueue
	tick      uint64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores:      make(map[component.ComponentID]*SparseSet),
		parents:     make(map[Entity]Entity),
		children:    make(map[Entity][]Entity),
		started:     make(map[Entity]bool),
		detachHooks: make(map[component.ComponentID][]DetachFunc),
	}
}

// CreateEntity allocates a new entity. It starts on the next Update.
func (w *World) CreateEntity() Entity {
	e := w.entities.create()
	w.pendingStart = append(w.pendingStart, e)
	return e
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Started reports whether the entity's start hooks already ran.
func (w *World) Started(e Entity) bool {
	return w != nil && w.started[e]
}

// Len returns the number of live entities.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	return w.entities.count
}

// Entities returns every live entity in id order.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	w.entities.each(func(e Entity) { out = append(out, e) })
	return out
}

// DestroyEntity destroys e and its whole subtree immediately. Children go
// first, and every component is detached (running detach hooks) before the
// handle is invalidated.
func (w *World) DestroyEntity(e Entity) bool {
	if !w.IsAlive(e) {
		return false
	}
	for _, child := range append([]Entity(nil), w.children[e]...) {
		w.DestroyEntity(child)
	}
	for _, id := range w.storeIDs() {
		w.detach(e, id)
	}
	w.unlinkParent(e)
	delete(w.children, e)
	delete(w.started, e)
	return w.entities.destroy(e)
}

// QueueDestroy schedules e for destruction at the end of the current Update.
// Queueing the same entity twice is harmless.
func (w *World) QueueDestroy(e Entity) {
	if w == nil || !w.IsAlive(e) {
		return
	}
	w.destroyQueue = append(w.destroyQueue, e)
}

// PendingDestroy reports whether e is queued for destruction.
func (w *World) PendingDestroy(e Entity) bool {
	if w == nil {
		return false
	}
	for _, q := range w.destroyQueue {
		if q == e {
			return true
		}
	}
	return false
}

// AddComponent attaches or replaces a component value.
func (w *World) AddComponent(e Entity, id component.ComponentID, value any) error {
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !w.IsAlive(e) {
		return fmt.Errorf("add component %d to %s: %w", id, e, component.ErrEntityNotAlive)
	}
	store := w.stores[id]
	if store == nil {
		store = &SparseSet{}
		w.stores[id] = store
	}
	store.Set(e, value)
	return nil
}

// GetComponent returns the raw component value.
func (w *World) GetComponent(e Entity, id component.ComponentID) (any, bool) {
	if w == nil || !w.IsAlive(e) {
		return nil, false
	}
	store := w.stores[id]
	if !store.Has(e) {
		return nil, false
	}
	return store.Get(e), true
}

// HasComponent reports whether e carries the component.
func (w *World) HasComponent(e Entity, id component.ComponentID) bool {
	if w == nil || !w.IsAlive(e) {
		return false
	}
	return w.stores[id].Has(e)
}

// RemoveComponent detaches a component, running its detach hooks first.
func (w *World) RemoveComponent(e Entity, id component.ComponentID) bool {
	if !w.IsAlive(e) {
		return false
	}
	return w.detach(e, id)
}

func (w *World) detach(e Entity, id component.ComponentID) bool {
	store := w.stores[id]
	if !store.Has(e) {
		return false
	}
	value := store.Get(e)
	for _, hook := range w.detachHooks[id] {
		hook(w, e, value)
	}
	return store.Remove(e)
}

func (w *World) storeIDs() []component.ComponentID {
	ids := make([]component.ComponentID, 0, len(w.stores))
	for id := range w.stores {
		ids = append(ids, id)
	}
	// detach order must not depend on map iteration
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetParent moves child under parent. A NoEntity parent unparents the child.
func (w *World) SetParent(child, parent Entity) error {
	if !w.IsAlive(child) {
		return fmt.Errorf("set parent of %s: %w", child, component.ErrEntityNotAlive)
	}
	if parent != NoEntity {
		if !w.IsAlive(parent) {
			return fmt.Errorf("set parent %s: %w", parent, component.ErrEntityNotAlive)
		}
		for p := parent; p != NoEntity; p = w.parents[p] {
			if p == child {
				return component.ErrParentCycle
			}
		}
	}
	w.unlinkParent(child)
	if parent != NoEntity {
		w.parents[child] = parent
		w.children[parent] = append(w.children[parent], child)
	}
	for _, hook := range w.parentHooks {
		hook(w, child, parent)
	}
	return nil
}

func (w *World) unlinkParent(child Entity) {
	parent, ok := w.parents[child]
	if !ok {
		return
	}
	delete(w.parents, child)
	siblings := w.children[parent]
	for i, s := range siblings {
		if s == child {
			w.children[parent] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
}

// Parent returns e's parent, if any.
func (w *World) Parent(e Entity) (Entity, bool) {
	if w == nil {
		return NoEntity, false
	}
	p, ok := w.parents[e]
	return p, ok
}

// Children returns a copy of e's children in insertion order.
func (w *World) Children(e Entity) []Entity {
	if w == nil {
		return nil
	}
	return append([]Entity(nil), w.children[e]...)
}

// OnStart registers a hook run once per entity on its first tick.
func (w *World) OnStart(fn StartFunc) {
	if fn != nil {
		w.startHooks = append(w.startHooks, fn)
	}
}

// OnParent registers a hook run after every successful SetParent.
func (w *World) OnParent(fn ParentFunc) {
	if fn != nil {
		w.parentHooks = append(w.parentHooks, fn)
	}
}

// OnDetach registers a hook run before a component of the given kind leaves
// an entity.
func (w *World) OnDetach(id component.ComponentID, fn DetachFunc) {
	if fn != nil {
		w.detachHooks[id] = append(w.detachHooks[id], fn)
	}
}

// AddSystem appends a system to the fixed-update order in PhaseMove.
func (w *World) AddSystem(s System) {
	w.scheduler.Add(s)
}

// AddSystemIn appends a system to the given phase.
func (w *World) AddSystemIn(phase Phase, s System) {
	w.scheduler.AddIn(phase, s)
}

// Systems returns the registered systems in run order.
func (w *World) Systems() []System {
	return w.scheduler.Systems()
}

// Update runs one fixed tick: start hooks for new entities (parents before
// children, in creation order), every system, then queued destruction.
// Events pushed during the tick stay readable until the next Update.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.events.flush()
	w.Start()
	w.scheduler.Update(w)
	w.flushDestroyed()
	w.tick++
}

// Start runs start hooks for entities that have not started yet. Update calls
// it; callers that need bodies registered before the first tick may call it
// directly.
func (w *World) Start() {
	for len(w.pendingStart) > 0 {
		pending := w.pendingStart
		w.pendingStart = nil
		sort.SliceStable(pending, func(i, j int) bool {
			return w.depth(pending[i]) < w.depth(pending[j])
		})
		for _, e := range pending {
			if !w.IsAlive(e) || w.started[e] {
				continue
			}
			w.started[e] = true
			for _, hook := range w.startHooks {
				hook(w, e)
			}
		}
	}
}

func (w *World) depth(e Entity) int {
	d := 0
	for p, ok := w.parents[e]; ok; p, ok = w.parents[p] {
		d++
	}
	return d
}

func (w *World) flushDestroyed() {
	queue := w.destroyQueue
	w.destroyQueue = nil
	for _, e := range queue {
		w.DestroyEntity(e)
	}
}

// Tick returns the number of completed updates.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}
