package system

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/common"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/component"
	"github.com/milk9111/gridstep/tilemap"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testScene struct {
	w      *ecs.World
	solid  ecs.Entity
	world  *collision.World
	motion *MotionSystem
	logs   *observer.ObservedLogs
}

func newTestScene(t *testing.T, rows []string, scripts map[string]string) *testScene {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	w := ecs.NewWorld()
	InstallBodyHooks(w, log)
	load := func(name string) ([]byte, error) {
		src, ok := scripts[name]
		if !ok {
			return nil, fmt.Errorf("no script %s", name)
		}
		return []byte(src), nil
	}
	motion := NewMotionSystem(load, log)
	w.AddSystem(motion)
	w.AddSystem(NewSweepSystem())
	w.AddSystem(NewTTLSystem())

	solid := w.CreateEntity()
	world := collision.NewWorld(w, OverlapEvents, collision.AllLayers(), collision.WithLogger(log), CrushEvents(w))
	if err := collision.AttachSpace(w, solid, world); err != nil {
		t.Fatalf("attach space: %v", err)
	}
	if rows != nil {
		grid, err := tilemap.Parse(rows, map[rune]collision.Tile{
			'#': {Directions: collision.AllDirections},
		}, common.VI(10, 10))
		if err != nil {
			t.Fatalf("parse grid: %v", err)
		}
		if err := ecs.Add(w, solid, collision.TileGridComponent, collision.TileGrid(grid)); err != nil {
			t.Fatalf("add grid: %v", err)
		}
	}
	return &testScene{w: w, solid: solid, world: world, motion: motion, logs: logs}
}

func (s *testScene) spawn(t *testing.T, parent ecs.Entity, name string, x, y, wd, ht int, dynamic bool, m *component.Motion) (ecs.Entity, *collision.Body) {
	t.Helper()
	e := s.w.CreateEntity()
	if err := s.w.SetParent(e, parent); err != nil {
		t.Fatalf("parent: %v", err)
	}
	if err := ecs.Add(s.w, e, component.NameComponent, component.Name(name)); err != nil {
		t.Fatalf("name: %v", err)
	}
	if err := ecs.Add(s.w, e, component.TransformComponent, &component.Transform{
		Position: common.VI(x, y), Size: common.VI(wd, ht),
	}); err != nil {
		t.Fatalf("transform: %v", err)
	}
	b := collision.NewBody()
	b.Dynamic = dynamic
	if err := collision.AttachBody(s.w, e, b); err != nil {
		t.Fatalf("body: %v", err)
	}
	if m != nil {
		if err := ecs.Add(s.w, e, component.MotionComponent, m); err != nil {
			t.Fatalf("motion: %v", err)
		}
	}
	return e, b
}

func TestBodyHooksRegisterOnStart(t *testing.T) {
	s := newTestScene(t, []string{"", "", "###"}, nil)
	_, b := s.spawn(t, s.solid, "crate", 5, 0, 10, 10, true, nil)
	if b.Space() != nil {
		t.Fatalf("body must not join before it starts")
	}
	s.w.Update()

	if b.Space() != collision.Space(s.world) {
		t.Fatalf("body did not join the ancestor world")
	}
	if b.Size != common.VI(10, 10) || b.Position != common.VI(5, 0) {
		t.Fatalf("zero-size body did not adopt its rect: %v %v", b.Position, b.Size)
	}
	if s.world.Tiles() == nil {
		t.Fatalf("world did not bind its grid at start")
	}
}

func TestBodyHooksFollowReparentAndDetach(t *testing.T) {
	s := newTestScene(t, nil, nil)
	zone := s.w.CreateEntity()
	triggers := collision.NewTriggerWorld(s.w, OverlapEvents, collision.AllLayers())
	if err := collision.AttachSpace(s.w, zone, triggers); err != nil {
		t.Fatalf("attach: %v", err)
	}
	e, b := s.spawn(t, s.solid, "crate", 0, 0, 4, 4, true, nil)
	s.w.Update()

	if err := s.w.SetParent(e, zone); err != nil {
		t.Fatalf("reparent: %v", err)
	}
	if b.Space() != collision.Space(triggers) || s.world.Registry().Contains(b) {
		t.Fatalf("body did not move to the new space")
	}

	ecs.Remove(s.w, e, collision.BodyComponent)
	if triggers.Registry().Contains(b) || b.Space() != nil {
		t.Fatalf("detached body still registered")
	}
	if !s.w.IsAlive(e) {
		t.Fatalf("detaching a body must not destroy the entity")
	}

	plain := s.w.CreateEntity()
	moved, mb := s.spawn(t, s.solid, "barrel", 20, 0, 4, 4, true, nil)
	loose, lb := s.spawn(t, s.solid, "keg", 40, 0, 4, 4, true, nil)
	s.w.Update()
	if !s.world.Registry().Contains(mb) || !s.world.Registry().Contains(lb) {
		t.Fatalf("bodies did not join the solid world")
	}

	if err := s.w.SetParent(moved, plain); err != nil {
		t.Fatalf("reparent: %v", err)
	}
	if s.world.Registry().Contains(mb) || mb.Space() != nil {
		t.Fatalf("body moved out from under its space is still registered")
	}
	if err := s.w.SetParent(loose, ecs.NoEntity); err != nil {
		t.Fatalf("unparent: %v", err)
	}
	if s.world.Registry().Contains(lb) || lb.Space() != nil {
		t.Fatalf("unparented body is still registered")
	}
	if n := s.logs.FilterMessage("body has no space above it").Len(); n != 2 {
		t.Fatalf("expected two warnings for bodies left without a space, got %d", n)
	}

	if err := s.w.SetParent(moved, s.solid); err != nil {
		t.Fatalf("reparent back: %v", err)
	}
	if !s.world.Registry().Contains(mb) || mb.Space() != collision.Space(s.world) {
		t.Fatalf("body did not rejoin the solid world")
	}
}

func TestDestroyedBodyLeavesSpace(t *testing.T) {
	s := newTestScene(t, nil, nil)
	e, b := s.spawn(t, s.solid, "crate", 0, 0, 4, 4, true, nil)
	s.w.Update()
	s.w.DestroyEntity(e)
	if s.world.Registry().Contains(b) {
		t.Fatalf("destroyed body still registered")
	}
}

func TestBodyWithoutSpaceIsReported(t *testing.T) {
	s := newTestScene(t, nil, nil)
	s.spawn(t, ecs.NoEntity, "stray", 0, 0, 4, 4, true, nil)
	s.w.Update()
	if s.logs.FilterMessage("body has no space above it").Len() != 1 {
		t.Fatalf("expected a warning for a body outside every space")
	}
}

func TestLandingMountsAndPlatformCarries(t *testing.T) {
	s := newTestScene(t, nil, nil)
	platMotion := &component.Motion{}
	platform, pb := s.spawn(t, s.solid, "platform", 0, 30, 40, 5, false, platMotion)
	actor, ab := s.spawn(t, s.solid, "actor", 5, 10, 10, 10, true, &component.Motion{Velocity: common.VI(0, 4)})

	for i := 0; i < 3; i++ {
		s.w.Update()
	}
	if ab.Position.Y != common.FromInt(20) {
		t.Fatalf("actor should rest on the platform at y=20, got %v", ab.Position.Y)
	}
	if ab.Mount() != pb {
		t.Fatalf("landing on a platform must mount it")
	}
	if !s.motion.Blocked(actor).Has(collision.Down) {
		t.Fatalf("expected down to be blocked")
	}
	events := CollisionEvents(s.w)
	if len(events) != 1 || events[0].Other != platform || events[0].Direction != "down" {
		t.Fatalf("unexpected events %+v", events)
	}

	platMotion.Velocity = common.VI(3, 0)
	s.w.Update()
	if pb.Position.X != common.FromInt(3) || ab.Position.X != common.FromInt(8) {
		t.Fatalf("platform %v, rider %v", pb.Position.X, ab.Position.X)
	}
}

func TestMountClearsWhenWalkingOff(t *testing.T) {
	s := newTestScene(t, nil, nil)
	_, pb := s.spawn(t, s.solid, "platform", 0, 20, 10, 5, false, nil)
	walk := &component.Motion{}
	_, ab := s.spawn(t, s.solid, "actor", 0, 10, 10, 10, true, walk)
	s.w.Update()
	ab.SetMount(pb)

	walk.Velocity = common.VI(20, 0)
	s.w.Update()
	if ab.Mount() != nil {
		t.Fatalf("walking off the platform must dismount")
	}
}

func TestCrushIsReportedAndDestroys(t *testing.T) {
	s := newTestScene(t, []string{"...#"}, nil)
	s.spawn(t, s.solid, "piston", 0, 0, 10, 10, false, &component.Motion{Velocity: common.VI(5, 0)})
	victim, _ := s.spawn(t, s.solid, "victim", 10, 0, 10, 10, true, nil)

	// two clean pushes, then the third pins the victim against the tile
	for i := 0; i < 3; i++ {
		s.w.Update()
	}
	var crushed bool
	for _, evt := range CollisionEvents(s.w) {
		if evt.Kind == ecs.CollisionEventCrushed && evt.Entity == victim {
			crushed = true
		}
	}
	if !crushed {
		t.Fatalf("expected a crushed event")
	}
	if s.w.IsAlive(victim) {
		t.Fatalf("crushed victim survived the tick")
	}
}

func TestScriptedMotionKeepsState(t *testing.T) {
	s := newTestScene(t, nil, map[string]string{
		"accelerate.tengo": `
if is_undefined(state.n) {
	state.n = 0
}
state.n = state.n + 1
vx = state.n
if body.blocked.right {
	vx = -1
}
`,
	})
	_, b := s.spawn(t, s.solid, "runner", 0, 0, 10, 10, true, &component.Motion{Script: "accelerate.tengo"})
	for i := 0; i < 3; i++ {
		s.w.Update()
	}
	if b.Position.X != common.FromInt(6) {
		t.Fatalf("expected 1+2+3 units, got %v", b.Position.X)
	}
}

func TestScriptErrorsAreLogged(t *testing.T) {
	s := newTestScene(t, nil, map[string]string{"broken.tengo": "vx = "})
	_, b := s.spawn(t, s.solid, "broken", 0, 0, 10, 10, true, &component.Motion{Script: "broken.tengo"})
	_, c := s.spawn(t, s.solid, "missing", 20, 0, 10, 10, true, &component.Motion{Script: "missing.tengo"})
	s.w.Update()
	if b.Position != common.VI(0, 0) || c.Position != common.VI(20, 0) {
		t.Fatalf("bodies with failing scripts must not move")
	}
	if s.logs.FilterMessage("motion script load failed").Len() != 2 {
		t.Fatalf("expected two load failures, got %v", s.logs.All())
	}
}

func TestSweepReportsTriggerOverlaps(t *testing.T) {
	s := newTestScene(t, nil, nil)
	zone := s.w.CreateEntity()
	triggers := collision.NewTriggerWorld(s.w, OverlapEvents, collision.AllLayers())
	if err := collision.AttachSpace(s.w, zone, triggers); err != nil {
		t.Fatalf("attach: %v", err)
	}
	a, _ := s.spawn(t, zone, "goal", 0, 0, 10, 10, false, nil)
	s.spawn(t, zone, "probe", 5, 5, 10, 10, true, &component.Motion{Velocity: common.VI(1, 0)})

	s.w.Update()
	events := CollisionEvents(s.w)
	if len(events) != 1 || events[0].Kind != ecs.CollisionEventOverlap || events[0].Entity != a {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestTTLQueuesDestruction(t *testing.T) {
	s := newTestScene(t, nil, nil)
	e, b := s.spawn(t, s.solid, "debris", 0, 0, 4, 4, true, nil)
	if err := ecs.Add(s.w, e, component.TTLComponent, &component.TTL{Frames: 2}); err != nil {
		t.Fatalf("ttl: %v", err)
	}
	s.w.Update()
	if !s.w.IsAlive(e) {
		t.Fatalf("destroyed one tick early")
	}
	s.w.Update()
	if s.w.IsAlive(e) || s.world.Registry().Contains(b) {
		t.Fatalf("expired entity still around")
	}
}

func TestSnapshotIsDeterministic(t *testing.T) {
	run := func() Snapshot {
		s := newTestScene(t, []string{"", "", "", "#####"}, nil)
		platMotion := &component.Motion{Velocity: common.VF(0.5, 0)}
		s.spawn(t, s.solid, "platform", 0, 20, 20, 5, false, platMotion)
		s.spawn(t, s.solid, "actor", 2, 0, 6, 6, true, &component.Motion{Velocity: common.VF(0.3, 1.7)})
		for i := 0; i < 40; i++ {
			s.w.Update()
		}
		return TakeSnapshot(s.w)
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("snapshots differ:\n%+v\n%+v", a, b)
	}
	if a.Tick != 40 || len(a.Bodies) != 2 {
		t.Fatalf("unexpected snapshot %+v", a)
	}
	if a.Bodies[1].Name != "actor" || a.Bodies[1].Mount != "platform" {
		t.Fatalf("expected the actor to ride the platform, got %+v", a.Bodies[1])
	}
}

func TestDebugMirrorTracksBodies(t *testing.T) {
	s := newTestScene(t, []string{"##", ".#"}, nil)
	e, b := s.spawn(t, s.solid, "crate", 30, 0, 10, 10, true, &component.Motion{Velocity: common.VI(2, 0)})
	s.w.Update()

	m := NewDebugMirror()
	m.Sync(s.w)
	if m.Len() != 1 {
		t.Fatalf("expected one mirrored body, got %d", m.Len())
	}
	s.w.Update()
	m.Sync(s.w)
	if got := m.bodies[b].body.Position(); got.X != 39 || got.Y != 5 {
		t.Fatalf("mirror position = %v", got)
	}
	if bb := m.bodies[b].shape.BB(); bb.L != 34 || bb.R != 44 || bb.B != 0 || bb.T != 10 {
		t.Fatalf("mirror shape bounds = %+v", bb)
	}

	s.w.DestroyEntity(e)
	m.Sync(s.w)
	if m.Len() != 0 {
		t.Fatalf("expected the destroyed body to leave the mirror")
	}
}
