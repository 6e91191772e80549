package sim

import (
	"reflect"
	"testing"

	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/system"
	"github.com/milk9111/gridstep/prefabs"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func TestLoadEmbeddedScenes(t *testing.T) {
	for _, name := range prefabs.Scenes() {
		t.Run(name, func(t *testing.T) {
			s, err := Load(name, zap.NewNop())
			if err != nil {
				t.Fatalf("load %s: %v", name, err)
			}
			if s.Name() != name {
				t.Fatalf("expected name %s, got %s", name, s.Name())
			}
			for i := 0; i < 120; i++ {
				s.Step()
			}
			snap := s.Snapshot()
			if snap.Tick != 120 {
				t.Fatalf("expected tick 120, got %d", snap.Tick)
			}
			for _, b := range snap.Bodies {
				if b.W <= 0 || b.H <= 0 {
					t.Fatalf("body %s has non-positive size %vx%v", b.Entity, b.W, b.H)
				}
			}
		})
	}
}

func TestRunsAreDeterministic(t *testing.T) {
	run := func() []byte {
		s, err := Load("crush.yaml", zap.NewNop())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		for i := 0; i < 200; i++ {
			s.Step()
		}
		out, err := s.SnapshotYAML()
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		return out
	}
	a, b := run(), run()
	if string(a) != string(b) {
		t.Fatalf("snapshots differ:\n%s\n---\n%s", a, b)
	}

	var snap system.Snapshot
	if err := yaml.Unmarshal(a, &snap); err != nil {
		t.Fatalf("snapshot is not valid yaml: %v", err)
	}
	if snap.Tick != 200 {
		t.Fatalf("expected tick 200, got %d", snap.Tick)
	}
}

func TestCrushSceneReportsCrush(t *testing.T) {
	s, err := Load("crush.yaml", zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	crate := s.Scene.Entities["crate"]
	crushed := false
	for i := 0; i < 600 && !crushed; i++ {
		for _, evt := range s.Step() {
			if evt.Kind == ecs.CollisionEventCrushed && evt.Entity == crate {
				crushed = true
			}
		}
	}
	if !crushed {
		t.Fatalf("crate was never crushed")
	}
	s.Step()
	if s.World.IsAlive(crate) {
		t.Fatalf("crushed crate should be destroyed")
	}
}

func TestClassify(t *testing.T) {
	s := &Session{name: "crush.yaml", log: zap.NewNop()}
	tests := []struct {
		path string
		want Change
	}{
		{"prefabs/scripts/walker.tengo", ChangeScript},
		{"prefabs/crush.yaml", ChangeScene},
		{"prefabs/elevator.yaml", ChangeNone},
		{"prefabs/notes.txt", ChangeNone},
	}
	for _, tt := range tests {
		if got := s.Classify(tt.path); got != tt.want {
			t.Fatalf("Classify(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestApplyScriptKeepsSession(t *testing.T) {
	s, err := Load("elevator.yaml", zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s.Step()
	next, err := s.Apply("prefabs/scripts/elevator.tengo")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if next != s {
		t.Fatalf("a script change should keep the session")
	}

	next, err = s.Apply("prefabs/elevator.yaml")
	if err != nil {
		t.Fatalf("apply scene: %v", err)
	}
	if next == s || next.World.Tick() != 0 {
		t.Fatalf("a scene change should return a fresh session")
	}
	if !reflect.DeepEqual(keys(next.Scene.Entities), keys(s.Scene.Entities)) {
		t.Fatalf("reloaded scene has different entities")
	}
}

func keys(m map[string]ecs.Entity) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
