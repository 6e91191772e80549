package system

import (
	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/component"
)

// BodyState is one body as it stood at the end of a tick.
type BodyState struct {
	Entity  string  `yaml:"entity"`
	Name    string  `yaml:"name,omitempty"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	W       float64 `yaml:"w"`
	H       float64 `yaml:"h"`
	RemX    float64 `yaml:"rem_x,omitempty"`
	RemY    float64 `yaml:"rem_y,omitempty"`
	Layer   int     `yaml:"layer"`
	Dynamic bool    `yaml:"dynamic"`
	Mount   string  `yaml:"mount,omitempty"`
	Space   string  `yaml:"space,omitempty"`
}

// Snapshot is a deterministic dump of every body, ordered by entity id.
type Snapshot struct {
	Tick   uint64      `yaml:"tick"`
	Bodies []BodyState `yaml:"bodies"`
}

func TakeSnapshot(w *ecs.World) Snapshot {
	snap := Snapshot{Tick: w.Tick()}
	for _, e := range w.Query(collision.BodyComponent.ID()) {
		b, ok := ecs.Get(w, e, collision.BodyComponent)
		if !ok || b == nil {
			continue
		}
		st := BodyState{
			Entity:  e.String(),
			Name:    entityName(w, e),
			X:       b.Position.X.Float(),
			Y:       b.Position.Y.Float(),
			W:       b.Size.X.Float(),
			H:       b.Size.Y.Float(),
			RemX:    b.Remainder.X.Float(),
			RemY:    b.Remainder.Y.Float(),
			Layer:   int(b.Layer),
			Dynamic: b.Dynamic,
		}
		if m := b.Mount(); m != nil {
			st.Mount = entityLabel(w, m.Entity())
		}
		if s := b.Space(); s != nil {
			st.Space = entityLabel(w, s.Entity())
		}
		snap.Bodies = append(snap.Bodies, st)
	}
	return snap
}

func entityName(w *ecs.World, e ecs.Entity) string {
	if n, ok := ecs.Get(w, e, component.NameComponent); ok {
		return string(n)
	}
	return ""
}

func entityLabel(w *ecs.World, e ecs.Entity) string {
	if n := entityName(w, e); n != "" {
		return n
	}
	return e.String()
}
