package system

import (
	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/ecs"
)

// SweepSystem runs the broad phase of every space once per tick, after
// bodies have moved.
type SweepSystem struct {
	pairs int
}

func NewSweepSystem() *SweepSystem {
	return &SweepSystem{}
}

// Pairs returns how many overlapping pairs the last tick reported.
func (s *SweepSystem) Pairs() int {
	return s.pairs
}

func (s *SweepSystem) Update(w *ecs.World) {
	s.pairs = 0
	if w == nil {
		return
	}
	for _, e := range w.Query(collision.SpaceComponent.ID()) {
		space, ok := ecs.Get(w, e, collision.SpaceComponent)
		if !ok || space == nil {
			continue
		}
		s.pairs += space.Registry().Sweep()
	}
}
