package ecs

// System updates a world each fixed tick.
type System interface {
	Update(w *World)
}

// Phase orders systems within a tick. Systems in the same phase run in the
// order they were added.
type Phase int

const (
	PhaseMove    Phase = iota // bodies move and resolve
	PhaseDetect               // broad phase over the settled positions
	PhaseCleanup              // lifetimes and other end-of-tick bookkeeping
)

type scheduled struct {
	phase  Phase
	system System
}

type Scheduler struct {
	entries []scheduled
}

// Add puts system in PhaseMove.
func (s *Scheduler) Add(system System) {
	s.AddIn(PhaseMove, system)
}

func (s *Scheduler) AddIn(phase Phase, system System) {
	if system == nil {
		return
	}
	at := len(s.entries)
	for at > 0 && s.entries[at-1].phase > phase {
		at--
	}
	s.entries = append(s.entries, scheduled{})
	copy(s.entries[at+1:], s.entries[at:])
	s.entries[at] = scheduled{phase: phase, system: system}
}

func (s *Scheduler) Update(w *World) {
	for _, entry := range s.entries {
		entry.system.Update(w)
	}
}

// Systems returns the systems in run order.
func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.entries))
	for _, entry := range s.entries {
		systems = append(systems, entry.system)
	}
	return systems
}
