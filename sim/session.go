package sim

import (
	"fmt"
	"path/filepath"

	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/system"
	"github.com/milk9111/gridstep/prefabs"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Session is one loaded scene together with the systems that step it.
type Session struct {
	World  *ecs.World
	Scene  *prefabs.Scene
	Motion *system.MotionSystem
	Sweep  *system.SweepSystem

	name string
	log  *zap.Logger
}

// Load reads a scene through prefabs.Load and builds it.
func Load(name string, log *zap.Logger) (*Session, error) {
	spec, err := prefabs.LoadScene(name)
	if err != nil {
		return nil, err
	}
	return New(name, spec, prefabs.LoadScript, log)
}

// New builds spec into a fresh ecs world. Bodies are registered with their
// spaces before New returns, so the first Step already moves them.
func New(name string, spec *prefabs.SceneSpec, load system.ScriptLoader, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.L()
	}
	w := ecs.NewWorld()
	system.InstallBodyHooks(w, log)
	motion := system.NewMotionSystem(load, log)
	sweep := system.NewSweepSystem()
	w.AddSystemIn(ecs.PhaseCleanup, system.NewTTLSystem())
	w.AddSystemIn(ecs.PhaseDetect, sweep)
	w.AddSystemIn(ecs.PhaseMove, motion)

	scene, err := prefabs.Build(w, spec, prefabs.BuildOptions{
		OnOverlap: system.OverlapEvents,
		Space:     []collision.Option{collision.WithLogger(log), system.CrushEvents(w)},
		Log:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("build scene %s: %w", name, err)
	}
	w.Start()

	return &Session{
		World:  w,
		Scene:  scene,
		Motion: motion,
		Sweep:  sweep,
		name:   name,
		log:    log,
	}, nil
}

func (s *Session) Name() string {
	return s.name
}

// Step runs one fixed tick and returns the collision events it produced.
func (s *Session) Step() []ecs.CollisionEvent {
	s.World.Update()
	return system.CollisionEvents(s.World)
}

func (s *Session) Snapshot() system.Snapshot {
	return system.TakeSnapshot(s.World)
}

func (s *Session) SnapshotYAML() ([]byte, error) {
	return yaml.Marshal(s.Snapshot())
}

// Change tells what a changed file means for this session.
type Change int

const (
	ChangeNone Change = iota
	ChangeScript
	ChangeScene
)

// Classify maps a path reported by prefabs.Watcher to the reload it needs.
func (s *Session) Classify(path string) Change {
	if prefabs.IsScriptFile(path) {
		return ChangeScript
	}
	if filepath.Base(path) == filepath.Base(s.name) {
		return ChangeScene
	}
	return ChangeNone
}

// Apply handles a watcher path. Script edits recompile in place. A scene edit
// returns a freshly loaded session; on load failure the old one is kept and
// the error is returned.
func (s *Session) Apply(path string) (*Session, error) {
	switch s.Classify(path) {
	case ChangeScript:
		s.Motion.Reload()
		s.log.Info("scripts reloaded", zap.String("path", path))
	case ChangeScene:
		next, err := Load(s.name, s.log)
		if err != nil {
			return s, err
		}
		s.log.Info("scene reloaded", zap.String("scene", s.name))
		return next, nil
	}
	return s, nil
}
