package prefabs

import (
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/common"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/component"
	"github.com/milk9111/gridstep/tilemap"
	"go.uber.org/zap"
)

const defaultTileSize = 16

// Scene is a built scene. Root owns the solid world and the tile grid;
// trigger entities live under TriggerRoot, which is created on demand.
type Scene struct {
	Name        string
	Root        ecs.Entity
	World       *collision.World
	TriggerRoot ecs.Entity
	Triggers    *collision.TriggerWorld
	Grid        *tilemap.Grid
	Entities    map[string]ecs.Entity
}

type BuildOptions struct {
	// OnOverlap receives broad-phase pairs from every space, with the ecs
	// world as data.
	OnOverlap collision.OverlapFunc
	// Space options apply to the solid world and the trigger world.
	Space []collision.Option
	Log   *zap.Logger
}

type layerTable map[string]collision.Layer

func (l layerTable) resolve(name string) (collision.Layer, error) {
	if name == "" {
		return 0, nil
	}
	if layer, ok := l[name]; ok {
		return layer, nil
	}
	if len(l) == 0 {
		if n, err := strconv.Atoi(name); err == nil && n >= 0 && n < collision.MaxLayers {
			return collision.Layer(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// Build creates the scene's entities in w. Bodies join their spaces when the
// world next starts entities. On error nothing is left behind.
func Build(w *ecs.World, spec *SceneSpec, opts BuildOptions) (*Scene, error) {
	if w == nil || spec == nil {
		return nil, fmt.Errorf("%w: nil world or spec", ErrInvalidScene)
	}
	log := opts.Log
	if log == nil {
		log = zap.L()
	}

	layers, matrix, err := buildLayers(spec.Layers)
	if err != nil {
		return nil, err
	}
	grid, err := buildGrid(spec, layers)
	if err != nil {
		return nil, err
	}

	s := &Scene{Name: spec.Name, Grid: grid, Entities: map[string]ecs.Entity{}}
	b := &sceneBuilder{w: w, scene: s, layers: layers, matrix: matrix, opts: opts}
	if err := b.build(spec); err != nil {
		if w.IsAlive(s.Root) {
			w.DestroyEntity(s.Root)
		}
		return nil, err
	}

	log.Info("scene built",
		zap.String("scene", spec.Name),
		zap.Int("entities", len(s.Entities)),
		zap.Int("layers", len(spec.Layers)),
		zap.Bool("tiles", grid != nil))
	return s, nil
}

func buildLayers(specs []LayerSpec) (layerTable, collision.LayerMatrix, error) {
	layers := layerTable{}
	if len(specs) == 0 {
		return layers, collision.AllLayers(), nil
	}
	if len(specs) > collision.MaxLayers {
		return nil, collision.LayerMatrix{}, fmt.Errorf("%w: %d layers, at most %d", ErrInvalidScene, len(specs), collision.MaxLayers)
	}
	for i, l := range specs {
		if l.Name == "" {
			return nil, collision.LayerMatrix{}, fmt.Errorf("%w: layer %d has no name", ErrInvalidScene, i)
		}
		if _, dup := layers[l.Name]; dup {
			return nil, collision.LayerMatrix{}, fmt.Errorf("%w: duplicate layer %q", ErrInvalidScene, l.Name)
		}
		layers[l.Name] = collision.Layer(i)
	}

	var rows [collision.MaxLayers]uint16
	for i, l := range specs {
		for _, other := range l.Collides {
			j, ok := layers[other]
			if !ok {
				return nil, collision.LayerMatrix{}, fmt.Errorf("layer %q collides with %q: %w", l.Name, other, ErrUnknownLayer)
			}
			rows[i] |= 1 << j
		}
	}
	return layers, collision.BuildLayerMatrix(rows), nil
}

func buildGrid(spec *SceneSpec, layers layerTable) (*tilemap.Grid, error) {
	if spec.TileSize < 0 {
		return nil, fmt.Errorf("%w: tile size %d", ErrInvalidScene, spec.TileSize)
	}
	if len(spec.Tiles.Rows) == 0 {
		return nil, nil
	}
	size := spec.TileSize
	if size == 0 {
		size = defaultTileSize
	}

	legend := make(map[rune]collision.Tile, len(spec.Tiles.Legend))
	for key, ts := range spec.Tiles.Legend {
		r, n := utf8.DecodeRuneInString(key)
		if n == 0 || n != len(key) {
			return nil, fmt.Errorf("%w: legend key %q must be one character", ErrInvalidScene, key)
		}
		layer, err := layers.resolve(ts.Layer)
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", key, err)
		}
		dirs, err := collision.ParseDirectionSet(ts.Directions)
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", key, err)
		}
		legend[r] = collision.Tile{Layer: layer, Directions: dirs}
	}
	grid, err := tilemap.Parse(spec.Tiles.Rows, legend, common.VI(size, size))
	if err != nil {
		return nil, fmt.Errorf("prefabs: tiles: %w", err)
	}
	return grid, nil
}

type sceneBuilder struct {
	w      *ecs.World
	scene  *Scene
	layers layerTable
	matrix collision.LayerMatrix
	opts   BuildOptions
	mounts map[*collision.Body]string
}

func (b *sceneBuilder) build(spec *SceneSpec) error {
	w, s := b.w, b.scene
	s.Root = w.CreateEntity()
	if err := ecs.Add(w, s.Root, component.NameComponent, component.Name(spec.Name)); err != nil {
		return err
	}
	s.World = collision.NewWorld(w, b.opts.OnOverlap, b.matrix, b.opts.Space...)
	if err := collision.AttachSpace(w, s.Root, s.World); err != nil {
		return err
	}
	if s.Grid != nil {
		if err := ecs.Add(w, s.Root, collision.TileGridComponent, collision.TileGrid(s.Grid)); err != nil {
			return err
		}
	}

	b.mounts = map[*collision.Body]string{}
	bodies := map[string]*collision.Body{}
	for i, es := range spec.Entities {
		if es.Name == "" {
			es.Name = "entity" + strconv.Itoa(i)
		}
		if _, dup := s.Entities[es.Name]; dup {
			return fmt.Errorf("%w: duplicate entity %q", ErrInvalidScene, es.Name)
		}
		e, body, err := b.entity(es)
		if err != nil {
			return fmt.Errorf("entity %q: %w", es.Name, err)
		}
		s.Entities[es.Name] = e
		if body != nil {
			bodies[es.Name] = body
		}
	}

	for body, name := range b.mounts {
		m, ok := bodies[name]
		if !ok {
			return fmt.Errorf("mount %q: %w", name, ErrUnknownBody)
		}
		body.SetMount(m)
	}
	return nil
}

var knownComponents = map[string]bool{"transform": true, "body": true, "motion": true, "ttl": true}

func (b *sceneBuilder) entity(es EntityBuildSpec) (ecs.Entity, *collision.Body, error) {
	names := make([]string, 0, len(es.Components))
	for name := range es.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !knownComponents[name] {
			return ecs.NoEntity, nil, fmt.Errorf("%w: unknown component %q", ErrInvalidScene, name)
		}
	}

	var bodySpec *BodyComponentSpec
	if raw, ok := es.Components["body"]; ok {
		spec, err := DecodeComponentSpec[BodyComponentSpec](raw)
		if err != nil {
			return ecs.NoEntity, nil, fmt.Errorf("body: %w", err)
		}
		bodySpec = &spec
	}

	parent := b.scene.Root
	if bodySpec != nil && bodySpec.Trigger {
		root, err := b.triggerRoot()
		if err != nil {
			return ecs.NoEntity, nil, err
		}
		parent = root
	}

	w := b.w
	e := w.CreateEntity()
	if err := w.SetParent(e, parent); err != nil {
		return ecs.NoEntity, nil, err
	}
	if err := ecs.Add(w, e, component.NameComponent, component.Name(es.Name)); err != nil {
		return ecs.NoEntity, nil, err
	}

	if raw, ok := es.Components["transform"]; ok {
		spec, err := DecodeComponentSpec[TransformComponentSpec](raw)
		if err != nil {
			return ecs.NoEntity, nil, fmt.Errorf("transform: %w", err)
		}
		if err := ecs.Add(w, e, component.TransformComponent, &component.Transform{
			Position: common.VF(spec.X, spec.Y),
			Size:     common.VF(spec.W, spec.H),
			Anchor:   common.VF(spec.AnchorX, spec.AnchorY),
		}); err != nil {
			return ecs.NoEntity, nil, err
		}
	}

	var body *collision.Body
	if bodySpec != nil {
		var err error
		if body, err = b.body(*bodySpec); err != nil {
			return ecs.NoEntity, nil, fmt.Errorf("body: %w", err)
		}
		if err := collision.AttachBody(w, e, body); err != nil {
			return ecs.NoEntity, nil, err
		}
	}

	if raw, ok := es.Components["motion"]; ok {
		spec, err := DecodeComponentSpec[MotionComponentSpec](raw)
		if err != nil {
			return ecs.NoEntity, nil, fmt.Errorf("motion: %w", err)
		}
		if err := ecs.Add(w, e, component.MotionComponent, &component.Motion{
			Velocity: common.VF(spec.VX, spec.VY),
			Script:   spec.Script,
		}); err != nil {
			return ecs.NoEntity, nil, err
		}
	}

	if raw, ok := es.Components["ttl"]; ok {
		spec, err := DecodeComponentSpec[TTLComponentSpec](raw)
		if err != nil {
			return ecs.NoEntity, nil, fmt.Errorf("ttl: %w", err)
		}
		if err := ecs.Add(w, e, component.TTLComponent, &component.TTL{Frames: spec.Frames}); err != nil {
			return ecs.NoEntity, nil, err
		}
	}
	return e, body, nil
}

func (b *sceneBuilder) body(spec BodyComponentSpec) (*collision.Body, error) {
	body := collision.NewBody()
	body.Dynamic = spec.Dynamic
	layer, err := b.layers.resolve(spec.Layer)
	if err != nil {
		return nil, err
	}
	body.Layer = layer
	if body.Directions, err = collision.ParseDirectionSet(spec.Directions); err != nil {
		return nil, err
	}
	if spec.Box != nil {
		if spec.Box.W <= 0 || spec.Box.H <= 0 {
			return nil, fmt.Errorf("%w: box must have a positive size", ErrInvalidScene)
		}
		body.Position = common.VF(spec.Box.X, spec.Box.Y)
		body.Size = common.VF(spec.Box.W, spec.Box.H)
	}
	if spec.Mount != "" {
		b.mounts[body] = spec.Mount
	}
	return body, nil
}

func (b *sceneBuilder) triggerRoot() (ecs.Entity, error) {
	s := b.scene
	if s.Triggers != nil {
		return s.TriggerRoot, nil
	}
	w := b.w
	e := w.CreateEntity()
	if err := w.SetParent(e, s.Root); err != nil {
		return ecs.NoEntity, err
	}
	if err := ecs.Add(w, e, component.NameComponent, component.Name(s.Name+".triggers")); err != nil {
		return ecs.NoEntity, err
	}
	tw := collision.NewTriggerWorld(w, b.opts.OnOverlap, b.matrix, b.opts.Space...)
	if err := collision.AttachSpace(w, e, tw); err != nil {
		return ecs.NoEntity, err
	}
	s.TriggerRoot, s.Triggers = e, tw
	return e, nil
}
