package prefabs

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidScene = errors.New("prefabs: invalid scene")
	ErrUnknownLayer = errors.New("prefabs: unknown layer")
	ErrUnknownBody  = errors.New("prefabs: unknown body")
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// SceneSpec describes a level: its collision layers, its tile map and the
// entities placed in it.
type SceneSpec struct {
	Name     string            `yaml:"name"`
	TileSize int               `yaml:"tile_size"`
	Layers   []LayerSpec       `yaml:"layers"`
	Tiles    TilesSpec         `yaml:"tiles"`
	Entities []EntityBuildSpec `yaml:"entities"`
}

// LayerSpec names a collision layer by its position in the list and lists
// the layers it collides with. Collision is symmetric, so either side may
// list the pair.
type LayerSpec struct {
	Name     string   `yaml:"name"`
	Collides []string `yaml:"collides"`
}

type TilesSpec struct {
	Legend map[string]TileSpec `yaml:"legend"`
	Rows   []string            `yaml:"rows"`
}

type TileSpec struct {
	Layer      string   `yaml:"layer"`
	Directions []string `yaml:"directions"`
}

// EntityBuildSpec is one entity and its components, keyed by component name.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadScene(filename string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](filename)
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = filename
	}
	return &spec, nil
}

// ParseScene decodes a scene from YAML.
func ParseScene(data []byte) (*SceneSpec, error) {
	var spec SceneSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal scene: %w", err)
	}
	return &spec, nil
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	W       float64 `yaml:"w"`
	H       float64 `yaml:"h"`
	AnchorX float64 `yaml:"anchor_x"`
	AnchorY float64 `yaml:"anchor_y"`
}

// BodyComponentSpec places a collision body. Without a box the body adopts
// the transform's rectangle when it starts.
type BodyComponentSpec struct {
	Dynamic    bool     `yaml:"dynamic"`
	Trigger    bool     `yaml:"trigger"`
	Layer      string   `yaml:"layer"`
	Box        *BoxSpec `yaml:"box"`
	Directions []string `yaml:"directions"`
	Mount      string   `yaml:"mount"`
}

type BoxSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type MotionComponentSpec struct {
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
	Script string  `yaml:"script"`
}

type TTLComponentSpec struct {
	Frames int `yaml:"frames"`
}
