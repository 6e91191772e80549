package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/common"
)

// ScriptLoader returns the source of a motion script by name.
type ScriptLoader func(name string) ([]byte, error)

// motionScript is one entity's compiled copy of a motion script. Scripts see
// the globals tick, body and state and answer by assigning vx and vy.
type motionScript struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

// scriptCache compiles each script once and hands every entity its own clone
// so globals never leak between bodies.
type scriptCache struct {
	load     ScriptLoader
	compiled map[string]*tengo.Compiled
}

func newScriptCache(load ScriptLoader) *scriptCache {
	return &scriptCache{load: load, compiled: map[string]*tengo.Compiled{}}
}

func (c *scriptCache) instance(name string) (*motionScript, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("empty script name")
	}
	base, ok := c.compiled[name]
	if !ok {
		if c.load == nil {
			return nil, fmt.Errorf("no script loader for %s", name)
		}
		src, err := c.load(name)
		if err != nil {
			return nil, err
		}
		script := tengo.NewScript(src)
		_ = script.Add("tick", 0)
		_ = script.Add("body", map[string]any{})
		_ = script.Add("state", map[string]any{})
		_ = script.Add("vx", 0.0)
		_ = script.Add("vy", 0.0)
		script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

		base, err = script.Compile()
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		c.compiled[name] = base
	}
	return &motionScript{
		name:     name,
		compiled: base.Clone(),
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

// invalidate drops cached programs so the next instance recompiles them.
func (c *scriptCache) invalidate() {
	c.compiled = map[string]*tengo.Compiled{}
}

// velocity runs the script for one tick.
func (s *motionScript) velocity(tick uint64, b *collision.Body, blocked collision.DirectionSet) (common.Vec, error) {
	if s == nil || s.compiled == nil {
		return common.Vec{}, fmt.Errorf("nil script runtime")
	}
	if err := s.compiled.Set("tick", int64(tick)); err != nil {
		return common.Vec{}, err
	}
	if err := s.compiled.Set("body", bodyObject(b, blocked)); err != nil {
		return common.Vec{}, err
	}
	if err := s.compiled.Set("state", s.state); err != nil {
		return common.Vec{}, err
	}
	if err := s.compiled.Set("vx", 0.0); err != nil {
		return common.Vec{}, err
	}
	if err := s.compiled.Set("vy", 0.0); err != nil {
		return common.Vec{}, err
	}
	if err := s.compiled.Run(); err != nil {
		return common.Vec{}, err
	}
	return common.VF(s.compiled.Get("vx").Float(), s.compiled.Get("vy").Float()), nil
}

func bodyObject(b *collision.Body, blocked collision.DirectionSet) *tengo.ImmutableMap {
	blockedMap := map[string]tengo.Object{}
	for _, d := range []collision.Direction{collision.Up, collision.Down, collision.Left, collision.Right} {
		blockedMap[d.String()] = boolObject(blocked.Has(d))
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"x":       &tengo.Float{Value: b.Position.X.Float()},
		"y":       &tengo.Float{Value: b.Position.Y.Float()},
		"w":       &tengo.Float{Value: b.Size.X.Float()},
		"h":       &tengo.Float{Value: b.Size.Y.Float()},
		"dynamic": boolObject(b.Dynamic),
		"mounted": boolObject(b.Mount() != nil),
		"blocked": &tengo.ImmutableMap{Value: blockedMap},
	}}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}
