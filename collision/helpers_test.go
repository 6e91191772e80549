package collision

import (
	"testing"

	"github.com/milk9111/gridstep/common"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/component"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeGrid struct {
	size  common.Vec
	tiles map[[2]int]Tile
}

func newFakeGrid(tileSize int) *fakeGrid {
	return &fakeGrid{size: common.VI(tileSize, tileSize), tiles: map[[2]int]Tile{}}
}

func (g *fakeGrid) TileAt(col, row int) (Tile, bool) {
	t, ok := g.tiles[[2]int{col, row}]
	return t, ok
}

func (g *fakeGrid) TileSize() common.Vec { return g.size }

func (g *fakeGrid) set(col, row int, dirs DirectionSet) {
	g.tiles[[2]int{col, row}] = Tile{Directions: dirs}
}

type fixture struct {
	scene *ecs.World
	world *World
	root  ecs.Entity
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T, grid TileGrid, opts ...Option) *fixture {
	t.Helper()
	core, logs := observer.New(zap.ErrorLevel)
	scene := ecs.NewWorld()
	root := scene.CreateEntity()
	w := NewWorld(nil, nil, AllLayers(), append([]Option{WithLogger(zap.New(core))}, opts...)...)
	if err := AttachSpace(scene, root, w); err != nil {
		t.Fatalf("attach space: %v", err)
	}
	if grid != nil {
		if err := ecs.Add(scene, root, TileGridComponent, grid); err != nil {
			t.Fatalf("attach grid: %v", err)
		}
	}
	w.Start()
	return &fixture{scene: scene, world: w, root: root, logs: logs}
}

// body creates an entity whose transform anchor is its top-left corner and
// registers a body of the same rect.
func (f *fixture) body(t *testing.T, x, y, w, h int, dynamic bool) (*Body, ecs.Entity) {
	t.Helper()
	e := f.scene.CreateEntity()
	tr := &component.Transform{Position: common.VI(x, y), Size: common.VI(w, h)}
	if err := ecs.Add(f.scene, e, component.TransformComponent, tr); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	b := NewBody()
	b.Position = common.VI(x, y)
	b.Size = common.VI(w, h)
	b.Dynamic = dynamic
	if err := AttachBody(f.scene, e, b); err != nil {
		t.Fatalf("attach body: %v", err)
	}
	b.Start(tr)
	if !f.world.Add(e) {
		t.Fatalf("add body %s to world", e)
	}
	return b, e
}

type blockCall struct {
	body    *Body
	blocker *Body
	dir     Direction
	data    any
}

func recordBlocks(calls *[]blockCall) CollisionFunc {
	return func(b, blocker *Body, dir Direction, data any) {
		*calls = append(*calls, blockCall{body: b, blocker: blocker, dir: dir, data: data})
	}
}
