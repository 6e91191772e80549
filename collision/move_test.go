package collision

import (
	"testing"

	"github.com/milk9111/gridstep/common"
)

func TestMoveAccumulatesSubUnitSteps(t *testing.T) {
	f := newFixture(t, nil)
	a, _ := f.body(t, 0, 0, 10, 10, true)
	step := common.FromFloat(0.4)

	for tick := 1; tick <= 2; tick++ {
		MoveDynamic(a, common.Vec{X: step}, nil, nil)
		if a.Position != common.VI(0, 0) {
			t.Fatalf("tick %d: expected no movement, got %v", tick, a.Position)
		}
	}
	if a.Remainder.X != step*2 {
		t.Fatalf("remainder after 2 ticks = %v, want %v", a.Remainder.X, step*2)
	}
	MoveDynamic(a, common.Vec{X: step}, nil, nil)
	if a.Position != common.VI(1, 0) {
		t.Fatalf("tick 3: expected one unit, got %v", a.Position)
	}
	if a.Remainder.X != step*3-common.One {
		t.Fatalf("remainder after tick 3 = %v, want %v", a.Remainder.X, step*3-common.One)
	}
}

func TestMoveStopsAtSolidTile(t *testing.T) {
	grid := newFakeGrid(10)
	grid.set(5, 0, AllDirections)
	f := newFixture(t, grid)
	a, _ := f.body(t, 60, 0, 10, 10, true)

	var calls []blockCall
	ok := MoveX(a, common.FromInt(-15), recordBlocks(&calls), "ctx")
	if ok {
		t.Fatalf("expected blocked move")
	}
	if a.Position.X != common.FromInt(60) {
		t.Fatalf("expected to stay at x=60, got %v", a.Position.X)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one callback, got %d", len(calls))
	}
	if c := calls[0]; c.body != a || c.blocker != nil || c.dir != Left || c.data != "ctx" {
		t.Fatalf("unexpected callback %+v", c)
	}
	if a.Remainder.X != 0 {
		t.Fatalf("queued units must be discarded, remainder = %v", a.Remainder.X)
	}
}

func TestMoveStopsFlushAgainstTile(t *testing.T) {
	grid := newFakeGrid(10)
	grid.set(5, 0, AllDirections)
	f := newFixture(t, grid)
	a, _ := f.body(t, 30, 0, 10, 10, true)

	if MoveX(a, common.FromInt(25), nil, nil) {
		t.Fatalf("expected blocked move")
	}
	if a.Position.X != common.FromInt(40) {
		t.Fatalf("expected to stop flush at x=40, got %v", a.Position.X)
	}
}

func TestOneWayTile(t *testing.T) {
	grid := newFakeGrid(10)
	grid.set(0, 2, Directions(Up))
	grid.set(1, 2, Directions(Up))

	tests := []struct {
		name    string
		x, y    int
		move    common.Vec
		want    common.Vec
		blocked bool
	}{
		{name: "lands from above", x: 0, y: 0, move: common.VI(0, 15), want: common.VI(0, 10), blocked: true},
		{name: "jumps through from below", x: 0, y: 30, move: common.VI(0, -25), want: common.VI(0, 5)},
		{name: "walks through sideways", x: -10, y: 20, move: common.VI(15, 0), want: common.VI(5, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, grid)
			a, _ := f.body(t, tt.x, tt.y, 10, 10, true)
			ok := MoveDynamic(a, tt.move, nil, nil)
			if ok == tt.blocked {
				t.Fatalf("MoveDynamic ok = %v, blocked = %v", ok, tt.blocked)
			}
			if a.Position != tt.want {
				t.Fatalf("position = %v, want %v", a.Position, tt.want)
			}
		})
	}
}

func TestTileOnNonInteractingLayerIsIgnored(t *testing.T) {
	grid := newFakeGrid(10)
	grid.tiles[[2]int{2, 0}] = Tile{Layer: 3, Directions: AllDirections}
	var rows [MaxLayers]uint16
	rows[0] = 1 << 0
	f := newFixture(t, grid)
	f.world.reg.matrix = BuildLayerMatrix(rows)
	a, _ := f.body(t, 0, 0, 10, 10, true)

	if !MoveX(a, common.FromInt(30), nil, nil) {
		t.Fatalf("expected to pass through a tile on another layer")
	}
}

func TestStaticBodyBlocksDynamic(t *testing.T) {
	f := newFixture(t, nil)
	wall, _ := f.body(t, 30, 0, 10, 10, false)
	a, _ := f.body(t, 0, 0, 10, 10, true)

	var calls []blockCall
	if MoveX(a, common.FromInt(50), recordBlocks(&calls), nil) {
		t.Fatalf("expected blocked move")
	}
	if a.Position.X != common.FromInt(20) {
		t.Fatalf("expected to stop at x=20, got %v", a.Position.X)
	}
	if len(calls) != 1 || calls[0].blocker != wall || calls[0].dir != Right {
		t.Fatalf("unexpected callbacks %+v", calls)
	}
}

func TestStaticOneWayPlatformLetsBodyUpThrough(t *testing.T) {
	f := newFixture(t, nil)
	platform, _ := f.body(t, 0, 20, 30, 5, false)
	platform.Directions = Directions(Up)
	a, _ := f.body(t, 5, 30, 10, 10, true)

	if !MoveY(a, common.FromInt(-25), nil, nil) {
		t.Fatalf("expected to jump through the platform")
	}
	if MoveY(a, common.FromInt(20), nil, nil) || a.Position.Y != common.FromInt(10) {
		t.Fatalf("expected to land on top at y=10, got %v", a.Position.Y)
	}
}

func TestMoveDynamicRejectsStaticBody(t *testing.T) {
	f := newFixture(t, nil)
	s, _ := f.body(t, 0, 0, 10, 10, false)
	if MoveDynamic(s, common.VI(5, 5), nil, nil) {
		t.Fatalf("expected no-op for a static body")
	}
	if s.Position != common.VI(0, 0) {
		t.Fatalf("static body moved: %v", s.Position)
	}
	if f.logs.FilterMessageSnippet("static body").Len() != 2 {
		t.Fatalf("expected one log per axis, got %d", f.logs.Len())
	}
}

func TestMoveProperties(t *testing.T) {
	grid := newFakeGrid(10)
	for row := -5; row < 5; row++ {
		grid.set(8, row, AllDirections)
	}
	f := newFixture(t, grid)
	a, _ := f.body(t, 0, 0, 10, 10, true)
	size := a.Size

	amounts := []common.Fixed{
		common.FromFloat(0.7), common.FromFloat(-2.3), common.FromFloat(13.9),
		common.FromFloat(-0.2), common.FromInt(40), common.FromFloat(-7.5),
	}
	for i, amt := range amounts {
		before := a.Position
		want := (a.Remainder.X + amt).Trunc()
		MoveDynamic(a, common.Vec{X: amt, Y: amt}, nil, nil)
		delta := a.Position.Sub(before)
		if !delta.X.IsWhole() || !delta.Y.IsWhole() {
			t.Fatalf("step %d: fractional movement %v", i, delta)
		}
		if delta.X.Abs() > want.Abs() {
			t.Fatalf("step %d: moved %v, more than requested %v", i, delta.X, want)
		}
		if a.Size != size {
			t.Fatalf("step %d: size changed to %v", i, a.Size)
		}
		if a.Remainder.X.Abs() >= common.One || a.Remainder.Y.Abs() >= common.One {
			t.Fatalf("step %d: remainder out of range %v", i, a.Remainder)
		}
	}
}

func TestZeroMoveIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	a, _ := f.body(t, 3, 4, 10, 10, true)
	a.Remainder = common.VF(0.9, -0.9)
	for i := 0; i < 5; i++ {
		if !MoveDynamic(a, common.Vec{}, nil, nil) {
			t.Fatalf("zero move reported blocked")
		}
	}
	if a.Position != common.VI(3, 4) {
		t.Fatalf("zero move changed position to %v", a.Position)
	}
}

func TestSmallMovesConserveDistance(t *testing.T) {
	f := newFixture(t, nil)
	small, _ := f.body(t, 0, 0, 10, 10, true)
	big, _ := f.body(t, 0, 100, 10, 10, true)

	v := common.VF(0.3, -0.17)
	var sum common.Vec
	for i := 0; i < 97; i++ {
		MoveDynamic(small, v, nil, nil)
		sum = sum.Add(v)
	}
	MoveDynamic(big, sum, nil, nil)

	dx := small.Position.X - big.Position.X
	dy := (small.Position.Y - 0) - (big.Position.Y - common.FromInt(100))
	if dx.Abs() > common.One || dy.Abs() > common.One {
		t.Fatalf("small moves drifted: small=%v big=%v", small.Position, big.Position)
	}
}
