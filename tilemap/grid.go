package tilemap

import (
	"errors"
	"fmt"

	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/common"
)

var ErrInvalidGrid = errors.New("tilemap: invalid grid")

// Grid is a row-major tile map. Empty cells hold no tile.
type Grid struct {
	width    int
	height   int
	tileSize common.Vec
	cells    []collision.Tile
	filled   []bool
}

// NewGrid returns an empty width x height grid.
func NewGrid(width, height int, tileSize common.Vec) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidGrid, width, height)
	}
	if tileSize.X <= 0 || tileSize.Y <= 0 {
		return nil, fmt.Errorf("%w: tile size %vx%v", ErrInvalidGrid, tileSize.X, tileSize.Y)
	}
	return &Grid{
		width:    width,
		height:   height,
		tileSize: tileSize,
		cells:    make([]collision.Tile, width*height),
		filled:   make([]bool, width*height),
	}, nil
}

// Parse builds a grid from text rows. Every rune found in legend becomes that
// tile; any other rune is an empty cell. Short rows are padded with empty
// cells.
func Parse(rows []string, legend map[rune]collision.Tile, tileSize common.Vec) (*Grid, error) {
	width := 0
	for _, row := range rows {
		if n := len([]rune(row)); n > width {
			width = n
		}
	}
	g, err := NewGrid(width, len(rows), tileSize)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		for x, r := range []rune(row) {
			if t, ok := legend[r]; ok {
				g.Set(x, y, t)
			}
		}
	}
	return g, nil
}

func (g *Grid) Width() int           { return g.width }
func (g *Grid) Height() int          { return g.height }
func (g *Grid) TileSize() common.Vec { return g.tileSize }
func (g *Grid) inside(x, y int) bool { return x >= 0 && y >= 0 && x < g.width && y < g.height }

// TileAt implements collision.TileGrid.
func (g *Grid) TileAt(col, row int) (collision.Tile, bool) {
	if g == nil || !g.inside(col, row) {
		return collision.Tile{}, false
	}
	idx := row*g.width + col
	return g.cells[idx], g.filled[idx]
}

// Set places a tile; out-of-range cells are ignored.
func (g *Grid) Set(col, row int, t collision.Tile) {
	if !g.inside(col, row) {
		return
	}
	idx := row*g.width + col
	g.cells[idx] = t
	g.filled[idx] = true
}

// Clear empties a cell.
func (g *Grid) Clear(col, row int) {
	if !g.inside(col, row) {
		return
	}
	idx := row*g.width + col
	g.cells[idx] = collision.Tile{}
	g.filled[idx] = false
}

// Bounds returns the grid's extent in world units.
func (g *Grid) Bounds() common.Vec {
	return common.Vec{
		X: common.FromInt(g.width).Mul(g.tileSize.X),
		Y: common.FromInt(g.height).Mul(g.tileSize.Y),
	}
}
