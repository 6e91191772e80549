package tilemap

import (
	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/common"
)

// Rect is a run of identical tiles merged into one box, in tile units.
type Rect struct {
	Col, Row      int
	Width, Height int
	Tile          collision.Tile
}

// WorldRect returns the rectangle's top-left corner and size in world units.
func (r Rect) WorldRect(tileSize common.Vec) (common.Vec, common.Vec) {
	pos := common.Vec{X: common.FromInt(r.Col).Mul(tileSize.X), Y: common.FromInt(r.Row).Mul(tileSize.Y)}
	size := common.Vec{X: common.FromInt(r.Width).Mul(tileSize.X), Y: common.FromInt(r.Height).Mul(tileSize.Y)}
	return pos, size
}

// Rects merges contiguous identical tiles into larger rectangles, greedily
// expanding each run along the row and then downward. Debug views draw these
// instead of one box per tile.
func (g *Grid) Rects() []Rect {
	if g == nil {
		return nil
	}
	processed := make([]bool, g.width*g.height)
	var out []Rect
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			idx := y*g.width + x
			if processed[idx] {
				continue
			}
			processed[idx] = true
			if !g.filled[idx] {
				continue
			}
			tile := g.cells[idx]
			same := func(i int) bool {
				return !processed[i] && g.filled[i] && g.cells[i] == tile
			}

			w := 1
			for x+w < g.width && same(y*g.width+x+w) {
				w++
			}

			h := 1
		heightLoop:
			for y+h < g.height {
				for xi := x; xi < x+w; xi++ {
					if !same((y+h)*g.width + xi) {
						break heightLoop
					}
				}
				h++
			}

			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w; xx++ {
					processed[yy*g.width+xx] = true
				}
			}
			out = append(out, Rect{Col: x, Row: y, Width: w, Height: h, Tile: tile})
		}
	}
	return out
}
