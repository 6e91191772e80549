package collision

import (
	"github.com/milk9111/gridstep/common"
	"github.com/milk9111/gridstep/ecs/component"
)

// Tile is one cell of a tile grid.
type Tile struct {
	Layer      Layer
	Directions DirectionSet
}

// TileGrid is the tile data source a World resolves against. TileAt reports
// false outside the grid, which counts as "no obstruction".
type TileGrid interface {
	TileAt(col, row int) (Tile, bool)
	TileSize() common.Vec
}

// TileGridComponent marks the entity that carries the level's tiles. A World
// on the same entity binds it at start.
var TileGridComponent = component.NewComponent[TileGrid]()
