package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridstep/collision"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/tilemap"
)

type mirrored struct {
	body  *cp.Body
	shape *cp.Shape
}

// DebugMirror copies the scene's bodies and tiles into a chipmunk space so
// the sandbox can draw it with cp.DrawSpace. Nothing is ever stepped; every
// body is kinematic and only repositioned.
type DebugMirror struct {
	space  *cp.Space
	grid   *tilemap.Grid
	bodies map[*collision.Body]mirrored
}

func NewDebugMirror() *DebugMirror {
	return &DebugMirror{space: cp.NewSpace(), bodies: map[*collision.Body]mirrored{}}
}

func (m *DebugMirror) Space() *cp.Space { return m.space }

// Len returns the number of mirrored bodies.
func (m *DebugMirror) Len() int { return len(m.bodies) }

// Sync brings the mirror up to date with w.
func (m *DebugMirror) Sync(w *ecs.World) {
	if w == nil {
		return
	}
	m.syncTiles(w)

	seen := make(map[*collision.Body]bool, len(m.bodies))
	for _, e := range w.Query(collision.BodyComponent.ID()) {
		b, ok := ecs.Get(w, e, collision.BodyComponent)
		if !ok || b == nil || b.Space() == nil {
			continue
		}
		seen[b] = true
		mb, ok := m.bodies[b]
		if !ok {
			mb = m.add(b)
		}
		mb.body.SetPosition(center(b))
		mb.shape.CacheBB()
	}

	for b, mb := range m.bodies {
		if seen[b] {
			continue
		}
		m.space.RemoveShape(mb.shape)
		m.space.RemoveBody(mb.body)
		delete(m.bodies, b)
	}
}

func (m *DebugMirror) add(b *collision.Body) mirrored {
	body := cp.NewKinematicBody()
	body.SetPosition(center(b))
	shape := cp.NewBox(body, b.Size.X.Float(), b.Size.Y.Float(), 0)
	if _, trigger := b.Space().(*collision.TriggerWorld); trigger {
		shape.SetSensor(true)
	}
	if !b.Dynamic {
		shape.UserData = staticTag
	}
	m.space.AddBody(body)
	m.space.AddShape(shape)
	mb := mirrored{body: body, shape: shape}
	m.bodies[b] = mb
	return mb
}

// syncTiles rebuilds the whole space when the tile grid changes, since tile
// boxes hang off the space's static body.
func (m *DebugMirror) syncTiles(w *ecs.World) {
	var grid *tilemap.Grid
	for _, e := range w.Query(collision.TileGridComponent.ID()) {
		if g, ok := ecs.Get(w, e, collision.TileGridComponent); ok {
			if tg, ok := g.(*tilemap.Grid); ok {
				grid = tg
				break
			}
		}
	}
	if grid == m.grid {
		return
	}

	m.space = cp.NewSpace()
	m.bodies = map[*collision.Body]mirrored{}
	m.grid = grid
	if grid == nil {
		return
	}
	for _, r := range grid.Rects() {
		pos, size := r.WorldRect(grid.TileSize())
		x0, y0 := pos.X.Float(), pos.Y.Float()
		bb := cp.BB{L: x0, B: y0, R: x0 + size.X.Float(), T: y0 + size.Y.Float()}
		shape := cp.NewBox2(m.space.StaticBody, bb, 0)
		if r.Tile.Directions != collision.AllDirections {
			shape.UserData = oneWayTag
		}
		m.space.AddShape(shape)
	}
}

// Shape tags read back by the sandbox drawer.
const (
	staticTag = "static"
	oneWayTag = "one-way"
)

// ShapeKind classifies a mirrored shape for colouring.
func ShapeKind(shape *cp.Shape) string {
	if shape == nil {
		return ""
	}
	if shape.Sensor() {
		return "trigger"
	}
	if tag, ok := shape.UserData.(string); ok {
		return tag
	}
	if shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return "tile"
	}
	return "dynamic"
}

func center(b *collision.Body) cp.Vector {
	return cp.Vector{
		X: b.Position.X.Float() + b.Size.X.Float()/2,
		Y: b.Position.Y.Float() + b.Size.Y.Float()/2,
	}
}
