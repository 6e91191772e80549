package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridstep/ecs/system"
	"golang.org/x/image/colornames"
)

const debugDotSize = 4

var shapeColors = map[string]color.RGBA{
	"tile":    colornames.Slategray,
	"one-way": colornames.Lightsteelblue,
	"static":  colornames.Goldenrod,
	"dynamic": colornames.Crimson,
	"trigger": colornames.Mediumseagreen,
}

// DrawMirror draws every shape of the mirror's space, coloured by kind.
func DrawMirror(m *system.DebugMirror, screen *ebiten.Image, scale float64) {
	if m == nil || screen == nil {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	cp.DrawSpace(m.Space(), &mirrorDrawer{screen: screen, scale: scale})
}

type mirrorDrawer struct {
	screen *ebiten.Image
	scale  float64
}

func (d *mirrorDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	d.DrawDot(radius*2, pos, outline, data)
}

func (d *mirrorDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *mirrorDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
}

// DrawPolygon strokes the outline only, in the shape's kind colour.
func (d *mirrorDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	verts = verts[:count]
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], fill)
	}
}

func (d *mirrorDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *mirrorDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *mirrorDrawer) OutlineColor() cp.FColor {
	return toFColor(colornames.White)
}

func (d *mirrorDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if c, ok := shapeColors[system.ShapeKind(shape)]; ok {
		return toFColor(c)
	}
	return toFColor(colornames.White)
}

func (d *mirrorDrawer) ConstraintColor() cp.FColor {
	return toFColor(colornames.Orange)
}

func (d *mirrorDrawer) CollisionPointColor() cp.FColor {
	return toFColor(colornames.Red)
}

func (d *mirrorDrawer) Data() interface{} {
	return nil
}

func (d *mirrorDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	vector.StrokeLine(d.screen,
		float32(a.X*d.scale), float32(a.Y*d.scale),
		float32(b.X*d.scale), float32(b.Y*d.scale),
		1, toNRGBA(c), false)
}

func toFColor(c color.RGBA) cp.FColor {
	return cp.FColor{
		R: float32(c.R) / 255,
		G: float32(c.G) / 255,
		B: float32(c.B) / 255,
		A: float32(c.A) / 255,
	}
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
