package component

import "github.com/milk9111/gridstep/common"

// Transform is the scene-side placement of an entity. Position is the render
// anchor point; the render rectangle's top-left corner sits at
// Position - Size*Anchor, so an Anchor of (0, 0) makes Position the top-left
// corner and (0.5, 1) puts it at the bottom centre.
type Transform struct {
	Position common.Vec
	Size     common.Vec
	Anchor   common.Vec
}

// Rect returns the render rectangle as top-left corner and size.
func (t *Transform) Rect() (common.Vec, common.Vec) {
	if t == nil {
		return common.Vec{}, common.Vec{}
	}
	return t.Position.Sub(t.Size.MulVec(t.Anchor)), t.Size
}

var TransformComponent = NewComponent[*Transform]()
