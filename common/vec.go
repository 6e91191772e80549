package common

// Vec is a 2-D fixed-point vector.
type Vec struct {
	X, Y Fixed
}

func V(x, y Fixed) Vec      { return Vec{X: x, Y: y} }
func VI(x, y int) Vec       { return Vec{X: FromInt(x), Y: FromInt(y)} }
func VF(x, y float64) Vec   { return Vec{X: FromFloat(x), Y: FromFloat(y)} }
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec) Neg() Vec      { return Vec{X: -v.X, Y: -v.Y} }
func (v Vec) IsZero() bool  { return v.X == 0 && v.Y == 0 }
func (v Vec) Scale(s Fixed) Vec {
	return Vec{X: Mul(v.X, s), Y: Mul(v.Y, s)}
}

// MulVec multiplies component-wise.
func (v Vec) MulVec(o Vec) Vec {
	return Vec{X: Mul(v.X, o.X), Y: Mul(v.Y, o.Y)}
}

// Axis returns X when horizontal is set and Y otherwise.
func (v Vec) Axis(horizontal bool) Fixed {
	if horizontal {
		return v.X
	}
	return v.Y
}

// WithAxis returns v with one component replaced.
func (v Vec) WithAxis(horizontal bool, f Fixed) Vec {
	if horizontal {
		v.X = f
	} else {
		v.Y = f
	}
	return v
}
