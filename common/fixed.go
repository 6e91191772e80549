package common

import (
	"math"
	"strconv"
)

// Fixed is a signed 22.10 fixed-point number. Every position, size and delta
// in the engine uses it so simulation is bit-reproducible across machines.
type Fixed int32

// 22.10 fixed point constants
const (
	Shift = 10
	One   = Fixed(1 << Shift)
	Half  = Fixed(1 << (Shift - 1))
	Mask  = One - 1

	MaxFixed = Fixed(math.MaxInt32)
	MinFixed = Fixed(math.MinInt32)
)

// --- Conversion ---

func FromInt(i int) Fixed         { return Fixed(int32(i) << Shift) }
func FromRaw(raw int32) Fixed     { return Fixed(raw) }
func FromFloat(f float64) Fixed   { return Fixed(math.Round(f * float64(One))) }
func (f Fixed) Raw() int32        { return int32(f) }
func (f Fixed) Float() float64    { return float64(f) / float64(One) }
func (f Fixed) Frac() Fixed       { return f - f.Trunc() }
func (f Fixed) IsWhole() bool     { return f&Mask == 0 }
func (f Fixed) String() string    { return strconv.FormatFloat(f.Float(), 'f', -1, 64) }
func (f Fixed) Units() int        { return int(f.Trunc() >> Shift) }
func (f Fixed) FloorUnits() int   { return int(f >> Shift) }
func (f Fixed) Floor() Fixed      { return f &^ Mask }
func (f Fixed) Abs() Fixed        { return Abs(f) }
func (f Fixed) Mul(g Fixed) Fixed { return Mul(f, g) }
func (f Fixed) Div(g Fixed) Fixed { return Div(f, g) }

// Trunc drops the fractional part toward zero, so -1.5 becomes -1 and 1.5
// becomes 1. The result is still a Fixed.
func (f Fixed) Trunc() Fixed {
	if f >= 0 {
		return f &^ Mask
	}
	return -((-f) &^ Mask)
}

// --- Arithmetic ---

func Mul(a, b Fixed) Fixed {
	return Fixed((int64(a) * int64(b)) >> Shift)
}

// Div saturates instead of trapping on a zero divisor or an out-of-range
// quotient.
func Div(a, b Fixed) Fixed {
	if b == 0 {
		switch {
		case a > 0:
			return MaxFixed
		case a < 0:
			return MinFixed
		}
		return 0
	}
	q := (int64(a) << Shift) / int64(b)
	if q > math.MaxInt32 {
		return MaxFixed
	}
	if q < math.MinInt32 {
		return MinFixed
	}
	return Fixed(q)
}

func Abs(x Fixed) Fixed {
	if x < 0 {
		return -x
	}
	return x
}

// Sign returns -One, 0, or One
func Sign(x Fixed) Fixed {
	if x < 0 {
		return -One
	}
	if x > 0 {
		return One
	}
	return 0
}

func Min(a, b Fixed) Fixed {
	if a < b {
		return a
	}
	return b
}

func Max(a, b Fixed) Fixed {
	if a > b {
		return a
	}
	return b
}

// Lerp interpolates between a and b, t in [0, One].
func Lerp(a, b, t Fixed) Fixed {
	return a + Mul(t, b-a)
}

// FloorDiv divides two fixed values and floors the integer quotient. Tile
// lookups use it so that -1 lands in column -1 and not column 0.
func FloorDiv(a, b Fixed) int {
	if b == 0 {
		return 0
	}
	q := int(a) / int(b)
	if (int(a)%int(b) != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
