package collision

import "fmt"

// MaxLayers is the number of collision layers a matrix can describe.
const MaxLayers = 16

// Layer is a collision layer index in [0, MaxLayers).
type Layer uint8

// LayerMatrix says which layers interact: L1 and L2 interact iff bit L2 is
// set in row L1. Matrices built through BuildLayerMatrix or Set are
// symmetric.
type LayerMatrix [MaxLayers]uint16

// AllLayers returns a matrix in which every layer interacts with every layer.
func AllLayers() LayerMatrix {
	var m LayerMatrix
	for i := range m {
		m[i] = 0xFFFF
	}
	return m
}

// BuildLayerMatrix folds per-layer rows into a symmetric matrix: a pair
// interacts when either row asks for it. This is an authoring helper, not a
// per-tick call.
func BuildLayerMatrix(rows [MaxLayers]uint16) LayerMatrix {
	var m LayerMatrix
	for a := 0; a < MaxLayers; a++ {
		for b := 0; b < MaxLayers; b++ {
			if rows[a]&(1<<b) != 0 {
				m[a] |= 1 << b
				m[b] |= 1 << a
			}
		}
	}
	return m
}

func (m LayerMatrix) Interacts(a, b Layer) bool {
	if a >= MaxLayers || b >= MaxLayers {
		return false
	}
	return m[a]&(1<<b) != 0
}

// Set enables or disables the pair in both rows.
func (m *LayerMatrix) Set(a, b Layer, on bool) error {
	if a >= MaxLayers || b >= MaxLayers {
		return fmt.Errorf("collision: layer pair (%d, %d) out of range", a, b)
	}
	if on {
		m[a] |= 1 << b
		m[b] |= 1 << a
	} else {
		m[a] &^= 1 << b
		m[b] &^= 1 << a
	}
	return nil
}

func (m LayerMatrix) Symmetric() bool {
	for a := 0; a < MaxLayers; a++ {
		for b := a + 1; b < MaxLayers; b++ {
			if (m[a]&(1<<b) != 0) != (m[b]&(1<<a) != 0) {
				return false
			}
		}
	}
	return true
}
