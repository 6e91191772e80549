package collision

// Sweep runs sweep-and-prune over the space and calls the overlap callback
// once for every overlapping pair whose layers interact. Pairs come out
// ordered by the first body's left edge. It returns the number of pairs.
//
// The callback must not add or remove bodies while the sweep is running.
func (r *Registry) Sweep() int {
	sortByLeft(r.sweep)
	pairs := 0
	for i, a := range r.sweep {
		right := a.Right()
		for _, b := range r.sweep[i+1:] {
			if b.Left() > right {
				break
			}
			if !r.matrix.Interacts(a.Layer, b.Layer) {
				continue
			}
			if a.Bottom() < b.Top() || b.Bottom() < a.Top() {
				continue
			}
			pairs++
			if r.onOverlap != nil {
				r.onOverlap(a, b, r.data)
			}
		}
	}
	return pairs
}

// sortByLeft is a stable insertion sort. Bodies barely move between ticks,
// so the list is nearly sorted and this runs close to linear time.
func sortByLeft(bodies []*Body) {
	for i := 1; i < len(bodies); i++ {
		key := bodies[i]
		j := i - 1
		for j >= 0 && bodies[j].Left() > key.Left() {
			bodies[j+1] = bodies[j]
			j--
		}
		bodies[j+1] = key
	}
}
