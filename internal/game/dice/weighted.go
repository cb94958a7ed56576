package dice

// Weighted pairs a candidate with its selection weight.
type Weighted[T any] struct {
	Item   T
	Weight float64
}

// WeightedChoice draws one candidate with probability proportional to its weight
// using a single cumulative-weight draw.
//
// Candidates with non-positive weight are never selected.
// Postcondition: Returns (zero, false) when no candidate has positive weight.
func WeightedChoice[T any](src Source, candidates []Weighted[T]) (T, bool) {
	var zero T
	total := 0.0
	for _, c := range candidates {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	if total <= 0 {
		return zero, false
	}
	roll := src.Float64() * total
	cumulative := 0.0
	last := -1
	for i, c := range candidates {
		if c.Weight <= 0 {
			continue
		}
		cumulative += c.Weight
		last = i
		if roll < cumulative {
			return c.Item, true
		}
	}
	// Floating-point rounding can leave roll == total; the last positive candidate wins.
	return candidates[last].Item, true
}
