package tictactoe

import (
	"maps"
	"slices"
)

// DepthPolicy maps a board size to the search depth limit.
// Depth 6 reaches the true endgame of 3x3; depth 4 keeps 4x4 searches fast at the cost of tactics
// beyond the horizon.
type DepthPolicy map[int]int

func DefaultDepthPolicy() DepthPolicy {
	return DepthPolicy{
		3: 6,
		4: 4,
	}
}

// DepthLimit - returns the limit for size, falling back to the nearest smaller configured size,
// or the smallest configured size when size is below every entry.
func (that DepthPolicy) DepthLimit(size int) int {
	if limit, ok := that[size]; ok {
		return limit
	}

	sizes := slices.Sorted(maps.Keys(that))
	if len(sizes) == 0 {
		return DefaultDepthPolicy()[3]
	}

	fallback := sizes[0]
	for _, configured := range sizes {
		if configured > size {
			break
		}
		fallback = configured
	}

	return that[fallback]
}

// MaxSize - returns the largest configured size. Larger boards are never searched.
func (that DepthPolicy) MaxSize() int {
	if len(that) == 0 {
		return DefaultDepthPolicy().MaxSize()
	}

	return slices.Max(slices.Collect(maps.Keys(that)))
}
