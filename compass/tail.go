package compass

import (
	"github.com/evdnx/gocompass/rank"
	"github.com/evdnx/gocompass/types"
)

// buildTail returns the last length display points, oldest first, leaving
// out rows where either coordinate is undefined.
func buildTail(xs, ys []float64, length int) []types.Point {
	tail := make([]types.Point, 0, length)
	start := len(xs) - length
	if start < 0 {
		start = 0
	}
	for i := start; i < len(xs); i++ {
		if !rank.Defined(xs[i]) || !rank.Defined(ys[i]) {
			continue
		}
		tail = append(tail, types.Point{X: round(xs[i], 1), Y: round(ys[i], 1)})
	}
	return tail
}
