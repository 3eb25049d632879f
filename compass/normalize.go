package compass

import (
	"math"

	"github.com/evdnx/gocompass/types"
)

// BaseValue is the index level every rebased series starts at.
const BaseValue = 100.0

// Rebase divides a series by its first value and scales it to BaseValue.
func Rebase(series []float64) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	first := series[0]
	for i, v := range series {
		out[i] = v / first * BaseValue
	}
	return out
}

// Normalize rebases every column of the table and builds the equal-weight
// geometric benchmark over all of them. The benchmark does not depend on
// which symbols are later reported.
func Normalize(table *types.PriceTable) (map[string][]float64, []float64) {
	normalized := make(map[string][]float64, len(table.Symbols))
	cols := make([][]float64, 0, len(table.Symbols))
	for _, s := range table.Symbols {
		n := Rebase(table.Column(s))
		normalized[s] = n
		cols = append(cols, n)
	}
	return normalized, Benchmark(cols)
}

// Benchmark is exp(mean(log(column))) per row, rebased to BaseValue.
func Benchmark(cols [][]float64) []float64 {
	if len(cols) == 0 {
		return nil
	}
	rows := len(cols[0])
	geo := make([]float64, rows)
	for i := 0; i < rows; i++ {
		sum := 0.0
		for _, c := range cols {
			sum += math.Log(c[i])
		}
		geo[i] = math.Exp(sum / float64(len(cols)))
	}
	return Rebase(geo)
}
