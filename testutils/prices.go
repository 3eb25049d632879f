package testutils

import (
	"math"
	"time"

	"github.com/evdnx/gocompass/types"
)

// Start is the first trading date of every synthetic table.
var Start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// Column describes one synthetic price column: Close(i) is the close on row i.
type Column struct {
	Symbol string
	Close  func(i int) float64
}

// Compounding grows from base by rate per row (0.01 = +1%/day).
func Compounding(symbol string, base, rate float64) Column {
	return Column{Symbol: symbol, Close: func(i int) float64 {
		return base * math.Pow(1+rate, float64(i))
	}}
}

// Flat never moves.
func Flat(symbol string, base float64) Column {
	return Column{Symbol: symbol, Close: func(int) float64 { return base }}
}

// Accelerating grows with an increasing daily rate, so its relative
// rate of change keeps rising.
func Accelerating(symbol string, base, k float64) Column {
	return Column{Symbol: symbol, Close: func(i int) float64 {
		x := float64(i)
		return base * math.Exp(k*x*x)
	}}
}

// Wave oscillates around base.
func Wave(symbol string, base, amplitude, period float64) Column {
	return Column{Symbol: symbol, Close: func(i int) float64 {
		return base * (1 + amplitude*math.Sin(2*math.Pi*float64(i)/period))
	}}
}

// BuildTable returns n consecutive daily rows for cols, in column order.
// It panics on invalid closes since it is only used with fixed test data.
func BuildTable(n int, cols ...Column) *types.PriceTable {
	symbols := make([]string, len(cols))
	for i, c := range cols {
		symbols[i] = c.Symbol
	}
	tbl := types.NewPriceTable(symbols...)
	for i := 0; i < n; i++ {
		row := make(map[string]float64, len(cols))
		for _, c := range cols {
			row[c.Symbol] = c.Close(i)
		}
		if err := tbl.AddRow(Start.AddDate(0, 0, i), row); err != nil {
			panic(err)
		}
	}
	return tbl
}
