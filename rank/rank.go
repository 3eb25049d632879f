// Package rank turns a numeric series into a distribution-free percentile
// rank series.
//
// For row i with a defined value x, the comparison window holds the rows
// before i (all of them for the expanding form, the trailing Window rows for
// the rolling form). The rank is
//
//	100 * count(window < x) / len(window)
//
// The current row is never part of its own window and ties earn no partial
// credit. Undefined rows in the window are never less than x but still count
// in len(window). Rows before MinPeriods, and rows whose own value is
// undefined, are undefined (NaN).
package rank

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultMinPeriods is the number of leading rows left unranked.
const DefaultMinPeriods = 50

// DisplayOffset shifts a percentile onto the compass scale (50th pct = 100).
const DisplayOffset = 50.0

var ErrInvalidOptions = errors.New("invalid rank options")

// Options selects the comparison window.
type Options struct {
	// MinPeriods is the first row index that gets a rank.
	MinPeriods int
	// Window is the trailing window length; 0 means expanding.
	Window int
}

// DefaultOptions returns the expanding-window configuration.
func DefaultOptions() Options {
	return Options{MinPeriods: DefaultMinPeriods}
}

// Expanding reports whether every prior observation is used.
func (o Options) Expanding() bool { return o.Window == 0 }

func (o Options) Validate() error {
	if o.MinPeriods < 1 {
		return fmt.Errorf("%w: MinPeriods (%d) must be positive", ErrInvalidOptions, o.MinPeriods)
	}
	if o.Window < 0 {
		return fmt.Errorf("%w: Window (%d) cannot be negative", ErrInvalidOptions, o.Window)
	}
	if o.Window > 0 && o.Window < o.MinPeriods {
		return fmt.Errorf("%w: Window (%d) smaller than MinPeriods (%d)",
			ErrInvalidOptions, o.Window, o.MinPeriods)
	}
	return nil
}

// Percentile computes the rank series. The result has the same length as
// series; undefined entries are NaN.
func Percentile(series []float64, opts Options) ([]float64, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	out := make([]float64, len(series))
	levels := distinct(series)
	tree := newFenwick(len(levels))

	for i, x := range series {
		start := 0
		if opts.Window > 0 {
			if old := i - opts.Window - 1; old >= 0 && Defined(series[old]) {
				tree.add(position(levels, series[old]), -1)
			}
			start = max(0, i-opts.Window)
		}

		out[i] = math.NaN()
		if !Defined(x) {
			continue
		}
		pos := position(levels, x)
		if i >= opts.MinPeriods {
			less := tree.prefix(pos - 1)
			out[i] = 100 * float64(less) / float64(i-start)
		}
		tree.add(pos, 1)
	}
	return out, nil
}

// Display maps a percentile onto the 50..150 compass scale. NaN stays NaN.
func Display(pct float64) float64 { return pct + DisplayOffset }

// DisplaySeries applies Display to every element.
func DisplaySeries(pct []float64) []float64 {
	out := make([]float64, len(pct))
	for i, p := range pct {
		out[i] = Display(p)
	}
	return out
}

// Defined reports whether v holds a computed value.
func Defined(v float64) bool { return !math.IsNaN(v) }

// distinct returns the sorted unique defined values of series.
func distinct(series []float64) []float64 {
	vals := make([]float64, 0, len(series))
	for _, v := range series {
		if Defined(v) {
			vals = append(vals, v)
		}
	}
	sort.Float64s(vals)
	n := 0
	for i, v := range vals {
		if i == 0 || v != vals[n-1] {
			vals[n] = v
			n++
		}
	}
	return vals[:n]
}

// position returns the 1-based tree slot of v, which must be in levels.
func position(levels []float64, v float64) int {
	return sort.SearchFloat64s(levels, v) + 1
}
