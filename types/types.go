package types

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Quadrant is one of the four compass regions.
type Quadrant string

const (
	Leading   Quadrant = "leading"
	Weakening Quadrant = "weakening"
	Lagging   Quadrant = "lagging"
	Improving Quadrant = "improving"
)

// QuadrantOrder is the precedence used when sorting records.
var QuadrantOrder = []Quadrant{Leading, Weakening, Lagging, Improving}

// Precedence returns the position of q in QuadrantOrder, or len(QuadrantOrder)
// for an unknown quadrant.
func (q Quadrant) Precedence() int {
	for i, v := range QuadrantOrder {
		if v == q {
			return i
		}
	}
	return len(QuadrantOrder)
}

type StrengthLabel string

const (
	VeryStrong StrengthLabel = "very_strong"
	Strong     StrengthLabel = "strong"
	Neutral    StrengthLabel = "neutral"
	Weak       StrengthLabel = "weak"
	VeryWeak   StrengthLabel = "very_weak"
)

type MomentumLabel string

const (
	Accelerating MomentumLabel = "accelerating"
	Steady       MomentumLabel = "steady"
	Fading       MomentumLabel = "fading"
)

// Point is one compass coordinate (display scale, centered at 100).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var (
	ErrEmptyTable       = errors.New("price table has no rows")
	ErrNoSymbols        = errors.New("price table has no symbols")
	ErrUnorderedDates   = errors.New("price table dates must be strictly increasing")
	ErrColumnLength     = errors.New("price column length does not match date count")
	ErrInvalidPrice     = errors.New("price must be finite and positive")
	ErrDuplicateSymbol  = errors.New("duplicate symbol column")
	ErrUnknownSymbolRow = errors.New("row references a symbol outside the table")
)

// PriceTable is a date-aligned close table. Every symbol carries one close
// per date; rows with gaps never make it in here.
type PriceTable struct {
	Dates   []time.Time
	Symbols []string
	Closes  map[string][]float64
}

// NewPriceTable returns an empty table with the given column order.
func NewPriceTable(symbols ...string) *PriceTable {
	t := &PriceTable{
		Symbols: append([]string(nil), symbols...),
		Closes:  make(map[string][]float64, len(symbols)),
	}
	for _, s := range symbols {
		t.Closes[s] = nil
	}
	return t
}

// AddRow appends one trading date. The row must carry a price for every
// symbol and the date must be later than the last one.
func (t *PriceTable) AddRow(date time.Time, prices map[string]float64) error {
	if n := len(t.Dates); n > 0 && !date.After(t.Dates[n-1]) {
		return fmt.Errorf("%w: %s after %s", ErrUnorderedDates,
			date.Format(time.DateOnly), t.Dates[n-1].Format(time.DateOnly))
	}
	if len(prices) != len(t.Symbols) {
		for s := range prices {
			if _, ok := t.Closes[s]; !ok {
				return fmt.Errorf("%w: %s", ErrUnknownSymbolRow, s)
			}
		}
	}
	for _, s := range t.Symbols {
		p, ok := prices[s]
		if !ok {
			return fmt.Errorf("missing %s on %s: %w", s, date.Format(time.DateOnly), ErrInvalidPrice)
		}
		if !validPrice(p) {
			return fmt.Errorf("%s on %s = %v: %w", s, date.Format(time.DateOnly), p, ErrInvalidPrice)
		}
	}
	t.Dates = append(t.Dates, date)
	for _, s := range t.Symbols {
		t.Closes[s] = append(t.Closes[s], prices[s])
	}
	return nil
}

// Len returns the number of trading dates.
func (t *PriceTable) Len() int { return len(t.Dates) }

// Column returns the closes for symbol, or nil when the table has no such column.
func (t *PriceTable) Column(symbol string) []float64 { return t.Closes[symbol] }

// Validate checks that the table is well formed.
func (t *PriceTable) Validate() error {
	if len(t.Symbols) == 0 {
		return ErrNoSymbols
	}
	if len(t.Dates) == 0 {
		return ErrEmptyTable
	}
	for i := 1; i < len(t.Dates); i++ {
		if !t.Dates[i].After(t.Dates[i-1]) {
			return fmt.Errorf("%w: index %d", ErrUnorderedDates, i)
		}
	}
	seen := make(map[string]struct{}, len(t.Symbols))
	for _, s := range t.Symbols {
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateSymbol, s)
		}
		seen[s] = struct{}{}
		col := t.Closes[s]
		if len(col) != len(t.Dates) {
			return fmt.Errorf("%w: %s has %d, want %d", ErrColumnLength, s, len(col), len(t.Dates))
		}
		for i, p := range col {
			if !validPrice(p) {
				return fmt.Errorf("%s[%d] = %v: %w", s, i, p, ErrInvalidPrice)
			}
		}
	}
	return nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
