package compass

import (
	"sort"
	"time"

	"github.com/evdnx/gocompass/types"
	"github.com/shopspring/decimal"
)

// NormalizationPercentileRank tags results produced by percentile ranking.
const NormalizationPercentileRank = "percentile_rank"

// Parameters echoes the settings a result was computed with.
type Parameters struct {
	RatioPeriod    int    `json:"rs_ratio_period"`
	MomentumPeriod int    `json:"rs_momentum_period"`
	TailLength     int    `json:"tail_length"`
	MinPeriods     int    `json:"min_periods"`
	RankWindow     int    `json:"rank_window,omitempty"`
	Normalization  string `json:"normalization"`
}

// Summary counts records per quadrant.
type Summary struct {
	Leading   int `json:"leading"`
	Weakening int `json:"weakening"`
	Lagging   int `json:"lagging"`
	Improving int `json:"improving"`
}

// Count returns the tally for q.
func (s Summary) Count(q types.Quadrant) int {
	switch q {
	case types.Leading:
		return s.Leading
	case types.Weakening:
		return s.Weakening
	case types.Lagging:
		return s.Lagging
	case types.Improving:
		return s.Improving
	}
	return 0
}

func (s *Summary) add(q types.Quadrant) {
	switch q {
	case types.Leading:
		s.Leading++
	case types.Weakening:
		s.Weakening++
	case types.Lagging:
		s.Lagging++
	case types.Improving:
		s.Improving++
	}
}

// Record is one asset's compass position. Price fields are pointers because
// a display policy may remove them before publication.
type Record struct {
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Short    string         `json:"short"`
	Category string         `json:"category"`
	Quadrant types.Quadrant `json:"quadrant"`

	X    float64       `json:"x"`
	Y    float64       `json:"y"`
	Tail []types.Point `json:"tail"`

	PctRatio    float64 `json:"pct_ratio"`
	PctMomentum float64 `json:"pct_momentum"`

	StrengthLabel       types.StrengthLabel `json:"strength_label"`
	MomentumLabel       types.MomentumLabel `json:"momentum_label"`
	StrengthDescription string              `json:"strength_description,omitempty"`
	MomentumDescription string              `json:"momentum_description,omitempty"`

	Price          *float64 `json:"price,omitempty"`
	PriceChange    *float64 `json:"price_change,omitempty"`
	PriceChangePct *float64 `json:"price_change_pct,omitempty"`
}

// Result is the full compass document for one computation.
type Result struct {
	GeneratedAt time.Time  `json:"generated_at"`
	DataStart   time.Time  `json:"data_start"`
	DataEnd     time.Time  `json:"data_end"`
	TradingDays int        `json:"trading_days"`
	Parameters  Parameters `json:"parameters"`
	Summary     Summary    `json:"summary"`
	Commodities []Record   `json:"commodities"`
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func roundPtr(v float64, places int32) *float64 {
	r := round(v, places)
	return &r
}

// sortRecords orders by quadrant precedence, then ratio percentile
// descending. Equal keys keep their input order.
func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		pi, pj := records[i].Quadrant.Precedence(), records[j].Quadrant.Precedence()
		if pi != pj {
			return pi < pj
		}
		return records[i].PctRatio > records[j].PctRatio
	})
}
