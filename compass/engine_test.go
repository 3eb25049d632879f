package compass

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/evdnx/gocompass/config"
	"github.com/evdnx/gocompass/metrics"
	"github.com/evdnx/gocompass/registry"
	"github.com/evdnx/gocompass/testutils"
	"github.com/evdnx/gocompass/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const growth = 0.00001

// longHistory leaves enough defined rows after the warm-up that the
// strongest asset ranks in the top bucket on both axes.
const longHistory = 600

var fixedNow = time.Date(2025, 6, 30, 16, 0, 0, 0, time.UTC)

func defaultParams() config.CompassConfig {
	return config.Default().Compass
}

func testRegistry(t *testing.T, symbols ...string) *registry.Registry {
	t.Helper()
	assets := make([]registry.Asset, len(symbols))
	for i, s := range symbols {
		assets[i] = registry.Asset{Symbol: s, Name: s + " Futures", Category: registry.Energy}
	}
	reg, err := registry.New(assets)
	require.NoError(t, err)
	return reg
}

func newTestEngine(t *testing.T, cfg config.CompassConfig, reg *registry.Registry, opts ...Option) (*Engine, *testutils.MockLogger) {
	t.Helper()
	log := testutils.NewMockLogger()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	e, err := NewEngine(cfg, reg, log, opts...)
	require.NoError(t, err)
	return e, log
}

// leaderTable has one asset whose growth rate keeps increasing and one that
// never moves, so the first ranks at the top of both axes and the second at
// the bottom.
func leaderTable(rows int) *types.PriceTable {
	return testutils.BuildTable(rows,
		testutils.Accelerating("A", 100, growth),
		testutils.Flat("B", 100),
	)
}

func findRecord(t *testing.T, res *Result, symbol string) Record {
	t.Helper()
	for _, r := range res.Commodities {
		if r.Symbol == symbol {
			return r
		}
	}
	t.Fatalf("no record for %s in %+v", symbol, res.Commodities)
	return Record{}
}

func TestNewEngineRejectsBadInput(t *testing.T) {
	_, err := NewEngine(defaultParams(), nil, nil)
	assert.ErrorIs(t, err, ErrNilRegistry)

	bad := defaultParams()
	bad.RatioPeriod = 0
	_, err = NewEngine(bad, registry.Commodities(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RatioPeriod")
}

func TestComputeRequiresMinimumHistory(t *testing.T) {
	e, log := newTestEngine(t, defaultParams(), testRegistry(t, "A", "B"))
	before := testutil.ToFloat64(metrics.ComputeRuns.WithLabelValues("insufficient_history"))

	_, err := e.Compute(context.Background(), leaderTable(139))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
	var hist *InsufficientHistoryError
	require.True(t, errors.As(err, &hist))
	assert.Equal(t, 140, hist.Required)
	assert.Equal(t, 139, hist.Available)
	assert.Equal(t, "need at least 140 days of data, got 139", err.Error())
	assert.Equal(t, 1, log.Count("warn", "insufficient_history"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ComputeRuns.WithLabelValues("insufficient_history")))

	// the last row of a minimum-length table already has both ranks
	for rows, want := range map[int][2]float64{140: {28.8, 3.6}, 141: {29.3, 4.3}} {
		res, err := e.Compute(context.Background(), leaderTable(rows))
		require.NoError(t, err, "rows=%d", rows)
		require.Len(t, res.Commodities, 2, "rows=%d", rows)
		assert.Equal(t, rows, res.TradingDays)
		a := findRecord(t, res, "A")
		assert.Equal(t, want[0], a.PctRatio, "rows=%d", rows)
		assert.Equal(t, want[1], a.PctMomentum, "rows=%d", rows)
		assert.Equal(t, 0.0, findRecord(t, res, "B").PctRatio)
	}
	assert.Zero(t, log.Count("debug", "symbol_skipped"))
}

func TestComputeSkipsWarmingUpSymbols(t *testing.T) {
	cfg := defaultParams()
	cfg.MinPeriods = 200
	e, log := newTestEngine(t, cfg, testRegistry(t, "A", "B"))

	res, err := e.Compute(context.Background(), leaderTable(185))
	require.NoError(t, err)
	assert.Empty(t, res.Commodities)
	assert.NotNil(t, res.Commodities)
	assert.Equal(t, 185, res.TradingDays)
	assert.Equal(t, Summary{}, res.Summary)
	reason, ok := log.StringField("symbol_skipped", "reason")
	require.True(t, ok)
	assert.Equal(t, "warming_up", reason)

	res, err = e.Compute(context.Background(), leaderTable(201))
	require.NoError(t, err)
	assert.Len(t, res.Commodities, 2)
}

func TestComputeLeaderAndLaggard(t *testing.T) {
	e, log := newTestEngine(t, defaultParams(), testRegistry(t, "A", "B"))
	tbl := leaderTable(longHistory)

	res, err := e.Compute(context.Background(), tbl)
	require.NoError(t, err)
	require.Len(t, res.Commodities, 2)
	assert.Equal(t, "A", res.Commodities[0].Symbol)
	assert.Equal(t, "B", res.Commodities[1].Symbol)
	assert.Equal(t, Summary{Leading: 1, Lagging: 1}, res.Summary)

	a := findRecord(t, res, "A")
	// 500 of the 599 earlier smoothed ratios are lower; the 99 warm-up rows
	// still count in the denominator. Momentum has 465 lower readings.
	assert.Equal(t, types.Leading, a.Quadrant)
	assert.Equal(t, 83.5, a.PctRatio)
	assert.Equal(t, 77.6, a.PctMomentum)
	assert.Equal(t, 133.5, a.X)
	assert.Equal(t, 127.6, a.Y)
	assert.Equal(t, types.VeryStrong, a.StrengthLabel)
	assert.Equal(t, types.Accelerating, a.MomentumLabel)
	assert.Equal(t, []types.Point{
		{X: 133.4, Y: 127.5}, {X: 133.4, Y: 127.5}, {X: 133.4, Y: 127.6},
		{X: 133.4, Y: 127.6}, {X: 133.5, Y: 127.6},
	}, a.Tail)
	assert.Equal(t, "A Futures", a.Name)
	assert.Equal(t, "A Futures", a.Short)
	assert.NotEmpty(t, a.StrengthDescription)

	last := 100 * math.Exp(growth*599*599)
	prev := 100 * math.Exp(growth*598*598)
	require.NotNil(t, a.Price)
	assert.InDelta(t, last, *a.Price, 0.006)
	assert.InDelta(t, last-prev, *a.PriceChange, 0.006)
	assert.InDelta(t, (last-prev)/prev*100, *a.PriceChangePct, 0.006)

	b := findRecord(t, res, "B")
	assert.Equal(t, types.Lagging, b.Quadrant)
	assert.Equal(t, 0.0, b.PctRatio)
	assert.Equal(t, 50.0, b.X)
	assert.Equal(t, types.VeryWeak, b.StrengthLabel)
	assert.Equal(t, types.Fading, b.MomentumLabel)
	assert.Equal(t, 100.0, *b.Price)
	assert.Equal(t, 0.0, *b.PriceChange)
	assert.Equal(t, 0.0, *b.PriceChangePct)

	assert.Equal(t, fixedNow, res.GeneratedAt)
	assert.Equal(t, tbl.Dates[0], res.DataStart)
	assert.Equal(t, tbl.Dates[599], res.DataEnd)
	assert.Equal(t, Parameters{
		RatioPeriod:    100,
		MomentumPeriod: 35,
		TailLength:     5,
		MinPeriods:     50,
		Normalization:  NormalizationPercentileRank,
	}, res.Parameters)
	assert.Equal(t, 1, log.Count("info", "compass_computed"))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.QuadrantRecords.WithLabelValues("leading")))
	assert.Equal(t, 600.0, testutil.ToFloat64(metrics.TradingDays))
}

func TestComputeStrengthBuildsWithHistory(t *testing.T) {
	e, _ := newTestEngine(t, defaultParams(), testRegistry(t, "A", "B"))
	compounding := func(rows int) *types.PriceTable {
		return testutils.BuildTable(rows,
			testutils.Compounding("A", 100, 0.01),
			testutils.Flat("B", 100),
		)
	}

	res, err := e.Compute(context.Background(), compounding(160))
	require.NoError(t, err)
	require.Len(t, res.Commodities, 2)
	a := findRecord(t, res, "A")
	b := findRecord(t, res, "B")
	// 60 lower smoothed ratios out of 159 earlier rows
	assert.Equal(t, 37.7, a.PctRatio)
	assert.Equal(t, 87.7, a.X)
	assert.Equal(t, types.Weak, a.StrengthLabel)
	assert.Equal(t, 0.0, b.PctRatio)
	assert.Greater(t, a.X, b.X)
	require.Len(t, a.Tail, 5)
	for i := 1; i < len(a.Tail); i++ {
		assert.Greater(t, a.Tail[i].X, a.Tail[i-1].X)
	}

	res, err = e.Compute(context.Background(), compounding(longHistory))
	require.NoError(t, err)
	a = findRecord(t, res, "A")
	assert.Equal(t, 83.5, a.PctRatio)
	assert.Equal(t, types.VeryStrong, a.StrengthLabel)
	assert.Equal(t, "Significantly outperforming (top 10%)", a.StrengthDescription)
	assert.Equal(t, types.VeryWeak, findRecord(t, res, "B").StrengthLabel)
}

func TestComputeTailFollowsRecentRows(t *testing.T) {
	cfg := defaultParams()
	cfg.RatioPeriod = 20
	cfg.MomentumPeriod = 10
	e, _ := newTestEngine(t, cfg, testRegistry(t, "A", "B"))

	res, err := e.Compute(context.Background(), leaderTable(160))
	require.NoError(t, err)
	a := findRecord(t, res, "A")
	require.Len(t, a.Tail, cfg.TailLength)
	for i := 1; i < len(a.Tail); i++ {
		assert.GreaterOrEqual(t, a.Tail[i].X, a.Tail[i-1].X, "tail must run oldest to newest")
	}
	assert.Equal(t, a.X, a.Tail[len(a.Tail)-1].X)
	assert.Equal(t, a.Y, a.Tail[len(a.Tail)-1].Y)
	for _, p := range a.Tail {
		assert.GreaterOrEqual(t, p.X, 50.0)
		assert.Less(t, p.X, 150.0)
	}
}

func TestUnregisteredSymbolsStayInBenchmark(t *testing.T) {
	cols := []testutils.Column{
		testutils.Accelerating("A", 100, growth),
		testutils.Flat("B", 100),
		testutils.Compounding("X", 50, 0.001),
	}
	full := testutils.BuildTable(185, cols...)
	pair := testutils.BuildTable(185, cols[:2]...)

	partial, log := newTestEngine(t, defaultParams(), testRegistry(t, "A", "B"))
	everything, _ := newTestEngine(t, defaultParams(), testRegistry(t, "A", "B", "X"))

	res, err := partial.Compute(context.Background(), full)
	require.NoError(t, err)
	for _, r := range res.Commodities {
		assert.NotEqual(t, "X", r.Symbol)
	}
	reason, ok := log.StringField("symbol_skipped", "reason")
	require.True(t, ok)
	assert.Equal(t, "unregistered", reason)

	all, err := everything.Compute(context.Background(), full)
	require.NoError(t, err)
	assert.Equal(t, findRecord(t, all, "A"), findRecord(t, res, "A"))

	withX, err := partial.Analyze(context.Background(), full)
	require.NoError(t, err)
	withoutX, err := partial.Analyze(context.Background(), pair)
	require.NoError(t, err)
	require.Len(t, withX, 2)
	last := len(withX[0].RS) - 1
	assert.NotEqual(t, withX[0].RS[last], withoutX[0].RS[last])
}

func TestEqualRecordsKeepColumnOrder(t *testing.T) {
	reg := testRegistry(t, "P", "Q", "B")
	e, _ := newTestEngine(t, defaultParams(), reg)

	order := func(syms ...string) []string {
		cols := make([]testutils.Column, 0, len(syms))
		for _, s := range syms {
			if s == "B" {
				cols = append(cols, testutils.Flat(s, 100))
			} else {
				cols = append(cols, testutils.Accelerating(s, 100, growth))
			}
		}
		res, err := e.Compute(context.Background(), testutils.BuildTable(185, cols...))
		require.NoError(t, err)
		out := make([]string, len(res.Commodities))
		for i, r := range res.Commodities {
			out[i] = r.Symbol
		}
		return out
	}

	assert.Equal(t, []string{"P", "Q", "B"}, order("P", "Q", "B"))
	assert.Equal(t, []string{"Q", "P", "B"}, order("Q", "P", "B"))
	assert.Equal(t, []string{"Q", "P", "B"}, order("B", "Q", "P"))
}

func TestComputeRejectsInvalidTables(t *testing.T) {
	e, log := newTestEngine(t, defaultParams(), testRegistry(t, "A", "B"))

	_, err := e.Compute(context.Background(), nil)
	assert.ErrorIs(t, err, types.ErrEmptyTable)

	broken := leaderTable(150)
	broken.Closes["B"] = broken.Closes["B"][:149]
	_, err = e.Compute(context.Background(), broken)
	assert.ErrorIs(t, err, types.ErrColumnLength)

	_, err = e.Compute(context.Background(), types.NewPriceTable())
	assert.ErrorIs(t, err, types.ErrNoSymbols)
	assert.Equal(t, 3, log.Count("error", "compass_compute_failed"))
}

func TestComputeHonorsCancellation(t *testing.T) {
	e, _ := newTestEngine(t, defaultParams(), testRegistry(t, "A", "B"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Compute(ctx, leaderTable(185))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = e.Analyze(ctx, leaderTable(185))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRollingRankWindow(t *testing.T) {
	cfg := defaultParams()
	cfg.RankWindow = 60
	e, _ := newTestEngine(t, cfg, testRegistry(t, "A", "B"))

	res, err := e.Compute(context.Background(), leaderTable(185))
	require.NoError(t, err)
	a := findRecord(t, res, "A")
	// only the trailing 60 rows are compared; ten of them predate the first
	// momentum reading
	assert.Equal(t, 100.0, a.PctRatio)
	assert.Equal(t, 83.3, a.PctMomentum)
	assert.Equal(t, 60, res.Parameters.RankWindow)
}

func TestAnalyzeExposesSeries(t *testing.T) {
	e, _ := newTestEngine(t, defaultParams(), testRegistry(t, "A", "B"))
	series, err := e.Analyze(context.Background(), leaderTable(185))
	require.NoError(t, err)
	require.Len(t, series, 2)

	a := series[0]
	assert.Equal(t, "A", a.Symbol)
	assert.Equal(t, 100.0, a.Normalized[0])
	assert.True(t, math.IsNaN(a.Smoothed[98]))
	assert.False(t, math.IsNaN(a.Smoothed[99]))
	assert.True(t, math.IsNaN(a.RateOfChange[133]))
	assert.False(t, math.IsNaN(a.RateOfChange[134]))
	ratio, momentum, ok := a.Latest()
	require.True(t, ok)
	assert.InDelta(t, 100*85.0/184.0, ratio, 1e-9)
	assert.InDelta(t, 100*50.0/184.0, momentum, 1e-9)

	_, _, ok = (&Series{}).Latest()
	assert.False(t, ok)
}

func TestResultJSONShape(t *testing.T) {
	e, _ := newTestEngine(t, defaultParams(), testRegistry(t, "A", "B"))
	res, err := e.Compute(context.Background(), leaderTable(longHistory))
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	doc := string(raw)
	for _, key := range []string{
		`"generated_at"`, `"data_start"`, `"data_end"`, `"trading_days":600`,
		`"rs_ratio_period":100`, `"rs_momentum_period":35`, `"tail_length":5`,
		`"normalization":"percentile_rank"`, `"pct_ratio"`, `"pct_momentum"`,
		`"strength_label":"very_strong"`, `"momentum_label":"accelerating"`,
		`"strength_description":"Significantly outperforming (top 10%)"`,
		`"momentum_description":"Relative performance improving"`,
		`"min_periods":50`,
		`"price"`, `"price_change"`, `"price_change_pct"`,
	} {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, `"rank_window"`)
	assert.Contains(t, doc, `"summary":{"leading":1,"weakening":0,"lagging":1,"improving":0}`)
	assert.Less(t, strings.Index(doc, `"summary"`), strings.Index(doc, `"commodities"`))
}

func TestComputeIsSafeForConcurrentUse(t *testing.T) {
	cfg := defaultParams()
	cfg.Workers = 2
	e, _ := newTestEngine(t, cfg, testRegistry(t, "A", "B"))
	tbl := leaderTable(185)

	want, err := e.Compute(context.Background(), tbl)
	require.NoError(t, err)

	errs := make(chan error, 4)
	results := make(chan *Result, 4)
	for i := 0; i < 4; i++ {
		go func() {
			res, err := e.Compute(context.Background(), tbl)
			errs <- err
			results <- res
		}()
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-errs)
		assert.Equal(t, want.Commodities, (<-results).Commodities)
	}
}
