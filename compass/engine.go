// Package compass computes relative-strength / relative-momentum positions
// for a basket of assets against their equal-weight geometric benchmark.
package compass

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/evdnx/gocompass/config"
	"github.com/evdnx/gocompass/logger"
	"github.com/evdnx/gocompass/metrics"
	"github.com/evdnx/gocompass/rank"
	"github.com/evdnx/gocompass/registry"
	"github.com/evdnx/gocompass/types"
	"golang.org/x/sync/errgroup"
)

// Skip reasons reported in logs and metrics.
const (
	skipUnregistered = "unregistered"
	skipWarmingUp    = "warming_up"
)

// Series is the full per-row history behind one asset's compass position.
// Undefined rows hold NaN.
type Series struct {
	Symbol       string
	Normalized   []float64
	RS           []float64
	Smoothed     []float64
	RateOfChange []float64
	RatioPct     []float64
	MomentumPct  []float64
}

// Latest returns the last ratio and momentum percentiles and whether both
// are defined.
func (s *Series) Latest() (ratio, momentum float64, ok bool) {
	n := len(s.RatioPct)
	if n == 0 {
		return 0, 0, false
	}
	ratio, momentum = s.RatioPct[n-1], s.MomentumPct[n-1]
	return ratio, momentum, rank.Defined(ratio) && rank.Defined(momentum)
}

// Engine is stateless between calls; one Engine may serve concurrent Computes.
type Engine struct {
	cfg      config.CompassConfig
	registry *registry.Registry
	labels   types.LabelTable
	log      logger.Logger
	now      func() time.Time
}

type Option func(*Engine)

// WithLabels replaces the tooltip tables.
func WithLabels(l types.LabelTable) Option {
	return func(e *Engine) { e.labels = l }
}

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine validates cfg and binds the engine to a registry and logger.
func NewEngine(cfg config.CompassConfig, reg *registry.Registry, log logger.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("compass config: %w", err)
	}
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{
		cfg:      cfg,
		registry: reg,
		labels:   types.DefaultLabels(),
		log:      log,
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) rankOptions() rank.Options {
	return rank.Options{MinPeriods: e.cfg.MinPeriods, Window: e.cfg.RankWindow}
}

func (e *Engine) workers() int {
	if e.cfg.Workers > 0 {
		return e.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Analyze returns the full series for every table symbol the registry knows,
// in table column order.
func (e *Engine) Analyze(ctx context.Context, table *types.PriceTable) ([]*Series, error) {
	if err := e.checkTable(table); err != nil {
		return nil, err
	}
	series, _, err := e.analyze(ctx, table)
	return series, err
}

func (e *Engine) checkTable(table *types.PriceTable) error {
	if table == nil {
		return types.ErrEmptyTable
	}
	if err := table.Validate(); err != nil {
		return fmt.Errorf("invalid price table: %w", err)
	}
	if required := e.cfg.MinRows(); table.Len() < required {
		return &InsufficientHistoryError{Required: required, Available: table.Len()}
	}
	return nil
}

// analyze normalizes the whole table and ranks the registered symbols on a
// bounded worker pool. It also returns the symbols the registry left out.
func (e *Engine) analyze(ctx context.Context, table *types.PriceTable) ([]*Series, []string, error) {
	normalized, benchmark := Normalize(table)

	var symbols, unregistered []string
	for _, s := range table.Symbols {
		if _, ok := e.registry.Lookup(s); ok {
			symbols = append(symbols, s)
		} else {
			unregistered = append(unregistered, s)
		}
	}

	out := make([]*Series, len(symbols))
	opts := e.rankOptions()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i, sym := range symbols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := e.symbolSeries(sym, normalized[sym], benchmark, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", sym, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return out, unregistered, nil
}

func (e *Engine) symbolSeries(sym string, normalized, benchmark []float64, opts rank.Options) (*Series, error) {
	rs := RelativeStrength(normalized, benchmark)
	smoothed := MovingAverage(rs, e.cfg.RatioPeriod)
	roc := RateOfChange(smoothed, e.cfg.MomentumPeriod)

	ratioPct, err := rank.Percentile(smoothed, opts)
	if err != nil {
		return nil, err
	}
	momentumPct, err := rank.Percentile(roc, opts)
	if err != nil {
		return nil, err
	}
	return &Series{
		Symbol:       sym,
		Normalized:   normalized,
		RS:           rs,
		Smoothed:     smoothed,
		RateOfChange: roc,
		RatioPct:     ratioPct,
		MomentumPct:  momentumPct,
	}, nil
}

// Compute runs the whole pipeline and assembles the compass result. It
// fails only on invalid input, insufficient history, or ctx cancellation;
// symbols that cannot be placed are left out.
func (e *Engine) Compute(ctx context.Context, table *types.PriceTable) (*Result, error) {
	started := time.Now()
	res, err := e.compute(ctx, table)
	metrics.ComputeDuration.Observe(time.Since(started).Seconds())
	switch {
	case err == nil:
		metrics.ComputeRuns.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrInsufficientHistory):
		metrics.ComputeRuns.WithLabelValues("insufficient_history").Inc()
		e.log.Warn("insufficient_history", logger.Err(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		metrics.ComputeRuns.WithLabelValues("canceled").Inc()
	default:
		metrics.ComputeRuns.WithLabelValues("error").Inc()
		e.log.Error("compass_compute_failed", logger.Err(err))
	}
	return res, err
}

func (e *Engine) compute(ctx context.Context, table *types.PriceTable) (*Result, error) {
	if err := e.checkTable(table); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	series, unregistered, err := e.analyze(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, s := range unregistered {
		metrics.SymbolsSkipped.WithLabelValues(skipUnregistered).Inc()
		e.log.Debug("symbol_skipped", logger.String("symbol", s), logger.String("reason", skipUnregistered))
	}

	closes := func(sym string) (last, prev float64) {
		col := table.Column(sym)
		return col[len(col)-1], col[len(col)-2]
	}

	records := make([]Record, 0, len(series))
	for _, s := range series {
		ratio, momentum, ok := s.Latest()
		if !ok {
			metrics.SymbolsSkipped.WithLabelValues(skipWarmingUp).Inc()
			e.log.Debug("symbol_skipped", logger.String("symbol", s.Symbol), logger.String("reason", skipWarmingUp))
			continue
		}
		asset, _ := e.registry.Lookup(s.Symbol)
		last, prev := closes(s.Symbol)
		records = append(records, e.record(asset, s, ratio, momentum, last, prev))
	}

	sortRecords(records)

	var summary Summary
	for _, r := range records {
		summary.add(r.Quadrant)
	}
	for _, q := range types.QuadrantOrder {
		metrics.QuadrantRecords.WithLabelValues(string(q)).Set(float64(summary.Count(q)))
	}
	metrics.TradingDays.Set(float64(table.Len()))

	res := &Result{
		GeneratedAt: e.now(),
		DataStart:   table.Dates[0],
		DataEnd:     table.Dates[table.Len()-1],
		TradingDays: table.Len(),
		Parameters: Parameters{
			RatioPeriod:    e.cfg.RatioPeriod,
			MomentumPeriod: e.cfg.MomentumPeriod,
			TailLength:     e.cfg.TailLength,
			MinPeriods:     e.cfg.MinPeriods,
			RankWindow:     e.cfg.RankWindow,
			Normalization:  NormalizationPercentileRank,
		},
		Summary:     summary,
		Commodities: records,
	}
	e.log.Info("compass_computed",
		logger.Int("records", len(records)),
		logger.Int("trading_days", res.TradingDays),
		logger.Int("leading", summary.Leading),
		logger.Int("weakening", summary.Weakening),
		logger.Int("lagging", summary.Lagging),
		logger.Int("improving", summary.Improving),
	)
	return res, nil
}

func (e *Engine) record(asset registry.Asset, s *Series, ratio, momentum, last, prev float64) Record {
	xs := rank.DisplaySeries(s.RatioPct)
	ys := rank.DisplaySeries(s.MomentumPct)
	strength := StrengthFor(ratio)
	mom := MomentumFor(momentum)
	change := last - prev

	return Record{
		Symbol:              asset.Symbol,
		Name:                asset.Name,
		Short:               asset.ShortName(),
		Category:            asset.Category,
		Quadrant:            Classify(ratio, momentum),
		X:                   round(rank.Display(ratio), 1),
		Y:                   round(rank.Display(momentum), 1),
		Tail:                buildTail(xs, ys, e.cfg.TailLength),
		PctRatio:            round(ratio, 1),
		PctMomentum:         round(momentum, 1),
		StrengthLabel:       strength,
		MomentumLabel:       mom,
		StrengthDescription: e.labels.StrengthDescription(strength),
		MomentumDescription: e.labels.MomentumDescription(mom),
		Price:               roundPtr(last, 2),
		PriceChange:         roundPtr(change, 2),
		PriceChangePct:      roundPtr(change/prev*100, 2),
	}
}
