// Package pricefeed loads date-aligned close tables from CSV.
//
// The expected layout is a header row `date,SYM1,SYM2,...` followed by one
// row per trading date. Rows where any symbol has no usable close are
// dropped so every remaining date carries a price for every column.
package pricefeed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/evdnx/gocompass/logger"
	"github.com/evdnx/gocompass/types"
)

var (
	ErrBadHeader      = errors.New("csv header must start with a date column followed by symbols")
	ErrBadDate        = errors.New("unparseable date")
	ErrBadPrice       = errors.New("unparseable price")
	ErrDuplicateDate  = errors.New("duplicate date")
	ErrTooFewSymbols  = errors.New("too few symbols")
	ErrNoAlignedRows  = errors.New("no date has a close for every symbol")
	ErrRowFieldsCount = errors.New("row has wrong number of fields")
)

var dateLayouts = []string{time.DateOnly, time.RFC3339, "2006-01-02 15:04:05"}

// Options tunes the loader.
type Options struct {
	// MinSymbols fails the load when the header names fewer symbols; 0 disables.
	MinSymbols int
	Log        logger.Logger
}

// Stats summarizes what a load kept and dropped.
type Stats struct {
	Rows    int
	Dropped int
	Symbols int
}

type row struct {
	line   int
	date   time.Time
	prices map[string]float64
}

// Load parses r into a price table.
func Load(r io.Reader, opts Options) (*types.PriceTable, Stats, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	var stats Stats

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	symbols, err := parseHeader(header)
	if err != nil {
		return nil, stats, err
	}
	stats.Symbols = len(symbols)
	if opts.MinSymbols > 0 && len(symbols) < opts.MinSymbols {
		return nil, stats, fmt.Errorf("%w: got %d, need at least %d", ErrTooFewSymbols, len(symbols), opts.MinSymbols)
	}
	cr.FieldsPerRecord = len(header)

	var rows []row
	seen := make(map[time.Time]int)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, csv.ErrFieldCount) {
			return nil, stats, fmt.Errorf("%w: %v", ErrRowFieldsCount, err)
		}
		if err != nil {
			return nil, stats, err
		}
		line, _ := cr.FieldPos(0)
		date, err := parseDate(rec[0])
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", line, err)
		}
		if prev, dup := seen[date]; dup {
			return nil, stats, fmt.Errorf("line %d: %w %s (first on line %d)", line, ErrDuplicateDate, date.Format(time.DateOnly), prev)
		}
		seen[date] = line

		prices, ok, err := parseCloses(symbols, rec[1:])
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			stats.Dropped++
			log.Debug("price_row_dropped", logger.Int("line", line), logger.String("date", date.Format(time.DateOnly)))
			continue
		}
		rows = append(rows, row{line: line, date: date, prices: prices})
	}
	if len(rows) == 0 {
		return nil, stats, ErrNoAlignedRows
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	table := types.NewPriceTable(symbols...)
	for _, r := range rows {
		if err := table.AddRow(r.date, r.prices); err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", r.line, err)
		}
	}
	stats.Rows = table.Len()
	log.Info("prices_loaded",
		logger.Int("rows", stats.Rows),
		logger.Int("dropped", stats.Dropped),
		logger.Int("symbols", stats.Symbols),
	)
	return table, stats, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string, opts Options) (*types.PriceTable, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()
	return Load(f, opts)
}

func parseHeader(header []string) ([]string, error) {
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(header[0], "\ufeff")), "date") {
		return nil, ErrBadHeader
	}
	symbols := make([]string, 0, len(header)-1)
	seen := make(map[string]struct{}, len(header)-1)
	for _, h := range header[1:] {
		s := strings.TrimSpace(h)
		if s == "" {
			return nil, fmt.Errorf("%w: empty symbol", ErrBadHeader)
		}
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: %s", types.ErrDuplicateSymbol, s)
		}
		seen[s] = struct{}{}
		symbols = append(symbols, s)
	}
	return symbols, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// parseCloses reports ok=false when any cell is empty or not a positive
// finite number. Text that is not a number at all is an error.
func parseCloses(symbols, cells []string) (map[string]float64, bool, error) {
	prices := make(map[string]float64, len(symbols))
	ok := true
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" || strings.EqualFold(cell, "nan") {
			ok = false
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s=%q", ErrBadPrice, symbols[i], cell)
		}
		if !(v > 0) || math.IsInf(v, 1) {
			ok = false
			continue
		}
		prices[symbols[i]] = v
	}
	return prices, ok, nil
}
