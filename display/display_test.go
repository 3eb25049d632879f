package display

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evdnx/gocompass/compass"
	"github.com/evdnx/gocompass/config"
	"github.com/evdnx/gocompass/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func sampleResult() *compass.Result {
	return &compass.Result{
		GeneratedAt: time.Date(2025, 6, 30, 16, 0, 0, 0, time.UTC),
		DataStart:   time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		DataEnd:     time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC),
		TradingDays: 250,
		Parameters:  compass.Parameters{RatioPeriod: 100, MomentumPeriod: 35, TailLength: 5, MinPeriods: 50, Normalization: compass.NormalizationPercentileRank},
		Summary:     compass.Summary{Leading: 1},
		Commodities: []compass.Record{{
			Symbol:         "GC",
			Name:           "Gold",
			Short:          "Gold",
			Category:       "precious_metals",
			Quadrant:       types.Leading,
			X:              131.2,
			Y:              118.4,
			Tail:           []types.Point{{X: 130, Y: 117}},
			PctRatio:       81.2,
			PctMomentum:    68.4,
			StrengthLabel:  types.VeryStrong,
			MomentumLabel:  types.Accelerating,
			Price:          ptr(2847.3),
			PriceChange:    ptr(33.75),
			PriceChangePct: ptr(1.2),
		}},
	}
}

func decode(t *testing.T, doc *Document) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func firstRecord(t *testing.T, m map[string]any) map[string]any {
	t.Helper()
	list, ok := m["commodities"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	return list[0].(map[string]any)
}

func TestApplyShowsEverythingByDefault(t *testing.T) {
	doc := Apply(sampleResult(), FromConfig(config.Default().Display))
	m := decode(t, doc)

	rec := firstRecord(t, m)
	assert.Equal(t, 2847.3, rec["price"])
	assert.Equal(t, 33.75, rec["price_change"])
	assert.Equal(t, 1.2, rec["price_change_pct"])
	assert.Equal(t, map[string]any{"show_prices": true, "show_percentages": true}, m["display_settings"])
	assert.Equal(t, float64(250), m["trading_days"])
}

func TestApplyHidesPrices(t *testing.T) {
	res := sampleResult()
	m := decode(t, Apply(res, Settings{ShowPrices: false, ShowPercentages: true}))

	rec := firstRecord(t, m)
	assert.NotContains(t, rec, "price")
	assert.NotContains(t, rec, "price_change")
	assert.Equal(t, 1.2, rec["price_change_pct"])
	assert.Equal(t, false, m["display_settings"].(map[string]any)["show_prices"])

	require.NotNil(t, res.Commodities[0].Price, "source result must not be modified")
}

func TestApplyHidesPercentages(t *testing.T) {
	m := decode(t, Apply(sampleResult(), Settings{ShowPrices: true}))

	rec := firstRecord(t, m)
	assert.Equal(t, 2847.3, rec["price"])
	assert.NotContains(t, rec, "price_change_pct")
}

func TestApplyHidesBoth(t *testing.T) {
	m := decode(t, Apply(sampleResult(), Settings{}))

	rec := firstRecord(t, m)
	for _, key := range []string{"price", "price_change", "price_change_pct"} {
		assert.NotContains(t, rec, key)
	}
	assert.Equal(t, "leading", rec["quadrant"])
	assert.Equal(t, 131.2, rec["x"])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "compass.json")
	require.NoError(t, WriteFile(path, Apply(sampleResult(), Settings{ShowPrices: true, ShowPercentages: true})))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"generated_at\"")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "display_settings")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}
