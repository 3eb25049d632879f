// Package display applies the publication policy to a compass result.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/evdnx/gocompass/compass"
	"github.com/evdnx/gocompass/config"
)

// Settings records which price fields a published document carries.
type Settings struct {
	ShowPrices      bool `json:"show_prices"`
	ShowPercentages bool `json:"show_percentages"`
}

func FromConfig(c config.DisplayConfig) Settings {
	return Settings{ShowPrices: c.ShowPrices, ShowPercentages: c.ShowPercentages}
}

// Document is the published form of a result.
type Document struct {
	*compass.Result
	DisplaySettings Settings `json:"display_settings"`
}

// Apply copies res and removes the price fields s hides. With ShowPrices
// off, price and price_change go; with ShowPercentages off,
// price_change_pct goes. res itself is left untouched.
func Apply(res *compass.Result, s Settings) *Document {
	out := *res
	out.Commodities = make([]compass.Record, len(res.Commodities))
	copy(out.Commodities, res.Commodities)
	for i := range out.Commodities {
		r := &out.Commodities[i]
		if !s.ShowPrices {
			r.Price = nil
			r.PriceChange = nil
		}
		if !s.ShowPercentages {
			r.PriceChangePct = nil
		}
	}
	return &Document{Result: &out, DisplaySettings: s}
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode compass document: %w", err)
	}
	return nil
}

// WriteFile encodes doc to path, creating parent directories. The file is
// written to a temporary sibling and renamed so readers never see a partial
// document.
func WriteFile(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".compass-*.json")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, doc); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}
