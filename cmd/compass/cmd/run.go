package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/evdnx/gocompass/compass"
	"github.com/evdnx/gocompass/config"
	"github.com/evdnx/gocompass/display"
	"github.com/evdnx/gocompass/logger"
	"github.com/evdnx/gocompass/pricefeed"
	"github.com/evdnx/gocompass/registry"
	"github.com/evdnx/gocompass/types"
	"github.com/spf13/cobra"
)

var quiet bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the compass once and write the JSON document",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := runOnce(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		if !quiet {
			printSummary(cmd.OutOrStdout(), doc, types.DefaultLabels())
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the summary")
}

func loadRegistry(path string) (*registry.Registry, error) {
	if path == "" {
		return registry.Commodities(), nil
	}
	return registry.LoadFile(path)
}

// runOnce loads prices, computes the compass, applies the display policy
// and publishes the document to cfg.Input.OutputPath.
func runOnce(ctx context.Context, cfg config.Config, log logger.Logger) (*display.Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()

	reg, err := loadRegistry(cfg.Input.RegistryPath)
	if err != nil {
		return nil, err
	}
	table, _, err := pricefeed.LoadFile(cfg.Input.PricesPath, pricefeed.Options{
		MinSymbols: cfg.Input.MinSymbols,
		Log:        log,
	})
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	engine, err := compass.NewEngine(cfg.Compass, reg, log)
	if err != nil {
		return nil, err
	}
	res, err := engine.Compute(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("compute compass: %w", err)
	}

	settings := display.FromConfig(cfg.Display)
	doc := display.Apply(res, settings)
	if err := display.WriteFile(cfg.Input.OutputPath, doc); err != nil {
		return nil, err
	}
	log.Info("compass_published",
		logger.String("path", cfg.Input.OutputPath),
		logger.Int("records", len(doc.Commodities)),
		logger.Bool("show_prices", settings.ShowPrices),
		logger.Bool("show_percentages", settings.ShowPercentages),
		logger.Duration("elapsed", time.Since(started)),
	)
	return doc, nil
}

func printSummary(w io.Writer, doc *display.Document, labels types.LabelTable) {
	fmt.Fprintf(w, "Commodities: %d\n", len(doc.Commodities))
	fmt.Fprintf(w, "Data range: %s to %s (%d days)\n",
		doc.DataStart.Format(time.DateOnly), doc.DataEnd.Format(time.DateOnly), doc.TradingDays)
	fmt.Fprintf(w, "Method: %s\n", doc.Parameters.Normalization)

	fmt.Fprintln(w, "\nQuadrant distribution:")
	for _, q := range types.QuadrantOrder {
		fmt.Fprintf(w, "  %-12s: %d\n", titleCase(string(q)), doc.Summary.Count(q))
	}

	if len(doc.Commodities) > 0 {
		fmt.Fprintln(w)
	}
	for _, r := range doc.Commodities {
		fmt.Fprintf(w, "  %-8s %-10s x=%5.1f y=%5.1f  %s / %s\n",
			r.Short, r.Quadrant, r.X, r.Y,
			labels.StrengthNames[r.StrengthLabel], labels.MomentumNames[r.MomentumLabel])
	}

	fmt.Fprintln(w, "\nDisplay settings:")
	fmt.Fprintf(w, "  Show prices: %t\n", doc.DisplaySettings.ShowPrices)
	fmt.Fprintf(w, "  Show percentages: %t\n", doc.DisplaySettings.ShowPercentages)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
