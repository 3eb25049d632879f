package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/evdnx/gocompass/registry"
	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "List the tracked assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cfg.Input.RegistryPath)
		if err != nil {
			return err
		}
		return printRegistry(cmd.OutOrStdout(), reg)
	},
}

func printRegistry(w io.Writer, reg *registry.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tSHORT\tNAME\tCATEGORY\tTICKER")
	for _, a := range reg.Assets() {
		category := a.Category
		if name, ok := registry.CategoryNames[a.Category]; ok {
			category = name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.Symbol, a.ShortName(), a.Name, category, a.Ticker)
	}
	return tw.Flush()
}
