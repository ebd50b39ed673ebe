package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/strategy-cli/internal/market"
)

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List configured markets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := market.Load(cfg.Markets.Path)
		if err != nil {
			return err
		}
		formatMarkets(os.Stdout, reg.All())
		return nil
	},
}

func formatMarkets(out io.Writer, markets []market.Config) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCURRENCY\tOPERATORS")
	for _, m := range markets {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Currency, strings.Join(m.Operators, ","))
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(marketsCmd)
}
