package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

var (
	provenanceRunID string
	provenanceJSON  bool
)

var provenanceCmd = &cobra.Command{
	Use:   "provenance",
	Short: "Show footnotes and data quality for a persisted run",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if _, err := st.GetRun(ctx, provenanceRunID); err != nil {
			return eris.Wrap(err, "provenance")
		}
		l, err := provenance.Load(ctx, st, provenanceRunID)
		if err != nil {
			return err
		}

		if provenanceJSON {
			return writeJSON(os.Stdout, map[string]any{
				"run_id":    provenanceRunID,
				"quality":   l.QualityReport(),
				"footnotes": l.Footnotes(),
			})
		}
		formatProvenance(os.Stdout, l.Footnotes(), l.QualityReport())
		return nil
	},
}

func formatProvenance(out io.Writer, notes []model.Footnote, q model.QualityReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Values:\t%d\n", q.TotalValues)
	for _, level := range []model.ConfidenceLevel{
		model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow, model.ConfidenceEstimated,
	} {
		_, _ = fmt.Fprintf(w, "  %s:\t%d\n", level, q.ByConfidence[level])
	}
	_, _ = fmt.Fprintf(w, "Conflicts:\t%d\n", q.Conflicts)
	_, _ = fmt.Fprintf(w, "Sources:\t%d\n", q.UniqueSources)
	_ = w.Flush()

	if len(notes) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	for _, n := range notes {
		_, _ = fmt.Fprintf(out, "[%d] %s\n", n.Index, n.Text)
	}
}

func init() {
	provenanceCmd.Flags().StringVar(&provenanceRunID, "run-id", "", "run id (required)")
	provenanceCmd.Flags().BoolVar(&provenanceJSON, "json", false, "print as JSON")
	_ = provenanceCmd.MarkFlagRequired("run-id")
	rootCmd.AddCommand(provenanceCmd)
}
