package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/strategy-cli/internal/export"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

var (
	exportRunID  string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a persisted assessment to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, exportRunID)
		if err != nil {
			return eris.Wrap(err, "export")
		}
		if run.Result == nil {
			return eris.Errorf("export: run %s has no result (status %s)", run.ID, run.Status)
		}
		l, err := provenance.Load(ctx, st, run.ID)
		if err != nil {
			return err
		}

		output := exportOutput
		if output == "" {
			output = run.ID + ".xlsx"
		}
		if err := export.WriteFile(output, run.Result, l); err != nil {
			return err
		}

		zap.L().Info("export complete", zap.String("run_id", run.ID), zap.String("path", output))
		fmt.Fprintln(os.Stderr, output)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRunID, "run-id", "", "run id (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (default <run-id>.xlsx)")
	_ = exportCmd.MarkFlagRequired("run-id")
	rootCmd.AddCommand(exportCmd)
}
