package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/strategy-cli/internal/analysis"
	"github.com/sells-group/strategy-cli/internal/datasource"
	"github.com/sells-group/strategy-cli/internal/market"
	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/pipeline"
)

var (
	assessOrg       string
	assessMarket    string
	assessEndPeriod string
	assessLookback  int
	assessSave      bool
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run a strategy assessment for one operator in one market",
	Long:  "Runs the full assessment for --org in --market and prints the bundle, diagnosis and decisions as JSON. With --save the run and its provenance ledger are persisted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("assess"); err != nil {
			return err
		}

		markets, err := market.Load(cfg.Markets.Path)
		if err != nil {
			return err
		}
		data, err := datasource.LoadFixture(cfg.Data.FixturePath)
		if err != nil {
			return err
		}
		pack, err := analysis.LoadPack(cfg.Data.InsightsPath)
		if err != nil {
			return err
		}

		var opts []pipeline.Option
		if assessSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			opts = append(opts, pipeline.WithStore(st))
		}

		orch, err := pipeline.New(cfg, markets, data, analysis.NewSuite(pack), opts...)
		if err != nil {
			return err
		}

		req := model.RunRequest{
			OrgID:     assessOrg,
			MarketID:  assessMarket,
			EndPeriod: assessEndPeriod,
			Lookback:  assessLookback,
		}
		a, _, err := orch.Assess(ctx, req)
		if err != nil {
			zap.L().Error("assessment failed",
				zap.String("org", req.OrgID),
				zap.String("market", req.MarketID),
				zap.Error(err),
			)
			return eris.Wrap(err, "assess")
		}

		zap.L().Info("assessment complete",
			zap.String("run_id", a.Bundle.RunID),
			zap.String("label", a.Diagnosis.Label),
			zap.Bool("saved", assessSave),
		)
		return writeJSON(os.Stdout, a)
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	assessCmd.Flags().StringVar(&assessOrg, "org", "", "target operator id (required)")
	assessCmd.Flags().StringVar(&assessMarket, "market", "", "market id (required)")
	assessCmd.Flags().StringVar(&assessEndPeriod, "end-period", "", "end period as YYYY-Qn (default: latest in data)")
	assessCmd.Flags().IntVar(&assessLookback, "lookback", 0, "lookback window in quarters (default from config)")
	assessCmd.Flags().BoolVar(&assessSave, "save", false, "persist the run and its provenance ledger")
	_ = assessCmd.MarkFlagRequired("org")
	_ = assessCmd.MarkFlagRequired("market")
	rootCmd.AddCommand(assessCmd)
}
