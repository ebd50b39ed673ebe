// Package analysis defines the domain analyzers the pipeline sequences and
// provides a snapshot-backed implementation of them plus the tariff scan.
package analysis

import (
	"context"

	"github.com/sells-group/strategy-cli/internal/datasource"
	"github.com/sells-group/strategy-cli/internal/market"
	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

// Request is the input shared by every analyzer for one run.
type Request struct {
	OrgID       string
	MarketID    string
	Market      market.Config
	StartPeriod model.Period
	EndPeriod   model.Period
	Data        datasource.Reader
	Ledger      *provenance.Ledger
}

// TrendsAnalyzer produces the macro-trend insight.
type TrendsAnalyzer interface {
	AnalyzeTrends(ctx context.Context, req Request) (*model.TrendsInsight, error)
}

// MarketAnalyzer produces the market/customer insight.
type MarketAnalyzer interface {
	AnalyzeMarket(ctx context.Context, req Request) (*model.MarketInsight, error)
}

// CompetitionAnalyzer produces the competitive insight.
type CompetitionAnalyzer interface {
	AnalyzeCompetition(ctx context.Context, req Request) (*model.CompetitionInsight, error)
}

// SelfAnalyzer produces the capability self-analysis.
type SelfAnalyzer interface {
	AnalyzeSelf(ctx context.Context, req Request) (*model.SelfInsight, error)
}

// TariffAnalyzer produces the best-effort tariff insight.
type TariffAnalyzer interface {
	AnalyzeTariffs(ctx context.Context, req Request) (*model.TariffInsight, error)
}

// Suite bundles the analyzers a pipeline runs.
type Suite struct {
	Trends      TrendsAnalyzer
	Market      MarketAnalyzer
	Competition CompetitionAnalyzer
	Self        SelfAnalyzer
	Tariffs     TariffAnalyzer
}

// NewSuite wires a Snapshot for the four domain analyses and TariffScan for
// the side-analysis.
func NewSuite(s *Snapshot) Suite {
	return Suite{
		Trends:      s,
		Market:      s,
		Competition: s,
		Self:        s,
		Tariffs:     TariffScan{},
	}
}
