// Package pipeline sequences one assessment run: the four domain analyses,
// the tariff side-analysis, SWOT synthesis, SPAN scoring, provenance
// finalization and, for Assess, diagnosis, decisions and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/strategy-cli/internal/analysis"
	"github.com/sells-group/strategy-cli/internal/config"
	"github.com/sells-group/strategy-cli/internal/datasource"
	"github.com/sells-group/strategy-cli/internal/decision"
	"github.com/sells-group/strategy-cli/internal/market"
	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
	"github.com/sells-group/strategy-cli/internal/span"
	"github.com/sells-group/strategy-cli/internal/store"
	"github.com/sells-group/strategy-cli/internal/swot"
)

// ErrAnalysisFailed matches any failed domain analysis. The run is aborted
// and no partial result is returned.
var ErrAnalysisFailed = errors.New("analysis failed")

// AnalysisError reports which stage failed. It matches ErrAnalysisFailed and
// unwraps to the analyzer's own error.
type AnalysisError struct {
	Stage    string
	OrgID    string
	MarketID string
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("pipeline: %s analysis for %s/%s: %v", e.Stage, e.OrgID, e.MarketID, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Is reports whether target is ErrAnalysisFailed.
func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysisFailed }

// Result is the output of Run. The ledger is returned alongside the bundle
// and is owned by the caller once Run returns.
type Result struct {
	Bundle *model.Bundle
	Ledger *provenance.Ledger
}

// Orchestrator runs assessments against one data handle and analyzer suite.
type Orchestrator struct {
	cfg     *config.Config
	markets *market.Registry
	data    datasource.Reader
	suite   analysis.Suite
	scorer  *span.Scorer
	engine  *decision.Engine
	store   store.Store
	newID   func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore makes Assess record run status, results and the ledger in st.
func WithStore(st store.Store) Option {
	return func(o *Orchestrator) { o.store = st }
}

// New validates the scorer and decision configuration and returns an
// Orchestrator.
func New(cfg *config.Config, markets *market.Registry, data datasource.Reader, suite analysis.Suite, opts ...Option) (*Orchestrator, error) {
	scorer, err := span.New(cfg.SPAN)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: span scorer")
	}
	engine, err := decision.New(cfg.Decision)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: decision engine")
	}

	o := &Orchestrator{
		cfg:     cfg,
		markets: markets,
		data:    data,
		suite:   suite,
		scorer:  scorer,
		engine:  engine,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run produces the bundle for req under a fresh run id.
func (o *Orchestrator) Run(ctx context.Context, req model.RunRequest) (*Result, error) {
	return o.run(ctx, o.newID(), req, func(model.RunStatus) {})
}

func (o *Orchestrator) run(ctx context.Context, runID string, req model.RunRequest, setStatus func(model.RunStatus)) (*Result, error) {
	mkt, err := o.markets.Lookup(req.MarketID)
	if err != nil {
		return nil, err
	}

	start, end, err := o.window(ctx, req)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("org", req.OrgID),
		zap.String("market", req.MarketID),
		zap.String("run_id", runID),
	)
	log.Info("pipeline: starting run",
		zap.String("start_period", start.String()),
		zap.String("end_period", end.String()),
	)
	runStart := time.Now()

	ledger := provenance.NewLedger(runID)
	areq := analysis.Request{
		OrgID:       req.OrgID,
		MarketID:    req.MarketID,
		Market:      mkt,
		StartPeriod: start,
		EndPeriod:   end,
		Data:        o.data,
		Ledger:      ledger,
	}

	b := &model.Bundle{
		RunID:       runID,
		OrgID:       req.OrgID,
		MarketID:    req.MarketID,
		StartPeriod: start.String(),
		EndPeriod:   end.String(),
	}

	setStatus(model.RunStatusAnalyzing)
	stages := []struct {
		name string
		fn   func() error
	}{
		{"trends", func() (err error) { b.Trends, err = o.suite.Trends.AnalyzeTrends(ctx, areq); return }},
		{"market", func() (err error) { b.Market, err = o.suite.Market.AnalyzeMarket(ctx, areq); return }},
		{"competition", func() (err error) { b.Competition, err = o.suite.Competition.AnalyzeCompetition(ctx, areq); return }},
		{"self", func() (err error) { b.Self, err = o.suite.Self.AnalyzeSelf(ctx, areq); return }},
	}
	for _, s := range stages {
		stageStart := time.Now()
		if err := s.fn(); err != nil {
			return nil, &AnalysisError{Stage: s.name, OrgID: req.OrgID, MarketID: req.MarketID, Err: err}
		}
		log.Info("pipeline: stage complete",
			zap.String("stage", s.name),
			zap.Int64("duration_ms", time.Since(stageStart).Milliseconds()),
		)
	}

	b.Tariffs = o.tariffs(ctx, areq)

	setStatus(model.RunStatusSynthesizing)
	b.SWOT = swot.Build(swot.Inputs{
		Trends:      b.Trends,
		Market:      b.Market,
		Competition: b.Competition,
		Self:        b.Self,
	}, ledger)
	b.SPAN = o.scorer.Score(span.Inputs{
		OrgID:       req.OrgID,
		SWOT:        b.SWOT,
		Trends:      b.Trends,
		Market:      b.Market,
		Competition: b.Competition,
		Self:        b.Self,
	}, ledger)

	o.finalize(b, ledger)

	log.Info("pipeline: run complete",
		zap.Int("sources", len(ledger.Sources())),
		zap.Int("values", b.Quality.TotalValues),
		zap.Int64("duration_ms", time.Since(runStart).Milliseconds()),
	)
	return &Result{Bundle: b, Ledger: ledger}, nil
}

// window resolves the concrete [start, end] periods for req. An explicit end
// period that does not parse is a configuration error.
func (o *Orchestrator) window(ctx context.Context, req model.RunRequest) (model.Period, model.Period, error) {
	var end model.Period
	if req.EndPeriod != "" {
		p, err := model.ParsePeriod(req.EndPeriod)
		if err != nil {
			return model.Period{}, model.Period{}, eris.Wrap(err, "pipeline: end period")
		}
		end = p
	} else {
		p, err := o.data.LatestPeriod(ctx, req.MarketID)
		if err != nil {
			return model.Period{}, model.Period{}, eris.Wrapf(err, "pipeline: resolve end period for market %s", req.MarketID)
		}
		end = p
	}

	lookback := req.Lookback
	if lookback <= 0 {
		lookback = o.cfg.Run.LookbackQuarters
	}
	start, end := model.Window(end, lookback)
	return start, end, nil
}

// tariffs runs the side-analysis. Any failure yields the unavailable default.
func (o *Orchestrator) tariffs(ctx context.Context, req analysis.Request) *model.TariffInsight {
	if o.suite.Tariffs == nil {
		return model.UnavailableTariffs()
	}
	t, err := o.suite.Tariffs.AnalyzeTariffs(ctx, req)
	if err != nil || t == nil {
		return model.UnavailableTariffs()
	}
	return t
}

// finalize registers every citable source the analyses returned, upgrades
// unsourced values and attaches the quality report and footnotes.
func (o *Orchestrator) finalize(b *model.Bundle, l *provenance.Ledger) {
	var refs []model.SourceReference
	if b.Trends != nil {
		refs = append(refs, b.Trends.Sources...)
	}
	if b.Market != nil {
		refs = append(refs, b.Market.Sources...)
	}
	if b.Competition != nil {
		refs = append(refs, b.Competition.Sources...)
	}
	if b.Self != nil {
		refs = append(refs, b.Self.Sources...)
	}
	for _, ref := range refs {
		l.RegisterSource(ref)
	}

	l.EnrichUnsourced(o.cfg.Provenance.MediumSourceThreshold)
	b.Quality = l.QualityReport()
	b.Footnotes = l.Footnotes()
	if b.Footnotes == nil {
		b.Footnotes = []model.Footnote{}
	}
}
