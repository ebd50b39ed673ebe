package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

// ErrNoInsight is returned when the pack has no entry for (org, market) or
// the entry lacks the requested analysis.
var ErrNoInsight = errors.New("no insight available")

// Entry is the precomputed insight set for one organization in one market.
type Entry struct {
	OrgID       string                    `json:"org_id"`
	MarketID    string                    `json:"market_id"`
	Trends      *model.TrendsInsight      `json:"trends"`
	Market      *model.MarketInsight      `json:"market"`
	Competition *model.CompetitionInsight `json:"competition"`
	Self        *model.SelfInsight        `json:"self"`
}

type pack struct {
	Entries []Entry `json:"entries"`
}

type entryKey struct {
	org    string
	market string
}

// Snapshot serves the four domain analyses from an insight pack. Gaps in an
// entry are filled from the run's data handle where records exist.
type Snapshot struct {
	entries map[entryKey]Entry
}

var (
	_ TrendsAnalyzer      = (*Snapshot)(nil)
	_ MarketAnalyzer      = (*Snapshot)(nil)
	_ CompetitionAnalyzer = (*Snapshot)(nil)
	_ SelfAnalyzer        = (*Snapshot)(nil)
)

// NewSnapshot builds a Snapshot from entries. Later entries replace earlier
// ones with the same key.
func NewSnapshot(entries ...Entry) *Snapshot {
	s := &Snapshot{entries: make(map[entryKey]Entry, len(entries))}
	for _, e := range entries {
		s.entries[entryKey{e.OrgID, e.MarketID}] = e
	}
	return s
}

// LoadPack reads an insight pack from a JSON file.
func LoadPack(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: read insight pack %s", path)
	}
	var p pack
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "analysis: decode insight pack %s", path)
	}
	return NewSnapshot(p.Entries...), nil
}

func (s *Snapshot) entry(req Request, kind string) (Entry, error) {
	e, ok := s.entries[entryKey{req.OrgID, req.MarketID}]
	if !ok {
		return Entry{}, eris.Wrapf(ErrNoInsight, "analysis: %s for org %s in market %s", kind, req.OrgID, req.MarketID)
	}
	return e, nil
}

// AnalyzeTrends returns the pack's trends insight. High-severity regulatory
// events in the window are appended as policy threats.
func (s *Snapshot) AnalyzeTrends(ctx context.Context, req Request) (*model.TrendsInsight, error) {
	e, err := s.entry(req, "trends")
	if err != nil {
		return nil, err
	}
	if e.Trends == nil {
		return nil, eris.Wrapf(ErrNoInsight, "analysis: trends missing for org %s", req.OrgID)
	}
	out := *e.Trends
	out.PolicyThreats = append([]string(nil), e.Trends.PolicyThreats...)
	registerAll(req.Ledger, out.Sources)

	for _, ev := range eventsByCategory(ctx, req, "regulation", model.SeverityHigh) {
		out.PolicyThreats = append(out.PolicyThreats, ev.Title)
		trackEvent(req.Ledger, ev, "policy_threat")
	}
	return &out, nil
}

// AnalyzeMarket returns the pack's market insight. A missing market growth
// figure is filled from the latest market_growth macro indicator.
func (s *Snapshot) AnalyzeMarket(ctx context.Context, req Request) (*model.MarketInsight, error) {
	e, err := s.entry(req, "market")
	if err != nil {
		return nil, err
	}
	if e.Market == nil {
		return nil, eris.Wrapf(ErrNoInsight, "analysis: market missing for org %s", req.OrgID)
	}
	out := *e.Market
	registerAll(req.Ledger, out.Sources)

	if out.MarketGrowthPct == nil {
		if m, ok := latestIndicator(ctx, req, "market_growth"); ok {
			v := m.Value
			out.MarketGrowthPct = &v
			trackIndicator(req.Ledger, m)
		}
	}
	return &out, nil
}

// AnalyzeCompetition returns the pack's competition insight. An empty
// comparison table is rebuilt from the operator roster and revenue series,
// and high-severity competition events become intensity signals.
func (s *Snapshot) AnalyzeCompetition(ctx context.Context, req Request) (*model.CompetitionInsight, error) {
	e, err := s.entry(req, "competition")
	if err != nil {
		return nil, err
	}
	if e.Competition == nil {
		return nil, eris.Wrapf(ErrNoInsight, "analysis: competition missing for org %s", req.OrgID)
	}
	out := *e.Competition
	out.IntensitySignals = append([]string(nil), e.Competition.IntensitySignals...)
	registerAll(req.Ledger, out.Sources)

	if len(out.Comparison) == 0 {
		out.Comparison = comparisonFromSeries(ctx, req)
	}
	for _, ev := range eventsByCategory(ctx, req, "competition", model.SeverityHigh) {
		out.IntensitySignals = append(out.IntensitySignals, ev.Title)
		trackEvent(req.Ledger, ev, "intensity_signal")
	}
	for _, c := range out.Comparison {
		if c.Revenue != nil {
			req.Ledger.Track(*c.Revenue, "revenue",
				provenance.WithOperator(c.OperatorID),
				provenance.WithPeriod(req.EndPeriod.String()),
				provenance.WithSourceID(c.SourceID),
				provenance.WithUnit(req.Market.Currency),
			)
		}
		if c.SharePct != nil {
			req.Ledger.Track(*c.SharePct, "market_share",
				provenance.WithOperator(c.OperatorID),
				provenance.WithPeriod(req.EndPeriod.String()),
				provenance.WithSourceID(c.SourceID),
				provenance.WithUnit("%"),
			)
		}
	}
	return &out, nil
}

// AnalyzeSelf returns the pack's self-analysis. Missing revenue, margin and
// churn figures are filled from the target's latest series values, and a
// missing growth figure is derived year over year from revenue.
func (s *Snapshot) AnalyzeSelf(ctx context.Context, req Request) (*model.SelfInsight, error) {
	e, err := s.entry(req, "self")
	if err != nil {
		return nil, err
	}
	if e.Self == nil {
		return nil, eris.Wrapf(ErrNoInsight, "analysis: self missing for org %s", req.OrgID)
	}
	out := *e.Self
	if out.OperatorID == "" {
		out.OperatorID = req.OrgID
	}
	registerAll(req.Ledger, out.Sources)

	fin := &out.Financials
	if fin.Currency == "" {
		fin.Currency = req.Market.Currency
	}
	period := req.EndPeriod.String()
	for _, f := range []struct {
		field string
		unit  string
		dst   **float64
	}{
		{"revenue", fin.Currency, &fin.Revenue},
		{"ebitda_margin", "%", &fin.EBITDAMarginPct},
		{"churn", "%", &fin.ChurnPct},
	} {
		if *f.dst != nil {
			req.Ledger.Track(**f.dst, f.field,
				provenance.WithOperator(out.OperatorID),
				provenance.WithPeriod(period),
				provenance.WithUnit(f.unit),
				provenance.WithSourceID(fin.SourceID),
				provenance.WithMethod("reported"),
			)
			continue
		}
		fillLatest(ctx, req, out.OperatorID, f.field, f.dst)
	}

	if fin.RevenueGrowthPct != nil {
		req.Ledger.Track(*fin.RevenueGrowthPct, "revenue_growth",
			provenance.WithOperator(out.OperatorID),
			provenance.WithPeriod(period),
			provenance.WithUnit("%"),
			provenance.WithSourceID(fin.SourceID),
			provenance.WithMethod("reported"),
		)
	} else if g, ok := yoyGrowth(ctx, req, out.OperatorID, "revenue"); ok {
		fin.RevenueGrowthPct = &g
		req.Ledger.Track(g, "revenue_growth",
			provenance.WithOperator(out.OperatorID),
			provenance.WithPeriod(period),
			provenance.WithUnit("%"),
			provenance.WithDerivation("(revenue[t] / revenue[t-4] - 1) * 100", "revenue"),
		)
	}
	return &out, nil
}

func registerAll(l *provenance.Ledger, sources []model.SourceReference) {
	for _, ref := range sources {
		l.RegisterSource(ref)
	}
}

func eventsByCategory(ctx context.Context, req Request, category string, severity model.EventSeverity) []model.IntelEvent {
	if req.Data == nil {
		return nil
	}
	events, err := req.Data.Events(ctx, req.MarketID, req.StartPeriod, req.EndPeriod)
	if err != nil {
		return nil
	}
	var out []model.IntelEvent
	for _, ev := range events {
		if ev.Category == category && ev.Severity == severity {
			out = append(out, ev)
		}
	}
	return out
}

func trackEvent(l *provenance.Ledger, ev model.IntelEvent, field string) {
	opts := []provenance.TrackOption{
		provenance.WithOperator(ev.OperatorID),
		provenance.WithPeriod(model.PeriodOf(ev.OccurredAt).String()),
		provenance.WithRawText(ev.Body),
		provenance.WithMethod("event"),
	}
	if ev.SourceURL != "" {
		opts = append(opts, provenance.WithSource(model.SourceReference{
			Kind:                 model.SourceKindNews,
			URL:                  ev.SourceURL,
			Document:             ev.Title,
			PublishedAt:          &ev.OccurredAt,
			ExtractionConfidence: 0.6,
		}))
	}
	l.Track(ev.Title, field, opts...)
}

func latestIndicator(ctx context.Context, req Request, name string) (model.MacroIndicator, bool) {
	if req.Data == nil {
		return model.MacroIndicator{}, false
	}
	rows, err := req.Data.MacroIndicators(ctx, req.MarketID, req.StartPeriod, req.EndPeriod)
	if err != nil {
		return model.MacroIndicator{}, false
	}
	var found model.MacroIndicator
	var ok bool
	for _, m := range rows {
		if m.Indicator == name {
			found, ok = m, true
		}
	}
	return found, ok
}

func trackIndicator(l *provenance.Ledger, m model.MacroIndicator) {
	opts := []provenance.TrackOption{
		provenance.WithPeriod(m.Period),
		provenance.WithUnit(m.Unit),
		provenance.WithMethod("indicator"),
	}
	if m.SourceURL != "" {
		opts = append(opts, provenance.WithSource(model.SourceReference{
			Kind:                 model.SourceKindOfficialStats,
			URL:                  m.SourceURL,
			ExtractionConfidence: 0.85,
		}))
	}
	l.Track(m.Value, m.Indicator, opts...)
}

func latestPoint(ctx context.Context, req Request, operatorID, metric string) (model.SeriesPoint, bool) {
	if req.Data == nil {
		return model.SeriesPoint{}, false
	}
	points, err := req.Data.OperatorSeries(ctx, operatorID, metric, req.StartPeriod, req.EndPeriod)
	if err != nil || len(points) == 0 {
		return model.SeriesPoint{}, false
	}
	return points[len(points)-1], true
}

func fillLatest(ctx context.Context, req Request, operatorID, metric string, dst **float64) {
	p, ok := latestPoint(ctx, req, operatorID, metric)
	if !ok {
		return
	}
	v := p.Value
	*dst = &v
	req.Ledger.Track(v, metric,
		provenance.WithOperator(operatorID),
		provenance.WithPeriod(p.Period),
		provenance.WithUnit(p.Unit),
		provenance.WithMethod("series"),
	)
}

// yoyGrowth compares the latest value with the value four quarters earlier.
func yoyGrowth(ctx context.Context, req Request, operatorID, metric string) (float64, bool) {
	if req.Data == nil {
		return 0, false
	}
	latest, ok := latestPoint(ctx, req, operatorID, metric)
	if !ok {
		return 0, false
	}
	end, err := model.ParsePeriod(latest.Period)
	if err != nil {
		return 0, false
	}
	prior := end.Sub(4)
	points, err := req.Data.OperatorSeries(ctx, operatorID, metric, prior, prior)
	if err != nil || len(points) == 0 || points[0].Value == 0 {
		return 0, false
	}
	return (latest.Value/points[0].Value - 1) * 100, true
}

func comparisonFromSeries(ctx context.Context, req Request) []model.OperatorComparison {
	if req.Data == nil {
		return nil
	}
	operators, err := req.Data.Operators(ctx, req.MarketID)
	if err != nil {
		return nil
	}
	var out []model.OperatorComparison
	for _, op := range operators {
		row := model.OperatorComparison{OperatorID: op.ID, Name: op.Name}
		if p, ok := latestPoint(ctx, req, op.ID, "revenue"); ok {
			v := p.Value
			row.Revenue = &v
		}
		if p, ok := latestPoint(ctx, req, op.ID, "market_share"); ok {
			v := p.Value
			row.SharePct = &v
		}
		if row.Revenue == nil && row.SharePct == nil {
			continue
		}
		out = append(out, row)
	}
	return out
}
