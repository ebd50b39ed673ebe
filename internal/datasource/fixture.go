package datasource

import (
	"cmp"
	"context"
	"encoding/json"
	"os"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/strategy-cli/internal/model"
)

// Fixture is an in-memory Reader backed by a JSON snapshot.
type Fixture struct {
	Macro     []model.MacroIndicator `json:"macro_indicators"`
	Roster    []model.Operator       `json:"operators"`
	Series    []model.SeriesPoint    `json:"series"`
	Intel     []model.IntelEvent     `json:"events"`
	TariffSet []model.TariffRecord   `json:"tariffs"`
}

var _ Reader = (*Fixture)(nil)

// LoadFixture reads a Fixture from a JSON file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "datasource: read fixture %s", path)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "datasource: decode fixture %s", path)
	}
	return &f, nil
}

func (f *Fixture) MacroIndicators(_ context.Context, marketID string, start, end model.Period) ([]model.MacroIndicator, error) {
	var out []model.MacroIndicator
	for _, m := range f.Macro {
		if m.MarketID == marketID && model.InWindow(m.Period, start, end) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b model.MacroIndicator) int {
		return cmp.Or(comparePeriods(a.Period, b.Period), cmp.Compare(a.Indicator, b.Indicator))
	})
	return out, nil
}

func (f *Fixture) Operators(_ context.Context, marketID string) ([]model.Operator, error) {
	var out []model.Operator
	for _, o := range f.Roster {
		if o.MarketID == marketID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *Fixture) OperatorSeries(_ context.Context, operatorID, metric string, start, end model.Period) ([]model.SeriesPoint, error) {
	var out []model.SeriesPoint
	for _, p := range f.Series {
		if p.OperatorID == operatorID && p.Metric == metric && model.InWindow(p.Period, start, end) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b model.SeriesPoint) int {
		return comparePeriods(a.Period, b.Period)
	})
	return out, nil
}

func (f *Fixture) Events(_ context.Context, marketID string, start, end model.Period) ([]model.IntelEvent, error) {
	var out []model.IntelEvent
	for _, e := range f.Intel {
		if e.MarketID != marketID {
			continue
		}
		p := model.PeriodOf(e.OccurredAt)
		if p.Before(start) || end.Before(p) {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b model.IntelEvent) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	return out, nil
}

func (f *Fixture) Tariffs(_ context.Context, marketID string, period model.Period) ([]model.TariffRecord, error) {
	want := period.String()
	var out []model.TariffRecord
	for _, t := range f.TariffSet {
		if t.MarketID == marketID && t.Period == want {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b model.TariffRecord) int {
		return cmp.Compare(a.MonthlyPrice, b.MonthlyPrice)
	})
	return out, nil
}

func (f *Fixture) LatestPeriod(_ context.Context, marketID string) (model.Period, error) {
	var latest model.Period
	for _, m := range f.Macro {
		if m.MarketID != marketID {
			continue
		}
		p, err := model.ParsePeriod(m.Period)
		if err != nil {
			continue
		}
		if latest.IsZero() || latest.Before(p) {
			latest = p
		}
	}
	if latest.IsZero() {
		return model.Period{}, eris.Wrapf(ErrNoData, "datasource: latest period for market %s", marketID)
	}
	return latest, nil
}

// comparePeriods orders period strings chronologically. Unparseable values
// sort first.
func comparePeriods(a, b string) int {
	pa, errA := model.ParsePeriod(a)
	pb, errB := model.ParsePeriod(b)
	switch {
	case errA != nil && errB != nil:
		return cmp.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	case pa.Before(pb):
		return -1
	case pb.Before(pa):
		return 1
	default:
		return 0
	}
}
