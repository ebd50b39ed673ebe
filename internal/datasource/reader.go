// Package datasource defines the read-only data-access handle consumed by the
// domain analyzers and a JSON fixture implementation of it.
package datasource

import (
	"context"
	"errors"

	"github.com/sells-group/strategy-cli/internal/model"
)

// ErrNoData is returned when a market has no observations at all.
var ErrNoData = errors.New("no data")

// Reader returns ordered records for a market. Implementations are read-only.
type Reader interface {
	// MacroIndicators returns indicators for the market within [start, end],
	// ordered by period then indicator name.
	MacroIndicators(ctx context.Context, marketID string, start, end model.Period) ([]model.MacroIndicator, error)
	// Operators returns the market's operator roster in listing order.
	Operators(ctx context.Context, marketID string) ([]model.Operator, error)
	// OperatorSeries returns one metric for one operator within [start, end],
	// ordered by period.
	OperatorSeries(ctx context.Context, operatorID, metric string, start, end model.Period) ([]model.SeriesPoint, error)
	// Events returns intelligence events whose quarter falls within
	// [start, end], oldest first.
	Events(ctx context.Context, marketID string, start, end model.Period) ([]model.IntelEvent, error)
	// Tariffs returns the plans published in period, cheapest first.
	Tariffs(ctx context.Context, marketID string, period model.Period) ([]model.TariffRecord, error)
	// LatestPeriod returns the most recent macro period for the market.
	LatestPeriod(ctx context.Context, marketID string) (model.Period, error)
}
