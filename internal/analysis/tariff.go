package analysis

import (
	"context"
	"fmt"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

// Target positioning bands relative to the market median price.
const (
	premiumRatio = 1.15
	valueRatio   = 0.85
)

// TariffScan summarises the plans published in the end period.
type TariffScan struct{}

var _ TariffAnalyzer = TariffScan{}

// AnalyzeTariffs fails when the data handle is missing, errors, or has no
// plans for the period. Callers downgrade any failure to UnavailableTariffs.
func (TariffScan) AnalyzeTariffs(ctx context.Context, req Request) (*model.TariffInsight, error) {
	if req.Data == nil {
		return nil, eris.New("analysis: tariffs: no data handle")
	}
	records, err := req.Data.Tariffs(ctx, req.MarketID, req.EndPeriod)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: tariffs: read records")
	}
	if len(records) == 0 {
		return nil, eris.Errorf("analysis: tariffs: no plans for %s in %s", req.MarketID, req.EndPeriod)
	}

	out := &model.TariffInsight{
		Available:       true,
		Period:          req.EndPeriod.String(),
		PlanCount:       len(records),
		Currency:        req.Market.Currency,
		PlansByOperator: make(map[string]int),
	}

	prices := make([]float64, 0, len(records))
	var targetPrices []float64
	cheapest := records[0]
	for _, r := range records {
		prices = append(prices, r.MonthlyPrice)
		out.PlansByOperator[r.OperatorID]++
		if r.MonthlyPrice < cheapest.MonthlyPrice {
			cheapest = r
		}
		if r.OperatorID == req.OrgID {
			targetPrices = append(targetPrices, r.MonthlyPrice)
		}
		if out.Currency == "" && r.Currency != "" {
			out.Currency = r.Currency
		}
	}
	slices.Sort(prices)
	out.MinPrice = prices[0]
	out.MaxPrice = prices[len(prices)-1]
	out.MedianPrice = median(prices)
	out.CheapestOperator = cheapest.OperatorID

	if len(targetPrices) > 0 {
		slices.Sort(targetPrices)
		out.TargetMedianPrice = median(targetPrices)
		out.TargetPosition = position(out.TargetMedianPrice, out.MedianPrice)
	}

	opts := []provenance.TrackOption{
		provenance.WithPeriod(out.Period),
		provenance.WithUnit(out.Currency + "/month"),
		provenance.WithDerivation("median(monthly_price)", "monthly_price"),
	}
	if src := firstSourceURL(records); src != "" {
		opts = append(opts, provenance.WithSource(model.SourceReference{
			Kind:                 model.SourceKindWebsite,
			URL:                  src,
			Document:             "Published tariff sheet",
			ExtractionConfidence: 0.7,
		}))
	}
	req.Ledger.Track(out.MedianPrice, "tariff_median_price", opts...)

	out.Summary = fmt.Sprintf("%d plans from %d operators in %s; median %.2f %s/month",
		out.PlanCount, len(out.PlansByOperator), out.Period, out.MedianPrice, out.Currency)
	if out.TargetPosition != "" {
		out.Summary += fmt.Sprintf("; target priced %s (median %.2f)", out.TargetPosition, out.TargetMedianPrice)
	}
	return out, nil
}

// median expects sorted, non-empty input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func position(target, market float64) string {
	switch {
	case market <= 0:
		return "mid"
	case target >= market*premiumRatio:
		return "premium"
	case target <= market*valueRatio:
		return "value"
	default:
		return "mid"
	}
}

func firstSourceURL(records []model.TariffRecord) string {
	for _, r := range records {
		if r.SourceURL != "" {
			return r.SourceURL
		}
	}
	return ""
}
