package model

import "time"

// MacroIndicator is one macro-economic observation for a market and period.
type MacroIndicator struct {
	MarketID  string  `json:"market_id"`
	Indicator string  `json:"indicator"`
	Period    string  `json:"period"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit,omitempty"`
	SourceURL string  `json:"source_url,omitempty"`
}

// Operator is one entry of a market's operator roster.
type Operator struct {
	ID       string `json:"id"`
	MarketID string `json:"market_id"`
	Name     string `json:"name"`
	Group    string `json:"group,omitempty"`
}

// SeriesPoint is one value of a per-operator time series.
type SeriesPoint struct {
	OperatorID string  `json:"operator_id"`
	Metric     string  `json:"metric"`
	Period     string  `json:"period"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
}

// EventSeverity grades a free-text intelligence event.
type EventSeverity string

const (
	SeverityHigh   EventSeverity = "high"
	SeverityMedium EventSeverity = "medium"
	SeverityLow    EventSeverity = "low"
)

// IntelEvent is a free-text intelligence item about a market or operator.
type IntelEvent struct {
	ID         string        `json:"id"`
	MarketID   string        `json:"market_id"`
	OperatorID string        `json:"operator_id,omitempty"`
	Category   string        `json:"category"`
	Severity   EventSeverity `json:"severity"`
	Title      string        `json:"title"`
	Body       string        `json:"body,omitempty"`
	SourceURL  string        `json:"source_url,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// TariffRecord is one published retail plan.
type TariffRecord struct {
	OperatorID   string  `json:"operator_id"`
	MarketID     string  `json:"market_id"`
	Period       string  `json:"period"`
	Plan         string  `json:"plan"`
	Segment      string  `json:"segment,omitempty"`
	MonthlyPrice float64 `json:"monthly_price"`
	Currency     string  `json:"currency,omitempty"`
	DataGB       float64 `json:"data_gb,omitempty"`
	SourceURL    string  `json:"source_url,omitempty"`
}
