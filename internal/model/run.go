package model

import "time"

// RunStatus represents the current state of an assessment run.
type RunStatus string

const (
	RunStatusQueued       RunStatus = "queued"
	RunStatusAnalyzing    RunStatus = "analyzing"
	RunStatusSynthesizing RunStatus = "synthesizing"
	RunStatusDiagnosing   RunStatus = "diagnosing"
	RunStatusDeciding     RunStatus = "deciding"
	RunStatusComplete     RunStatus = "complete"
	RunStatusFailed       RunStatus = "failed"
)

// RunRequest identifies one (organization, market, period) snapshot.
type RunRequest struct {
	OrgID     string `json:"org_id"`
	MarketID  string `json:"market_id"`
	EndPeriod string `json:"end_period,omitempty"`
	Lookback  int    `json:"lookback,omitempty"`
}

// Run is a persisted assessment run.
type Run struct {
	ID        string      `json:"id"`
	OrgID     string      `json:"org_id"`
	MarketID  string      `json:"market_id"`
	EndPeriod string      `json:"end_period,omitempty"`
	Status    RunStatus   `json:"status"`
	Result    *Assessment `json:"result,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Bundle is the orchestrator output: the five domain insights, the SWOT
// matrix, the SPAN output and the run's provenance summary.
type Bundle struct {
	RunID       string              `json:"run_id"`
	OrgID       string              `json:"org_id"`
	MarketID    string              `json:"market_id"`
	StartPeriod string              `json:"start_period"`
	EndPeriod   string              `json:"end_period"`
	Trends      *TrendsInsight      `json:"trends"`
	Market      *MarketInsight      `json:"market"`
	Competition *CompetitionInsight `json:"competition"`
	Self        *SelfInsight        `json:"self"`
	Tariffs     *TariffInsight      `json:"tariffs"`
	SWOT        *SWOTAnalysis       `json:"swot"`
	SPAN        *SPANResult         `json:"span"`
	Quality     QualityReport       `json:"quality"`
	Footnotes   []Footnote          `json:"footnotes"`
}

// Assessment is a bundle plus its diagnosis and decisions.
type Assessment struct {
	Bundle    *Bundle             `json:"bundle"`
	Diagnosis *StrategicDiagnosis `json:"diagnosis"`
	Decisions *ThreeDecisions     `json:"decisions"`
}
