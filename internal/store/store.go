// Package store persists assessment runs and their provenance ledgers.
package store

import (
	"context"
	"errors"

	"github.com/sells-group/strategy-cli/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	OrgID    string          `json:"org_id,omitempty"`
	MarketID string          `json:"market_id,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for assessment runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, req model.RunRequest) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.Assessment) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Provenance. SaveProvenance is one transaction and idempotent per run.
	SaveProvenance(ctx context.Context, runID string, sources []model.SourceRecord, facts []model.FactRecord) error
	LoadProvenance(ctx context.Context, runID string) ([]model.SourceRecord, []model.FactRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(f RunFilter) int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}
