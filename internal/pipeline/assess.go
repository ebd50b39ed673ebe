package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/strategy-cli/internal/diagnosis"
	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

// Assess runs req end to end: bundle, diagnosis and decisions. With a store
// configured the run is recorded, its status advanced per phase, and the
// ledger and result persisted. Status updates that fail are logged and do
// not abort the run; persisting the ledger or the result does.
func (o *Orchestrator) Assess(ctx context.Context, req model.RunRequest) (*model.Assessment, *provenance.Ledger, error) {
	runID := o.newID()
	if o.store != nil {
		run, err := o.store.CreateRun(ctx, req)
		if err != nil {
			return nil, nil, eris.Wrap(err, "pipeline: create run")
		}
		runID = run.ID
	}

	log := zap.L().With(zap.String("run_id", runID))
	setStatus := func(status model.RunStatus) {
		if o.store == nil {
			return
		}
		if err := o.store.UpdateRunStatus(ctx, runID, status); err != nil {
			log.Warn("pipeline: failed to update status",
				zap.String("status", string(status)),
				zap.Error(err),
			)
		}
	}

	a, l, err := o.assess(ctx, runID, req, setStatus)
	if err != nil {
		setStatus(model.RunStatusFailed)
		return nil, nil, err
	}
	return a, l, nil
}

func (o *Orchestrator) assess(ctx context.Context, runID string, req model.RunRequest, setStatus func(model.RunStatus)) (*model.Assessment, *provenance.Ledger, error) {
	res, err := o.run(ctx, runID, req, setStatus)
	if err != nil {
		return nil, nil, err
	}

	setStatus(model.RunStatusDiagnosing)
	start := time.Now()
	diag := diagnosis.Diagnose(res.Bundle, res.Ledger)
	zap.L().Info("pipeline: stage complete",
		zap.String("run_id", runID),
		zap.String("stage", "diagnosis"),
		zap.String("label", diag.Label),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	setStatus(model.RunStatusDeciding)
	start = time.Now()
	decisions := o.engine.Decide(res.Bundle, diag)
	zap.L().Info("pipeline: stage complete",
		zap.String("run_id", runID),
		zap.String("stage", "decisions"),
		zap.Int("tasks", len(decisions.KeyTasks.Tasks)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	// Diagnosis tracks unsourced derived values after the run finalized.
	res.Ledger.EnrichUnsourced(o.cfg.Provenance.MediumSourceThreshold)
	res.Bundle.Quality = res.Ledger.QualityReport()

	a := &model.Assessment{
		Bundle:    res.Bundle,
		Diagnosis: diag,
		Decisions: decisions,
	}

	if o.store != nil {
		if err := res.Ledger.Persist(ctx, o.store, runID); err != nil {
			return nil, nil, eris.Wrap(err, "pipeline: persist ledger")
		}
		if err := o.store.UpdateRunResult(ctx, runID, a); err != nil {
			return nil, nil, eris.Wrap(err, "pipeline: save result")
		}
	}
	return a, res.Ledger, nil
}
