package provenance

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/strategy-cli/internal/model"
)

// Persister stores and retrieves a run's ledger rows. SaveProvenance must be
// transactional and idempotent for a given run.
type Persister interface {
	SaveProvenance(ctx context.Context, runID string, sources []model.SourceRecord, facts []model.FactRecord) error
	LoadProvenance(ctx context.Context, runID string) ([]model.SourceRecord, []model.FactRecord, error)
}

// Records converts the ledger into persisted rows for runID.
func (l *Ledger) Records(runID string) ([]model.SourceRecord, []model.FactRecord) {
	sources := make([]model.SourceRecord, 0, len(l.order))
	for i, id := range l.order {
		s := l.sources[id]
		sources = append(sources, model.SourceRecord{
			RunID:                runID,
			ID:                   s.ID,
			Kind:                 string(s.Kind),
			URL:                  s.URL,
			DocumentName:         s.Document,
			Publisher:            s.Publisher,
			PublicationDate:      s.PublishedAt,
			CollectedAt:          s.CollectedAt,
			ExtractionConfidence: s.ExtractionConfidence,
			ConfidenceBand:       string(s.Confidence),
			Position:             i,
		})
	}

	facts := make([]model.FactRecord, 0, len(l.values))
	for _, v := range l.values {
		fr := model.FactRecord{
			RunID:            runID,
			Seq:              v.Seq,
			FieldName:        v.FieldName,
			ExtractionMethod: v.ExtractionMethod,
			RawText:          v.RawText,
			OperatorID:       v.OperatorID,
			Period:           v.Period,
			ValueText:        FormatValue(v.Value),
			Unit:             v.Unit,
		}
		if v.Source != nil {
			fr.SourceID = v.Source.ID
			fr.Confidence = v.Source.ExtractionConfidence
		}
		facts = append(facts, fr)
	}
	return sources, facts
}

// Persist writes the ledger under runID.
func (l *Ledger) Persist(ctx context.Context, p Persister, runID string) error {
	sources, facts := l.Records(runID)
	if err := p.SaveProvenance(ctx, runID, sources, facts); err != nil {
		return eris.Wrapf(err, "provenance: persist run %s", runID)
	}
	zap.L().Debug("provenance: persisted ledger",
		zap.String("run_id", runID),
		zap.Int("sources", len(sources)),
		zap.Int("facts", len(facts)),
	)
	return nil
}

// Load rebuilds the ledger persisted under runID. Values come back as text;
// derivations and alternative sources are not restored.
func Load(ctx context.Context, p Persister, runID string) (*Ledger, error) {
	sources, facts, err := p.LoadProvenance(ctx, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "provenance: load run %s", runID)
	}
	return FromRecords(runID, sources, facts), nil
}

// FromRecords builds a ledger from persisted rows. Sources are re-registered
// in position order and facts re-tracked in sequence order.
func FromRecords(runID string, sources []model.SourceRecord, facts []model.FactRecord) *Ledger {
	l := NewLedger(runID)
	for _, s := range sortedSources(sources) {
		l.RegisterSource(model.SourceReference{
			ID:                   s.ID,
			Kind:                 model.SourceKind(s.Kind),
			URL:                  s.URL,
			Document:             s.DocumentName,
			Publisher:            s.Publisher,
			PublishedAt:          s.PublicationDate,
			CollectedAt:          s.CollectedAt,
			ExtractionConfidence: s.ExtractionConfidence,
			Confidence:           model.ConfidenceLevel(s.ConfidenceBand),
		})
	}
	for _, f := range sortedFacts(facts) {
		v := l.Track(f.ValueText, f.FieldName,
			WithOperator(f.OperatorID),
			WithPeriod(f.Period),
			WithUnit(f.Unit),
			WithSourceID(f.SourceID),
			WithMethod(f.ExtractionMethod),
			WithRawText(f.RawText),
		)
		v.Seq = f.Seq
	}
	return l
}

// FormatValue renders a tracked value as text for persistence.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case *float64:
		if t == nil {
			return ""
		}
		return strconv.FormatFloat(*t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(data)
	}
}

func sortedSources(in []model.SourceRecord) []model.SourceRecord {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b model.SourceRecord) int { return a.Position - b.Position })
	return out
}

func sortedFacts(in []model.FactRecord) []model.FactRecord {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b model.FactRecord) int { return a.Seq - b.Seq })
	return out
}
