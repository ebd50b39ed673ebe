package provenance

import (
	"fmt"

	"github.com/sells-group/strategy-cli/internal/model"
)

// Synthetic source ids used by EnrichUnsourced.
const (
	SyntheticMediumID = "synthetic_medium"
	SyntheticLowID    = "synthetic_low"
)

// EnrichUnsourced attaches a synthetic source to every unsourced value.
// The synthetic source is medium confidence when the run found at least
// threshold unique external sources, low otherwise. It returns the number
// of values upgraded.
func (l *Ledger) EnrichUnsourced(threshold int) int {
	var unsourced []*model.TrackedValue
	for _, v := range l.values {
		if v.Source == nil {
			unsourced = append(unsourced, v)
		}
	}
	if len(unsourced) == 0 {
		return 0
	}

	external := l.ExternalSourceCount()
	ref := model.SourceReference{
		ID:                   SyntheticLowID,
		Kind:                 model.SourceKindSynthetic,
		Document:             fmt.Sprintf("Analyst synthesis across %d external sources", external),
		ExtractionConfidence: 0.3,
		Confidence:           model.ConfidenceLow,
	}
	if external >= threshold {
		ref.ID = SyntheticMediumID
		ref.ExtractionConfidence = 0.6
		ref.Confidence = model.ConfidenceMedium
	}

	id := l.RegisterSource(ref)
	for _, v := range unsourced {
		v.Source = l.sources[id]
		if v.ExtractionMethod == "" {
			v.ExtractionMethod = "synthesized"
		}
	}
	return len(unsourced)
}
