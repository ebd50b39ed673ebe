// Package provenance implements the per-run ledger of sources and
// source-backed facts threaded through every assessment stage.
package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/sells-group/strategy-cli/internal/model"
)

// Ledger is a run-scoped registry of sources and tracked values. A Ledger is
// owned by exactly one run and is not safe for concurrent use.
type Ledger struct {
	runID   string
	sources map[string]*model.SourceReference
	order   []string
	values  []*model.TrackedValue
	now     func() time.Time
}

// NewLedger creates an empty ledger for runID.
func NewLedger(runID string) *Ledger {
	return &Ledger{
		runID:   runID,
		sources: make(map[string]*model.SourceReference),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RunID returns the run the ledger belongs to.
func (l *Ledger) RunID() string { return l.runID }

// SourceID derives a deterministic id from the identifying fields of ref.
func SourceID(ref model.SourceReference) string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		string(ref.Kind), ref.URL, ref.Document, ref.Page, ref.Section,
	}, "|")))
	return "src_" + hex.EncodeToString(h[:])[:12]
}

// RegisterSource upserts ref and returns its id. Re-registering an existing
// id never rewrites the citation; it only upgrades confidence.
func (l *Ledger) RegisterSource(ref model.SourceReference) string {
	if ref.ID == "" {
		ref.ID = SourceID(ref)
	}
	if ref.Confidence == "" {
		ref.Confidence = model.BandFor(ref.ExtractionConfidence)
	}

	if existing, ok := l.sources[ref.ID]; ok {
		if ref.Confidence.Exceeds(existing.Confidence) {
			existing.Confidence = ref.Confidence
		}
		if ref.ExtractionConfidence > existing.ExtractionConfidence {
			existing.ExtractionConfidence = ref.ExtractionConfidence
		}
		return ref.ID
	}

	if ref.CollectedAt.IsZero() {
		ref.CollectedAt = l.now()
	}
	stored := ref
	l.sources[ref.ID] = &stored
	l.order = append(l.order, ref.ID)
	return ref.ID
}

// SourceByID returns the registered source with id.
func (l *Ledger) SourceByID(id string) (model.SourceReference, bool) {
	s, ok := l.sources[id]
	if !ok {
		return model.SourceReference{}, false
	}
	return *s, true
}

// Sources returns all registered sources in registration order.
func (l *Ledger) Sources() []model.SourceReference {
	out := make([]model.SourceReference, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.sources[id])
	}
	return out
}

// ExternalSourceCount counts registered sources whose kind is external.
func (l *Ledger) ExternalSourceCount() int {
	var n int
	for _, id := range l.order {
		if l.sources[id].Kind.External() {
			n++
		}
	}
	return n
}

// TrackOption configures a tracked value.
type TrackOption func(l *Ledger, v *model.TrackedValue)

// WithOperator scopes the value to an operator.
func WithOperator(operatorID string) TrackOption {
	return func(_ *Ledger, v *model.TrackedValue) { v.OperatorID = operatorID }
}

// WithPeriod scopes the value to a period.
func WithPeriod(period string) TrackOption {
	return func(_ *Ledger, v *model.TrackedValue) { v.Period = period }
}

// WithUnit sets the value's unit.
func WithUnit(unit string) TrackOption {
	return func(_ *Ledger, v *model.TrackedValue) { v.Unit = unit }
}

// WithSource registers ref and makes it the primary source.
func WithSource(ref model.SourceReference) TrackOption {
	return func(l *Ledger, v *model.TrackedValue) {
		id := l.RegisterSource(ref)
		v.Source = l.sources[id]
	}
}

// WithSourceID points the value at an already registered source. Unknown
// ids leave the value unsourced.
func WithSourceID(id string) TrackOption {
	return func(l *Ledger, v *model.TrackedValue) {
		if s, ok := l.sources[id]; ok {
			v.Source = s
		}
	}
}

// WithDerivation records the formula and parent fields of a computed value.
func WithDerivation(formula string, parents ...string) TrackOption {
	return func(_ *Ledger, v *model.TrackedValue) {
		v.Derivation = &model.Derivation{Formula: formula, Parents: parents}
		if v.ExtractionMethod == "" {
			v.ExtractionMethod = "derived"
		}
	}
}

// WithMethod sets the extraction method label.
func WithMethod(method string) TrackOption {
	return func(_ *Ledger, v *model.TrackedValue) { v.ExtractionMethod = method }
}

// WithRawText attaches the source snippet the value was read from.
func WithRawText(text string) TrackOption {
	return func(_ *Ledger, v *model.TrackedValue) { v.RawText = text }
}

// Track records a value. It always succeeds.
func (l *Ledger) Track(value any, fieldName string, opts ...TrackOption) *model.TrackedValue {
	v := &model.TrackedValue{
		Seq:       len(l.values) + 1,
		Value:     value,
		FieldName: fieldName,
	}
	for _, opt := range opts {
		opt(l, v)
	}
	l.values = append(l.values, v)
	return v
}

// AddAlternative records a conflicting source for v.
func (l *Ledger) AddAlternative(v *model.TrackedValue, ref model.SourceReference) {
	id := l.RegisterSource(ref)
	v.Alternatives = append(v.Alternatives, *l.sources[id])
}

// Filter selects tracked values. Empty fields match everything; set fields
// are AND-combined.
type Filter struct {
	OperatorID string
	FieldName  string
	Period     string
}

func (f Filter) match(v *model.TrackedValue) bool {
	if f.OperatorID != "" && v.OperatorID != f.OperatorID {
		return false
	}
	if f.FieldName != "" && v.FieldName != f.FieldName {
		return false
	}
	if f.Period != "" && v.Period != f.Period {
		return false
	}
	return true
}

// Query returns copies of the values matching f, in tracking order.
func (l *Ledger) Query(f Filter) []model.TrackedValue {
	var out []model.TrackedValue
	for _, v := range l.values {
		if f.match(v) {
			out = append(out, *v)
		}
	}
	return out
}

// Values returns copies of every tracked value.
func (l *Ledger) Values() []model.TrackedValue {
	return l.Query(Filter{})
}

// QualityReport aggregates confidence, conflicts and source counts. Synthetic
// enrichment sources are not counted as sources.
func (l *Ledger) QualityReport() model.QualityReport {
	r := model.QualityReport{
		TotalValues: len(l.values),
		ByConfidence: map[model.ConfidenceLevel]int{
			model.ConfidenceHigh:      0,
			model.ConfidenceMedium:    0,
			model.ConfidenceLow:       0,
			model.ConfidenceEstimated: 0,
		},
	}
	for _, s := range l.sources {
		if s.Kind != model.SourceKindSynthetic {
			r.UniqueSources++
		}
	}
	for _, v := range l.values {
		r.ByConfidence[v.Confidence()]++
		if v.Conflicted() {
			r.Conflicts++
		}
	}
	return r
}

// Footnotes lists citations in first-registration order, deduplicated by
// citation text. Synthetic sources are not citations.
func (l *Ledger) Footnotes() []model.Footnote {
	seen := make(map[string]bool)
	var out []model.Footnote
	for _, id := range l.order {
		s := l.sources[id]
		if s.Kind == model.SourceKindSynthetic {
			continue
		}
		text := s.Citation()
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, model.Footnote{Index: len(out) + 1, SourceID: id, Text: text})
	}
	return out
}
