package model

import "time"

// SourceKind classifies where a citation comes from.
type SourceKind string

const (
	SourceKindRegulator      SourceKind = "regulator"
	SourceKindOfficialStats  SourceKind = "official_statistics"
	SourceKindOperatorReport SourceKind = "operator_report"
	SourceKindMarketResearch SourceKind = "market_research"
	SourceKindNews           SourceKind = "news"
	SourceKindWebsite        SourceKind = "website"
	SourceKindInternal       SourceKind = "internal"
	SourceKindSynthetic      SourceKind = "synthetic"
)

// External reports whether the kind counts as an external citation. Internal
// and synthetic sources never do.
func (k SourceKind) External() bool {
	switch k {
	case SourceKindInternal, SourceKindSynthetic, "":
		return false
	default:
		return true
	}
}

// ConfidenceLevel is the coarse confidence band attached to a source.
type ConfidenceLevel string

const (
	ConfidenceHigh      ConfidenceLevel = "high"
	ConfidenceMedium    ConfidenceLevel = "medium"
	ConfidenceLow       ConfidenceLevel = "low"
	ConfidenceEstimated ConfidenceLevel = "estimated"
)

// rank orders bands so upgrades can be detected.
func (c ConfidenceLevel) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Exceeds reports whether c is a strictly higher band than o.
func (c ConfidenceLevel) Exceeds(o ConfidenceLevel) bool {
	return c.rank() > o.rank()
}

// BandFor maps an extraction confidence scalar to a band.
func BandFor(score float64) ConfidenceLevel {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	case score > 0:
		return ConfidenceLow
	default:
		return ConfidenceEstimated
	}
}

// Freshness of a source relative to its optional expiry.
type Freshness string

const (
	FreshnessCurrent Freshness = "current"
	FreshnessExpired Freshness = "expired"
	FreshnessUnknown Freshness = "unknown"
)

// SourceReference is a single citation. Once registered it is immutable
// except for confidence upgrades.
type SourceReference struct {
	ID                   string          `json:"id"`
	Kind                 SourceKind      `json:"kind"`
	URL                  string          `json:"url,omitempty"`
	Document             string          `json:"document,omitempty"`
	Page                 string          `json:"page,omitempty"`
	Section              string          `json:"section,omitempty"`
	Publisher            string          `json:"publisher,omitempty"`
	PublishedAt          *time.Time      `json:"published_at,omitempty"`
	CollectedAt          time.Time       `json:"collected_at"`
	ExpiresAt            *time.Time      `json:"expires_at,omitempty"`
	ExtractionConfidence float64         `json:"extraction_confidence"`
	Confidence           ConfidenceLevel `json:"confidence"`
}

// Freshness reports whether the source is still current at now.
func (s SourceReference) Freshness(now time.Time) Freshness {
	if s.ExpiresAt == nil {
		return FreshnessUnknown
	}
	if now.After(*s.ExpiresAt) {
		return FreshnessExpired
	}
	return FreshnessCurrent
}

// Citation renders the reference as a footnote line.
func (s SourceReference) Citation() string {
	var out string
	switch {
	case s.Document != "" && s.URL != "":
		out = s.Document + " (" + s.URL + ")"
	case s.Document != "":
		out = s.Document
	default:
		out = s.URL
	}
	if s.Publisher != "" {
		out = s.Publisher + ", " + out
	}
	if s.Page != "" {
		out += ", p. " + s.Page
	}
	if s.Section != "" {
		out += ", §" + s.Section
	}
	if s.PublishedAt != nil {
		out += ", " + s.PublishedAt.Format("2006-01-02")
	}
	return out
}

// Derivation records how a computed value was produced.
type Derivation struct {
	Formula string   `json:"formula"`
	Parents []string `json:"parents,omitempty"`
}

// TrackedValue is one fact with its lineage.
type TrackedValue struct {
	Seq              int               `json:"seq"`
	Value            any               `json:"value"`
	FieldName        string            `json:"field_name"`
	OperatorID       string            `json:"operator_id,omitempty"`
	Period           string            `json:"period,omitempty"`
	Source           *SourceReference  `json:"source,omitempty"`
	Alternatives     []SourceReference `json:"alternatives,omitempty"`
	Derivation       *Derivation       `json:"derivation,omitempty"`
	Unit             string            `json:"unit,omitempty"`
	ExtractionMethod string            `json:"extraction_method,omitempty"`
	RawText          string            `json:"raw_text,omitempty"`
}

// Confidence is the primary source's band, or estimated when unsourced.
func (v TrackedValue) Confidence() ConfidenceLevel {
	if v.Source == nil || v.Source.Confidence == "" {
		return ConfidenceEstimated
	}
	return v.Source.Confidence
}

// Conflicted reports whether alternative sources disagree with the primary.
func (v TrackedValue) Conflicted() bool {
	return len(v.Alternatives) > 0
}

// QualityReport aggregates ledger health.
type QualityReport struct {
	TotalValues   int                     `json:"total_values"`
	ByConfidence  map[ConfidenceLevel]int `json:"by_confidence"`
	Conflicts     int                     `json:"conflicts"`
	UniqueSources int                     `json:"unique_sources"`
}

// Footnote is one deduplicated citation.
type Footnote struct {
	Index    int    `json:"index"`
	SourceID string `json:"source_id"`
	Text     string `json:"text"`
}

// SourceRecord is the persisted form of a SourceReference.
type SourceRecord struct {
	RunID                string     `json:"run_id"`
	ID                   string     `json:"id"`
	Kind                 string     `json:"kind"`
	URL                  string     `json:"url,omitempty"`
	DocumentName         string     `json:"document_name,omitempty"`
	Publisher            string     `json:"publisher,omitempty"`
	PublicationDate      *time.Time `json:"publication_date,omitempty"`
	CollectedAt          time.Time  `json:"collected_at"`
	ExtractionConfidence float64    `json:"extraction_confidence"`
	ConfidenceBand       string     `json:"confidence_band"`
	Position             int        `json:"position"`
}

// FactRecord is the persisted form of a TrackedValue. Values are stored as
// text; derivations and alternative sources are not persisted.
type FactRecord struct {
	RunID            string  `json:"run_id"`
	Seq              int     `json:"seq"`
	FieldName        string  `json:"field_name"`
	SourceID         string  `json:"source_id,omitempty"`
	Confidence       float64 `json:"confidence"`
	ExtractionMethod string  `json:"extraction_method,omitempty"`
	RawText          string  `json:"raw_text,omitempty"`
	OperatorID       string  `json:"operator_id,omitempty"`
	Period           string  `json:"period,omitempty"`
	ValueText        string  `json:"value_text"`
	Unit             string  `json:"unit,omitempty"`
}
