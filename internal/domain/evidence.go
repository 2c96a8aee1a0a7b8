package domain

// SourceQuality grades the reliability of the sources behind an evidence record.
type SourceQuality string

const (
	SourceQualityHigh    SourceQuality = "high"
	SourceQualityMedium  SourceQuality = "medium"
	SourceQualityLow     SourceQuality = "low"
	SourceQualityUnknown SourceQuality = "unknown"
)

// EvidenceRecord is the canonical form of an evidence provider response.
// After validation all six fields are always present; list fields hold trimmed
// non-empty items capped at MaxEvidenceItems.
type EvidenceRecord struct {
	RecentDevelopments []string
	EvidenceYes        []string
	EvidenceNo         []string
	OfficialSignals    []string
	TimelineConstraint []string
	SourceQuality      SourceQuality
}

// MaxEvidenceItems caps each list field of an EvidenceRecord.
const MaxEvidenceItems = 20

// Empty reports whether every list field is empty, which marks the record as
// too thin to support a confident judgment.
func (e EvidenceRecord) Empty() bool {
	return len(e.RecentDevelopments) == 0 &&
		len(e.EvidenceYes) == 0 &&
		len(e.EvidenceNo) == 0 &&
		len(e.OfficialSignals) == 0 &&
		len(e.TimelineConstraint) == 0
}
