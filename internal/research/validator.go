package research

import (
	"fmt"
	"log/slog"
	"strings"

	"edgescout/internal/domain"
)

var evidenceListFields = []string{
	"recent_developments",
	"evidence_yes",
	"evidence_no",
	"official_signals",
	"timeline_constraints",
}

// ValidateEvidence normalizes an untrusted evidence payload into a canonical
// record. It never fails: missing or wrongly-typed fields are logged and
// defaulted, so every field of the result is always populated.
func ValidateEvidence(data map[string]any, marketID string, log *slog.Logger) domain.EvidenceRecord {
	record := domain.EvidenceRecord{
		RecentDevelopments: []string{},
		EvidenceYes:        []string{},
		EvidenceNo:         []string{},
		OfficialSignals:    []string{},
		TimelineConstraint: []string{},
		SourceQuality:      domain.SourceQualityUnknown,
	}

	lists := map[string]*[]string{
		"recent_developments":  &record.RecentDevelopments,
		"evidence_yes":         &record.EvidenceYes,
		"evidence_no":          &record.EvidenceNo,
		"official_signals":     &record.OfficialSignals,
		"timeline_constraints": &record.TimelineConstraint,
	}

	for _, field := range evidenceListFields {
		raw, ok := data[field]
		if !ok {
			continue
		}
		items, ok := raw.([]any)
		if !ok {
			log.Warn("invalid evidence field type",
				slog.String("market_id", marketID),
				slog.String("field", field))
			continue
		}
		*lists[field] = coerceItems(items)
	}

	if raw, ok := data["source_quality"]; ok {
		quality := strings.ToLower(strings.TrimSpace(fmt.Sprint(raw)))
		switch domain.SourceQuality(quality) {
		case domain.SourceQualityHigh, domain.SourceQualityMedium, domain.SourceQualityLow, domain.SourceQualityUnknown:
			record.SourceQuality = domain.SourceQuality(quality)
		default:
			log.Warn("invalid source_quality value",
				slog.String("market_id", marketID),
				slog.String("value", quality))
		}
	}

	return record
}

// coerceItems renders each item as trimmed text, drops empties, and caps the
// list length.
func coerceItems(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(item))
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == domain.MaxEvidenceItems {
			break
		}
	}
	return out
}

// RecordToMap renders a canonical record back into the payload shape, so a
// validated record can be re-validated or serialized uniformly.
func RecordToMap(r domain.EvidenceRecord) map[string]any {
	toAny := func(items []string) []any {
		out := make([]any, len(items))
		for i, s := range items {
			out[i] = s
		}
		return out
	}
	return map[string]any{
		"recent_developments":  toAny(r.RecentDevelopments),
		"evidence_yes":         toAny(r.EvidenceYes),
		"evidence_no":          toAny(r.EvidenceNo),
		"official_signals":     toAny(r.OfficialSignals),
		"timeline_constraints": toAny(r.TimelineConstraint),
		"source_quality":       string(r.SourceQuality),
	}
}
