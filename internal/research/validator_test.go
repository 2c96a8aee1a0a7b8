package research

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgescout/internal/domain"
)

func TestValidateEvidenceFullPayload(t *testing.T) {
	data := map[string]any{
		"recent_developments":  []any{"dev 1", "  dev 2  "},
		"evidence_yes":         []any{"yes 1"},
		"evidence_no":          []any{"no 1", "no 2"},
		"official_signals":     []any{"signal"},
		"timeline_constraints": []any{"by friday"},
		"source_quality":       "HIGH",
	}

	r := ValidateEvidence(data, "mkt-1", slog.Default())

	assert.Equal(t, []string{"dev 1", "dev 2"}, r.RecentDevelopments)
	assert.Equal(t, []string{"yes 1"}, r.EvidenceYes)
	assert.Equal(t, []string{"no 1", "no 2"}, r.EvidenceNo)
	assert.Equal(t, []string{"signal"}, r.OfficialSignals)
	assert.Equal(t, []string{"by friday"}, r.TimelineConstraint)
	assert.Equal(t, domain.SourceQualityHigh, r.SourceQuality)
}

func TestValidateEvidenceMissingFieldsDefault(t *testing.T) {
	r := ValidateEvidence(map[string]any{}, "mkt-1", slog.Default())

	assert.NotNil(t, r.RecentDevelopments)
	assert.Empty(t, r.RecentDevelopments)
	assert.Empty(t, r.EvidenceYes)
	assert.Empty(t, r.EvidenceNo)
	assert.Empty(t, r.OfficialSignals)
	assert.Empty(t, r.TimelineConstraint)
	assert.Equal(t, domain.SourceQualityUnknown, r.SourceQuality)
	assert.True(t, r.Empty())
}

func TestValidateEvidenceWrongTypesDefault(t *testing.T) {
	data := map[string]any{
		"recent_developments": "not a list",
		"evidence_yes":        42.0,
		"evidence_no":         map[string]any{"a": 1},
		"source_quality":      "excellent",
	}

	r := ValidateEvidence(data, "mkt-1", slog.Default())

	assert.Empty(t, r.RecentDevelopments)
	assert.Empty(t, r.EvidenceYes)
	assert.Empty(t, r.EvidenceNo)
	assert.Equal(t, domain.SourceQualityUnknown, r.SourceQuality)
}

func TestValidateEvidenceDropsEmptyAndCaps(t *testing.T) {
	items := make([]any, 0, 30)
	items = append(items, "", "   ", nil)
	for i := 0; i < 25; i++ {
		items = append(items, fmt.Sprintf("item %d", i))
	}

	r := ValidateEvidence(map[string]any{"evidence_yes": items}, "mkt-1", slog.Default())

	require.Len(t, r.EvidenceYes, domain.MaxEvidenceItems)
	assert.Equal(t, "item 0", r.EvidenceYes[0])
	assert.Equal(t, "item 19", r.EvidenceYes[19])
}

func TestValidateEvidenceCoercesNonStrings(t *testing.T) {
	r := ValidateEvidence(map[string]any{"official_signals": []any{3.0, true}}, "mkt-1", slog.Default())
	assert.Equal(t, []string{"3", "true"}, r.OfficialSignals)
}

func TestValidateEvidenceSourceQualityNormalized(t *testing.T) {
	for raw, want := range map[string]domain.SourceQuality{
		"high":     domain.SourceQualityHigh,
		" Medium ": domain.SourceQualityMedium,
		"LOW":      domain.SourceQualityLow,
		"unknown":  domain.SourceQualityUnknown,
		"great":    domain.SourceQualityUnknown,
		"":         domain.SourceQualityUnknown,
	} {
		r := ValidateEvidence(map[string]any{"source_quality": raw}, "mkt-1", slog.Default())
		assert.Equal(t, want, r.SourceQuality, "raw %q", raw)
	}
}

func TestValidateEvidenceIdempotent(t *testing.T) {
	data := map[string]any{
		"recent_developments":  []any{"dev"},
		"evidence_yes":         []any{"yes"},
		"evidence_no":          []any{},
		"official_signals":     []any{"sig"},
		"timeline_constraints": []any{"deadline"},
		"source_quality":       "medium",
	}

	first := ValidateEvidence(data, "mkt-1", slog.Default())
	second := ValidateEvidence(RecordToMap(first), "mkt-1", slog.Default())
	assert.Equal(t, first, second)
}
