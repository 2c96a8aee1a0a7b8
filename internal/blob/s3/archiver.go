package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edgescout/internal/domain"
)

// Archiver implements domain.RunArchiver by serializing a ranked pipeline run
// to JSON and uploading the snapshot to object storage.
//
// Snapshots are partitioned by run date:
//
//	runs/2025-01/run_20250115T120000Z_<id>.json
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates an Archiver that uploads through the given writer.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

var _ domain.RunArchiver = (*Archiver)(nil)

// runSnapshot is the stored form of one pipeline run.
type runSnapshot struct {
	RunID         string          `json:"run_id"`
	StartedAt     time.Time       `json:"started_at"`
	ArchivedAt    time.Time       `json:"archived_at"`
	Opportunities []snapshotEntry `json:"opportunities"`
}

type snapshotEntry struct {
	MarketID             string   `json:"market_id"`
	Title                string   `json:"title"`
	MarketProbability    float64  `json:"market_probability"`
	EstimatedProbability float64  `json:"estimated_probability"`
	ConfidenceLevel      float64  `json:"confidence_level"`
	Edge                 float64  `json:"edge"`
	Outcome              string   `json:"outcome"`
	Score                float64  `json:"score"`
	Explanation          string   `json:"explanation"`
	KeyRisks             []string `json:"key_risks"`
	ReasoningSummary     string   `json:"reasoning_summary"`
}

// ArchiveRun serializes the ranked opportunities of one run and uploads the
// snapshot. It returns the object path of the uploaded snapshot.
func (a *Archiver) ArchiveRun(ctx context.Context, runID string, startedAt time.Time, opportunities []domain.RankedOpportunity) (string, error) {
	snap := runSnapshot{
		RunID:         runID,
		StartedAt:     startedAt.UTC(),
		ArchivedAt:    time.Now().UTC(),
		Opportunities: make([]snapshotEntry, 0, len(opportunities)),
	}

	for _, opp := range opportunities {
		entry := snapshotEntry{
			Score:       opp.Score,
			Explanation: opp.Explanation,
		}
		if opp.Market != nil {
			entry.MarketID = opp.Market.ID
			entry.Title = opp.Market.Title
			entry.MarketProbability = opp.Market.Probability
		}
		if opp.Decision != nil {
			entry.EstimatedProbability = opp.Decision.EstimatedProbability
			entry.ConfidenceLevel = opp.Decision.ConfidenceLevel
			entry.Edge = opp.Decision.Edge
			entry.Outcome = string(opp.Decision.Outcome)
			entry.KeyRisks = opp.Decision.KeyRisks
			entry.ReasoningSummary = opp.Decision.ReasoningSummary
		}
		snap.Opportunities = append(snap.Opportunities, entry)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		return "", fmt.Errorf("s3blob: marshal run %s: %w", runID, err)
	}

	path := runPath(runID, startedAt)
	if err := a.writer.Put(ctx, path, &buf, "application/json"); err != nil {
		return "", fmt.Errorf("s3blob: archive run %s: %w", runID, err)
	}
	return path, nil
}

// runPath builds the object key for a run snapshot, partitioned by the
// year-month of the run start.
func runPath(runID string, startedAt time.Time) string {
	return fmt.Sprintf("runs/%s/run_%s_%s.json",
		startedAt.UTC().Format("2006-01"),
		startedAt.UTC().Format("20060102T150405Z"),
		runID,
	)
}
