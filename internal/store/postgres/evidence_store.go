package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"edgescout/internal/domain"
)

// EvidenceStore implements domain.EvidenceStore using PostgreSQL. Records are
// append-only; each research pass adds a new row.
type EvidenceStore struct {
	pool *pgxpool.Pool
}

var _ domain.EvidenceStore = (*EvidenceStore)(nil)

// NewEvidenceStore creates a new EvidenceStore backed by the given pool.
func NewEvidenceStore(pool *pgxpool.Pool) *EvidenceStore {
	return &EvidenceStore{pool: pool}
}

// Append stores a new evidence record for a market.
func (s *EvidenceStore) Append(ctx context.Context, marketID string, record domain.EvidenceRecord, gatheredAt time.Time) error {
	const query = `
		INSERT INTO evidence_records (
			market_id, recent_developments, evidence_yes, evidence_no,
			official_signals, timeline_constraint, source_quality, gathered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		marketID,
		record.RecentDevelopments, record.EvidenceYes, record.EvidenceNo,
		record.OfficialSignals, record.TimelineConstraint,
		string(record.SourceQuality), gatheredAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: append evidence for market %s: %w", marketID, err)
	}
	return nil
}

const evidenceCols = `recent_developments, evidence_yes, evidence_no,
	official_signals, timeline_constraint, source_quality, gathered_at`

func scanEvidence(row pgx.Row) (domain.EvidenceRecord, time.Time, error) {
	var r domain.EvidenceRecord
	var quality string
	var gatheredAt time.Time
	err := row.Scan(
		&r.RecentDevelopments, &r.EvidenceYes, &r.EvidenceNo,
		&r.OfficialSignals, &r.TimelineConstraint, &quality, &gatheredAt,
	)
	if err != nil {
		return domain.EvidenceRecord{}, time.Time{}, err
	}
	r.SourceQuality = domain.SourceQuality(quality)
	return r, gatheredAt, nil
}

// Latest returns the most recently gathered evidence record for a market.
func (s *EvidenceStore) Latest(ctx context.Context, marketID string) (domain.EvidenceRecord, time.Time, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+evidenceCols+` FROM evidence_records
		 WHERE market_id = $1 ORDER BY gathered_at DESC LIMIT 1`, marketID)
	r, gatheredAt, err := scanEvidence(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.EvidenceRecord{}, time.Time{}, domain.ErrNotFound
		}
		return domain.EvidenceRecord{}, time.Time{}, fmt.Errorf("postgres: latest evidence for market %s: %w", marketID, err)
	}
	return r, gatheredAt, nil
}

// ListByMarket returns evidence records for a market, newest first.
func (s *EvidenceStore) ListByMarket(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.EvidenceRecord, error) {
	query := `SELECT ` + evidenceCols + ` FROM evidence_records WHERE market_id = $1 ORDER BY gathered_at DESC`
	args := []any{marketID}
	argIdx := 2

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list evidence for market %s: %w", marketID, err)
	}
	defer rows.Close()

	var records []domain.EvidenceRecord
	for rows.Next() {
		r, _, err := scanEvidence(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan evidence: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list evidence rows: %w", err)
	}
	return records, nil
}
