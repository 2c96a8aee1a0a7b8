package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"edgescout/internal/domain"
)

// PredictionLogStore implements domain.PredictionLogStore using PostgreSQL.
type PredictionLogStore struct {
	pool *pgxpool.Pool
}

var _ domain.PredictionLogStore = (*PredictionLogStore)(nil)

// NewPredictionLogStore creates a new PredictionLogStore backed by the given pool.
func NewPredictionLogStore(pool *pgxpool.Pool) *PredictionLogStore {
	return &PredictionLogStore{pool: pool}
}

// Append records one prediction snapshot.
func (s *PredictionLogStore) Append(ctx context.Context, e domain.PredictionLogEntry) error {
	const query = `
		INSERT INTO prediction_log (
			market_id, market_probability, estimated_probability,
			confidence_level, edge, outcome, logged_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		e.MarketID, e.MarketProbability, e.EstimatedProbability,
		e.ConfidenceLevel, e.Edge, string(e.Outcome), e.LoggedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: append prediction log for market %s: %w", e.MarketID, err)
	}
	return nil
}

// ListByMarket returns prediction log entries for a market, newest first.
func (s *PredictionLogStore) ListByMarket(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.PredictionLogEntry, error) {
	query := `
		SELECT market_id, market_probability, estimated_probability,
		       confidence_level, edge, outcome, logged_at
		FROM prediction_log WHERE market_id = $1 ORDER BY logged_at DESC`
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
		return nil, fmt.Errorf("postgres: list prediction log for market %s: %w", marketID, err)
	}
	defer rows.Close()

	var entries []domain.PredictionLogEntry
	for rows.Next() {
		var e domain.PredictionLogEntry
		var outcome string
		if err := rows.Scan(
			&e.MarketID, &e.MarketProbability, &e.EstimatedProbability,
			&e.ConfidenceLevel, &e.Edge, &outcome, &e.LoggedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan prediction log entry: %w", err)
		}
		e.Outcome = domain.Outcome(outcome)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list prediction log rows: %w", err)
	}
	return entries, nil
}

// Count returns the total number of logged predictions.
func (s *PredictionLogStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM prediction_log").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count prediction log: %w", err)
	}
	return count, nil
}
