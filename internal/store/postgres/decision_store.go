package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"edgescout/internal/domain"
)

// DecisionStore implements domain.DecisionStore using PostgreSQL. Decisions
// are append-only; the history per market is never rewritten.
type DecisionStore struct {
	pool *pgxpool.Pool
}

var _ domain.DecisionStore = (*DecisionStore)(nil)

// NewDecisionStore creates a new DecisionStore backed by the given pool.
func NewDecisionStore(pool *pgxpool.Pool) *DecisionStore {
	return &DecisionStore{pool: pool}
}

// Append stores a new decision.
func (s *DecisionStore) Append(ctx context.Context, d domain.Decision) error {
	const query = `
		INSERT INTO decisions (
			market_id, estimated_probability, confidence_level, edge,
			outcome, key_risks, reasoning_summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		d.MarketID, d.EstimatedProbability, d.ConfidenceLevel, d.Edge,
		string(d.Outcome), d.KeyRisks, d.ReasoningSummary, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: append decision for market %s: %w", d.MarketID, err)
	}
	return nil
}

const decisionCols = `market_id, estimated_probability, confidence_level, edge,
	outcome, key_risks, reasoning_summary, created_at`

func scanDecision(row pgx.Row) (domain.Decision, error) {
	var d domain.Decision
	var outcome string
	err := row.Scan(
		&d.MarketID, &d.EstimatedProbability, &d.ConfidenceLevel, &d.Edge,
		&outcome, &d.KeyRisks, &d.ReasoningSummary, &d.CreatedAt,
	)
	if err != nil {
		return domain.Decision{}, err
	}
	d.Outcome = domain.Outcome(outcome)
	return d, nil
}

// Latest returns the most recent decision for a market.
func (s *DecisionStore) Latest(ctx context.Context, marketID string) (domain.Decision, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+decisionCols+` FROM decisions
		 WHERE market_id = $1 ORDER BY created_at DESC LIMIT 1`, marketID)
	d, err := scanDecision(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Decision{}, domain.ErrNotFound
		}
		return domain.Decision{}, fmt.Errorf("postgres: latest decision for market %s: %w", marketID, err)
	}
	return d, nil
}

// ListByMarket returns decisions for a market, newest first.
func (s *DecisionStore) ListByMarket(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.Decision, error) {
	query := `SELECT ` + decisionCols + ` FROM decisions WHERE market_id = $1 ORDER BY created_at DESC`
	args := []any{marketID}
	return s.listDecisions(ctx, query, args, opts, 2)
}

// ListByMinEdge returns decisions whose absolute edge meets the given floor,
// strongest edge first.
func (s *DecisionStore) ListByMinEdge(ctx context.Context, minEdge float64, opts domain.ListOpts) ([]domain.Decision, error) {
	query := `SELECT ` + decisionCols + ` FROM decisions WHERE ABS(edge) >= $1 ORDER BY ABS(edge) DESC, created_at DESC`
	args := []any{minEdge}
	return s.listDecisions(ctx, query, args, opts, 2)
}

func (s *DecisionStore) listDecisions(ctx context.Context, query string, args []any, opts domain.ListOpts, argIdx int) ([]domain.Decision, error) {
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
		return nil, fmt.Errorf("postgres: list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []domain.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list decisions rows: %w", err)
	}
	return decisions, nil
}
