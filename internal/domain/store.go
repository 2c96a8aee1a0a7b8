package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// MarketStore persists market metadata. Upserts preserve the original
// created_at across updates.
type MarketStore interface {
	Upsert(ctx context.Context, market Market) error
	UpsertBatch(ctx context.Context, markets []Market) error
	GetByID(ctx context.Context, id string) (Market, error)
	GetBySlug(ctx context.Context, slug string) (Market, error)
	List(ctx context.Context, opts ListOpts) ([]Market, error)
	Count(ctx context.Context) (int64, error)
}

// EvidenceStore persists evidence records append-only, keyed by market id
// plus gathering timestamp.
type EvidenceStore interface {
	Append(ctx context.Context, marketID string, record EvidenceRecord, gatheredAt time.Time) error
	Latest(ctx context.Context, marketID string) (EvidenceRecord, time.Time, error)
	ListByMarket(ctx context.Context, marketID string, opts ListOpts) ([]EvidenceRecord, error)
}

// DecisionStore persists decisions append-only.
type DecisionStore interface {
	Append(ctx context.Context, decision Decision) error
	Latest(ctx context.Context, marketID string) (Decision, error)
	ListByMarket(ctx context.Context, marketID string, opts ListOpts) ([]Decision, error)
	ListByMinEdge(ctx context.Context, minEdge float64, opts ListOpts) ([]Decision, error)
}

// PredictionLogStore records an append-only trail of prediction snapshots so
// estimate accuracy can be checked after markets resolve.
type PredictionLogStore interface {
	Append(ctx context.Context, entry PredictionLogEntry) error
	ListByMarket(ctx context.Context, marketID string, opts ListOpts) ([]PredictionLogEntry, error)
	Count(ctx context.Context) (int64, error)
}
