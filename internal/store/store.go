// Package store persists fairness snapshots and metric histories behind
// an append-only, timestamp-ordered contract.
package store

import (
	"context"
	"time"

	"github.com/sells-group/fairwatch/internal/model"
)

// Store is the persistence contract the evaluation and drift engines
// write through. Histories are append-only and retrieved in ascending
// timestamp order; the engines never assume a storage technology.
type Store interface {
	// Snapshots
	AppendSnapshot(ctx context.Context, snap *model.FairnessSnapshot) error
	GetSnapshot(ctx context.Context, id string) (*model.FairnessSnapshot, error)
	ListSnapshots(ctx context.Context, system string, limit int) ([]model.FairnessSnapshot, error)

	// Metric history
	AppendMetricValue(ctx context.Context, system, metric string, ts time.Time, value float64) error
	GetHistory(ctx context.Context, system, metric string, window int) ([]model.MetricPoint, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
