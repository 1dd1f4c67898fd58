// Package evaluate orchestrates one batch evaluation end to end: group
// statistics, disparity metrics, bias aggregation, snapshot persistence,
// and history appends.
package evaluate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fairwatch/internal/config"
	"github.com/sells-group/fairwatch/internal/fairness"
	"github.com/sells-group/fairwatch/internal/model"
	"github.com/sells-group/fairwatch/internal/store"
)

// Evaluator runs fairness evaluations and commits their snapshots. The
// computation itself is side-effect free; nothing is written until the
// snapshot is complete, so a caller may discard an in-flight evaluation
// at any point before Commit.
type Evaluator struct {
	computer   *fairness.Computer
	aggregator *fairness.Aggregator
	builder    *fairness.GroupStatsBuilder
	store      store.Store
}

// New creates an evaluator writing to the given store.
func New(st store.Store, cfg config.FairnessConfig) *Evaluator {
	return &Evaluator{
		computer:   fairness.NewComputer(cfg),
		aggregator: fairness.NewAggregator(),
		builder:    fairness.NewGroupStatsBuilder(),
		store:      st,
	}
}

// Evaluate computes a fairness snapshot for one (system, batch) without
// persisting anything.
func (e *Evaluator) Evaluate(system string, batch *model.SampleBatch) (*model.FairnessSnapshot, error) {
	results, err := e.computer.Compute(batch)
	if err != nil {
		return nil, eris.Wrapf(err, "evaluate: compute metrics for %s", system)
	}

	intersectional, err := e.builder.BuildIntersectional(batch)
	if err != nil {
		return nil, eris.Wrapf(err, "evaluate: build intersectional stats for %s", system)
	}

	snap := &model.FairnessSnapshot{
		ID:          uuid.New().String(),
		System:      system,
		Timestamp:   time.Now().UTC(),
		SampleCount: batch.Len(),
		Results:     results,
		Summary:     e.aggregator.Summarize(results, intersectional),
	}

	zap.L().Info("evaluate: snapshot computed",
		zap.String("system", system),
		zap.String("snapshot_id", snap.ID),
		zap.Int("samples", snap.SampleCount),
		zap.Float64("category_score", snap.Summary.CategoryScore),
		zap.Int("critical_issues", len(snap.Summary.CriticalIssues)),
	)
	return snap, nil
}

// Commit persists a snapshot and appends each defined metric's value to
// its history series. Histories receive the metric's scalar (the gap, or
// the accuracy ratio for subgroup performance) under the snapshot's
// timestamp.
func (e *Evaluator) Commit(ctx context.Context, snap *model.FairnessSnapshot) error {
	if err := e.store.AppendSnapshot(ctx, snap); err != nil {
		return eris.Wrapf(err, "evaluate: append snapshot %s", snap.ID)
	}
	for _, r := range snap.Results {
		if !r.Defined {
			continue
		}
		if err := e.store.AppendMetricValue(ctx, snap.System, string(r.Metric), snap.Timestamp, r.Gap); err != nil {
			return eris.Wrapf(err, "evaluate: append history %s/%s", snap.System, r.Metric)
		}
	}
	return nil
}

// Run evaluates and commits in one call.
func (e *Evaluator) Run(ctx context.Context, system string, batch *model.SampleBatch) (*model.FairnessSnapshot, error) {
	snap, err := e.Evaluate(system, batch)
	if err != nil {
		return nil, err
	}
	if err := e.Commit(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}
