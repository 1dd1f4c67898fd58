package fairness

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fairwatch/internal/model"
)

// calibrationBins is the number of equal-width probability bins
// [0,0.1), ..., [0.9,1.0] used for per-group calibration tracking.
const calibrationBins = 10

// GroupStatsBuilder computes per-subgroup confusion-matrix counts and
// calibration bins from a sample batch. It holds no state across calls;
// every Build derives membership from the batch alone.
type GroupStatsBuilder struct{}

// NewGroupStatsBuilder returns a stateless builder.
func NewGroupStatsBuilder() *GroupStatsBuilder { return &GroupStatsBuilder{} }

// BuildByAttributes computes group stats for every single-attribute
// subgroup of the given attributes. Groups with zero samples never appear
// in the result. The batch is validated first; a malformed batch rejects
// the whole call.
func (b *GroupStatsBuilder) BuildByAttributes(batch *model.SampleBatch, attributes []string) (map[string]*model.GroupStats, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	stats := make(map[string]*model.GroupStats)
	for _, attr := range attributes {
		values, ok := batch.Attributes[attr]
		if !ok {
			return nil, eris.Wrapf(model.ErrInvalidInput, "unknown subgroup attribute %q", attr)
		}
		for i := range batch.Labels {
			key := model.NewSubgroupKey(attr, values[i])
			b.accumulate(stats, key, batch, i)
		}
	}
	return stats, nil
}

// BuildIntersectional computes group stats for the full conjunction of
// all batch attributes, one group per distinct combination of values.
// Attribute order inside each key is the sorted attribute-name order, so
// identical memberships always produce identical keys.
func (b *GroupStatsBuilder) BuildIntersectional(batch *model.SampleBatch) (map[string]*model.GroupStats, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	attrs := batch.AttributeNames()
	stats := make(map[string]*model.GroupStats)
	for i := range batch.Labels {
		key := make(model.SubgroupKey, 0, len(attrs))
		for _, attr := range attrs {
			key = append(key, model.AttributeValue{Attribute: attr, Value: batch.Attributes[attr][i]})
		}
		b.accumulate(stats, key, batch, i)
	}
	return stats, nil
}

// accumulate folds sample i into the stats entry for key, creating the
// entry on first sight.
func (b *GroupStatsBuilder) accumulate(stats map[string]*model.GroupStats, key model.SubgroupKey, batch *model.SampleBatch, i int) {
	ks := key.String()
	g, ok := stats[ks]
	if !ok {
		g = &model.GroupStats{Key: key}
		if batch.HasScores() {
			g.Bins = make([]model.CalibrationBin, calibrationBins)
		}
		stats[ks] = g
	}

	g.Count++
	switch {
	case batch.Labels[i] == 1 && batch.Predictions[i] == 1:
		g.TP++
	case batch.Labels[i] == 0 && batch.Predictions[i] == 1:
		g.FP++
	case batch.Labels[i] == 0 && batch.Predictions[i] == 0:
		g.TN++
	default:
		g.FN++
	}

	if batch.HasScores() {
		bin := binIndex(batch.Scores[i])
		g.Bins[bin].ScoreSum += batch.Scores[i]
		g.Bins[bin].Count++
		if batch.Labels[i] == 1 {
			g.Bins[bin].Positives++
		}
	}
}

// binIndex maps a probability to its equal-width bin; 1.0 falls into the
// last bin rather than overflowing.
func binIndex(score float64) int {
	idx := int(score * calibrationBins)
	if idx >= calibrationBins {
		idx = calibrationBins - 1
	}
	return idx
}

// sortedKeys returns the group keys in deterministic order, for stable
// iteration in gap computation and output.
func sortedKeys(stats map[string]*model.GroupStats) []string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
