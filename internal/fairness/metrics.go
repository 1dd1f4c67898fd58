package fairness

import (
	"go.uber.org/zap"

	"github.com/sells-group/fairwatch/internal/config"
	"github.com/sells-group/fairwatch/internal/model"
)

// rateFn extracts one rate statistic from a group's stats, reporting
// whether it is defined for that group.
type rateFn func(g *model.GroupStats) (float64, bool)

// Computer produces the six disparity metrics from a sample batch. It is
// stateless between calls; computing the same batch twice yields
// identical results.
type Computer struct {
	builder *GroupStatsBuilder
	cfg     config.FairnessConfig
}

// NewComputer creates a metric computer with the given fairness config.
func NewComputer(cfg config.FairnessConfig) *Computer {
	return &Computer{builder: NewGroupStatsBuilder(), cfg: cfg}
}

// Compute evaluates all six metrics for the batch. The five pairwise
// metrics run over the union of single-attribute subgroups; subgroup
// performance runs over the full intersectional enumeration. Undefined
// metrics are returned with Defined=false rather than dropped, so the
// caller always sees one result per metric.
func (c *Computer) Compute(batch *model.SampleBatch) ([]model.MetricResult, error) {
	attrs := batch.AttributeNames()
	groups, err := c.builder.BuildByAttributes(batch, attrs)
	if err != nil {
		return nil, err
	}
	intersectional, err := c.builder.BuildIntersectional(batch)
	if err != nil {
		return nil, err
	}

	results := []model.MetricResult{
		c.gapMetric(model.MetricDemographicParity, groups, func(g *model.GroupStats) (float64, bool) { return g.PositiveRate() }),
		c.gapMetric(model.MetricEqualOpportunity, groups, func(g *model.GroupStats) (float64, bool) { return g.TPR() }),
		c.equalizedOdds(groups),
		c.gapMetric(model.MetricPredictiveParity, groups, func(g *model.GroupStats) (float64, bool) { return g.Precision() }),
		c.gapMetric(model.MetricCalibration, groups, func(g *model.GroupStats) (float64, bool) { return g.ECE() }),
		c.subgroupPerformance(intersectional),
	}

	defined := 0
	for _, r := range results {
		if r.Defined {
			defined++
		}
	}
	zap.L().Debug("fairness: metrics computed",
		zap.Int("samples", batch.Len()),
		zap.Int("groups", len(groups)),
		zap.Int("intersectional_groups", len(intersectional)),
		zap.Int("defined_metrics", defined),
	)
	return results, nil
}

// gapMetric computes a max-minus-min disparity over the groups for which
// the rate is defined. Groups with undefined rates are excluded; when
// fewer than two remain the metric is undefined. A single-group
// population yields gap 0 and a perfect score.
func (c *Computer) gapMetric(name model.MetricName, stats map[string]*model.GroupStats, rate rateFn) model.MetricResult {
	res := model.MetricResult{Metric: name, Groups: make(map[string]float64)}

	// A single-group population has no pair to compare: gap 0, perfect
	// score, provided the rate is computable at all.
	if len(stats) == 1 {
		for k, g := range stats {
			v, ok := rate(g)
			if !ok {
				return res
			}
			res.Groups[k] = v
			res.Unreliable = g.Count < c.cfg.MinGroupSamples
		}
		res.Gap = 0
		res.Score = GapLadder.Score(0)
		res.Defined = true
		return res
	}

	var maxKey, minKey string
	var maxVal, minVal float64
	defined := 0
	for _, k := range sortedKeys(stats) {
		g := stats[k]
		v, ok := rate(g)
		if !ok {
			continue
		}
		res.Groups[k] = v
		if g.Count < c.cfg.MinGroupSamples {
			res.Unreliable = true
		}
		if defined == 0 || v > maxVal {
			maxVal, maxKey = v, k
		}
		if defined == 0 || v < minVal {
			minVal, minKey = v, k
		}
		defined++
	}

	if defined < 2 {
		res.Defined = false
		return res
	}

	res.Gap = maxVal - minVal
	res.Score = GapLadder.Score(res.Gap)
	res.Defined = true
	res.MaxGroup = maxKey
	res.MinGroup = minKey
	return res
}

// equalizedOdds takes the larger of the TPR and FPR gaps. Each component
// gap excludes groups where its rate is undefined; the metric is defined
// when at least one component is.
func (c *Computer) equalizedOdds(stats map[string]*model.GroupStats) model.MetricResult {
	tprRes := c.gapMetric(model.MetricEqualizedOdds, stats, func(g *model.GroupStats) (float64, bool) { return g.TPR() })
	fprRes := c.gapMetric(model.MetricEqualizedOdds, stats, func(g *model.GroupStats) (float64, bool) { return g.FPR() })

	switch {
	case !tprRes.Defined && !fprRes.Defined:
		return model.MetricResult{Metric: model.MetricEqualizedOdds}
	case !tprRes.Defined:
		return fprRes
	case !fprRes.Defined:
		return tprRes
	case fprRes.Gap > tprRes.Gap:
		fprRes.Unreliable = fprRes.Unreliable || tprRes.Unreliable
		return fprRes
	default:
		tprRes.Unreliable = tprRes.Unreliable || fprRes.Unreliable
		return tprRes
	}
}

// subgroupPerformance computes the min/max accuracy ratio across all
// intersectional subgroups. The ratio is stored in Gap (it is the
// metric's scalar) and scored on the ratio ladder, where larger is
// better. One group, or all groups equal, yields ratio 1.0.
func (c *Computer) subgroupPerformance(stats map[string]*model.GroupStats) model.MetricResult {
	res := model.MetricResult{Metric: model.MetricSubgroupPerformance, Groups: make(map[string]float64)}

	var maxKey, minKey string
	var maxAcc, minAcc float64
	n := 0
	for _, k := range sortedKeys(stats) {
		g := stats[k]
		acc, ok := g.Accuracy()
		if !ok {
			continue
		}
		res.Groups[k] = acc
		if g.Count < c.cfg.MinGroupSamples {
			res.Unreliable = true
		}
		if n == 0 || acc > maxAcc {
			maxAcc, maxKey = acc, k
		}
		if n == 0 || acc < minAcc {
			minAcc, minKey = acc, k
		}
		n++
	}

	if n == 0 {
		return res
	}

	// All groups at zero accuracy count as equal, not as a division by zero.
	ratio := 1.0
	if maxAcc > 0 {
		ratio = minAcc / maxAcc
	}

	res.Gap = ratio
	res.Score = RatioLadder.Score(ratio)
	res.Defined = true
	res.MaxGroup = maxKey
	res.MinGroup = minKey
	return res
}
