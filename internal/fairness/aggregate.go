package fairness

import (
	"sort"

	"github.com/sells-group/fairwatch/internal/model"
)

// criticalScoreThreshold is the score below which a metric generates a
// critical issue entry.
const criticalScoreThreshold = 0.5

// mitigations maps each metric to a fixed mitigation hint. Lookup, not
// computation: the hint depends only on the metric type.
var mitigations = map[model.MetricName]string{
	model.MetricDemographicParity:   "rebalance training data or apply threshold adjustment per group",
	model.MetricEqualOpportunity:    "review label quality for the disadvantaged group and consider reweighing",
	model.MetricEqualizedOdds:       "apply post-processing calibration of decision thresholds per group",
	model.MetricPredictiveParity:    "audit feature distributions for the disadvantaged group",
	model.MetricCalibration:         "recalibrate predicted probabilities per group (e.g. Platt scaling)",
	model.MetricSubgroupPerformance: "collect additional training data for the worst-performing subgroups",
}

// topListSize bounds the worst-group and largest-gap lists.
const topListSize = 5

// Aggregator folds metric results into one category score, critical-issue
// list, worst-group list, and largest-gap list.
type Aggregator struct{}

// NewAggregator returns a stateless aggregator.
func NewAggregator() *Aggregator { return &Aggregator{} }

// Summarize builds the bias summary. The category score is the arithmetic
// mean over defined metrics only — undefined metrics shrink the
// denominator instead of dragging the average down. Intersectional stats
// feed the worst-performing-group ranking.
func (a *Aggregator) Summarize(results []model.MetricResult, intersectional map[string]*model.GroupStats) model.BiasSummary {
	var sum model.BiasSummary

	var total float64
	for _, r := range results {
		if !r.Defined {
			continue
		}
		total += r.Score
		sum.ScoredMetrics++

		if r.Score < criticalScoreThreshold {
			issue := model.CriticalIssue{
				Metric:     r.Metric,
				Score:      r.Score,
				Gap:        r.Gap,
				MaxGroup:   r.MaxGroup,
				MinGroup:   r.MinGroup,
				Mitigation: mitigations[r.Metric],
			}
			if r.Unreliable {
				issue.Caveat = "estimate unreliable: a contributing group has a small sample count"
			}
			sum.CriticalIssues = append(sum.CriticalIssues, issue)
		}
	}
	if sum.ScoredMetrics > 0 {
		sum.CategoryScore = total / float64(sum.ScoredMetrics)
	}

	sum.WorstGroups = worstGroups(intersectional)
	sum.LargestGaps = largestGaps(results)
	return sum
}

// worstGroups returns the five lowest-accuracy subgroups. On equal
// accuracy the larger sample count ranks worse: a credible problem
// surfaces before a noisy one.
func worstGroups(stats map[string]*model.GroupStats) []model.GroupAccuracy {
	ranked := make([]model.GroupAccuracy, 0, len(stats))
	for _, k := range sortedKeys(stats) {
		g := stats[k]
		acc, ok := g.Accuracy()
		if !ok {
			continue
		}
		ranked = append(ranked, model.GroupAccuracy{Group: k, Accuracy: acc, Count: g.Count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Accuracy != ranked[j].Accuracy {
			return ranked[i].Accuracy < ranked[j].Accuracy
		}
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topListSize {
		ranked = ranked[:topListSize]
	}
	return ranked
}

// largestGaps returns the five largest gaps in descending order, ties
// broken by metric declaration order. Undefined metrics never rank.
// Subgroup performance stores its min/max accuracy ratio (larger is
// better), so it ranks by 1-ratio to stay comparable with the gap
// metrics; the stored scalar stays the ratio.
func largestGaps(results []model.MetricResult) []model.MetricGap {
	order := make(map[model.MetricName]int, len(model.MetricOrder))
	for i, m := range model.MetricOrder {
		order[m] = i
	}
	disparity := func(g model.MetricGap) float64 {
		if g.Metric == model.MetricSubgroupPerformance {
			return 1 - g.Gap
		}
		return g.Gap
	}

	gaps := make([]model.MetricGap, 0, len(results))
	for _, r := range results {
		if !r.Defined {
			continue
		}
		gaps = append(gaps, model.MetricGap{Metric: r.Metric, Gap: r.Gap})
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		di, dj := disparity(gaps[i]), disparity(gaps[j])
		if di != dj {
			return di > dj
		}
		return order[gaps[i].Metric] < order[gaps[j].Metric]
	})
	if len(gaps) > topListSize {
		gaps = gaps[:topListSize]
	}
	return gaps
}
