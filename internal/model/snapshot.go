package model

import "time"

// MetricName identifies one of the fairness metrics.
type MetricName string

const (
	MetricDemographicParity   MetricName = "demographic_parity"
	MetricEqualOpportunity    MetricName = "equal_opportunity"
	MetricEqualizedOdds       MetricName = "equalized_odds"
	MetricPredictiveParity    MetricName = "predictive_parity"
	MetricCalibration         MetricName = "calibration"
	MetricSubgroupPerformance MetricName = "subgroup_performance"
)

// MetricOrder lists all metrics in declaration order. Tie-breaks in gap
// rankings follow this order.
var MetricOrder = []MetricName{
	MetricDemographicParity,
	MetricEqualOpportunity,
	MetricEqualizedOdds,
	MetricPredictiveParity,
	MetricCalibration,
	MetricSubgroupPerformance,
}

// MetricResult holds one metric's outcome for a batch. Gap is the disparity
// value (for subgroup_performance it is the min/max accuracy ratio). When
// fewer than two groups have a defined rate, Defined is false, Gap and
// Score carry no meaning, and the metric is excluded from the category
// average. Unreliable is set when any contributing group had fewer than
// the configured minimum sample count.
type MetricResult struct {
	Metric     MetricName         `json:"metric"`
	Gap        float64            `json:"gap"`
	Score      float64            `json:"score"`
	Defined    bool               `json:"defined"`
	Unreliable bool               `json:"unreliable,omitempty"`
	Groups     map[string]float64 `json:"groups,omitempty"`
	MaxGroup   string             `json:"max_group,omitempty"`
	MinGroup   string             `json:"min_group,omitempty"`
}

// CriticalIssue flags a metric whose score fell below the critical
// threshold, naming the group pair driving the gap and a fixed
// mitigation hint for the metric type.
type CriticalIssue struct {
	Metric     MetricName `json:"metric"`
	Score      float64    `json:"score"`
	Gap        float64    `json:"gap"`
	MaxGroup   string     `json:"max_group,omitempty"`
	MinGroup   string     `json:"min_group,omitempty"`
	Mitigation string     `json:"mitigation"`
	Caveat     string     `json:"caveat,omitempty"`
}

// GroupAccuracy pairs a subgroup key with its accuracy and sample count.
type GroupAccuracy struct {
	Group    string  `json:"group"`
	Accuracy float64 `json:"accuracy"`
	Count    int     `json:"count"`
}

// MetricGap pairs a metric with its gap value for ranking.
type MetricGap struct {
	Metric MetricName `json:"metric"`
	Gap    float64    `json:"gap"`
}

// BiasSummary is the aggregated view over all metric results.
type BiasSummary struct {
	CategoryScore  float64         `json:"category_score"`
	ScoredMetrics  int             `json:"scored_metrics"`
	CriticalIssues []CriticalIssue `json:"critical_issues,omitempty"`
	WorstGroups    []GroupAccuracy `json:"worst_performing_groups,omitempty"`
	LargestGaps    []MetricGap     `json:"largest_gaps,omitempty"`
}

// FairnessSnapshot is the immutable, timestamped bundle of all metric
// results and the bias summary for one (system, batch) evaluation. It is
// created once per evaluation and handed to the store unchanged.
type FairnessSnapshot struct {
	ID          string         `json:"id"`
	System      string         `json:"system"`
	Timestamp   time.Time      `json:"timestamp"`
	SampleCount int            `json:"sample_count"`
	Results     []MetricResult `json:"results"`
	Summary     BiasSummary    `json:"summary"`
}

// MetricPoint is one timestamped value of a metric history series.
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}
