// Package drift tracks fairness metric histories over time and classifies
// statistically meaningful degradation using three detection strategies
// reconciled into one severity verdict.
package drift

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sells-group/fairwatch/internal/model"
)

// Severity boundaries for absolute change magnitude. All three detection
// methods classify through severityFromChange, so a value flagged by any
// method is ranked consistently with the others.
const (
	minorChange = 0.03
	majorChange = 0.15
)

// severityFromChange maps an absolute change magnitude to a severity.
func severityFromChange(change float64) model.Severity {
	switch {
	case change >= majorChange:
		return model.SeverityMajor
	case change >= minorChange:
		return model.SeverityMinor
	default:
		return model.SeverityNone
	}
}

// deltaMethod compares window means. For single-value windows this
// degenerates to the plain absolute difference.
func deltaMethod(baseline, current []float64) model.DriftEvent {
	baseMean, _ := stats.Mean(baseline)
	curMean, _ := stats.Mean(current)
	change := math.Abs(curMean - baseMean)

	return model.DriftEvent{
		Method:   model.MethodDelta,
		Baseline: baseMean,
		Current:  curMean,
		Change:   change,
		Severity: severityFromChange(change),
	}
}

// statisticalMethod runs Welch's unequal-variance two-sample t-test
// between the windows. Drift is flagged when p is below the threshold;
// severity still comes from the change-magnitude ladder, with the
// p-value attached as corroborating evidence only. Windows of fewer
// than two values cannot estimate a variance: the event carries no
// p-value and no severity, leaving the verdict to the other methods.
func statisticalMethod(baseline, current []float64, pThreshold float64) model.DriftEvent {
	baseMean, _ := stats.Mean(baseline)
	curMean, _ := stats.Mean(current)
	change := math.Abs(curMean - baseMean)

	ev := model.DriftEvent{
		Method:   model.MethodStatistical,
		Baseline: baseMean,
		Current:  curMean,
		Change:   change,
	}
	if len(baseline) < 2 || len(current) < 2 {
		return ev
	}

	p := welchPValue(baseline, current)
	ev.PValue = &p
	if p < pThreshold {
		ev.Severity = severityFromChange(change)
	}
	return ev
}

// welchPValue returns the two-sided p-value of Welch's t-test. Degenerate
// windows (both variances zero) yield p=1 for equal means and p=0
// otherwise, so constant histories never divide by zero.
func welchPValue(a, b []float64) float64 {
	meanA, _ := stats.Mean(a)
	meanB, _ := stats.Mean(b)
	varA, _ := stats.SampleVariance(a)
	varB, _ := stats.SampleVariance(b)

	na, nb := float64(len(a)), float64(len(b))
	se2 := varA/na + varB/nb
	if se2 == 0 {
		if meanA == meanB {
			return 1
		}
		return 0
	}

	t := (meanB - meanA) / math.Sqrt(se2)

	// Welch–Satterthwaite degrees of freedom.
	num := se2 * se2
	den := (varA/na)*(varA/na)/(na-1) + (varB/nb)*(varB/nb)/(nb-1)
	df := num / den
	if df < 1 {
		df = 1
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

// controlChartMethod checks the most recent value against the baseline
// window's mean ± sigma·std limits. Severity again comes from the shared
// change ladder; a zero-deviation baseline with any nonzero change is an
// immediate MAJOR rather than a division by zero.
func controlChartMethod(baseline []float64, latest, sigma float64) model.DriftEvent {
	baseMean, _ := stats.Mean(baseline)
	baseStd, _ := stats.StandardDeviationSample(baseline)
	change := math.Abs(latest - baseMean)

	ev := model.DriftEvent{
		Method:   model.MethodControlChart,
		Baseline: baseMean,
		Current:  latest,
		Change:   change,
	}

	if baseStd == 0 {
		if change > 0 {
			ev.OutOfControl = true
			ev.Severity = model.SeverityMajor
		}
		return ev
	}

	dist := change / baseStd
	ev.SigmaDistance = &dist
	if dist > sigma {
		ev.OutOfControl = true
		ev.Severity = severityFromChange(change)
	}
	return ev
}
