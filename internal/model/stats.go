package model

// CalibrationBin accumulates predicted probabilities and outcomes for one
// equal-width probability bin of one subgroup.
type CalibrationBin struct {
	ScoreSum  float64 `json:"score_sum"`
	Positives int     `json:"positives"`
	Count     int     `json:"count"`
}

// GroupStats holds the confusion-matrix counts for one subgroup, plus
// calibration bin counts when probabilities were provided. It is built
// once per evaluation and never mutated afterwards.
type GroupStats struct {
	Key   SubgroupKey      `json:"key"`
	TP    int              `json:"tp"`
	FP    int              `json:"fp"`
	TN    int              `json:"tn"`
	FN    int              `json:"fn"`
	Count int              `json:"count"`
	Bins  []CalibrationBin `json:"bins,omitempty"`
}

// PositiveRate returns P(pred=1) for the group. Defined whenever the
// group has at least one sample.
func (g *GroupStats) PositiveRate() (float64, bool) {
	if g.Count == 0 {
		return 0, false
	}
	return float64(g.TP+g.FP) / float64(g.Count), true
}

// TPR returns the true positive rate. Undefined when the group has no
// positive ground-truth cases.
func (g *GroupStats) TPR() (float64, bool) {
	pos := g.TP + g.FN
	if pos == 0 {
		return 0, false
	}
	return float64(g.TP) / float64(pos), true
}

// FPR returns the false positive rate. Undefined when the group has no
// negative ground-truth cases.
func (g *GroupStats) FPR() (float64, bool) {
	neg := g.FP + g.TN
	if neg == 0 {
		return 0, false
	}
	return float64(g.FP) / float64(neg), true
}

// Precision returns TP/(TP+FP). Undefined when the group has no
// positive predictions.
func (g *GroupStats) Precision() (float64, bool) {
	pred := g.TP + g.FP
	if pred == 0 {
		return 0, false
	}
	return float64(g.TP) / float64(pred), true
}

// Accuracy returns (TP+TN)/Count. Defined whenever the group is non-empty.
func (g *GroupStats) Accuracy() (float64, bool) {
	if g.Count == 0 {
		return 0, false
	}
	return float64(g.TP+g.TN) / float64(g.Count), true
}

// ECE returns the group's expected calibration error: the sample-weighted
// mean absolute difference between mean predicted probability and empirical
// positive rate per bin. Undefined when no probabilities were recorded.
func (g *GroupStats) ECE() (float64, bool) {
	var total int
	var weighted float64
	for _, bin := range g.Bins {
		if bin.Count == 0 {
			continue
		}
		meanScore := bin.ScoreSum / float64(bin.Count)
		posRate := float64(bin.Positives) / float64(bin.Count)
		diff := meanScore - posRate
		if diff < 0 {
			diff = -diff
		}
		weighted += diff * float64(bin.Count)
		total += bin.Count
	}
	if total == 0 {
		return 0, false
	}
	return weighted / float64(total), true
}
