// Package fairness turns labeled prediction batches into per-group
// statistics, disparity metrics, and an aggregated bias summary.
package fairness

// Band is one rung of a threshold ladder: values at or above LowerBound
// map to Score, first match wins.
type Band struct {
	LowerBound float64
	Score      float64
}

// Ladder maps a scalar to a normalized score by first-match evaluation in
// descending lower-bound order. The final band's bound acts as a floor.
type Ladder []Band

// Score returns the score of the first band whose lower bound the value
// meets or exceeds.
func (l Ladder) Score(v float64) float64 {
	for _, b := range l {
		if v >= b.LowerBound {
			return b.Score
		}
	}
	// Only reachable when the ladder's final bound is above the value.
	if len(l) > 0 {
		return l[len(l)-1].Score
	}
	return 0
}

// GapLadder scores disparity gaps: smaller is better. Boundaries are
// inclusive on the lower bound, so a gap of exactly 0.05 scores 0.7 and
// exactly 0.15 scores 0.2.
var GapLadder = Ladder{
	{LowerBound: 0.15, Score: 0.2},
	{LowerBound: 0.10, Score: 0.5},
	{LowerBound: 0.05, Score: 0.7},
	{LowerBound: 0, Score: 1.0},
}

// RatioLadder scores the min/max subgroup accuracy ratio: larger is
// better. A ratio of exactly 0.90 scores 1.0 and exactly 0.80 scores 0.5.
var RatioLadder = Ladder{
	{LowerBound: 0.90, Score: 1.0},
	{LowerBound: 0.85, Score: 0.7},
	{LowerBound: 0.80, Score: 0.5},
	{LowerBound: 0, Score: 0.2},
}
