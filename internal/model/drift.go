package model

import "time"

// Severity ranks drift verdicts. Reconciliation takes the maximum across
// detection methods, so the ordering NONE < MINOR < MAJOR is load-bearing.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMinor
	SeverityMajor
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "NONE"
	case SeverityMinor:
		return "MINOR"
	case SeverityMajor:
		return "MAJOR"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the severity name rather than its rank.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// DetectionMethod identifies one of the three drift detection strategies.
type DetectionMethod string

const (
	MethodDelta        DetectionMethod = "delta"
	MethodStatistical  DetectionMethod = "statistical"
	MethodControlChart DetectionMethod = "control_chart"
)

// DriftStatus is the outcome state of one metric's drift check.
type DriftStatus string

const (
	DriftStatusOK               DriftStatus = "ok"
	DriftStatusInsufficientData DriftStatus = "insufficient_data"
)

// DriftEvent is one detection method's verdict: baseline and current
// values, the absolute change, and the method-specific diagnostic
// (p-value or control-limit distance in standard deviations).
type DriftEvent struct {
	Method        DetectionMethod `json:"method"`
	Baseline      float64         `json:"baseline"`
	Current       float64         `json:"current"`
	Change        float64         `json:"change"`
	Severity      Severity        `json:"severity"`
	PValue        *float64        `json:"p_value,omitempty"`
	SigmaDistance *float64        `json:"sigma_distance,omitempty"`
	OutOfControl  bool            `json:"out_of_control,omitempty"`
}

// MetricDrift reconciles the three detection methods for one metric into
// a single severity and recommendation. When the history holds fewer than
// two full windows, Status is insufficient_data and no verdict is given.
type MetricDrift struct {
	Metric         string       `json:"metric"`
	Status         DriftStatus  `json:"status"`
	Detected       bool         `json:"detected"`
	Severity       Severity     `json:"severity"`
	Events         []DriftEvent `json:"events,omitempty"`
	Recommendation string       `json:"recommendation,omitempty"`
}

// DriftReport aggregates per-metric drift verdicts for one system check.
type DriftReport struct {
	System    string        `json:"system"`
	CheckedAt time.Time     `json:"checked_at"`
	Metrics   []MetricDrift `json:"metrics"`
	Severity  Severity      `json:"severity"`
	Detected  bool          `json:"detected"`
}
