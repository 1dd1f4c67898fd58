package drift

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fairwatch/internal/config"
	"github.com/sells-group/fairwatch/internal/model"
)

// HistoryReader exposes timestamp-ordered metric history windows. The
// monitor never assumes a particular storage technology; it only needs
// append-only, ascending retrieval of the most recent values.
type HistoryReader interface {
	GetHistory(ctx context.Context, system, metric string, window int) ([]model.MetricPoint, error)
}

// recommendations are fixed per-severity templates parameterized by
// metric name.
var recommendations = map[model.Severity]string{
	model.SeverityNone:  "no action needed for %s",
	model.SeverityMinor: "review recent evaluations of %s and schedule a follow-up check",
	model.SeverityMajor: "investigate %s immediately: recent changes to data or model likely degraded fairness",
}

// Monitor applies the delta, statistical-test, and control-chart
// detection strategies to per-(system, metric) histories and reconciles
// their verdicts.
type Monitor struct {
	history HistoryReader
	cfg     config.DriftConfig
}

// NewMonitor creates a drift monitor reading from the given history.
func NewMonitor(history HistoryReader, cfg config.DriftConfig) *Monitor {
	return &Monitor{history: history, cfg: cfg}
}

// WithWindow returns a copy of the monitor using the given window size,
// for per-system policy overrides.
func (m *Monitor) WithWindow(n int) *Monitor {
	if n <= 0 {
		return m
	}
	cfg := m.cfg
	cfg.WindowSize = n
	return &Monitor{history: m.history, cfg: cfg}
}

// CheckMetric runs one drift check for a (system, metric) pair. The most
// recent N values form the current window and the N before them the
// baseline; with fewer than 2N values the check reports
// insufficient_data instead of a verdict. The returned windows are
// copies — concurrent appends never mutate an in-flight check.
func (m *Monitor) CheckMetric(ctx context.Context, system, metric string) (*model.MetricDrift, error) {
	n := m.cfg.WindowSize
	if n <= 0 {
		n = 5
	}

	points, err := m.history.GetHistory(ctx, system, metric, 2*n)
	if err != nil {
		return nil, eris.Wrapf(err, "drift: get history %s/%s", system, metric)
	}

	md := &model.MetricDrift{Metric: metric, Status: model.DriftStatusOK}
	if len(points) < 2*n {
		md.Status = model.DriftStatusInsufficientData
		zap.L().Debug("drift: insufficient history",
			zap.String("system", system),
			zap.String("metric", metric),
			zap.Int("have", len(points)),
			zap.Int("need", 2*n),
		)
		return md, nil
	}

	// Points arrive ascending; split into baseline then current.
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	baseline := values[len(values)-2*n : len(values)-n]
	current := values[len(values)-n:]
	latest := current[len(current)-1]

	md.Events = []model.DriftEvent{
		deltaMethod(baseline, current),
		statisticalMethod(baseline, current, m.cfg.PValueThreshold),
		controlChartMethod(baseline, latest, m.cfg.ControlLimitSigma),
	}

	for _, ev := range md.Events {
		if ev.Severity > md.Severity {
			md.Severity = ev.Severity
		}
	}
	md.Detected = md.Severity > model.SeverityNone
	md.Recommendation = fmt.Sprintf(recommendations[md.Severity], metric)

	if md.Detected {
		zap.L().Info("drift: detected",
			zap.String("system", system),
			zap.String("metric", metric),
			zap.String("severity", md.Severity.String()),
		)
	}
	return md, nil
}

// Check runs drift checks for all given metrics of one system and rolls
// the per-metric verdicts up into one report.
func (m *Monitor) Check(ctx context.Context, system string, metrics []string) (*model.DriftReport, error) {
	report := &model.DriftReport{
		System:    system,
		CheckedAt: time.Now().UTC(),
	}

	for _, metric := range metrics {
		md, err := m.CheckMetric(ctx, system, metric)
		if err != nil {
			return nil, err
		}
		report.Metrics = append(report.Metrics, *md)
		if md.Severity > report.Severity {
			report.Severity = md.Severity
		}
		if md.Detected {
			report.Detected = true
		}
	}
	return report, nil
}

// DefaultMetrics lists the metric names monitored when a policy does not
// name specific ones.
func DefaultMetrics() []string {
	names := make([]string, len(model.MetricOrder))
	for i, m := range model.MetricOrder {
		names[i] = string(m)
	}
	return names
}
