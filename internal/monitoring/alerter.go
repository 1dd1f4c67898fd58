// Package monitoring runs periodic drift checks over the configured
// systems and delivers webhook alerts for degraded metrics.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/fairwatch/internal/config"
	"github.com/sells-group/fairwatch/internal/model"
	"github.com/sells-group/fairwatch/internal/resilience"
)

// Alert represents one drift alert to be sent.
type Alert struct {
	System         string         `json:"system"`
	Metric         string         `json:"metric"`
	Severity       model.Severity `json:"severity"`
	Message        string         `json:"message"`
	Recommendation string         `json:"recommendation,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Alerter turns drift reports into alerts and sends them via webhook,
// rate-limited so a noisy system cannot flood the receiver.
type Alerter struct {
	cfg     config.MonitoringConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	perMinute := cfg.AlertsPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	return &Alerter{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
	}
}

// minSeverity parses the configured alert floor, defaulting to MINOR.
func (a *Alerter) minSeverity() model.Severity {
	switch a.cfg.AlertMinSeverity {
	case "MAJOR":
		return model.SeverityMajor
	case "NONE":
		return model.SeverityNone
	default:
		return model.SeverityMinor
	}
}

// Evaluate extracts alerts from a drift report: one per metric at or
// above the configured severity floor.
func (a *Alerter) Evaluate(report *model.DriftReport) []Alert {
	floor := a.minSeverity()
	var alerts []Alert
	for _, md := range report.Metrics {
		if md.Status != model.DriftStatusOK || md.Severity < floor || md.Severity == model.SeverityNone {
			continue
		}
		alerts = append(alerts, Alert{
			System:   report.System,
			Metric:   md.Metric,
			Severity: md.Severity,
			Message: fmt.Sprintf("%s drift detected on %s/%s",
				md.Severity, report.System, md.Metric),
			Recommendation: md.Recommendation,
			Timestamp:      report.CheckedAt,
		})
	}
	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL. Returns the
// number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.limiter.Wait(ctx); err != nil {
			zap.L().Warn("monitoring: alert rate limit wait cancelled", zap.Error(err))
			return sent
		}
		err := resilience.Do(ctx, resilience.DefaultPolicy(), func(ctx context.Context) error {
			return a.sendWebhook(ctx, alert)
		})
		if err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("system", alert.System),
				zap.String("metric", alert.Metric),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("system", alert.System),
			zap.String("metric", alert.Metric),
			zap.String("severity", alert.Severity.String()),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return resilience.Transient(eris.Wrap(err, "monitoring: webhook request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return resilience.Transient(eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
