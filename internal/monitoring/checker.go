package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/fairwatch/internal/config"
	"github.com/sells-group/fairwatch/internal/drift"
)

// Checker runs periodic drift checks over the monitoring policy.
type Checker struct {
	monitor *drift.Monitor
	alerter *Alerter
	policy  *config.Policy
	cfg     config.MonitoringConfig
}

// NewChecker creates a background drift checker.
func NewChecker(monitor *drift.Monitor, alerter *Alerter, policy *config.Policy, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		monitor: monitor,
		alerter: alerter,
		policy:  policy,
		cfg:     cfg,
	}
}

// Run starts the periodic check loop. It blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	interval := time.Duration(c.cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting drift checker",
		zap.Duration("interval", interval),
		zap.Int("systems", len(c.policy.Systems)),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("drift checker stopped")
			return
		case <-ticker.C:
			c.check(ctx, log)
		}
	}
}

// check runs one pass over every system in the policy.
func (c *Checker) check(ctx context.Context, log *zap.Logger) {
	for _, sys := range c.policy.Systems {
		metrics := sys.Metrics
		if len(metrics) == 0 {
			metrics = drift.DefaultMetrics()
		}

		report, err := c.monitor.WithWindow(sys.Window).Check(ctx, sys.Name, metrics)
		if err != nil {
			log.Error("monitoring: drift check failed",
				zap.String("system", sys.Name),
				zap.Error(err),
			)
			continue
		}

		alerts := c.alerter.Evaluate(report)
		if len(alerts) == 0 {
			log.Debug("monitoring: no drift alerts", zap.String("system", sys.Name))
			continue
		}

		sent := c.alerter.SendAlerts(ctx, alerts)
		log.Info("monitoring: drift check complete",
			zap.String("system", sys.Name),
			zap.String("severity", report.Severity.String()),
			zap.Int("alerts_triggered", len(alerts)),
			zap.Int("alerts_sent", sent),
		)
	}
}
