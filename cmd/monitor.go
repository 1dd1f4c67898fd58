package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fairwatch/internal/config"
	"github.com/sells-group/fairwatch/internal/drift"
	"github.com/sells-group/fairwatch/internal/monitoring"
)

var monitorPolicyPath string

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the background drift checker",
	Long: `Periodically checks every system listed in the monitoring policy for
fairness drift and sends webhook alerts for degraded metrics. Runs
until interrupted.

Example:
  fairwatch monitor --policy policy.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		policyPath := monitorPolicyPath
		if policyPath == "" {
			policyPath = cfg.Monitoring.PolicyPath
		}
		policy, err := config.LoadPolicy(policyPath)
		if err != nil {
			return err
		}

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		monitor := drift.NewMonitor(st, cfg.Drift)
		alerter := monitoring.NewAlerter(cfg.Monitoring)
		checker := monitoring.NewChecker(monitor, alerter, policy, cfg.Monitoring)

		zap.L().Info("monitor starting", zap.String("policy", policyPath))
		checker.Run(ctx)
		return nil
	},
}

func init() {
	monitorCmd.Flags().StringVar(&monitorPolicyPath, "policy", "", "monitoring policy file (default from config)")
	rootCmd.AddCommand(monitorCmd)
}
