package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fairwatch/internal/drift"
)

var (
	driftSystem  string
	driftMetrics []string
	driftWindow  int
)

var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Run a drift check for one system",
	Long: `Checks the stored metric histories of a system for statistically
meaningful degradation using the delta, t-test, and control-chart
methods, and prints the reconciled report as JSON.

Example:
  fairwatch drift --system credit-model --metric demographic_parity`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		monitor := drift.NewMonitor(st, cfg.Drift).WithWindow(driftWindow)

		metrics := driftMetrics
		if len(metrics) == 0 {
			metrics = drift.DefaultMetrics()
		}

		report, err := monitor.Check(ctx, driftSystem, metrics)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return eris.Wrap(err, "drift: marshal report")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	driftCmd.Flags().StringVar(&driftSystem, "system", "", "system identifier")
	driftCmd.Flags().StringSliceVar(&driftMetrics, "metric", nil, "metric name (repeatable; default: all six)")
	driftCmd.Flags().IntVar(&driftWindow, "window", 0, "override the configured window size")
	_ = driftCmd.MarkFlagRequired("system")
	rootCmd.AddCommand(driftCmd)
}
