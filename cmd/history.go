package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/fairwatch/internal/model"
)

// formatHistoryPoint renders one history value. Timestamps are converted
// to UTC before formatting so the printed offset is always truthful.
func formatHistoryPoint(p model.MetricPoint) string {
	return fmt.Sprintf("%s  %.4f", p.Timestamp.UTC().Format(time.RFC3339), p.Value)
}

var (
	historySystem string
	historyMetric string
	historyWindow int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print a metric's stored history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		var points []model.MetricPoint
		points, err = st.GetHistory(ctx, historySystem, historyMetric, historyWindow)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			fmt.Printf("no history for %s/%s\n", historySystem, historyMetric)
			return nil
		}

		for _, p := range points {
			fmt.Println(formatHistoryPoint(p))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historySystem, "system", "", "system identifier")
	historyCmd.Flags().StringVar(&historyMetric, "metric", "", "metric name")
	historyCmd.Flags().IntVar(&historyWindow, "window", 0, "max values to print (0 = all)")
	_ = historyCmd.MarkFlagRequired("system")
	_ = historyCmd.MarkFlagRequired("metric")
	rootCmd.AddCommand(historyCmd)
}
