package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fairwatch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fairwatch",
	Short: "Fairness evaluation and drift monitoring for binary classifiers",
	Long:  "Evaluates prediction batches for subgroup disparity across six fairness metrics and monitors the resulting scores for statistically meaningful degradation over time.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
