package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fairwatch/internal/evaluate"
)

var (
	evaluateInput  string
	evaluateSystem string
	evaluateOutput string
	evaluateDryRun bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one prediction batch for subgroup fairness",
	Long: `Reads a labeled prediction batch from a CSV or JSON file, computes the
six disparity metrics, and persists the resulting snapshot.

CSV batches need "label" and "prediction" columns; a "score" column with
predicted probabilities is optional and enables calibration; every other
column is treated as a subgroup attribute.

Examples:
  # Evaluate and persist
  fairwatch evaluate --input batch.csv --system credit-model

  # Compute only, print JSON, persist nothing
  fairwatch evaluate --input batch.csv --system credit-model --dry-run`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		batch, err := evaluate.LoadBatch(evaluateInput)
		if err != nil {
			return eris.Wrap(err, "evaluate: load batch")
		}
		zap.L().Info("loaded batch",
			zap.String("input", evaluateInput),
			zap.Int("samples", batch.Len()),
			zap.Int("attributes", len(batch.Attributes)),
		)

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		ev := evaluate.New(st, cfg.Fairness)

		snap, err := ev.Evaluate(evaluateSystem, batch)
		if err != nil {
			return err
		}
		if !evaluateDryRun {
			if err := ev.Commit(ctx, snap); err != nil {
				return err
			}
		}

		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return eris.Wrap(err, "evaluate: marshal snapshot")
		}
		if evaluateOutput != "" {
			if err := os.WriteFile(evaluateOutput, out, 0o644); err != nil {
				return eris.Wrapf(err, "evaluate: write %s", evaluateOutput)
			}
			fmt.Printf("snapshot %s written to %s\n", snap.ID, evaluateOutput)
			return nil
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateInput, "input", "", "batch file (.csv or .json)")
	evaluateCmd.Flags().StringVar(&evaluateSystem, "system", "", "system identifier the batch belongs to")
	evaluateCmd.Flags().StringVar(&evaluateOutput, "output", "", "write snapshot JSON to this file instead of stdout")
	evaluateCmd.Flags().BoolVar(&evaluateDryRun, "dry-run", false, "compute without persisting")
	_ = evaluateCmd.MarkFlagRequired("input")
	_ = evaluateCmd.MarkFlagRequired("system")
	rootCmd.AddCommand(evaluateCmd)
}
