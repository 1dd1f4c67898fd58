package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fairwatch/internal/evaluate"
)

var (
	batchDir         string
	batchSystem      string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate every batch file in a directory",
	Long: `Evaluates all .csv and .json batch files under a directory concurrently.
Each file becomes one snapshot. The system name is either fixed via
--system or derived from each file's base name.

Example:
  fairwatch batch --dir ./batches --concurrency 4`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var files []string
		for _, pattern := range []string{"*.csv", "*.json"} {
			matches, err := filepath.Glob(filepath.Join(batchDir, pattern))
			if err != nil {
				return eris.Wrapf(err, "batch: glob %s", pattern)
			}
			files = append(files, matches...)
		}
		if len(files) == 0 {
			return eris.Errorf("batch: no .csv or .json files in %s", batchDir)
		}

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		ev := evaluate.New(st, cfg.Fairness)

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(batchConcurrency)

		var succeeded, failed atomic.Int64
		for _, file := range files {
			g.Go(func() error {
				system := batchSystem
				if system == "" {
					base := filepath.Base(file)
					system = strings.TrimSuffix(base, filepath.Ext(base))
				}

				batch, err := evaluate.LoadBatch(file)
				if err != nil {
					failed.Add(1)
					zap.L().Error("batch: load failed", zap.String("file", file), zap.Error(err))
					return nil // keep processing the rest
				}
				if _, err := ev.Run(gCtx, system, batch); err != nil {
					failed.Add(1)
					zap.L().Error("batch: evaluation failed", zap.String("file", file), zap.Error(err))
					return nil
				}
				succeeded.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("evaluated %d batches (%d failed)\n", succeeded.Load(), failed.Load())
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", ".", "directory of batch files")
	batchCmd.Flags().StringVar(&batchSystem, "system", "", "system identifier (default: file base name)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "max concurrent evaluations")
	rootCmd.AddCommand(batchCmd)
}
