package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fairwatch/internal/governance"
)

var governanceInput string

var governanceCmd = &cobra.Command{
	Use:   "governance",
	Short: "Score a governance questionnaire",
	Long: `Scores a YAML questionnaire of governance practice responses against
the fixed practice lookup table. Missing or unrecognized answers score
the floor value.

Example:
  fairwatch governance --input questionnaire.yaml`,
	RunE: func(_ *cobra.Command, _ []string) error {
		q, err := governance.LoadQuestionnaire(governanceInput)
		if err != nil {
			return err
		}

		result := governance.Score(q)
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return eris.Wrap(err, "governance: marshal result")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	governanceCmd.Flags().StringVar(&governanceInput, "input", "", "questionnaire YAML file")
	_ = governanceCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(governanceCmd)
}
