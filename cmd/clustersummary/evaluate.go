package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localrivet/clustersummary/internal/config"
	"github.com/localrivet/clustersummary/internal/evaluate"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a candidate summary against references with BLEU",
	Long: `Score a candidate summary against one or more references. No word
vectors are needed.

Example:
  clustersummary evaluate --candidate "the cat sat" --reference "the cat sat down"`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().String("candidate", "", "candidate summary")
	evaluateCmd.Flags().StringArray("reference", nil, "reference summary (repeatable)")
	_ = evaluateCmd.MarkFlagRequired("candidate")
	_ = evaluateCmd.MarkFlagRequired("reference")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	candidate, err := cmd.Flags().GetString("candidate")
	if err != nil {
		return fmt.Errorf("getting candidate flag: %w", err)
	}
	references, err := cmd.Flags().GetStringArray("reference")
	if err != nil {
		return fmt.Errorf("getting reference flag: %w", err)
	}

	cfg, err := config.LoadConfigWithPath(configPath)
	if err != nil {
		return err
	}
	smoothing, err := evaluate.ParseSmoothing(cfg.Evaluation.Smoothing)
	if err != nil {
		return err
	}
	evaluator := evaluate.New(&evaluate.Config{MaxOrder: cfg.Evaluation.MaxOrder, Smoothing: smoothing}, nil)

	fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", evaluator.ScoreMulti(references, candidate))
	return nil
}
