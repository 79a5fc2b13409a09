package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/screener-cli/internal/model"
	"github.com/sells-group/screener-cli/internal/universe"
)

var (
	screenUniverse string
	screenOutput   string
	screenJSON     bool
	screenNoSave   bool
	screenMinScore float64
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Score a universe of companies",
	Long:  "Loads a YAML or CSV universe file, scores every candidate with bounded concurrency, persists the reports, and prints a ranked summary.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		candidates, err := universe.Load(screenUniverse)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Analyzer.Screen(ctx, candidates)
		if err != nil {
			return err
		}

		minScore := screenMinScore
		if minScore == 0 {
			minScore = cfg.Screen.MinScore
		}
		reports := result.Reports
		if minScore > 0 {
			kept := make([]model.AnalysisReport, 0, len(reports))
			for _, r := range reports {
				if r.FinalScore >= minScore {
					kept = append(kept, r)
				}
			}
			reports = kept
		}

		if !screenNoSave {
			if err := env.Store.SaveReports(ctx, result.Reports); err != nil {
				return err
			}
		}

		if screenOutput != "" {
			if err := exportReports(screenOutput, reports); err != nil {
				return err
			}
			zap.L().Info("wrote screen results", zap.String("path", screenOutput), zap.Int("reports", len(reports)))
		}

		if screenJSON {
			return writeJSON(os.Stdout, result)
		}
		renderReportList(os.Stdout, reports)
		for _, f := range result.Failures {
			cmd.PrintErrf("failed: %s: %s\n", f.Ticker, f.Err)
		}
		return nil
	},
}

func init() {
	screenCmd.Flags().StringVarP(&screenUniverse, "universe", "u", "", "universe file (.yaml or .csv)")
	screenCmd.Flags().StringVarP(&screenOutput, "output", "o", "", "export results to a .csv, .xlsx, or .json file")
	screenCmd.Flags().BoolVar(&screenJSON, "json", false, "print full results as JSON")
	screenCmd.Flags().BoolVar(&screenNoSave, "no-save", false, "skip persisting reports")
	screenCmd.Flags().Float64Var(&screenMinScore, "min-score", 0, "only show results at or above this score")
	_ = screenCmd.MarkFlagRequired("universe")
	rootCmd.AddCommand(screenCmd)
}
