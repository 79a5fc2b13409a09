package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/screener-cli/internal/model"
)

var (
	analyzeJSON       bool
	analyzeNoSave     bool
	analyzeFounderLed bool
	analyzeInsiderPct float64
	analyzeNDRPct     float64
	analyzeRecurring  bool
	analyzeTAMPct     float64
	analyzeCatalysts  int
	analyzeAsymmetry  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER",
	Short: "Score a single company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ticker := strings.ToUpper(args[0])

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		qual := model.QualitativeInputs{
			FounderLed:            analyzeFounderLed,
			InsiderOwnershipPct:   analyzeInsiderPct,
			NetDollarRetentionPct: analyzeNDRPct,
			RecurringRevenue:      analyzeRecurring,
			TAMPenetrationPct:     analyzeTAMPct,
			CatalystCount:         analyzeCatalysts,
			Asymmetry:             model.AsymmetryUnknown,
		}
		if analyzeAsymmetry != "" {
			qual.Asymmetry = model.AsymmetryLevel(strings.ToLower(analyzeAsymmetry))
		}
		if analyzeTAMPct > 0 {
			qual.TAMQuality = model.QualityEstimated
		}

		report, err := env.Analyzer.Analyze(ctx, ticker, qual)
		if err != nil {
			return err
		}

		if !analyzeNoSave {
			if err := env.Store.SaveReport(ctx, report); err != nil {
				return err
			}
		}

		if analyzeJSON {
			return writeJSON(os.Stdout, report)
		}
		renderReport(os.Stdout, report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "skip persisting the report")
	analyzeCmd.Flags().BoolVar(&analyzeFounderLed, "founder-led", false, "founder still runs the company")
	analyzeCmd.Flags().Float64Var(&analyzeInsiderPct, "insider-pct", 0, "insider ownership percent")
	analyzeCmd.Flags().Float64Var(&analyzeNDRPct, "ndr-pct", 0, "net dollar retention percent")
	analyzeCmd.Flags().BoolVar(&analyzeRecurring, "recurring", false, "revenue is predominantly recurring")
	analyzeCmd.Flags().Float64Var(&analyzeTAMPct, "tam-pct", 0, "estimated TAM penetration percent")
	analyzeCmd.Flags().IntVar(&analyzeCatalysts, "catalysts", 0, "count of identified near-term catalysts")
	analyzeCmd.Flags().StringVar(&analyzeAsymmetry, "asymmetry", "", "outcome asymmetry: high, medium, or low")
	rootCmd.AddCommand(analyzeCmd)
}
