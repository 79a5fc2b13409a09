package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/screener-cli/internal/store"
)

var (
	reportsTicker   string
	reportsTier     string
	reportsMinScore float64
	reportsLimit    int
	reportsJSON     bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse stored analysis reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, best score first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		reports, err := st.ListReports(ctx, store.ReportFilter{
			Ticker:   strings.ToUpper(reportsTicker),
			Tier:     reportsTier,
			MinScore: reportsMinScore,
			Limit:    reportsLimit,
		})
		if err != nil {
			return err
		}

		if reportsJSON {
			return writeJSON(os.Stdout, reports)
		}
		renderReportList(os.Stdout, reports)
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one report by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := st.GetReport(ctx, args[0])
		if err != nil {
			return err
		}

		if reportsJSON {
			return writeJSON(os.Stdout, report)
		}
		renderReport(os.Stdout, report)
		return nil
	},
}

var reportsLatestCmd = &cobra.Command{
	Use:   "latest TICKER",
	Short: "Show the most recent report for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := st.LatestReport(ctx, strings.ToUpper(args[0]))
		if err != nil {
			return err
		}

		if reportsJSON {
			return writeJSON(os.Stdout, report)
		}
		renderReport(os.Stdout, report)
		return nil
	},
}

func init() {
	reportsListCmd.Flags().StringVar(&reportsTicker, "ticker", "", "filter by ticker")
	reportsListCmd.Flags().StringVar(&reportsTier, "tier", "", "filter by tier label")
	reportsListCmd.Flags().Float64Var(&reportsMinScore, "min-score", 0, "minimum final score")
	reportsListCmd.Flags().IntVar(&reportsLimit, "limit", 0, "max rows (default 100)")
	reportsCmd.PersistentFlags().BoolVar(&reportsJSON, "json", false, "print as JSON")
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsLatestCmd)
	rootCmd.AddCommand(reportsCmd)
}
