package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/screener-cli/internal/model"
)

var numPrinter = message.NewPrinter(language.English)

// renderReport prints the full detail view for one analysis.
func renderReport(w io.Writer, r *model.AnalysisReport) {
	fmt.Fprintf(w, "\n%s (%s)  %s\n", r.Ticker, r.Sector, r.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(w, "Score: %.1f / 100  %s  [%s]\n\n", r.FinalScore, r.Tier, r.Label)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Pillar", "Score", "Max", "Details"})
	for _, p := range r.Pillars {
		t.AppendRow(table.Row{p.Name, fmt.Sprintf("%.1f", p.Score), fmt.Sprintf("%.0f", p.MaxScore), strings.Join(p.Details, "; ")})
	}
	t.Render()

	if len(r.Adjustments) > 0 {
		fmt.Fprintln(w)
		a := table.NewWriter()
		a.SetOutputMirror(w)
		a.AppendHeader(table.Row{"Adjustment", "Value", "Reason"})
		for _, adj := range r.Adjustments {
			a.AppendRow(table.Row{adj.Name, fmt.Sprintf("%+.1f", adj.Value), adj.Reason})
		}
		a.Render()
	}

	fmt.Fprintln(w)
	if r.Risk.Disqualified {
		fmt.Fprintln(w, "DISQUALIFIED:")
		for _, reason := range r.Risk.DisqualifyReasons {
			fmt.Fprintf(w, "  - %s\n", reason)
		}
	}
	for _, warning := range r.Risk.Warnings {
		fmt.Fprintf(w, "  risk: %s\n", warning)
	}
	for _, warning := range r.DataWarnings {
		fmt.Fprintf(w, "  data: %s\n", warning)
	}
	if r.Metrics.TTMRevenue > 0 {
		numPrinter.Fprintf(w, "TTM revenue: $%.0f\n", r.Metrics.TTMRevenue)
	}
}

// renderReportList prints the one-line-per-company summary table.
func renderReportList(w io.Writer, reports []model.AnalysisReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Ticker", "Sector", "Score", "Tier", "Verdict"})
	for i, r := range reports {
		t.AppendRow(table.Row{
			i + 1, r.Ticker, r.Sector,
			fmt.Sprintf("%.1f", r.FinalScore),
			r.Tier, string(r.Verdict.Status),
		})
	}
	t.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode json")
}

var exportHeader = []string{
	"ticker", "sector", "final_score", "quant_score", "tier", "label",
	"verdict", "conviction", "disqualified", "generated_at",
}

func exportRow(r *model.AnalysisReport) []string {
	return []string{
		r.Ticker,
		string(r.Sector),
		strconv.FormatFloat(r.FinalScore, 'f', 1, 64),
		strconv.FormatFloat(r.QuantScore, 'f', 1, 64),
		r.Tier,
		r.Label,
		string(r.Verdict.Status),
		strconv.FormatFloat(r.Verdict.Conviction, 'f', 0, 64),
		strconv.FormatBool(r.Risk.Disqualified),
		r.GeneratedAt.Format("2006-01-02"),
	}
}

func writeReportsCSV(path string, reports []model.AnalysisReport) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(exportHeader); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for i := range reports {
		if err := cw.Write(exportRow(&reports[i])); err != nil {
			return eris.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "flush csv")
}

func writeReportsXLSX(path string, reports []model.AnalysisReport) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Screen")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().Value = h
	}
	for i := range reports {
		row := sheet.AddRow()
		for _, v := range exportRow(&reports[i]) {
			row.AddCell().Value = v
		}
	}
	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

// exportReports dispatches on the output file extension.
func exportReports(path string, reports []model.AnalysisReport) error {
	switch {
	case strings.HasSuffix(path, ".csv"):
		return writeReportsCSV(path, reports)
	case strings.HasSuffix(path, ".xlsx"):
		return writeReportsXLSX(path, reports)
	case strings.HasSuffix(path, ".json"):
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		return writeJSON(f, reports)
	default:
		return eris.Errorf("unsupported output format %q (use .csv, .xlsx, or .json)", path)
	}
}
