// Package universe loads screening candidate lists from YAML or CSV
// files. YAML carries the full qualitative inputs; CSV covers the common
// flat columns for spreadsheet-sourced universes.
package universe

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/screener-cli/internal/analyzer"
	"github.com/sells-group/screener-cli/internal/model"
)

// document is the YAML universe file shape.
type document struct {
	Candidates []candidate `yaml:"candidates"`
}

type candidate struct {
	Ticker string    `yaml:"ticker"`
	Inputs inputsDoc `yaml:"inputs"`
}

// inputsDoc mirrors model.QualitativeInputs with yaml tags so universe
// files read naturally.
type inputsDoc struct {
	FounderLed            bool    `yaml:"founder_led"`
	InsiderOwnershipPct   float64 `yaml:"insider_ownership_pct"`
	InstitutionalPct      float64 `yaml:"institutional_pct"`
	ShortInterestPct      float64 `yaml:"short_interest_pct"`
	NetDollarRetentionPct float64 `yaml:"net_dollar_retention_pct"`
	RecurringRevenue      bool    `yaml:"recurring_revenue"`
	TAMPenetrationPct     float64 `yaml:"tam_penetration_pct"`
	CatalystCount         int     `yaml:"catalyst_count"`
	Asymmetry             string  `yaml:"asymmetry"`
}

func (d inputsDoc) toModel() model.QualitativeInputs {
	in := model.QualitativeInputs{
		FounderLed:            d.FounderLed,
		InsiderOwnershipPct:   d.InsiderOwnershipPct,
		InstitutionalPct:      d.InstitutionalPct,
		ShortInterestPct:      d.ShortInterestPct,
		NetDollarRetentionPct: d.NetDollarRetentionPct,
		RecurringRevenue:      d.RecurringRevenue,
		TAMPenetrationPct:     d.TAMPenetrationPct,
		CatalystCount:         d.CatalystCount,
		Asymmetry:             model.AsymmetryUnknown,
	}
	if d.Asymmetry != "" {
		in.Asymmetry = model.AsymmetryLevel(strings.ToLower(d.Asymmetry))
	}
	if d.InstitutionalPct > 0 {
		in.InstitutionalQuality = model.QualityReal
	}
	if d.ShortInterestPct > 0 {
		in.ShortInterestQuality = model.QualityReal
	}
	if d.TAMPenetrationPct > 0 {
		in.TAMQuality = model.QualityEstimated
	}
	return in
}

// Load reads a universe file, dispatching on extension. ".yaml"/".yml"
// and ".csv" are supported.
func Load(path string) ([]analyzer.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "universe: open %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	case ".csv":
		return LoadCSV(f)
	default:
		return nil, eris.Errorf("universe: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadYAML parses a YAML universe document.
func LoadYAML(r io.Reader) ([]analyzer.Candidate, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "universe: parse yaml")
	}

	out := make([]analyzer.Candidate, 0, len(doc.Candidates))
	seen := make(map[string]bool, len(doc.Candidates))
	for _, c := range doc.Candidates {
		ticker := normalizeTicker(c.Ticker)
		if ticker == "" {
			return nil, eris.New("universe: candidate missing ticker")
		}
		if seen[ticker] {
			continue
		}
		seen[ticker] = true
		out = append(out, analyzer.Candidate{Ticker: ticker, Inputs: c.Inputs.toModel()})
	}
	return out, nil
}

// LoadCSV parses a headered CSV universe. The ticker column is required;
// the remaining columns are matched by header name and may appear in any
// order.
func LoadCSV(r io.Reader) ([]analyzer.Candidate, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "universe: read csv header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	tickerCol, ok := cols["ticker"]
	if !ok {
		return nil, eris.New("universe: csv missing ticker column")
	}

	var out []analyzer.Candidate
	seen := make(map[string]bool)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "universe: read csv row")
		}

		ticker := normalizeTicker(record[tickerCol])
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true

		var doc inputsDoc
		doc.FounderLed = csvBool(record, cols, "founder_led")
		doc.InsiderOwnershipPct = csvFloat(record, cols, "insider_ownership_pct")
		doc.InstitutionalPct = csvFloat(record, cols, "institutional_pct")
		doc.ShortInterestPct = csvFloat(record, cols, "short_interest_pct")
		doc.NetDollarRetentionPct = csvFloat(record, cols, "net_dollar_retention_pct")
		doc.RecurringRevenue = csvBool(record, cols, "recurring_revenue")
		doc.TAMPenetrationPct = csvFloat(record, cols, "tam_penetration_pct")
		doc.CatalystCount = int(csvFloat(record, cols, "catalyst_count"))
		doc.Asymmetry = csvString(record, cols, "asymmetry")

		out = append(out, analyzer.Candidate{Ticker: ticker, Inputs: doc.toModel()})
	}
	return out, nil
}

func normalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func csvString(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func csvFloat(record []string, cols map[string]int, name string) float64 {
	v, err := strconv.ParseFloat(csvString(record, cols, name), 64)
	if err != nil {
		return 0
	}
	return v
}

func csvBool(record []string, cols map[string]int, name string) bool {
	v, err := strconv.ParseBool(csvString(record, cols, name))
	if err != nil {
		return false
	}
	return v
}
