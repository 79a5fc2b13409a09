// Package fetcher retrieves company fundamentals, quotes, and insider
// activity from the market-data API.
package fetcher

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/screener-cli/internal/model"
)

// Profile is the company master record from the provider.
type Profile struct {
	Ticker      string
	Name        string
	Sector      model.Sector
	Industry    string
	MarketCap   float64
	FounderLed  bool
	Description string
}

// Provider defines the market-data operations the analyzer needs.
type Provider interface {
	Profile(ctx context.Context, ticker string) (*Profile, error)
	Quote(ctx context.Context, ticker string) (*model.MarketSnapshot, error)
	IncomeStatements(ctx context.Context, ticker string, limit int) ([]model.IncomePeriod, error)
	BalanceSheets(ctx context.Context, ticker string, limit int) ([]model.BalancePeriod, error)
	CashFlowStatements(ctx context.Context, ticker string, limit int) ([]model.CashFlowPeriod, error)
	InsiderBuys(ctx context.Context, ticker string, lookbackDays int) ([]model.InsiderBuy, error)
}

// SubjectData is everything gathered for one ticker. Series the provider
// could not source are left empty and recorded in Warnings; the analyzer
// scores what it has.
type SubjectData struct {
	Profile    *Profile
	Snapshot   model.MarketSnapshot
	Statements model.Statements
	Insiders   []model.InsiderBuy
	Warnings   []string
}

// statementQuarters is how many quarterly periods are requested: enough
// for the longest CAGR window plus the year-over-year comparison.
const statementQuarters = 13

// insiderLookbackDays bounds the insider-purchase history pulled. Wider
// than the scoring window on purpose: the alignment pillar applies its
// own configured lookback, and the extra history stays on the report as
// context.
const insiderLookbackDays = 365

// GatherSubject fetches all series for a ticker in parallel. The profile
// is required; every other series degrades to a warning so one flaky
// endpoint does not abort the analysis.
func GatherSubject(ctx context.Context, p Provider, ticker string) (*SubjectData, error) {
	data := &SubjectData{}

	profile, err := p.Profile(ctx, ticker)
	if err != nil {
		return nil, err
	}
	data.Profile = profile

	type fetch struct {
		name string
		run  func(ctx context.Context) error
	}
	fetches := []fetch{
		{"quote", func(ctx context.Context) error {
			snap, err := p.Quote(ctx, ticker)
			if err != nil {
				return err
			}
			data.Snapshot = *snap
			return nil
		}},
		{"income statements", func(ctx context.Context) error {
			series, err := p.IncomeStatements(ctx, ticker, statementQuarters)
			if err != nil {
				return err
			}
			data.Statements.Income = series
			return nil
		}},
		{"balance sheets", func(ctx context.Context) error {
			series, err := p.BalanceSheets(ctx, ticker, statementQuarters)
			if err != nil {
				return err
			}
			data.Statements.Balance = series
			return nil
		}},
		{"cash flow statements", func(ctx context.Context) error {
			series, err := p.CashFlowStatements(ctx, ticker, statementQuarters)
			if err != nil {
				return err
			}
			data.Statements.CashFlow = series
			return nil
		}},
		{"insider trades", func(ctx context.Context) error {
			buys, err := p.InsiderBuys(ctx, ticker, insiderLookbackDays)
			if err != nil {
				return err
			}
			data.Insiders = buys
			return nil
		}},
	}

	warnings := make([]string, len(fetches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(fetches))
	for i, f := range fetches {
		g.Go(func() error {
			if err := f.run(gctx); err != nil {
				warnings[i] = fmt.Sprintf("%s unavailable: %v", f.name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, w := range warnings {
		if w != "" {
			data.Warnings = append(data.Warnings, w)
		}
	}

	return data, nil
}
