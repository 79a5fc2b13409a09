package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/fetcher"
	"github.com/sells-group/screener-cli/internal/judgment"
	"github.com/sells-group/screener-cli/internal/model"
)

type fakeFetcher struct {
	profile    *fetcher.Profile
	profileErr error
	snapshot   model.MarketSnapshot
	quoteErr   error
	income     []model.IncomePeriod
	balance    []model.BalancePeriod
	cashFlow   []model.CashFlowPeriod
	insiders   []model.InsiderBuy
}

func (f *fakeFetcher) Profile(_ context.Context, _ string) (*fetcher.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeFetcher) Quote(_ context.Context, _ string) (*model.MarketSnapshot, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	snap := f.snapshot
	return &snap, nil
}

func (f *fakeFetcher) IncomeStatements(_ context.Context, _ string, _ int) ([]model.IncomePeriod, error) {
	return f.income, nil
}

func (f *fakeFetcher) BalanceSheets(_ context.Context, _ string, _ int) ([]model.BalancePeriod, error) {
	return f.balance, nil
}

func (f *fakeFetcher) CashFlowStatements(_ context.Context, _ string, _ int) ([]model.CashFlowPeriod, error) {
	return f.cashFlow, nil
}

func (f *fakeFetcher) InsiderBuys(_ context.Context, _ string, _ int) ([]model.InsiderBuy, error) {
	return f.insiders, nil
}

type fakeJudge struct {
	verdict model.QualitativeVerdict
	err     error
	subject judgment.Subject
	calls   int
}

func (j *fakeJudge) Judge(_ context.Context, sub judgment.Subject) (model.QualitativeVerdict, error) {
	j.calls++
	j.subject = sub
	return j.verdict, j.err
}

func testConfig() *config.Config {
	return &config.Config{
		Judgment: config.DefaultJudgmentConfig(),
		Scoring:  config.DefaultScoringConfig(),
		Risk:     config.DefaultRiskConfig(),
		Screen:   config.ScreenConfig{MaxConcurrent: 2},
	}
}

func pow(base float64, exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

// healthyFetcher returns a compounder: revenue growing roughly 40% a
// year, positive free cash flow, a stable share count, and a solid
// balance sheet.
func healthyFetcher() *fakeFetcher {
	f := &fakeFetcher{
		profile: &fetcher.Profile{
			Ticker:     "ACME",
			Name:       "Acme Software",
			Sector:     model.SectorSaaS,
			MarketCap:  3_000e6,
			FounderLed: true,
		},
		snapshot: model.MarketSnapshot{
			Price:        42,
			MarketCap:    3_000e6,
			PriceToSales: 6.5,
			EVToSales:    6.2,
		},
		insiders: []model.InsiderBuy{{Name: "CEO", Date: time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")}},
	}

	quarterEnd := func(i int) time.Time {
		return time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC).AddDate(0, -3*i, 0)
	}
	for i := 0; i < 13; i++ {
		// Newest first; each step back is one quarter smaller.
		rev := 120e6 / pow(1.09, i)
		f.income = append(f.income, model.IncomePeriod{
			Date:                  quarterEnd(i),
			Revenue:               rev,
			GrossProfit:           rev * 0.75,
			SGA:                   rev * 0.30,
			RDExpense:             rev * 0.20,
			OperatingIncome:       rev * 0.15,
			NetIncome:             rev * 0.12,
			WeightedDilutedShares: 100e6,
		})
		f.balance = append(f.balance, model.BalancePeriod{
			Date:                 quarterEnd(i),
			Cash:                 500e6,
			ShortTermInvestments: 100e6,
			Receivables:          rev * 0.5,
			CurrentAssets:        700e6,
			PPENet:               80e6,
			TotalAssets:          1_000e6,
			CurrentLiabilities:   150e6,
			TotalLiabilities:     250e6,
			TotalDebt:            50e6,
			RetainedEarnings:     300e6,
			TotalEquity:          750e6,
		})
		f.cashFlow = append(f.cashFlow, model.CashFlowPeriod{
			Date:              quarterEnd(i),
			OperatingCashFlow: rev * 0.20,
			Capex:             rev * 0.03,
			Depreciation:      rev * 0.02,
		})
	}
	return f
}

func TestAnalyzeHealthyCompany(t *testing.T) {
	f := healthyFetcher()
	judge := &fakeJudge{verdict: model.QualitativeVerdict{
		Status: model.StatusStrongPass, Conviction: 90,
	}}
	a := New(f, judge, testConfig())

	report, err := a.Analyze(context.Background(), "ACME", model.QualitativeInputs{
		InsiderOwnershipPct:   20,
		NetDollarRetentionPct: 120,
		RecurringRevenue:      true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "ACME", report.Ticker)
	assert.Equal(t, model.SectorSaaS, report.Sector)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.Len(t, report.Pillars, 5)

	assert.False(t, report.Risk.Disqualified)
	assert.Greater(t, report.QuantScore, 0.0)
	assert.GreaterOrEqual(t, report.FinalScore, 0.0)
	assert.LessOrEqual(t, report.FinalScore, 100.0)
	assert.NotEqual(t, model.TierDisqualified, report.Tier)
	assert.NotEmpty(t, report.Label)

	assert.Equal(t, judgment.SourceProvider, report.VerdictSource)
	assert.Equal(t, model.StatusStrongPass, report.Verdict.Status)
	var sawBoost bool
	for _, adj := range report.Adjustments {
		if adj.Kind == model.AdjustJudgmentBoost {
			sawBoost = true
		}
	}
	assert.True(t, sawBoost)

	// The provider sees the quant score actually computed.
	assert.Equal(t, 1, judge.calls)
	assert.Equal(t, report.QuantScore, judge.subject.QuantScore)
	assert.Equal(t, "ACME", judge.subject.Ticker)
}

func TestAnalyzeRepeatable(t *testing.T) {
	f := healthyFetcher()
	judge := &fakeJudge{verdict: model.QualitativeVerdict{
		Status: model.StatusStrongPass, Conviction: 90,
	}}
	a := New(f, judge, testConfig())
	qual := model.QualitativeInputs{
		InsiderOwnershipPct:   20,
		NetDollarRetentionPct: 120,
		RecurringRevenue:      true,
	}

	first, err := a.Analyze(context.Background(), "ACME", qual)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "ACME", qual)
	require.NoError(t, err)

	// Identical inputs produce an identical report modulo the run ID and
	// the as-of timestamp.
	second.ID = first.ID
	second.GeneratedAt = first.GeneratedAt
	assert.Equal(t, first, second)
}

func TestAnalyzeJudgeFailureFallsBack(t *testing.T) {
	f := healthyFetcher()
	judge := &fakeJudge{err: eris.New("upstream unavailable")}
	a := New(f, judge, testConfig())

	report, err := a.Analyze(context.Background(), "ACME", model.QualitativeInputs{})
	require.NoError(t, err)

	assert.Equal(t, judgment.SourceFallback, report.VerdictSource)
	assert.Equal(t, model.NeutralVerdict(), report.Verdict)
}

func TestAnalyzeDilutionDisqualifies(t *testing.T) {
	f := healthyFetcher()
	// Share count quintupled over the trailing year.
	f.income[0].WeightedDilutedShares = 500e6
	judge := &fakeJudge{verdict: model.QualitativeVerdict{
		Status: model.StatusStrongPass, Conviction: 100,
	}}
	a := New(f, judge, testConfig())

	report, err := a.Analyze(context.Background(), "ACME", model.QualitativeInputs{})
	require.NoError(t, err)

	assert.True(t, report.Risk.Disqualified)
	assert.Equal(t, 0.0, report.FinalScore)
	assert.Equal(t, model.TierDisqualified, report.Tier)
	assert.Equal(t, "DISQUALIFIED", report.Label)
	// Raw score is preserved for audit even on a hard kill.
	assert.NotEqual(t, report.RawScore, report.FinalScore)
}

func TestAnalyzeUnknownSector(t *testing.T) {
	f := healthyFetcher()
	f.profile.Sector = "Telepathy"
	a := New(f, &fakeJudge{}, testConfig())

	_, err := a.Analyze(context.Background(), "ACME", model.QualitativeInputs{})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnknownSector)
}

func TestAnalyzeProfileError(t *testing.T) {
	f := &fakeFetcher{profileErr: eris.New("not found")}
	a := New(f, &fakeJudge{}, testConfig())

	_, err := a.Analyze(context.Background(), "NOPE", model.QualitativeInputs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gather NOPE")
}

func TestAnalyzeMergesFetchedInputs(t *testing.T) {
	f := healthyFetcher()
	judge := &fakeJudge{verdict: model.NeutralVerdict()}
	a := New(f, judge, testConfig())

	_, err := a.Analyze(context.Background(), "ACME", model.QualitativeInputs{})
	require.NoError(t, err)

	assert.True(t, judge.subject.Inputs.FounderLed)
	require.Len(t, judge.subject.Inputs.InsiderBuys, 1)
	assert.Equal(t, "CEO", judge.subject.Inputs.InsiderBuys[0].Name)
}

func TestAnalyzeQuoteFailureDegrades(t *testing.T) {
	f := healthyFetcher()
	f.quoteErr = eris.New("quote unavailable")
	a := New(f, &fakeJudge{verdict: model.NeutralVerdict()}, testConfig())

	report, err := a.Analyze(context.Background(), "ACME", model.QualitativeInputs{})
	require.NoError(t, err)

	// The quote failure degrades to a warning, not an abort.
	assert.NotEmpty(t, report.DataWarnings)
	assert.False(t, report.Risk.Disqualified)
}

func TestNilJudgeUsesFallback(t *testing.T) {
	f := healthyFetcher()
	a := New(f, nil, testConfig())

	report, err := a.Analyze(context.Background(), "ACME", model.QualitativeInputs{})
	require.NoError(t, err)
	assert.Equal(t, judgment.SourceFallback, report.VerdictSource)
	assert.Equal(t, model.NeutralVerdict(), report.Verdict)
}
