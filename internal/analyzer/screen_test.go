package analyzer

import (
	"context"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener-cli/internal/fetcher"
	"github.com/sells-group/screener-cli/internal/model"
)

// routingFetcher dispatches to a per-ticker fake so one universe can mix
// healthy and failing candidates.
type routingFetcher struct {
	mu     sync.Mutex
	byTick map[string]*fakeFetcher
}

func (r *routingFetcher) pick(ticker string) *fakeFetcher {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.byTick[ticker]; ok {
		return f
	}
	return &fakeFetcher{profileErr: eris.New("unknown ticker")}
}

func (r *routingFetcher) Profile(ctx context.Context, ticker string) (*fetcher.Profile, error) {
	return r.pick(ticker).Profile(ctx, ticker)
}

func (r *routingFetcher) Quote(ctx context.Context, ticker string) (*model.MarketSnapshot, error) {
	return r.pick(ticker).Quote(ctx, ticker)
}

func (r *routingFetcher) IncomeStatements(ctx context.Context, ticker string, limit int) ([]model.IncomePeriod, error) {
	return r.pick(ticker).IncomeStatements(ctx, ticker, limit)
}

func (r *routingFetcher) BalanceSheets(ctx context.Context, ticker string, limit int) ([]model.BalancePeriod, error) {
	return r.pick(ticker).BalanceSheets(ctx, ticker, limit)
}

func (r *routingFetcher) CashFlowStatements(ctx context.Context, ticker string, limit int) ([]model.CashFlowPeriod, error) {
	return r.pick(ticker).CashFlowStatements(ctx, ticker, limit)
}

func (r *routingFetcher) InsiderBuys(ctx context.Context, ticker string, lookbackDays int) ([]model.InsiderBuy, error) {
	return r.pick(ticker).InsiderBuys(ctx, ticker, lookbackDays)
}

func namedHealthy(ticker string) *fakeFetcher {
	f := healthyFetcher()
	f.profile.Ticker = ticker
	return f
}

func TestScreenMixedUniverse(t *testing.T) {
	weak := namedHealthy("WEAK")
	// Quintupled share count disqualifies WEAK outright.
	weak.income[0].WeightedDilutedShares = 500e6

	router := &routingFetcher{byTick: map[string]*fakeFetcher{
		"AAA":  namedHealthy("AAA"),
		"BBB":  namedHealthy("BBB"),
		"WEAK": weak,
	}}
	a := New(router, &fakeJudge{verdict: model.NeutralVerdict()}, testConfig())

	result, err := a.Screen(context.Background(), []Candidate{
		{Ticker: "AAA"},
		{Ticker: "MISSING"},
		{Ticker: "WEAK"},
		{Ticker: "BBB"},
	})
	require.NoError(t, err)

	require.Len(t, result.Reports, 3)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "MISSING", result.Failures[0].Ticker)
	assert.Contains(t, result.Failures[0].Err, "unknown ticker")

	// Sorted by final score descending; the disqualified zero lands last.
	assert.Equal(t, 0.0, result.Reports[2].FinalScore)
	assert.Equal(t, "WEAK", result.Reports[2].Ticker)
	assert.GreaterOrEqual(t, result.Reports[0].FinalScore, result.Reports[1].FinalScore)
}

func TestScreenEmptyUniverse(t *testing.T) {
	a := New(&routingFetcher{}, nil, testConfig())

	result, err := a.Screen(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Reports)
	assert.Empty(t, result.Failures)
}

func TestScreenConcurrencyBound(t *testing.T) {
	router := &routingFetcher{byTick: map[string]*fakeFetcher{}}
	for _, tick := range []string{"T1", "T2", "T3", "T4", "T5", "T6"} {
		router.byTick[tick] = namedHealthy(tick)
	}
	cfg := testConfig()
	cfg.Screen.MaxConcurrent = 1
	a := New(router, nil, cfg)

	result, err := a.Screen(context.Background(), []Candidate{
		{Ticker: "T1"}, {Ticker: "T2"}, {Ticker: "T3"},
		{Ticker: "T4"}, {Ticker: "T5"}, {Ticker: "T6"},
	})
	require.NoError(t, err)
	assert.Len(t, result.Reports, 6)
}
