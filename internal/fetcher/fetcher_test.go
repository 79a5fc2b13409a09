package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener-cli/internal/model"
)

// fakeProvider returns canned data with selectively failing series.
type fakeProvider struct {
	profileErr  error
	quoteErr    error
	incomeErr   error
	balanceErr  error
	cashFlowErr error
	insiderErr  error
}

func (f *fakeProvider) Profile(context.Context, string) (*Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &Profile{Ticker: "ACME", Sector: model.SectorSaaS, MarketCap: 900e6}, nil
}

func (f *fakeProvider) Quote(context.Context, string) (*model.MarketSnapshot, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return &model.MarketSnapshot{Price: 24.5, MarketCap: 900e6}, nil
}

func (f *fakeProvider) IncomeStatements(context.Context, string, int) ([]model.IncomePeriod, error) {
	if f.incomeErr != nil {
		return nil, f.incomeErr
	}
	return []model.IncomePeriod{{Revenue: 50e6}}, nil
}

func (f *fakeProvider) BalanceSheets(context.Context, string, int) ([]model.BalancePeriod, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return []model.BalancePeriod{{TotalAssets: 200e6}}, nil
}

func (f *fakeProvider) CashFlowStatements(context.Context, string, int) ([]model.CashFlowPeriod, error) {
	if f.cashFlowErr != nil {
		return nil, f.cashFlowErr
	}
	return []model.CashFlowPeriod{{OperatingCashFlow: 10e6}}, nil
}

func (f *fakeProvider) InsiderBuys(context.Context, string, int) ([]model.InsiderBuy, error) {
	if f.insiderErr != nil {
		return nil, f.insiderErr
	}
	return []model.InsiderBuy{{Name: "Doe Jane", Date: "2026-07-01"}}, nil
}

func TestGatherSubjectAllSeries(t *testing.T) {
	data, err := GatherSubject(context.Background(), &fakeProvider{}, "ACME")
	require.NoError(t, err)
	assert.Equal(t, "ACME", data.Profile.Ticker)
	assert.Equal(t, 24.5, data.Snapshot.Price)
	assert.Len(t, data.Statements.Income, 1)
	assert.Len(t, data.Statements.Balance, 1)
	assert.Len(t, data.Statements.CashFlow, 1)
	assert.Len(t, data.Insiders, 1)
	assert.Empty(t, data.Warnings)
}

func TestGatherSubjectProfileRequired(t *testing.T) {
	_, err := GatherSubject(context.Background(), &fakeProvider{profileErr: errors.New("not found")}, "NOPE")
	require.Error(t, err)
}

func TestGatherSubjectDegradesPerSeries(t *testing.T) {
	p := &fakeProvider{
		balanceErr: errors.New("503"),
		insiderErr: errors.New("timeout"),
	}
	data, err := GatherSubject(context.Background(), p, "ACME")
	require.NoError(t, err)

	assert.Len(t, data.Statements.Income, 1)
	assert.Empty(t, data.Statements.Balance)
	assert.Empty(t, data.Insiders)
	require.Len(t, data.Warnings, 2)
	assert.Contains(t, data.Warnings[0], "balance sheets unavailable")
	assert.Contains(t, data.Warnings[1], "insider trades unavailable")
}
