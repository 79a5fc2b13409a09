package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener-cli/internal/model"
)

func TestMapSector(t *testing.T) {
	tests := []struct {
		sector   string
		industry string
		want     model.Sector
	}{
		{"Technology", "Software - Application", model.SectorSaaS},
		{"Healthcare", "Biotechnology", model.SectorBiotech},
		{"Industrials", "Aerospace & Defense", model.SectorSpaceTech},
		{"Technology", "Semiconductors", model.SectorHardware},
		{"Financial Services", "Credit Services", model.SectorFinTech},
		{"Consumer Cyclical", "Specialty Retail", model.SectorConsumer},
		{"Industrials", "Specialty Machinery", model.SectorIndustrial},
		{"Energy", "Oil & Gas", model.SectorOther},
	}
	for _, tt := range tests {
		t.Run(tt.industry, func(t *testing.T) {
			assert.Equal(t, tt.want, mapSector(tt.sector, tt.industry))
		})
	}
}

func newFMPTest(t *testing.T, handler http.HandlerFunc) *FMPProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFMPProvider(testClient(srv.URL, 1))
}

func TestProfileMapsFields(t *testing.T) {
	p := newFMPTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"symbol":"ACME","companyName":"Acme Corp","sector":"Technology","industry":"Software - Infrastructure","mktCap":850000000,"isFounderCeo":true}]`))
	})

	profile, err := p.Profile(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, "ACME", profile.Ticker)
	assert.Equal(t, model.SectorSaaS, profile.Sector)
	assert.Equal(t, 850_000_000.0, profile.MarketCap)
	assert.True(t, profile.FounderLed)
}

func TestProfileEmptyResponse(t *testing.T) {
	p := newFMPTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := p.Profile(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no profile")
}

func TestCashFlowNormalizesCapexSign(t *testing.T) {
	p := newFMPTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"date":"2026-06-30","operatingCashFlow":12000000,"capitalExpenditure":-3000000,"depreciationAndAmortization":1500000}]`))
	})

	series, err := p.CashFlowStatements(context.Background(), "ACME", 4)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 3_000_000.0, series[0].Capex)
	assert.Equal(t, 2026, series[0].Date.Year())
}

func TestIncomeStatementsRequestQuarterlyPeriod(t *testing.T) {
	var gotPeriod, gotLimit string
	p := newFMPTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPeriod = r.URL.Query().Get("period")
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`[{"date":"2026-06-30","revenue":50000000}]`))
	})

	series, err := p.IncomeStatements(context.Background(), "ACME", 13)
	require.NoError(t, err)
	assert.Equal(t, "quarter", gotPeriod)
	assert.Equal(t, "13", gotLimit)
	require.Len(t, series, 1)
	assert.Equal(t, 50_000_000.0, series[0].Revenue)
}

func TestInsiderBuysFiltersSalesAndStaleTrades(t *testing.T) {
	recent := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	stale := time.Now().AddDate(-3, 0, 0).Format("2006-01-02")
	p := newFMPTest(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"reportingName":"Doe Jane","transactionDate":"%s","transactionType":"P-Purchase","securitiesTransacted":5000},
			{"reportingName":"Roe Rich","transactionDate":"%s","transactionType":"S-Sale","securitiesTransacted":2000},
			{"reportingName":"Old Owner","transactionDate":"%s","transactionType":"P-Purchase","securitiesTransacted":1000}
		]`, recent, recent, stale)
	})

	buys, err := p.InsiderBuys(context.Background(), "ACME", 365)
	require.NoError(t, err)
	require.Len(t, buys, 1)
	assert.Equal(t, "Doe Jane", buys[0].Name)
	assert.Equal(t, recent, buys[0].Date)
}
