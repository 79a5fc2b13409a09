package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/metrics"
	"github.com/sells-group/screener-cli/internal/model"
)

// steadyStatements builds n quarters of a stable, self-funding company.
func steadyStatements(n int) model.Statements {
	var stmts model.Statements
	for i := 0; i < n; i++ {
		stmts.Income = append(stmts.Income, model.IncomePeriod{
			Revenue:               100e6,
			GrossProfit:           70e6,
			SGA:                   30e6,
			OperatingIncome:       15e6,
			NetIncome:             12e6,
			WeightedDilutedShares: 50e6,
		})
		stmts.Balance = append(stmts.Balance, model.BalancePeriod{
			Cash:                 200e6,
			ShortTermInvestments: 50e6,
			Receivables:          40e6,
			CurrentAssets:        300e6,
			PPENet:               60e6,
			TotalAssets:          400e6,
			CurrentLiabilities:   80e6,
			TotalLiabilities:     120e6,
			RetainedEarnings:     150e6,
			TotalEquity:          280e6,
		})
		stmts.CashFlow = append(stmts.CashFlow, model.CashFlowPeriod{
			OperatingCashFlow: 18e6,
			Capex:             3e6,
			Depreciation:      2e6,
		})
	}
	return stmts
}

func assess(t *testing.T, stmts model.Statements, sector model.Sector, marketCap float64) model.RiskAssessment {
	t.Helper()
	m := metrics.Extract(stmts)
	return Assess(Input{
		Statements: stmts,
		Metrics:    m,
		Sector:     sector,
		MarketCap:  marketCap,
	}, config.DefaultRiskConfig())
}

func TestAssessHealthyCompany(t *testing.T) {
	ra := assess(t, steadyStatements(13), model.SectorSaaS, 2_000e6)

	assert.False(t, ra.Disqualified)
	assert.Empty(t, ra.DisqualifyReasons)
	assert.True(t, ra.BeneishAvailable)
	assert.True(t, ra.AltmanAvailable)
	assert.Equal(t, AltmanNonManufacturing, ra.AltmanModel)
	assert.True(t, ra.DilutionAvailable)
	assert.Equal(t, 0.0, ra.DilutionRate)
	assert.Equal(t, float64(model.RunwayInfinite), ra.CashRunwayQuarters)
	assert.Equal(t, model.QoEPass, ra.QualityOfEarnings)
}

func TestAssessBeneishUnavailableWarnsOnly(t *testing.T) {
	// Four quarters is not enough for a prior-year comparison.
	ra := assess(t, steadyStatements(4), model.SectorSaaS, 2_000e6)

	assert.False(t, ra.BeneishAvailable)
	assert.False(t, ra.Disqualified)
	assert.Contains(t, ra.Warnings, "insufficient data for earnings-manipulation check")
}

func TestAssessBeneishExtremeKills(t *testing.T) {
	stmts := steadyStatements(13)
	// Massive positive accruals: high paper income, deeply negative
	// operating cash flow. TATA alone pushes the score into the extreme
	// zone.
	for i := 0; i < 4; i++ {
		stmts.Income[i].NetIncome = 90e6
		stmts.CashFlow[i].OperatingCashFlow = -60e6
	}

	ra := assess(t, stmts, model.SectorSaaS, 2_000e6)
	require.True(t, ra.BeneishAvailable)
	assert.Greater(t, ra.BeneishMScore, -0.5)
	assert.True(t, ra.Disqualified)
	require.NotEmpty(t, ra.DisqualifyReasons)
	assert.Contains(t, ra.DisqualifyReasons[0], "Beneish M-Score")
}

func TestAssessBeneishExtremeEarlyStageDowngrades(t *testing.T) {
	stmts := steadyStatements(13)
	for i := range stmts.Income {
		// TTM revenue 40M, below the early-stage floor.
		stmts.Income[i].Revenue = 10e6
		stmts.Income[i].GrossProfit = 7e6
		stmts.Income[i].SGA = 3e6
	}
	for i := 0; i < 4; i++ {
		stmts.Income[i].NetIncome = 90e6
		stmts.CashFlow[i].OperatingCashFlow = -60e6
	}

	ra := assess(t, stmts, model.SectorSaaS, 500e6)
	require.True(t, ra.BeneishAvailable)
	assert.Greater(t, ra.BeneishMScore, -0.5)
	assert.False(t, ra.Disqualified)
	assert.Less(t, ra.RiskPenalty, 0.0)
}

func TestAssessAltmanKill(t *testing.T) {
	stmts := steadyStatements(13)
	for i := range stmts.Balance {
		// Deeply insolvent balance sheet.
		stmts.Balance[i].CurrentAssets = 20e6
		stmts.Balance[i].CurrentLiabilities = 300e6
		stmts.Balance[i].TotalLiabilities = 500e6
		stmts.Balance[i].RetainedEarnings = -300e6
		stmts.Balance[i].TotalEquity = -100e6
		stmts.Balance[i].Cash = 10e6
		stmts.Balance[i].ShortTermInvestments = 0
	}
	for i := range stmts.Income {
		stmts.Income[i].OperatingIncome = -40e6
	}

	ra := assess(t, stmts, model.SectorSaaS, 500e6)
	require.True(t, ra.AltmanAvailable)
	assert.Less(t, ra.AltmanZScore, 0.0)
	assert.True(t, ra.Disqualified)
}

func TestAssessAltmanLargeCapSpared(t *testing.T) {
	stmts := steadyStatements(13)
	for i := range stmts.Balance {
		stmts.Balance[i].CurrentAssets = 20e6
		stmts.Balance[i].CurrentLiabilities = 300e6
		stmts.Balance[i].TotalLiabilities = 500e6
		stmts.Balance[i].RetainedEarnings = -300e6
		stmts.Balance[i].TotalEquity = -100e6
	}
	for i := range stmts.Income {
		stmts.Income[i].OperatingIncome = -40e6
	}

	// Above the kill market-cap ceiling: soft warning at most.
	ra := assess(t, stmts, model.SectorSaaS, 25_000e6)
	for _, reason := range ra.DisqualifyReasons {
		assert.NotContains(t, reason, "Altman")
	}
}

func TestAssessAltmanManufacturingModel(t *testing.T) {
	ra := assess(t, steadyStatements(13), model.SectorIndustrial, 2_000e6)
	assert.Equal(t, AltmanManufacturing, ra.AltmanModel)
}

func TestAssessDilution(t *testing.T) {
	tests := []struct {
		name         string
		latestShares float64
		disqualify   bool
		penalty      bool
	}{
		{"stable", 50e6, false, false},
		{"modest 15%", 57.5e6, false, true},
		{"heavy 50%", 75e6, false, true},
		{"catastrophic 4x", 250e6, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := steadyStatements(13)
			stmts.Income[0].WeightedDilutedShares = tt.latestShares

			ra := assess(t, stmts, model.SectorSaaS, 2_000e6)
			require.True(t, ra.DilutionAvailable)
			assert.Equal(t, tt.disqualify, containsSub(ra.DisqualifyReasons, "dilution"))
			if tt.penalty {
				assert.Less(t, ra.RiskPenalty, 0.0)
			}
		})
	}
}

func TestAssessDilutionPenaltyMonotonic(t *testing.T) {
	// Penalty magnitude never shrinks as the dilution rate climbs.
	shares := []float64{50e6, 52e6, 57.5e6, 65e6, 75e6, 100e6}

	prev := 0.0
	for _, s := range shares {
		stmts := steadyStatements(13)
		stmts.Income[0].WeightedDilutedShares = s

		ra := assess(t, stmts, model.SectorSaaS, 2_000e6)
		require.False(t, ra.Disqualified)
		magnitude := -ra.RiskPenalty
		assert.GreaterOrEqual(t, magnitude, prev, "shares %.1fM", s/1e6)
		prev = magnitude
	}
}

func TestAssessRunwayKill(t *testing.T) {
	stmts := steadyStatements(13)
	for i := range stmts.Income {
		stmts.Income[i].NetIncome = -30e6
	}
	for i := range stmts.CashFlow {
		stmts.CashFlow[i].OperatingCashFlow = -80e6
		stmts.CashFlow[i].Capex = 5e6
	}
	for i := range stmts.Balance {
		// Under one quarter of cash at an 85M/quarter burn.
		stmts.Balance[i].Cash = 50e6
		stmts.Balance[i].ShortTermInvestments = 0
	}

	ra := assess(t, stmts, model.SectorSaaS, 500e6)
	assert.Less(t, ra.CashRunwayQuarters, 1.0)
	assert.True(t, ra.Disqualified)
	assert.True(t, containsSub(ra.DisqualifyReasons, "insolvency"))
}

func TestAssessRunwaySoftWarning(t *testing.T) {
	stmts := steadyStatements(13)
	for i := range stmts.Income {
		stmts.Income[i].NetIncome = -80e6
	}
	for i := range stmts.CashFlow {
		stmts.CashFlow[i].OperatingCashFlow = -80e6
		stmts.CashFlow[i].Capex = 5e6
	}
	for i := range stmts.Balance {
		// About 2.9 quarters of runway.
		stmts.Balance[i].Cash = 250e6
		stmts.Balance[i].ShortTermInvestments = 0
	}

	ra := assess(t, stmts, model.SectorSaaS, 500e6)
	assert.False(t, containsSub(ra.DisqualifyReasons, "insolvency"))
	assert.True(t, containsSub(ra.Warnings, "thin runway"))
}

func TestAssessQoEFail(t *testing.T) {
	stmts := steadyStatements(13)
	for i := 0; i < 4; i++ {
		stmts.Income[i].NetIncome = 20e6
		stmts.CashFlow[i].OperatingCashFlow = -10e6
	}

	ra := assess(t, stmts, model.SectorSaaS, 2_000e6)
	assert.Equal(t, model.QoEFail, ra.QualityOfEarnings)
	assert.Less(t, ra.RiskPenalty, 0.0)
}

func TestAssessQoEUnknownOnMissingData(t *testing.T) {
	ra := assess(t, model.Statements{}, model.SectorSaaS, 2_000e6)
	assert.Equal(t, model.QoEUnknown, ra.QualityOfEarnings)
}

func TestBeneishNeutralOnStableBusiness(t *testing.T) {
	stmts := steadyStatements(13)
	m := metrics.Extract(stmts)
	score, ok := beneishMScore(stmts, m.TTMNetIncome, m.TTMOperatingCF)
	require.True(t, ok)
	// All ratio indices neutral at 1.0; TATA slightly negative for a
	// cash-generative business. Score stays far below the extreme zone.
	assert.Less(t, score, -2.0)
}

func TestAltmanModels(t *testing.T) {
	stmts := steadyStatements(1)
	b := stmts.Balance[0]

	zNon, name, ok := altmanZScore(stmts, 60e6, 400e6, 2_000e6, false)
	require.True(t, ok)
	assert.Equal(t, AltmanNonManufacturing, name)
	wantNon := 6.56*((b.CurrentAssets-b.CurrentLiabilities)/b.TotalAssets) +
		3.26*(b.RetainedEarnings/b.TotalAssets) +
		6.72*(60e6/b.TotalAssets) +
		1.05*(b.TotalEquity/b.TotalLiabilities)
	assert.InDelta(t, wantNon, zNon, 1e-9)

	zMan, name, ok := altmanZScore(stmts, 60e6, 400e6, 2_000e6, true)
	require.True(t, ok)
	assert.Equal(t, AltmanManufacturing, name)
	wantMan := 1.2*((b.CurrentAssets-b.CurrentLiabilities)/b.TotalAssets) +
		1.4*(b.RetainedEarnings/b.TotalAssets) +
		3.3*(60e6/b.TotalAssets) +
		0.6*(2_000e6/b.TotalLiabilities) +
		1.0*(400e6/b.TotalAssets)
	assert.InDelta(t, wantMan, zMan, 1e-9)
}

func TestAltmanUnavailable(t *testing.T) {
	_, _, ok := altmanZScore(model.Statements{}, 0, 0, 0, false)
	assert.False(t, ok)
}

func containsSub(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
