// Package risk implements the hard-kill and soft-warning risk engine:
// earnings-manipulation (Beneish) and bankruptcy-distress (Altman)
// models, dilution and cash-runway checks, and the quality-of-earnings
// accrual check. Hard kills disqualify outright; soft warnings accumulate
// a bounded penalty. The two failure classes are never conflated.
package risk

import "github.com/sells-group/screener-cli/internal/model"

// Beneish M-Score weights, per the published eight-variable model.
const (
	beneishIntercept = -4.84
	weightDSRI       = 0.92
	weightGMI        = 0.528
	weightAQI        = 0.404
	weightSGI        = 0.892
	weightDEPI       = 0.115
	weightSGAI       = -0.172
	weightTATA       = 4.679
	weightLVGI       = -0.327
)

// beneishIndices holds the eight sub-indices. Ratio indices default to a
// neutral 1.0 when their denominator-period data is zero or missing;
// TATA, an asset-scaled accrual level rather than a ratio of ratios,
// defaults to 0.
type beneishIndices struct {
	DSRI, GMI, AQI, SGI, DEPI, SGAI, TATA, LVGI float64
}

func neutralIndices() beneishIndices {
	return beneishIndices{DSRI: 1, GMI: 1, AQI: 1, SGI: 1, DEPI: 1, SGAI: 1, TATA: 0, LVGI: 1}
}

// beneishPeriods is the quarter offset between the current and the
// prior-year comparison period.
const beneishPeriods = 4

// beneishMScore computes the M-Score from current vs. prior-year period
// pairs. Returns false when the series are too short for any comparison;
// individual missing fields degrade to neutral indices instead.
func beneishMScore(stmts model.Statements, ttmNetIncome, ttmOperatingCF float64) (float64, bool) {
	if len(stmts.Income) <= beneishPeriods || len(stmts.Balance) <= beneishPeriods {
		return 0, false
	}

	incT, incP := stmts.Income[0], stmts.Income[beneishPeriods]
	balT, balP := stmts.Balance[0], stmts.Balance[beneishPeriods]

	ix := neutralIndices()

	// Days-Sales-in-Receivables Index.
	if incT.Revenue > 0 && incP.Revenue > 0 && balP.Receivables > 0 {
		ix.DSRI = (balT.Receivables / incT.Revenue) / (balP.Receivables / incP.Revenue)
	}

	// Gross-Margin Index: prior margin over current, so a collapsing
	// margin pushes the index above 1.
	if incT.Revenue > 0 && incP.Revenue > 0 && incT.GrossProfit > 0 {
		gmT := incT.GrossProfit / incT.Revenue
		gmP := incP.GrossProfit / incP.Revenue
		if gmT > 0 {
			ix.GMI = gmP / gmT
		}
	}

	// Asset-Quality Index: share of "soft" assets (neither current nor
	// PP&E) now vs. a year ago.
	if balT.TotalAssets > 0 && balP.TotalAssets > 0 {
		softT := 1 - (balT.CurrentAssets+balT.PPENet)/balT.TotalAssets
		softP := 1 - (balP.CurrentAssets+balP.PPENet)/balP.TotalAssets
		if softP > 0 {
			ix.AQI = softT / softP
		}
	}

	// Sales-Growth Index.
	if incP.Revenue > 0 {
		ix.SGI = incT.Revenue / incP.Revenue
	}

	// Depreciation Index: a falling depreciation rate inflates earnings.
	if depr := depreciationAt(stmts.CashFlow, 0); depr > 0 {
		if deprP := depreciationAt(stmts.CashFlow, beneishPeriods); deprP > 0 {
			rateT := depr / (depr + balT.PPENet)
			rateP := deprP / (deprP + balP.PPENet)
			if rateT > 0 {
				ix.DEPI = rateP / rateT
			}
		}
	}

	// SG&A Index.
	if incT.Revenue > 0 && incP.Revenue > 0 && incP.SGA > 0 {
		ix.SGAI = (incT.SGA / incT.Revenue) / (incP.SGA / incP.Revenue)
	}

	// Total accruals to total assets over the trailing year.
	if balT.TotalAssets > 0 {
		ix.TATA = (ttmNetIncome - ttmOperatingCF) / balT.TotalAssets
	}

	// Leverage Index.
	if balT.TotalAssets > 0 && balP.TotalAssets > 0 && balP.TotalLiabilities > 0 {
		levT := balT.TotalLiabilities / balT.TotalAssets
		levP := balP.TotalLiabilities / balP.TotalAssets
		ix.LVGI = levT / levP
	}

	m := beneishIntercept +
		weightDSRI*ix.DSRI +
		weightGMI*ix.GMI +
		weightAQI*ix.AQI +
		weightSGI*ix.SGI +
		weightDEPI*ix.DEPI +
		weightSGAI*ix.SGAI +
		weightTATA*ix.TATA +
		weightLVGI*ix.LVGI

	return m, true
}

func depreciationAt(cf []model.CashFlowPeriod, idx int) float64 {
	if idx >= len(cf) {
		return 0
	}
	return cf[idx].Depreciation
}
