// Package metrics derives comparable-period aggregates from raw
// quarterly statement series: TTM sums, dynamic-window CAGR, margin
// volatility, leverage, and return ratios. Everything here is a pure
// function of its inputs; degraded inputs produce flagged, not missing,
// outputs.
package metrics

import (
	"math"

	"github.com/sells-group/screener-cli/internal/model"
)

// ttmPeriods is the number of quarters summed for trailing-twelve-month
// aggregates.
const ttmPeriods = 4

// cagrWindows lists the preferred CAGR lookback windows in quarters,
// longest first. Anything shorter than the full 12-quarter window is
// tagged partial and penalized at scoring time.
var cagrWindows = []int{12, 8, 4}

// Extract computes the single-snapshot metric view from a subject's
// statement series. Series are newest-first; any series may be short or
// empty.
func Extract(stmts model.Statements) model.ExtractedMetrics {
	m := model.ExtractedMetrics{
		IncomePeriods:   len(stmts.Income),
		BalancePeriods:  len(stmts.Balance),
		CashFlowPeriods: len(stmts.CashFlow),
	}

	m.RevenueCAGR = revenueCAGR(stmts.Income)
	m.LatestYoYGrowth, m.YoYAvailable = latestYoY(stmts.Income)

	m.TTMRevenue = ttmIncome(stmts.Income, func(p model.IncomePeriod) float64 { return p.Revenue })
	m.TTMNetIncome = ttmIncome(stmts.Income, func(p model.IncomePeriod) float64 { return p.NetIncome })
	m.TTMOperatingCF = ttmCashFlow(stmts.CashFlow, func(p model.CashFlowPeriod) float64 { return p.OperatingCashFlow })
	capex := ttmCashFlow(stmts.CashFlow, func(p model.CashFlowPeriod) float64 { return p.Capex })
	m.TTMFreeCashFlow = m.TTMOperatingCF - capex

	if len(stmts.Income) > 0 && stmts.Income[0].Revenue > 0 {
		m.GrossMargin = stmts.Income[0].GrossProfit / stmts.Income[0].Revenue
	}
	m.MarginStdDev, m.MarginPeriods = marginVolatility(stmts.Income)

	if m.TTMRevenue > 0 {
		m.RDIntensity = ttmIncome(stmts.Income, func(p model.IncomePeriod) float64 { return p.RDExpense }) / m.TTMRevenue
		m.FCFMargin = m.TTMFreeCashFlow / m.TTMRevenue
	}

	m.NetDebtToEBITDA, m.LeverageAvailable = netDebtToEBITDA(stmts)

	if len(stmts.Balance) > 0 && stmts.Balance[0].TotalEquity > 0 {
		m.ReturnOnEquity = m.TTMNetIncome / stmts.Balance[0].TotalEquity
		m.ROEAvailable = true
	}

	return m
}

// revenueCAGR computes CAGR over the longest available window:
// (latest/oldest)^(1/years) - 1, with the oldest value at index
// window-1 and years = window/4. A non-positive oldest value makes the
// ratio meaningless, so the result is 0 rather than an error.
func revenueCAGR(income []model.IncomePeriod) model.CAGRResult {
	for _, w := range cagrWindows {
		if len(income) < w {
			continue
		}
		res := model.CAGRResult{WindowQuarters: w, IsPartial: w < cagrWindows[0]}
		latest := income[0].Revenue
		oldest := income[w-1].Revenue
		if oldest <= 0 || latest <= 0 {
			return res
		}
		years := float64(w) / 4
		res.Value = math.Pow(latest/oldest, 1/years) - 1
		return res
	}
	return model.CAGRResult{IsPartial: true}
}

// latestYoY returns the latest-period year-over-year revenue growth.
// Index 4 is "one year prior" on quarterly cadence.
func latestYoY(income []model.IncomePeriod) (float64, bool) {
	if len(income) < 5 {
		return 0, false
	}
	prior := income[4].Revenue
	if prior <= 0 {
		return 0, false
	}
	return (income[0].Revenue - prior) / prior, true
}

// marginVolatility is the population standard deviation of the last
// ttmPeriods gross-margin ratios. Low volatility combined with a high
// margin is read downstream as pricing-power evidence.
func marginVolatility(income []model.IncomePeriod) (float64, int) {
	var margins []float64
	for i := 0; i < len(income) && i < ttmPeriods; i++ {
		if income[i].Revenue > 0 {
			margins = append(margins, income[i].GrossProfit/income[i].Revenue)
		}
	}
	if len(margins) < 2 {
		return 0, len(margins)
	}

	var mean float64
	for _, v := range margins {
		mean += v
	}
	mean /= float64(len(margins))

	var sumSq float64
	for _, v := range margins {
		sumSq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sumSq / float64(len(margins))), len(margins)
}

// netDebtToEBITDA computes (total debt - cash - short-term investments)
// over TTM EBITDA. Unavailable when EBITDA is non-positive or the
// balance sheet is missing.
func netDebtToEBITDA(stmts model.Statements) (float64, bool) {
	if len(stmts.Balance) == 0 {
		return 0, false
	}
	ebitda := ttmIncome(stmts.Income, func(p model.IncomePeriod) float64 { return p.OperatingIncome }) +
		ttmCashFlow(stmts.CashFlow, func(p model.CashFlowPeriod) float64 { return p.Depreciation })
	if ebitda <= 0 {
		return 0, false
	}
	b := stmts.Balance[0]
	netDebt := b.TotalDebt - b.Cash - b.ShortTermInvestments
	return netDebt / ebitda, true
}

func ttmIncome(periods []model.IncomePeriod, f func(model.IncomePeriod) float64) float64 {
	var sum float64
	for i := 0; i < len(periods) && i < ttmPeriods; i++ {
		sum += f(periods[i])
	}
	return sum
}

func ttmCashFlow(periods []model.CashFlowPeriod, f func(model.CashFlowPeriod) float64) float64 {
	var sum float64
	for i := 0; i < len(periods) && i < ttmPeriods; i++ {
		sum += f(periods[i])
	}
	return sum
}
