// Package model defines the data types shared across the scoring engine:
// raw statement periods, extracted metrics, risk assessments, pillar
// scores, and the final analysis report.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// ErrMalformedStatement is returned when a statement series violates its
// structural contract (e.g. out-of-order periods). Malformed statements
// are a programming error and abort the subject's run.
var ErrMalformedStatement = eris.New("model: malformed statement series")

// IncomePeriod holds one reporting period's income statement line items.
// Series are ordered newest-first: index i is "i quarters ago" when the
// cadence is quarterly. Periods are immutable once fetched.
type IncomePeriod struct {
	Date                  time.Time `json:"date"`
	Revenue               float64   `json:"revenue"`
	GrossProfit           float64   `json:"gross_profit"`
	SGA                   float64   `json:"sga"`
	RDExpense             float64   `json:"rd_expense"`
	OperatingIncome       float64   `json:"operating_income"`
	NetIncome             float64   `json:"net_income"`
	WeightedDilutedShares float64   `json:"weighted_diluted_shares"`
}

// BalancePeriod holds one reporting period's balance sheet line items.
type BalancePeriod struct {
	Date                 time.Time `json:"date"`
	Cash                 float64   `json:"cash"`
	ShortTermInvestments float64   `json:"short_term_investments"`
	Receivables          float64   `json:"receivables"`
	CurrentAssets        float64   `json:"current_assets"`
	PPENet               float64   `json:"ppe_net"`
	TotalAssets          float64   `json:"total_assets"`
	CurrentLiabilities   float64   `json:"current_liabilities"`
	TotalLiabilities     float64   `json:"total_liabilities"`
	TotalDebt            float64   `json:"total_debt"`
	RetainedEarnings     float64   `json:"retained_earnings"`
	TotalEquity          float64   `json:"total_equity"`
}

// CashFlowPeriod holds one reporting period's cash flow statement line items.
type CashFlowPeriod struct {
	Date              time.Time `json:"date"`
	OperatingCashFlow float64   `json:"operating_cash_flow"`
	Capex             float64   `json:"capex"`
	Depreciation      float64   `json:"depreciation"`
}

// Statements bundles the three statement series for one subject.
// Any series may be short or empty; consumers degrade rather than fail.
type Statements struct {
	Income   []IncomePeriod   `json:"income"`
	Balance  []BalancePeriod  `json:"balance"`
	CashFlow []CashFlowPeriod `json:"cash_flow"`
}

// MarketSnapshot is the point-in-time market data for one subject.
type MarketSnapshot struct {
	Price        float64 `json:"price"`
	MarketCap    float64 `json:"market_cap"`
	TrailingPE   float64 `json:"trailing_pe"`
	ForwardPE    float64 `json:"forward_pe"`
	PriceToSales float64 `json:"price_to_sales"`
	EVToSales    float64 `json:"ev_to_sales"`
}
