package model

// CAGRResult is a compound annual growth rate computed over the longest
// available lookback window. Shorter fallback windows are tagged
// IsPartial and penalized at scoring time rather than treated as
// equal-confidence data.
type CAGRResult struct {
	Value          float64 `json:"value"`           // e.g. 0.32 = 32%/yr
	WindowQuarters int     `json:"window_quarters"` // 12, 8, or 4; 0 when unavailable
	IsPartial      bool    `json:"is_partial"`
}

// ExtractedMetrics is the derived single-snapshot view of a subject's
// statement series. Computed once per analysis run and never mutated;
// read by the risk engine and the pillar scorers.
type ExtractedMetrics struct {
	RevenueCAGR     CAGRResult `json:"revenue_cagr"`
	LatestYoYGrowth float64    `json:"latest_yoy_growth"`
	YoYAvailable    bool       `json:"yoy_available"`

	GrossMargin       float64 `json:"gross_margin"`
	MarginStdDev      float64 `json:"margin_std_dev"`
	MarginPeriods     int     `json:"margin_periods"`
	RDIntensity       float64 `json:"rd_intensity"`
	NetDebtToEBITDA   float64 `json:"net_debt_to_ebitda"`
	LeverageAvailable bool    `json:"leverage_available"`

	TTMRevenue      float64 `json:"ttm_revenue"`
	TTMNetIncome    float64 `json:"ttm_net_income"`
	TTMOperatingCF  float64 `json:"ttm_operating_cf"`
	TTMFreeCashFlow float64 `json:"ttm_free_cash_flow"`
	ReturnOnEquity  float64 `json:"return_on_equity"`
	ROEAvailable    bool    `json:"roe_available"`
	FCFMargin       float64 `json:"fcf_margin"`
	IncomePeriods   int     `json:"income_periods"`
	BalancePeriods  int     `json:"balance_periods"`
	CashFlowPeriods int     `json:"cash_flow_periods"`
}
