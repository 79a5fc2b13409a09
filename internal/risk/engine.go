package risk

import (
	"fmt"

	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
)

// Input carries everything the risk engine reads. TTM revenue and market
// cap are passed explicitly (not re-derived) so the engine stays a pure
// function of provided scalars.
type Input struct {
	Statements model.Statements
	Metrics    model.ExtractedMetrics
	Sector     model.Sector
	MarketCap  float64
}

// Assess runs every risk rule and aggregates hard kills and soft
// warnings. Disqualified is true iff a hard-kill rule fired; RiskPenalty
// is the sum of all soft-warning penalties and is accumulated
// independently of disqualification.
func Assess(in Input, cfg config.RiskConfig) model.RiskAssessment {
	ra := model.RiskAssessment{QualityOfEarnings: model.QoEUnknown}

	assessBeneish(&ra, in, cfg)
	assessAltman(&ra, in, cfg)
	assessDilution(&ra, in, cfg)
	assessRunway(&ra, in, cfg)
	assessQualityOfEarnings(&ra, in, cfg)

	ra.Disqualified = len(ra.DisqualifyReasons) > 0
	return ra
}

func assessBeneish(ra *model.RiskAssessment, in Input, cfg config.RiskConfig) {
	m, ok := beneishMScore(in.Statements, in.Metrics.TTMNetIncome, in.Metrics.TTMOperatingCF)
	ra.BeneishMScore = m
	ra.BeneishAvailable = ok
	if !ok {
		// False fraud signals on missing data are worse than an honest
		// unknown.
		ra.Warnings = append(ra.Warnings, "insufficient data for earnings-manipulation check")
		return
	}

	switch {
	case m > cfg.BeneishExtremeThreshold:
		if in.Metrics.TTMRevenue >= cfg.EarlyStageRevenueFloor {
			ra.DisqualifyReasons = append(ra.DisqualifyReasons,
				fmt.Sprintf("Beneish M-Score %.2f in extreme manipulation zone (> %.2f)", m, cfg.BeneishExtremeThreshold))
			return
		}
		// Accrual ratios are naturally noisy pre-scale, so early-stage
		// subjects take a heavy penalty instead of a kill.
		ra.Warnings = append(ra.Warnings,
			fmt.Sprintf("Beneish M-Score %.2f in extreme zone; early-stage (TTM revenue < $%.0fM) downgrade to penalty", m, cfg.EarlyStageRevenueFloor/1e6))
		ra.RiskPenalty += cfg.EarlyStagePenalty
	case m > beneishSoftThreshold(in.Sector, cfg):
		ra.Warnings = append(ra.Warnings,
			fmt.Sprintf("Beneish M-Score %.2f in soft-warning zone", m))
		ra.RiskPenalty += cfg.BeneishSoftPenalty
	}
}

// beneishSoftThreshold loosens the warning bar for R&D- and
// deferred-revenue-heavy sectors.
func beneishSoftThreshold(sector model.Sector, cfg config.RiskConfig) float64 {
	for _, s := range cfg.BeneishRelaxedSectors {
		if s == sector {
			return cfg.BeneishRelaxedThreshold
		}
	}
	return cfg.BeneishSoftThreshold
}

func assessAltman(ra *model.RiskAssessment, in Input, cfg config.RiskConfig) {
	ttmEBIT := ttmOperatingIncome(in.Statements.Income)
	z, modelName, ok := altmanZScore(in.Statements, ttmEBIT, in.Metrics.TTMRevenue, in.MarketCap, isManufacturing(in.Sector, cfg))
	ra.AltmanZScore = z
	ra.AltmanModel = modelName
	ra.AltmanAvailable = ok
	if !ok {
		ra.Warnings = append(ra.Warnings, "insufficient data for bankruptcy-distress check")
		return
	}

	switch {
	case z < cfg.AltmanKillThreshold && in.MarketCap < cfg.AltmanKillMaxMcap:
		// Large caps with a transient negative Z are not automatically
		// dead; everyone else is.
		ra.DisqualifyReasons = append(ra.DisqualifyReasons,
			fmt.Sprintf("Altman Z-Score %.2f below %.1f (%s model)", z, cfg.AltmanKillThreshold, modelName))
	case z < cfg.AltmanSoftThreshold:
		ra.Warnings = append(ra.Warnings,
			fmt.Sprintf("Altman Z-Score %.2f in distress zone (< %.1f)", z, cfg.AltmanSoftThreshold))
		ra.RiskPenalty += cfg.AltmanSoftPenalty
	}
}

func isManufacturing(sector model.Sector, cfg config.RiskConfig) bool {
	for _, s := range cfg.ManufacturingSectors {
		if s == sector {
			return true
		}
	}
	return false
}

func assessDilution(ra *model.RiskAssessment, in Input, cfg config.RiskConfig) {
	income := in.Statements.Income
	if len(income) < 5 || income[4].WeightedDilutedShares <= 0 {
		return
	}
	rate := (income[0].WeightedDilutedShares - income[4].WeightedDilutedShares) / income[4].WeightedDilutedShares
	ra.DilutionRate = rate
	ra.DilutionAvailable = true

	switch {
	case rate > cfg.DilutionKillRate:
		ra.DisqualifyReasons = append(ra.DisqualifyReasons,
			fmt.Sprintf("catastrophic dilution: share count up %.0f%% YoY", rate*100))
	case rate > cfg.DilutionHighRate:
		ra.Warnings = append(ra.Warnings,
			fmt.Sprintf("heavy dilution: share count up %.1f%% YoY", rate*100))
		ra.RiskPenalty += cfg.DilutionHighPenalty
	case rate >= cfg.DilutionModestRate:
		ra.Warnings = append(ra.Warnings,
			fmt.Sprintf("dilution: share count up %.1f%% YoY", rate*100))
		ra.RiskPenalty += cfg.DilutionModestPenalty
	}
}

func assessRunway(ra *model.RiskAssessment, in Input, cfg config.RiskConfig) {
	runway, status := cashRunway(in.Statements)
	if status != runwayBurning {
		ra.CashRunwayQuarters = model.RunwayInfinite
		if status == runwayUnknown {
			ra.Warnings = append(ra.Warnings, "insufficient data for cash-runway check")
		}
		return
	}
	ra.CashRunwayQuarters = runway

	switch {
	case runway < cfg.RunwayKillQuarters && in.Metrics.TTMNetIncome < 0:
		ra.DisqualifyReasons = append(ra.DisqualifyReasons,
			fmt.Sprintf("imminent insolvency: %.1f quarters of cash at current burn", runway))
	case runway < cfg.RunwaySoftQuarters:
		ra.Warnings = append(ra.Warnings,
			fmt.Sprintf("thin runway: %.1f quarters of cash at current burn", runway))
		ra.RiskPenalty += cfg.RunwaySoftPenalty
	}
}

type runwayStatus int

const (
	runwayBurning runwayStatus = iota
	runwaySelfFunding
	runwayUnknown
)

// cashRunway returns (cash + short-term investments) over the average
// quarterly free-cash-flow burn across the trailing four periods. A
// non-negative average FCF means the subject is self-funding; the caller
// reports the RunwayInfinite sentinel instead of dividing by a near-zero
// burn.
func cashRunway(stmts model.Statements) (float64, runwayStatus) {
	if len(stmts.Balance) == 0 || len(stmts.CashFlow) == 0 {
		return 0, runwayUnknown
	}

	n := len(stmts.CashFlow)
	if n > 4 {
		n = 4
	}
	var totalFCF float64
	for i := 0; i < n; i++ {
		totalFCF += stmts.CashFlow[i].OperatingCashFlow - stmts.CashFlow[i].Capex
	}
	avgFCF := totalFCF / float64(n)
	if avgFCF >= 0 {
		return 0, runwaySelfFunding
	}

	liquid := stmts.Balance[0].Cash + stmts.Balance[0].ShortTermInvestments
	return liquid / -avgFCF, runwayBurning
}

// assessQualityOfEarnings flags the classic accrual-manipulation
// signature: positive TTM net income with negative TTM operating cash
// flow ("paper tiger"). Distinct from and additive to the Beneish score.
func assessQualityOfEarnings(ra *model.RiskAssessment, in Input, cfg config.RiskConfig) {
	if len(in.Statements.CashFlow) == 0 || len(in.Statements.Income) == 0 {
		ra.QualityOfEarnings = model.QoEUnknown
		return
	}
	if in.Metrics.TTMNetIncome > 0 && in.Metrics.TTMOperatingCF < 0 {
		ra.QualityOfEarnings = model.QoEFail
		ra.Warnings = append(ra.Warnings,
			"quality of earnings: positive TTM net income with negative TTM operating cash flow")
		ra.RiskPenalty += cfg.QoEPenalty
		return
	}
	ra.QualityOfEarnings = model.QoEPass
}

func ttmOperatingIncome(income []model.IncomePeriod) float64 {
	var sum float64
	for i := 0; i < len(income) && i < 4; i++ {
		sum += income[i].OperatingIncome
	}
	return sum
}
