package pillars

import (
	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
)

// highVolatilityStdDev is the margin standard deviation above which
// pricing power is read as deteriorating.
const highVolatilityStdDev = 0.15

// Catalysts scores catalyst density and asymmetry of outcomes, both
// sourced from the qualitative collaborator, with a pricing-power
// adjustment layered in from margin behavior.
func Catalysts(m model.ExtractedMetrics, qual model.QualitativeInputs, cfg config.ScoringConfig) model.PillarScore {
	cc := cfg.Catalysts
	ps := model.PillarScore{Name: NameCatalysts, MaxScore: cc.Max}

	// Catalyst density tier.
	if qual.CatalystCount > 0 && len(cc.DensityPoints) == 3 {
		idx := qual.CatalystCount - 1
		if idx > 2 {
			idx = 2
		}
		pts := cc.DensityPoints[idx]
		ps.Score += pts
		ps.Details = detailf(ps.Details, "%d near-term catalyst(s): %.0f pts", qual.CatalystCount, pts)
	}

	// Asymmetry of outcomes.
	switch qual.Asymmetry {
	case model.AsymmetryHigh:
		ps.Score += cc.AsymmetryHighPoints
		ps.Details = detailf(ps.Details, "high asymmetry of outcomes: %.0f pts", cc.AsymmetryHighPoints)
	case model.AsymmetryMedium:
		ps.Score += cc.AsymmetryMedPoints
		ps.Details = detailf(ps.Details, "medium asymmetry of outcomes: %.0f pts", cc.AsymmetryMedPoints)
	}

	// Pricing-power adjustment from margin behavior.
	if m.MarginPeriods >= 2 {
		switch {
		case m.MarginStdDev < cfg.Quality.StabilityMaxStdDev && m.GrossMargin > cfg.Quality.StabilityMinMargin:
			ps.Score += cc.PricingPowerAdjust
			ps.Details = detailf(ps.Details, "pricing power intact: +%.0f pts", cc.PricingPowerAdjust)
		case m.MarginStdDev > highVolatilityStdDev:
			ps.Score -= cc.PricingPowerAdjust
			ps.Details = detailf(ps.Details, "volatile margins: -%.0f pts", cc.PricingPowerAdjust)
		}
	}

	ps.Score = clampScore(ps.Score, ps.MaxScore)
	return ps
}
