// Package composite combines pillar scores into the composite total:
// single-bonus selection, risk penalty application, tier derivation, and
// the capped external-judgment adjustment.
package composite

import (
	"fmt"

	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
	"github.com/sells-group/screener-cli/internal/pillars"
)

// Bonus names.
const (
	BonusSectorLeader      = "sector_leader"
	BonusCapitalEfficiency = "capital_efficiency"
)

// Result is the composite aggregation output. Total is unclamped so the
// judgment integrator and audit trail see the raw value; QuantScore is
// the clamped quantitative composite.
type Result struct {
	PillarTotal float64
	Total       float64
	QuantScore  float64
	Adjustments []model.Adjustment
}

// Aggregate sums pillar scores, applies at most one bonus (highest value
// wins; bonuses never stack), and applies the risk penalty. Per-pillar
// values are trusted as already clamped by their scorers.
func Aggregate(pillarScores []model.PillarScore, risk model.RiskAssessment, m model.ExtractedMetrics, cfg config.ScoringConfig) Result {
	var res Result
	for _, p := range pillarScores {
		res.PillarTotal += p.Score
	}
	res.Total = res.PillarTotal

	if bonus := selectBonus(pillarScores, m, cfg.Bonus); bonus != nil {
		res.Total += bonus.Value
		res.Adjustments = append(res.Adjustments, *bonus)
	}

	if risk.RiskPenalty != 0 {
		res.Total += risk.RiskPenalty
		res.Adjustments = append(res.Adjustments, model.Adjustment{
			Kind:   model.AdjustRiskPenalty,
			Name:   "risk_penalty",
			Value:  risk.RiskPenalty,
			Reason: fmt.Sprintf("%d soft risk warning(s)", len(risk.Warnings)),
		})
	}

	res.QuantScore = clamp100(res.Total)
	return res
}

// selectBonus evaluates the ordered bonus conditions and returns the
// single highest-value match, or nil. Ties keep the earlier condition.
func selectBonus(pillarScores []model.PillarScore, m model.ExtractedMetrics, cfg config.BonusConfig) *model.Adjustment {
	byName := make(map[string]model.PillarScore, len(pillarScores))
	for _, p := range pillarScores {
		byName[p.Name] = p
	}

	var candidates []model.Adjustment

	if byName[pillars.NameGrowth].Score >= cfg.SectorLeaderGrowthBar && byName[pillars.NameQuality].Score >= cfg.SectorLeaderQualityBar {
		candidates = append(candidates, model.Adjustment{
			Kind:   model.AdjustBonus,
			Name:   BonusSectorLeader,
			Value:  cfg.SectorLeaderValue,
			Reason: "growth and quality pillars both at sector-leader levels",
		})
	}

	if m.ROEAvailable &&
		m.ReturnOnEquity*100 >= cfg.CapitalEfficiencyROE &&
		m.FCFMargin*100 >= cfg.CapitalEfficiencyFCF &&
		m.RevenueCAGR.Value*100 >= cfg.CapitalEfficiencyCAGR {
		candidates = append(candidates, model.Adjustment{
			Kind:   model.AdjustBonus,
			Name:   BonusCapitalEfficiency,
			Value:  cfg.CapitalEfficiencyValue,
			Reason: "ROE, FCF margin and growth all above capital-efficiency floors",
		})
	}

	var best *model.Adjustment
	for i := range candidates {
		if best == nil || candidates[i].Value > best.Value {
			best = &candidates[i]
		}
	}
	return best
}

// TierFor maps a final clamped score onto the tier ladder. A hard kill
// forces Disqualified regardless of the numeric score.
func TierFor(finalScore float64, disqualified bool, tiers []config.TierThreshold) string {
	if disqualified {
		return model.TierDisqualified
	}
	for _, t := range tiers {
		if finalScore >= t.MinScore {
			return t.Label
		}
	}
	return model.TierNotInteresting
}

// LabelFor derives the human verdict label from the tier.
func LabelFor(tier string) string {
	switch tier {
	case model.TierDisqualified:
		return "DISQUALIFIED"
	case model.Tier1:
		return "STRONG CANDIDATE"
	case model.Tier2:
		return "CANDIDATE"
	case model.Tier3:
		return "WATCH"
	default:
		return "PASS"
	}
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
