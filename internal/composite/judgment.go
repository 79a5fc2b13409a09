package composite

import (
	"fmt"

	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
)

// JudgmentResult is the integrator output. RawScore is deliberately not
// clamped here; the orchestrator performs the single authoritative clamp
// so the pre-clamp value survives for audit.
type JudgmentResult struct {
	RawScore    float64
	Adjustments []model.Adjustment
}

// Integrate applies the capped, conviction-scaled adjustment from the
// external verdict to the unclamped composite total. Passing statuses
// add a boost materially smaller than the pillar range; MONITOR_ONLY and
// AVOID subtract fixed penalties. For non-disqualified subjects the
// combined risk+judgment penalty is floored: the excess is refunded so
// a quantitative+qualitative pile-on is bounded.
func Integrate(total float64, risk model.RiskAssessment, verdict model.QualitativeVerdict, cfg config.JudgmentConfig) JudgmentResult {
	res := JudgmentResult{RawScore: total}

	conviction := verdict.Conviction
	if conviction < 0 {
		conviction = 0
	}
	if conviction > 100 {
		conviction = 100
	}

	var aiPenalty float64
	switch verdict.Status {
	case model.StatusStrongPass:
		boost := conviction / 100 * cfg.StrongPassCap
		res.RawScore += boost
		res.Adjustments = append(res.Adjustments, model.Adjustment{
			Kind:   model.AdjustJudgmentBoost,
			Name:   string(model.StatusStrongPass),
			Value:  boost,
			Reason: fmt.Sprintf("strong pass at %.0f conviction (cap %.0f)", conviction, cfg.StrongPassCap),
		})
	case model.StatusSoftPass:
		boost := conviction / 100 * cfg.SoftPassCap
		res.RawScore += boost
		res.Adjustments = append(res.Adjustments, model.Adjustment{
			Kind:   model.AdjustJudgmentBoost,
			Name:   string(model.StatusSoftPass),
			Value:  boost,
			Reason: fmt.Sprintf("soft pass at %.0f conviction (cap %.0f)", conviction, cfg.SoftPassCap),
		})
	case model.StatusMonitorOnly:
		aiPenalty = cfg.MonitorPenalty
	case model.StatusAvoid:
		aiPenalty = cfg.AvoidPenalty
	}

	if aiPenalty != 0 {
		res.RawScore += aiPenalty
		res.Adjustments = append(res.Adjustments, model.Adjustment{
			Kind:   model.AdjustJudgmentPenalty,
			Name:   string(verdict.Status),
			Value:  aiPenalty,
			Reason: "qualitative verdict penalty",
		})
	}

	if !risk.Disqualified {
		combined := risk.RiskPenalty + aiPenalty
		if combined < cfg.CombinedFloor {
			refund := cfg.CombinedFloor - combined
			res.RawScore += refund
			res.Adjustments = append(res.Adjustments, model.Adjustment{
				Kind:   model.AdjustPenaltyRefund,
				Name:   "combined_penalty_floor",
				Value:  refund,
				Reason: fmt.Sprintf("combined penalties floored at %.0f", cfg.CombinedFloor),
			})
		}
	}

	return res
}
