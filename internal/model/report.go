package model

import "time"

// RunwayInfinite is the sentinel for a self-funding subject (average
// trailing free cash flow is non-negative). Kept as a large finite
// number so reports serialize to JSON without Inf/NaN.
const RunwayInfinite = 999

// QoEStatus is the quality-of-earnings check outcome.
type QoEStatus string

const (
	QoEPass    QoEStatus = "pass"
	QoEFail    QoEStatus = "fail"
	QoEUnknown QoEStatus = "unknown"
)

// RiskAssessment is the output of the risk engine. Disqualified is true
// iff DisqualifyReasons is non-empty; RiskPenalty is always <= 0 and is
// accumulated independently of disqualification.
type RiskAssessment struct {
	BeneishMScore      float64   `json:"beneish_m_score"`
	BeneishAvailable   bool      `json:"beneish_available"`
	AltmanZScore       float64   `json:"altman_z_score"`
	AltmanModel        string    `json:"altman_model"` // "manufacturing" or "non-manufacturing"
	AltmanAvailable    bool      `json:"altman_available"`
	DilutionRate       float64   `json:"dilution_rate"` // YoY diluted share count change
	DilutionAvailable  bool      `json:"dilution_available"`
	CashRunwayQuarters float64   `json:"cash_runway_quarters"`
	QualityOfEarnings  QoEStatus `json:"quality_of_earnings"`

	Disqualified      bool     `json:"disqualified"`
	DisqualifyReasons []string `json:"disqualify_reasons,omitempty"`
	Warnings          []string `json:"warnings,omitempty"`
	RiskPenalty       float64  `json:"risk_penalty"` // always <= 0
}

// PillarScore is one independently-capped scoring dimension with its
// justification trail. 0 <= Score <= MaxScore always holds before
// aggregation; the aggregator never re-clamps per-pillar values.
type PillarScore struct {
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	MaxScore float64  `json:"max_score"`
	Details  []string `json:"details,omitempty"`
}

// AdjustmentKind discriminates the closed set of score adjustments
// applied after pillar summation.
type AdjustmentKind string

const (
	AdjustBonus           AdjustmentKind = "bonus"
	AdjustRiskPenalty     AdjustmentKind = "risk_penalty"
	AdjustJudgmentBoost   AdjustmentKind = "judgment_boost"
	AdjustJudgmentPenalty AdjustmentKind = "judgment_penalty"
	AdjustPenaltyRefund   AdjustmentKind = "penalty_refund"
)

// Adjustment is a single named score modification with its magnitude and
// justification. Bonuses are positive, penalties negative, refunds
// positive.
type Adjustment struct {
	Kind   AdjustmentKind `json:"kind"`
	Name   string         `json:"name"`
	Value  float64        `json:"value"`
	Reason string         `json:"reason"`
}

// Tier labels derived from the final clamped score.
const (
	Tier1              = "Tier 1"
	Tier2              = "Tier 2"
	Tier3              = "Tier 3"
	TierNotInteresting = "Not Interesting"
	TierDisqualified   = "Disqualified"
)

// AnalysisReport is the final artifact of one orchestration run. Created
// once and never mutated after return; stable for JSON serialization by
// UI/CLI/batch collaborators. Every numeric field is set even on
// degraded input.
type AnalysisReport struct {
	ID          string    `json:"id"`
	Ticker      string    `json:"ticker"`
	Sector      Sector    `json:"sector"`
	GeneratedAt time.Time `json:"generated_at"`

	Metrics ExtractedMetrics `json:"metrics"`
	Risk    RiskAssessment   `json:"risk"`
	Pillars []PillarScore    `json:"pillars"`

	Verdict       QualitativeVerdict `json:"verdict"`
	VerdictSource string             `json:"verdict_source"` // "provider" or "fallback"

	Adjustments []Adjustment `json:"adjustments,omitempty"`

	QuantScore float64 `json:"quant_score"` // pillar sum + bonus + risk penalty, clamped
	RawScore   float64 `json:"raw_score"`   // pre-clamp, judgment applied, for audit
	FinalScore float64 `json:"final_score"` // clamped to [0,100]; 0 when disqualified
	Tier       string  `json:"tier"`
	Label      string  `json:"label"` // human verdict label

	DataWarnings []string `json:"data_warnings,omitempty"`
}
