package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener-cli/internal/model"
)

// SectorThresholds holds the per-sector scoring reference points. Every
// threshold is sector-relative; nothing is hard-coded per ticker.
type SectorThresholds struct {
	EliteCAGRPct         float64 `yaml:"elite_cagr_pct" mapstructure:"elite_cagr_pct"`
	MedianGrossMarginPct float64 `yaml:"median_gross_margin_pct" mapstructure:"median_gross_margin_pct"`
	RDFloorPct           float64 `yaml:"rd_floor_pct" mapstructure:"rd_floor_pct"`
}

// TAMBucket maps a TAM-penetration ceiling to points. Buckets are
// evaluated in order; the first bucket whose MaxPct covers the value
// wins.
type TAMBucket struct {
	MaxPct float64 `yaml:"max_pct" mapstructure:"max_pct"`
	Points float64 `yaml:"points" mapstructure:"points"`
}

// GrowthConfig drives the growth pillar (max 25).
type GrowthConfig struct {
	Max               float64     `yaml:"max" mapstructure:"max"`
	TierPoints        []float64   `yaml:"tier_points" mapstructure:"tier_points"`       // elite, 0.6x, 0.3x, >0
	TierFractions     []float64   `yaml:"tier_fractions" mapstructure:"tier_fractions"` // of sector elite CAGR
	PartialCAGRFactor float64     `yaml:"partial_cagr_factor" mapstructure:"partial_cagr_factor"`
	AccelerationRatio float64     `yaml:"acceleration_ratio" mapstructure:"acceleration_ratio"`
	AccelerationBonus float64     `yaml:"acceleration_bonus" mapstructure:"acceleration_bonus"`
	TAMBuckets        []TAMBucket `yaml:"tam_buckets" mapstructure:"tam_buckets"`
}

// QualityConfig drives the quality/moat pillar (max 30).
type QualityConfig struct {
	Max                float64 `yaml:"max" mapstructure:"max"`
	MarginMax          float64 `yaml:"margin_max" mapstructure:"margin_max"`
	RetentionPoints    float64 `yaml:"retention_points" mapstructure:"retention_points"`
	RetentionNDRFloor  float64 `yaml:"retention_ndr_floor" mapstructure:"retention_ndr_floor"` // e.g. 120
	StabilityPoints    float64 `yaml:"stability_points" mapstructure:"stability_points"`
	StabilityMaxStdDev float64 `yaml:"stability_max_std_dev" mapstructure:"stability_max_std_dev"`
	StabilityMinMargin float64 `yaml:"stability_min_margin" mapstructure:"stability_min_margin"`
	LeveragePoints     float64 `yaml:"leverage_points" mapstructure:"leverage_points"`
	RDPoints           float64 `yaml:"rd_points" mapstructure:"rd_points"`
}

// AlignmentConfig drives the insider-alignment pillar (max 15).
type AlignmentConfig struct {
	Max                  float64 `yaml:"max" mapstructure:"max"`
	OwnershipPoints      float64 `yaml:"ownership_points" mapstructure:"ownership_points"`
	FounderOwnershipBar  float64 `yaml:"founder_ownership_bar" mapstructure:"founder_ownership_bar"`   // pct
	ManagedOwnershipBar  float64 `yaml:"managed_ownership_bar" mapstructure:"managed_ownership_bar"`   // pct
	ClusterPoints        float64 `yaml:"cluster_points" mapstructure:"cluster_points"`
	IsolatedBuyPoints    float64 `yaml:"isolated_buy_points" mapstructure:"isolated_buy_points"`
	ClusterWindowDays    int     `yaml:"cluster_window_days" mapstructure:"cluster_window_days"`
	ClusterLookbackDays  int     `yaml:"cluster_lookback_days" mapstructure:"cluster_lookback_days"`
	InstitutionalPoints  float64 `yaml:"institutional_points" mapstructure:"institutional_points"`
	InstitutionalLowPct  float64 `yaml:"institutional_low_pct" mapstructure:"institutional_low_pct"`
	InstitutionalHighPct float64 `yaml:"institutional_high_pct" mapstructure:"institutional_high_pct"`
}

// ValuationConfig drives the valuation pillar (max 20).
type ValuationConfig struct {
	Max                   float64   `yaml:"max" mapstructure:"max"`
	PEGMax                float64   `yaml:"peg_max" mapstructure:"peg_max"`
	PEGThresholds         []float64 `yaml:"peg_thresholds" mapstructure:"peg_thresholds"` // ratio ceilings
	PEGPoints             []float64 `yaml:"peg_points" mapstructure:"peg_points"`
	ValueTrapGrowth       float64   `yaml:"value_trap_growth" mapstructure:"value_trap_growth"` // pct
	ValueTrapCap          float64   `yaml:"value_trap_cap" mapstructure:"value_trap_cap"`
	ExpansionPoints       float64   `yaml:"expansion_points" mapstructure:"expansion_points"`
	ModestExpansionPoints float64   `yaml:"modest_expansion_points" mapstructure:"modest_expansion_points"`
}

// CatalystConfig drives the catalysts pillar (max 15).
type CatalystConfig struct {
	Max                 float64   `yaml:"max" mapstructure:"max"`
	DensityPoints       []float64 `yaml:"density_points" mapstructure:"density_points"` // 1, 2, >=3 catalysts
	AsymmetryHighPoints float64   `yaml:"asymmetry_high_points" mapstructure:"asymmetry_high_points"`
	AsymmetryMedPoints  float64   `yaml:"asymmetry_med_points" mapstructure:"asymmetry_med_points"`
	PricingPowerAdjust  float64   `yaml:"pricing_power_adjust" mapstructure:"pricing_power_adjust"`
}

// BonusConfig names the mutually exclusive composite bonuses. Only the
// single highest-value matching bonus is ever applied.
type BonusConfig struct {
	SectorLeaderValue      float64 `yaml:"sector_leader_value" mapstructure:"sector_leader_value"`
	SectorLeaderGrowthBar  float64 `yaml:"sector_leader_growth_bar" mapstructure:"sector_leader_growth_bar"`
	SectorLeaderQualityBar float64 `yaml:"sector_leader_quality_bar" mapstructure:"sector_leader_quality_bar"`

	CapitalEfficiencyValue float64 `yaml:"capital_efficiency_value" mapstructure:"capital_efficiency_value"`
	CapitalEfficiencyROE   float64 `yaml:"capital_efficiency_roe" mapstructure:"capital_efficiency_roe"`   // pct
	CapitalEfficiencyFCF   float64 `yaml:"capital_efficiency_fcf" mapstructure:"capital_efficiency_fcf"`   // pct
	CapitalEfficiencyCAGR  float64 `yaml:"capital_efficiency_cagr" mapstructure:"capital_efficiency_cagr"` // pct
}

// TierThreshold maps a minimum final score to a tier label, evaluated in
// descending order.
type TierThreshold struct {
	MinScore float64 `yaml:"min_score" mapstructure:"min_score"`
	Label    string  `yaml:"label" mapstructure:"label"`
}

// ScoringConfig is the single source for pillar and composite constants.
type ScoringConfig struct {
	Sectors   map[model.Sector]SectorThresholds `yaml:"sectors" mapstructure:"sectors"`
	Growth    GrowthConfig                      `yaml:"growth" mapstructure:"growth"`
	Quality   QualityConfig                     `yaml:"quality" mapstructure:"quality"`
	Alignment AlignmentConfig                   `yaml:"alignment" mapstructure:"alignment"`
	Valuation ValuationConfig                   `yaml:"valuation" mapstructure:"valuation"`
	Catalysts CatalystConfig                    `yaml:"catalysts" mapstructure:"catalysts"`
	Bonus     BonusConfig                       `yaml:"bonus" mapstructure:"bonus"`
	Tiers     []TierThreshold                   `yaml:"tiers" mapstructure:"tiers"`
}

// RiskConfig is the single source for risk-engine thresholds and
// penalties. All penalty values are <= 0.
type RiskConfig struct {
	BeneishExtremeThreshold float64        `yaml:"beneish_extreme_threshold" mapstructure:"beneish_extreme_threshold"` // -0.5
	BeneishSoftThreshold    float64        `yaml:"beneish_soft_threshold" mapstructure:"beneish_soft_threshold"`       // -1.78
	BeneishRelaxedThreshold float64        `yaml:"beneish_relaxed_threshold" mapstructure:"beneish_relaxed_threshold"` // -1.20
	BeneishRelaxedSectors   []model.Sector `yaml:"beneish_relaxed_sectors" mapstructure:"beneish_relaxed_sectors"`
	BeneishSoftPenalty      float64        `yaml:"beneish_soft_penalty" mapstructure:"beneish_soft_penalty"`
	EarlyStageRevenueFloor  float64        `yaml:"early_stage_revenue_floor" mapstructure:"early_stage_revenue_floor"` // $50M TTM
	EarlyStagePenalty       float64        `yaml:"early_stage_penalty" mapstructure:"early_stage_penalty"`

	ManufacturingSectors []model.Sector `yaml:"manufacturing_sectors" mapstructure:"manufacturing_sectors"`
	AltmanKillThreshold  float64        `yaml:"altman_kill_threshold" mapstructure:"altman_kill_threshold"` // 0
	AltmanKillMaxMcap    float64        `yaml:"altman_kill_max_mcap" mapstructure:"altman_kill_max_mcap"`   // $20B
	AltmanSoftThreshold  float64        `yaml:"altman_soft_threshold" mapstructure:"altman_soft_threshold"` // 1.8
	AltmanSoftPenalty    float64        `yaml:"altman_soft_penalty" mapstructure:"altman_soft_penalty"`

	DilutionKillRate      float64 `yaml:"dilution_kill_rate" mapstructure:"dilution_kill_rate"`     // 3.0 = 300%
	DilutionHighRate      float64 `yaml:"dilution_high_rate" mapstructure:"dilution_high_rate"`     // 0.25
	DilutionModestRate    float64 `yaml:"dilution_modest_rate" mapstructure:"dilution_modest_rate"` // 0.10
	DilutionHighPenalty   float64 `yaml:"dilution_high_penalty" mapstructure:"dilution_high_penalty"`
	DilutionModestPenalty float64 `yaml:"dilution_modest_penalty" mapstructure:"dilution_modest_penalty"`

	RunwayKillQuarters float64 `yaml:"runway_kill_quarters" mapstructure:"runway_kill_quarters"` // 1
	RunwaySoftQuarters float64 `yaml:"runway_soft_quarters" mapstructure:"runway_soft_quarters"` // 4
	RunwaySoftPenalty  float64 `yaml:"runway_soft_penalty" mapstructure:"runway_soft_penalty"`

	QoEPenalty float64 `yaml:"qoe_penalty" mapstructure:"qoe_penalty"`
}

// DefaultScoringConfig returns the scoring tables. Pillar maxima sum to
// 105; the orchestrator clamps the final score to [0,100].
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Sectors: map[model.Sector]SectorThresholds{
			model.SectorSaaS:       {EliteCAGRPct: 30, MedianGrossMarginPct: 70, RDFloorPct: 15},
			model.SectorBiotech:    {EliteCAGRPct: 25, MedianGrossMarginPct: 80, RDFloorPct: 30},
			model.SectorSpaceTech:  {EliteCAGRPct: 35, MedianGrossMarginPct: 40, RDFloorPct: 10},
			model.SectorQuantum:    {EliteCAGRPct: 40, MedianGrossMarginPct: 50, RDFloorPct: 25},
			model.SectorHardware:   {EliteCAGRPct: 20, MedianGrossMarginPct: 35, RDFloorPct: 8},
			model.SectorFinTech:    {EliteCAGRPct: 25, MedianGrossMarginPct: 55, RDFloorPct: 10},
			model.SectorConsumer:   {EliteCAGRPct: 15, MedianGrossMarginPct: 40, RDFloorPct: 2},
			model.SectorIndustrial: {EliteCAGRPct: 12, MedianGrossMarginPct: 30, RDFloorPct: 3},
			model.SectorOther:      {EliteCAGRPct: 20, MedianGrossMarginPct: 40, RDFloorPct: 5},
		},
		Growth: GrowthConfig{
			Max:               25,
			TierPoints:        []float64{12, 9, 6, 3},
			TierFractions:     []float64{1.0, 0.6, 0.3, 0},
			PartialCAGRFactor: 0.75,
			AccelerationRatio: 1.2,
			AccelerationBonus: 5,
			// Execution-risk-aware penetration policy: sub-1% penetration
			// scores below the 1-5% sweet spot.
			TAMBuckets: []TAMBucket{
				{MaxPct: 1, Points: 4},
				{MaxPct: 5, Points: 8},
				{MaxPct: 15, Points: 6},
				{MaxPct: 40, Points: 3},
				{MaxPct: math.MaxFloat64, Points: 1},
			},
		},
		Quality: QualityConfig{
			Max:                30,
			MarginMax:          10,
			RetentionPoints:    6,
			RetentionNDRFloor:  120,
			StabilityPoints:    4,
			StabilityMaxStdDev: 0.05,
			StabilityMinMargin: 0.40,
			LeveragePoints:     5,
			RDPoints:           5,
		},
		Alignment: AlignmentConfig{
			Max:                  15,
			OwnershipPoints:      6,
			FounderOwnershipBar:  5,
			ManagedOwnershipBar:  10,
			ClusterPoints:        5,
			IsolatedBuyPoints:    2,
			ClusterWindowDays:    14,
			ClusterLookbackDays:  180,
			InstitutionalPoints:  4,
			InstitutionalLowPct:  20,
			InstitutionalHighPct: 70,
		},
		Valuation: ValuationConfig{
			Max:                   20,
			PEGMax:                12,
			PEGThresholds:         []float64{0.1, 0.2, 0.4, 0.8},
			PEGPoints:             []float64{12, 9, 6, 3},
			ValueTrapGrowth:       5,
			ValueTrapCap:          4,
			ExpansionPoints:       8,
			ModestExpansionPoints: 4,
		},
		Catalysts: CatalystConfig{
			Max:                 15,
			DensityPoints:       []float64{3, 6, 8},
			AsymmetryHighPoints: 5,
			AsymmetryMedPoints:  3,
			PricingPowerAdjust:  2,
		},
		Bonus: BonusConfig{
			SectorLeaderValue:      5,
			SectorLeaderGrowthBar:  20,
			SectorLeaderQualityBar: 24,
			CapitalEfficiencyValue: 4,
			CapitalEfficiencyROE:   20,
			CapitalEfficiencyFCF:   15,
			CapitalEfficiencyCAGR:  25,
		},
		Tiers: []TierThreshold{
			{MinScore: 80, Label: model.Tier1},
			{MinScore: 65, Label: model.Tier2},
			{MinScore: 55, Label: model.Tier3},
		},
	}
}

// DefaultRiskConfig returns the risk-engine thresholds.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		BeneishExtremeThreshold: -0.5,
		BeneishSoftThreshold:    -1.78,
		BeneishRelaxedThreshold: -1.20,
		BeneishRelaxedSectors:   []model.Sector{model.SectorSaaS, model.SectorBiotech, model.SectorSpaceTech},
		BeneishSoftPenalty:      -8,
		EarlyStageRevenueFloor:  50_000_000,
		EarlyStagePenalty:       -10,

		ManufacturingSectors: []model.Sector{model.SectorIndustrial, model.SectorHardware, model.SectorConsumer},
		AltmanKillThreshold:  0,
		AltmanKillMaxMcap:    20_000_000_000,
		AltmanSoftThreshold:  1.8,
		AltmanSoftPenalty:    -5,

		DilutionKillRate:      3.0,
		DilutionHighRate:      0.25,
		DilutionModestRate:    0.10,
		DilutionHighPenalty:   -10,
		DilutionModestPenalty: -5,

		RunwayKillQuarters: 1,
		RunwaySoftQuarters: 4,
		RunwaySoftPenalty:  -8,

		QoEPenalty: -8,
	}
}

// DefaultJudgmentConfig returns the judgment integrator caps. Boosts are
// materially smaller than the pillar range so the external judgment can
// nudge but never override quantitative evidence.
func DefaultJudgmentConfig() JudgmentConfig {
	return JudgmentConfig{
		RequestsPerMinute: 5,
		MaxAttempts:       3,
		StrongPassCap:     8,
		SoftPassCap:       4,
		MonitorPenalty:    -5,
		AvoidPenalty:      -15,
		CombinedFloor:     -20,
	}
}

// ValidateScoring checks that a ScoringConfig is internally consistent.
func ValidateScoring(c ScoringConfig) error {
	var errs []string

	if len(c.Sectors) == 0 {
		errs = append(errs, "sectors table must not be empty")
	}
	for _, sec := range model.AllSectors() {
		if _, ok := c.Sectors[sec]; !ok {
			errs = append(errs, fmt.Sprintf("sectors table missing %s", sec))
		}
	}

	maxima := map[string]float64{
		"growth.max":    c.Growth.Max,
		"quality.max":   c.Quality.Max,
		"alignment.max": c.Alignment.Max,
		"valuation.max": c.Valuation.Max,
		"catalysts.max": c.Catalysts.Max,
	}
	for name, m := range maxima {
		if m <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0", name))
		}
	}

	if len(c.Growth.TierPoints) != len(c.Growth.TierFractions) {
		errs = append(errs, "growth tier_points and tier_fractions must have equal length")
	}
	if len(c.Valuation.PEGThresholds) != len(c.Valuation.PEGPoints) {
		errs = append(errs, "valuation peg_thresholds and peg_points must have equal length")
	}
	if len(c.Tiers) == 0 {
		errs = append(errs, "tier ladder must not be empty")
	}
	for i := 1; i < len(c.Tiers); i++ {
		if c.Tiers[i].MinScore >= c.Tiers[i-1].MinScore {
			errs = append(errs, "tier ladder must be strictly descending")
			break
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: scoring validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateRisk checks that a RiskConfig is internally consistent.
func ValidateRisk(c RiskConfig) error {
	var errs []string

	penalties := map[string]float64{
		"beneish_soft_penalty":    c.BeneishSoftPenalty,
		"early_stage_penalty":     c.EarlyStagePenalty,
		"altman_soft_penalty":     c.AltmanSoftPenalty,
		"dilution_high_penalty":   c.DilutionHighPenalty,
		"dilution_modest_penalty": c.DilutionModestPenalty,
		"runway_soft_penalty":     c.RunwaySoftPenalty,
		"qoe_penalty":             c.QoEPenalty,
	}
	for name, p := range penalties {
		if p > 0 {
			errs = append(errs, fmt.Sprintf("%s must be <= 0", name))
		}
	}

	if c.BeneishSoftThreshold >= c.BeneishExtremeThreshold {
		errs = append(errs, "beneish_soft_threshold must be below beneish_extreme_threshold")
	}
	if c.BeneishRelaxedThreshold >= c.BeneishExtremeThreshold {
		errs = append(errs, "beneish_relaxed_threshold must be below beneish_extreme_threshold")
	}
	if c.DilutionModestRate >= c.DilutionHighRate {
		errs = append(errs, "dilution_modest_rate must be below dilution_high_rate")
	}
	if c.RunwayKillQuarters >= c.RunwaySoftQuarters {
		errs = append(errs, "runway_kill_quarters must be below runway_soft_quarters")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: risk validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
