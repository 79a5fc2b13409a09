// Package pillars implements the five independently-capped composite
// sub-scores: growth, quality/moat, insider alignment, valuation, and
// catalysts. Every scorer is a pure function of its inputs and returns a
// score in [0, max] with a human-readable justification trail. All
// thresholds are sector-relative and table-driven, never per-ticker.
package pillars

import (
	"fmt"

	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
)

// Pillar names as they appear on reports.
const (
	NameGrowth    = "growth"
	NameQuality   = "quality"
	NameAlignment = "alignment"
	NameValuation = "valuation"
	NameCatalysts = "catalysts"
)

// ScoreAll runs every pillar scorer and returns the five scores in
// report order.
func ScoreAll(m model.ExtractedMetrics, sector model.Sector, snap model.MarketSnapshot, qual model.QualitativeInputs, cfg config.ScoringConfig) []model.PillarScore {
	return []model.PillarScore{
		Growth(m, sector, qual, cfg),
		Quality(m, sector, qual, cfg),
		Alignment(qual, cfg.Alignment),
		Valuation(m, snap, cfg.Valuation),
		Catalysts(m, qual, cfg),
	}
}

// sectorThresholds looks up the sector row, falling back to Other for
// robustness; invalid sectors are rejected upstream before scoring.
func sectorThresholds(cfg config.ScoringConfig, sector model.Sector) config.SectorThresholds {
	if th, ok := cfg.Sectors[sector]; ok {
		return th
	}
	return cfg.Sectors[model.SectorOther]
}

func clampScore(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func detailf(details []string, format string, args ...any) []string {
	return append(details, fmt.Sprintf(format, args...))
}
