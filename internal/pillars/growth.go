package pillars

import (
	"fmt"

	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
)

// Growth scores sector-relative revenue CAGR, growth acceleration, and
// TAM penetration. Partial CAGR windows earn reduced credit rather than
// being treated as full-confidence data, and sub-1% TAM penetration
// deliberately scores below the 1-5% sweet spot: pre-product-market-fit
// execution risk outweighs "more runway".
func Growth(m model.ExtractedMetrics, sector model.Sector, qual model.QualitativeInputs, cfg config.ScoringConfig) model.PillarScore {
	gc := cfg.Growth
	th := sectorThresholds(cfg, sector)
	ps := model.PillarScore{Name: NameGrowth, MaxScore: gc.Max}

	// CAGR tier vs. the sector's elite growth bar.
	if m.RevenueCAGR.WindowQuarters == 0 {
		ps.Details = append(ps.Details, "no CAGR window available")
	} else {
		cagrPct := m.RevenueCAGR.Value * 100
		var pts float64
		for i, frac := range gc.TierFractions {
			if cagrPct >= frac*th.EliteCAGRPct && cagrPct > 0 {
				pts = gc.TierPoints[i]
				break
			}
		}
		label := fmt.Sprintf("CAGR %.1f%% over %dq window vs sector elite %.0f%%", cagrPct, m.RevenueCAGR.WindowQuarters, th.EliteCAGRPct)
		if m.RevenueCAGR.IsPartial && pts > 0 {
			pts *= gc.PartialCAGRFactor
			label += " (partial window, reduced confidence)"
		}
		ps.Score += pts
		ps.Details = detailf(ps.Details, "%s: %.1f pts", label, pts)
	}

	// Acceleration: latest YoY running ahead of trend.
	if m.YoYAvailable && m.RevenueCAGR.Value > 0 && m.LatestYoYGrowth > gc.AccelerationRatio*m.RevenueCAGR.Value {
		ps.Score += gc.AccelerationBonus
		ps.Details = detailf(ps.Details, "growth accelerating: latest YoY %.1f%% exceeds %.1fx trend: %.0f pts",
			m.LatestYoYGrowth*100, gc.AccelerationRatio, gc.AccelerationBonus)
	}

	// TAM penetration bucket. Unsourced TAM data never scores.
	if qual.TAMQuality.Known() {
		for _, bucket := range gc.TAMBuckets {
			if qual.TAMPenetrationPct <= bucket.MaxPct {
				ps.Score += bucket.Points
				ps.Details = detailf(ps.Details, "TAM penetration %.1f%%: %.0f pts", qual.TAMPenetrationPct, bucket.Points)
				break
			}
		}
	} else {
		ps.Details = append(ps.Details, "TAM penetration unavailable")
	}

	ps.Score = clampScore(ps.Score, ps.MaxScore)
	return ps
}
