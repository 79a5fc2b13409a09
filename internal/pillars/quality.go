package pillars

import (
	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
)

// Net-debt/EBITDA tiers for the balance-sheet sub-score. Fractions of
// QualityConfig.LeveragePoints.
var leverageTiers = []struct {
	maxRatio float64
	fraction float64
}{
	{1, 1.0},
	{2, 0.6},
	{3, 0.2},
}

// Quality scores sector-relative gross margin, a moat sub-score
// (revenue retention plus margin stability), and a balance-sheet and
// innovation sub-score (leverage, R&D intensity).
func Quality(m model.ExtractedMetrics, sector model.Sector, qual model.QualitativeInputs, cfg config.ScoringConfig) model.PillarScore {
	qc := cfg.Quality
	th := sectorThresholds(cfg, sector)
	ps := model.PillarScore{Name: NameQuality, MaxScore: qc.Max}

	// Gross margin relative to the sector median, proportional credit.
	if m.GrossMargin > 0 && th.MedianGrossMarginPct > 0 {
		ratio := (m.GrossMargin * 100) / th.MedianGrossMarginPct
		if ratio > 1 {
			ratio = 1
		}
		pts := ratio * qc.MarginMax
		ps.Score += pts
		ps.Details = detailf(ps.Details, "gross margin %.1f%% vs sector median %.0f%%: %.1f pts",
			m.GrossMargin*100, th.MedianGrossMarginPct, pts)
	}

	// Moat: revenue retention signal.
	if qual.NetDollarRetentionPct >= qc.RetentionNDRFloor {
		ps.Score += qc.RetentionPoints
		ps.Details = detailf(ps.Details, "net dollar retention %.0f%%: %.0f pts", qual.NetDollarRetentionPct, qc.RetentionPoints)
	} else if qual.RecurringRevenue {
		ps.Score += qc.RetentionPoints
		ps.Details = detailf(ps.Details, "recurring revenue model: %.0f pts", qc.RetentionPoints)
	}

	// Moat: margin stability. Low volatility at a high margin reads as
	// pricing power.
	if m.MarginPeriods >= 2 && m.MarginStdDev < qc.StabilityMaxStdDev && m.GrossMargin > qc.StabilityMinMargin {
		ps.Score += qc.StabilityPoints
		ps.Details = detailf(ps.Details, "stable margins (std dev %.3f at %.0f%% margin): %.0f pts",
			m.MarginStdDev, m.GrossMargin*100, qc.StabilityPoints)
	}

	// Balance sheet: net-debt/EBITDA leverage tiers.
	if m.LeverageAvailable {
		for _, tier := range leverageTiers {
			if m.NetDebtToEBITDA < tier.maxRatio {
				pts := tier.fraction * qc.LeveragePoints
				ps.Score += pts
				ps.Details = detailf(ps.Details, "net debt/EBITDA %.1fx: %.1f pts", m.NetDebtToEBITDA, pts)
				break
			}
		}
	} else {
		ps.Details = append(ps.Details, "leverage ratio unavailable")
	}

	// Innovation: R&D intensity above the sector floor.
	if m.RDIntensity*100 >= th.RDFloorPct && th.RDFloorPct > 0 {
		ps.Score += qc.RDPoints
		ps.Details = detailf(ps.Details, "R&D intensity %.1f%% above sector floor %.0f%%: %.0f pts",
			m.RDIntensity*100, th.RDFloorPct, qc.RDPoints)
	}

	ps.Score = clampScore(ps.Score, ps.MaxScore)
	return ps
}
