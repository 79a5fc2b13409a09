package pillars

import (
	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
)

// forwardPEDiscount is the forward/trailing P/E ratio below which the
// market is pricing in meaningful earnings-estimate expansion.
const forwardPEDiscount = 0.85

// Valuation scores an adjusted PEG-like ratio (EV/Sales over growth plus
// FCF margin) with a value-trap guard rail, and rewards forward P/E
// running below trailing. Low growth never earns full valuation credit,
// however cheap the multiple.
func Valuation(m model.ExtractedMetrics, snap model.MarketSnapshot, cfg config.ValuationConfig) model.PillarScore {
	ps := model.PillarScore{Name: NameValuation, MaxScore: cfg.Max}

	multiple := snap.EVToSales
	multipleName := "EV/Sales"
	if multiple <= 0 {
		multiple = snap.PriceToSales
		multipleName = "P/S"
	}

	growthPct := m.RevenueCAGR.Value * 100
	denom := growthPct + m.FCFMargin*100

	if multiple > 0 && denom > 0 {
		ratio := multiple / denom
		var pts float64
		for i, ceiling := range cfg.PEGThresholds {
			if ratio < ceiling {
				pts = cfg.PEGPoints[i]
				break
			}
		}
		if pts > cfg.PEGMax {
			pts = cfg.PEGMax
		}
		if growthPct < cfg.ValueTrapGrowth && pts > cfg.ValueTrapCap {
			pts = cfg.ValueTrapCap
			ps.Details = detailf(ps.Details, "value-trap guard: growth %.1f%% below %.0f%%, credit capped", growthPct, cfg.ValueTrapGrowth)
		}
		ps.Score += pts
		ps.Details = detailf(ps.Details, "adjusted PEG %.2f (%s %.1fx over growth+FCF %.1f): %.0f pts",
			ratio, multipleName, multiple, denom, pts)
	} else {
		ps.Details = append(ps.Details, "valuation multiple or growth denominator unavailable")
	}

	// Forward vs. trailing P/E: estimate expansion.
	if snap.ForwardPE > 0 && snap.TrailingPE > 0 {
		switch {
		case snap.ForwardPE < snap.TrailingPE*forwardPEDiscount:
			ps.Score += cfg.ExpansionPoints
			ps.Details = detailf(ps.Details, "forward P/E %.1f well below trailing %.1f: %.0f pts",
				snap.ForwardPE, snap.TrailingPE, cfg.ExpansionPoints)
		case snap.ForwardPE < snap.TrailingPE:
			ps.Score += cfg.ModestExpansionPoints
			ps.Details = detailf(ps.Details, "forward P/E %.1f below trailing %.1f: %.0f pts",
				snap.ForwardPE, snap.TrailingPE, cfg.ModestExpansionPoints)
		}
	}

	ps.Score = clampScore(ps.Score, ps.MaxScore)
	return ps
}
