package pillars

import (
	"time"

	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
)

// Alignment scores insider ownership (a lower bar applies when
// founder-led), recent insider-buying clusters, and the institutional
// ownership sweet spot: too little means unvalidated, too much means
// crowded with no marginal buyer.
func Alignment(qual model.QualitativeInputs, cfg config.AlignmentConfig) model.PillarScore {
	ps := model.PillarScore{Name: NameAlignment, MaxScore: cfg.Max}

	// Ownership tier.
	bar := cfg.ManagedOwnershipBar
	role := "professionally managed"
	if qual.FounderLed {
		bar = cfg.FounderOwnershipBar
		role = "founder-led"
	}
	switch {
	case qual.InsiderOwnershipPct >= bar:
		ps.Score += cfg.OwnershipPoints
		ps.Details = detailf(ps.Details, "insider ownership %.1f%% meets %s bar %.0f%%: %.0f pts",
			qual.InsiderOwnershipPct, role, bar, cfg.OwnershipPoints)
	case qual.InsiderOwnershipPct >= bar/2:
		ps.Score += cfg.OwnershipPoints / 2
		ps.Details = detailf(ps.Details, "insider ownership %.1f%% at half the %s bar: %.1f pts",
			qual.InsiderOwnershipPct, role, cfg.OwnershipPoints/2)
	default:
		ps.Details = detailf(ps.Details, "insider ownership %.1f%% below bar", qual.InsiderOwnershipPct)
	}

	// Insider buying: a cluster of distinct insiders beats isolated buys.
	// Only buys inside the trailing lookback window count at all.
	buys := recentBuys(qual.InsiderBuys, cfg.ClusterLookbackDays, time.Now().UTC())
	switch {
	case hasBuyCluster(buys, cfg.ClusterWindowDays):
		ps.Score += cfg.ClusterPoints
		ps.Details = detailf(ps.Details, "insider buying cluster detected: %.0f pts", cfg.ClusterPoints)
	case len(buys) > 0:
		ps.Score += cfg.IsolatedBuyPoints
		ps.Details = detailf(ps.Details, "%d isolated insider buy(s): %.0f pts", len(buys), cfg.IsolatedBuyPoints)
	}

	// Institutional ownership band. Unsourced data never scores.
	if qual.InstitutionalQuality.Known() {
		switch {
		case qual.InstitutionalPct >= cfg.InstitutionalLowPct && qual.InstitutionalPct <= cfg.InstitutionalHighPct:
			ps.Score += cfg.InstitutionalPoints
			ps.Details = detailf(ps.Details, "institutional ownership %.0f%% in sweet spot: %.0f pts",
				qual.InstitutionalPct, cfg.InstitutionalPoints)
		case qual.InstitutionalPct < cfg.InstitutionalLowPct:
			ps.Score += cfg.InstitutionalPoints / 2
			ps.Details = detailf(ps.Details, "institutional ownership %.0f%% below band (unvalidated): %.1f pts",
				qual.InstitutionalPct, cfg.InstitutionalPoints/2)
		default:
			ps.Score += cfg.InstitutionalPoints / 4
			ps.Details = detailf(ps.Details, "institutional ownership %.0f%% above band (crowded): %.1f pts",
				qual.InstitutionalPct, cfg.InstitutionalPoints/4)
		}
	} else {
		ps.Details = append(ps.Details, "institutional ownership unavailable")
	}

	ps.Score = clampScore(ps.Score, ps.MaxScore)
	return ps
}

type datedBuy struct {
	name string
	date time.Time
}

// recentBuys parses buy dates and keeps those inside the trailing
// lookback window ending at now. Unparseable dates are dropped; a
// lookback of zero disables the window.
func recentBuys(buys []model.InsiderBuy, lookbackDays int, now time.Time) []datedBuy {
	cutoff := now.AddDate(0, 0, -lookbackDays)
	var out []datedBuy
	for _, b := range buys {
		d, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			continue
		}
		if lookbackDays > 0 && d.Before(cutoff) {
			continue
		}
		out = append(out, datedBuy{name: b.Name, date: d})
	}
	return out
}

// hasBuyCluster reports whether at least two distinct insiders bought
// within any rolling window of windowDays.
func hasBuyCluster(buys []datedBuy, windowDays int) bool {
	window := time.Duration(windowDays) * 24 * time.Hour
	for i := range buys {
		for j := range buys {
			if buys[i].name == buys[j].name {
				continue
			}
			gap := buys[i].date.Sub(buys[j].date)
			if gap < 0 {
				gap = -gap
			}
			if gap <= window {
				return true
			}
		}
	}
	return false
}
