// Package analyzer orchestrates one full analysis run: gather data,
// extract metrics, assess risk, score pillars, aggregate, obtain the
// qualitative verdict, and assemble the immutable report.
package analyzer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/screener-cli/internal/composite"
	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/fetcher"
	"github.com/sells-group/screener-cli/internal/judgment"
	"github.com/sells-group/screener-cli/internal/metrics"
	"github.com/sells-group/screener-cli/internal/model"
	"github.com/sells-group/screener-cli/internal/pillars"
	"github.com/sells-group/screener-cli/internal/risk"
)

// Analyzer wires the scoring pipeline together. All thresholds come
// from config; the analyzer itself holds no scoring constants.
type Analyzer struct {
	provider fetcher.Provider
	judge    judgment.Provider
	cfg      *config.Config
}

// New creates an Analyzer. judge may be nil for offline runs; every
// verdict then falls back to neutral.
func New(provider fetcher.Provider, judge judgment.Provider, cfg *config.Config) *Analyzer {
	return &Analyzer{
		provider: provider,
		judge:    judge,
		cfg:      cfg,
	}
}

// Analyze fetches all data for a ticker and scores it. qual carries the
// analyst-supplied qualitative inputs; fetched insider and founder data
// fill any fields left empty.
func (a *Analyzer) Analyze(ctx context.Context, ticker string, qual model.QualitativeInputs) (*model.AnalysisReport, error) {
	data, err := fetcher.GatherSubject(ctx, a.provider, ticker)
	if err != nil {
		return nil, eris.Wrapf(err, "analyzer: gather %s", ticker)
	}
	return a.AnalyzeSubject(ctx, data, qual)
}

// AnalyzeSubject scores already-gathered data. The profile sector must
// be a member of the closed sector set; everything else degrades to
// conservative defaults with a data warning.
func (a *Analyzer) AnalyzeSubject(ctx context.Context, data *fetcher.SubjectData, qual model.QualitativeInputs) (*model.AnalysisReport, error) {
	if data.Profile == nil {
		return nil, eris.New("analyzer: missing profile")
	}
	sector := data.Profile.Sector
	if !sector.Valid() {
		return nil, eris.Wrapf(model.ErrUnknownSector, "analyzer: %s sector %q", data.Profile.Ticker, sector)
	}

	qual = mergeFetchedInputs(qual, data)

	m := metrics.Extract(data.Statements)

	marketCap := data.Snapshot.MarketCap
	if marketCap <= 0 {
		marketCap = data.Profile.MarketCap
	}

	riskResult := risk.Assess(risk.Input{
		Statements: data.Statements,
		Metrics:    m,
		Sector:     sector,
		MarketCap:  marketCap,
	}, a.cfg.Risk)

	pillarScores := pillars.ScoreAll(m, sector, data.Snapshot, qual, a.cfg.Scoring)

	agg := composite.Aggregate(pillarScores, riskResult, m, a.cfg.Scoring)

	verdict, source := judgment.Evaluate(ctx, a.judge, judgment.Subject{
		Ticker:     data.Profile.Ticker,
		Sector:     sector,
		Metrics:    m,
		Risk:       riskResult,
		Pillars:    pillarScores,
		QuantScore: agg.QuantScore,
		Inputs:     qual,
	})

	jres := composite.Integrate(agg.Total, riskResult, verdict, a.cfg.Judgment)

	// The single authoritative clamp. A hard kill zeroes the score
	// regardless of what the pillars earned.
	finalScore := clamp100(jres.RawScore)
	if riskResult.Disqualified {
		finalScore = 0
	}

	tier := composite.TierFor(finalScore, riskResult.Disqualified, a.cfg.Scoring.Tiers)

	report := &model.AnalysisReport{
		ID:            uuid.New().String(),
		Ticker:        data.Profile.Ticker,
		Sector:        sector,
		GeneratedAt:   time.Now().UTC(),
		Metrics:       m,
		Risk:          riskResult,
		Pillars:       pillarScores,
		Verdict:       verdict,
		VerdictSource: source,
		Adjustments:   append(agg.Adjustments, jres.Adjustments...),
		QuantScore:    agg.QuantScore,
		RawScore:      jres.RawScore,
		FinalScore:    finalScore,
		Tier:          tier,
		Label:         composite.LabelFor(tier),
		DataWarnings:  data.Warnings,
	}

	zap.L().Info("analysis complete",
		zap.String("ticker", report.Ticker),
		zap.String("sector", string(sector)),
		zap.Float64("quant_score", report.QuantScore),
		zap.Float64("final_score", report.FinalScore),
		zap.String("tier", report.Tier),
		zap.Bool("disqualified", riskResult.Disqualified),
		zap.String("verdict_source", source),
	)

	return report, nil
}

// mergeFetchedInputs fills qualitative fields the analyst left empty
// with data the fetcher sourced.
func mergeFetchedInputs(qual model.QualitativeInputs, data *fetcher.SubjectData) model.QualitativeInputs {
	if data.Profile.FounderLed {
		qual.FounderLed = true
	}
	if len(qual.InsiderBuys) == 0 {
		qual.InsiderBuys = data.Insiders
	}
	return qual
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
