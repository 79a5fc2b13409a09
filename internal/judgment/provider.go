// Package judgment obtains a bounded qualitative verdict on a scored
// company from an external reasoning model. The verdict can nudge the
// composite score but never override the quantitative evidence; any
// provider failure degrades to a neutral verdict.
package judgment

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/screener-cli/internal/model"
)

// Subject is the scored company handed to the provider for qualitative
// review. Quantitative results are included so the model reasons about
// the same evidence the composite saw.
type Subject struct {
	Ticker     string                  `json:"ticker"`
	Sector     model.Sector            `json:"sector"`
	Metrics    model.ExtractedMetrics  `json:"metrics"`
	Risk       model.RiskAssessment    `json:"risk"`
	Pillars    []model.PillarScore     `json:"pillars"`
	QuantScore float64                 `json:"quant_score"`
	Inputs     model.QualitativeInputs `json:"qualitative_inputs"`
}

// Provider produces a qualitative verdict for a subject.
type Provider interface {
	Judge(ctx context.Context, sub Subject) (model.QualitativeVerdict, error)
}

// Verdict sources recorded on the report.
const (
	SourceProvider = "provider"
	SourceFallback = "fallback"
)

// Evaluate runs the provider and degrades to a neutral verdict on any
// failure. The returned source records which path produced the verdict.
func Evaluate(ctx context.Context, p Provider, sub Subject) (model.QualitativeVerdict, string) {
	if p == nil {
		return model.NeutralVerdict(), SourceFallback
	}

	verdict, err := p.Judge(ctx, sub)
	if err != nil {
		zap.L().Warn("judgment: provider failed, using neutral verdict",
			zap.String("ticker", sub.Ticker),
			zap.Error(err),
		)
		return model.NeutralVerdict(), SourceFallback
	}
	return verdict, SourceProvider
}

// NeutralProvider always returns the neutral verdict. Used for offline
// runs where no external model is configured.
type NeutralProvider struct{}

// Judge returns the neutral verdict.
func (NeutralProvider) Judge(_ context.Context, _ Subject) (model.QualitativeVerdict, error) {
	return model.NeutralVerdict(), nil
}
