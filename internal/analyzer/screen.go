package analyzer

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/screener-cli/internal/model"
)

// Candidate pairs a ticker with its analyst-supplied qualitative inputs.
type Candidate struct {
	Ticker string                  `yaml:"ticker" json:"ticker"`
	Inputs model.QualitativeInputs `yaml:"inputs" json:"inputs"`
}

// Failure records a candidate that could not be analyzed.
type Failure struct {
	Ticker string `json:"ticker"`
	Err    string `json:"error"`
}

// ScreenResult is the outcome of a universe run. Reports are sorted by
// final score descending; failures keep universe order.
type ScreenResult struct {
	Reports  []model.AnalysisReport `json:"reports"`
	Failures []Failure              `json:"failures,omitempty"`
}

// Screen analyzes every candidate with bounded concurrency. One bad
// ticker never aborts the run; its error lands in Failures instead.
func (a *Analyzer) Screen(ctx context.Context, candidates []Candidate) (*ScreenResult, error) {
	maxConcurrent := a.cfg.Screen.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	var mu sync.Mutex
	result := &ScreenResult{}
	failed := make([]*Failure, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, c := range candidates {
		g.Go(func() error {
			report, err := a.Analyze(gctx, c.Ticker, c.Inputs)
			if err != nil {
				zap.L().Warn("candidate failed",
					zap.String("ticker", c.Ticker),
					zap.Error(err),
				)
				failed[i] = &Failure{Ticker: c.Ticker, Err: err.Error()}
				return nil
			}
			mu.Lock()
			result.Reports = append(result.Reports, *report)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range failed {
		if f != nil {
			result.Failures = append(result.Failures, *f)
		}
	}

	sort.SliceStable(result.Reports, func(i, j int) bool {
		return result.Reports[i].FinalScore > result.Reports[j].FinalScore
	})

	zap.L().Info("screen complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("reports", len(result.Reports)),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}
