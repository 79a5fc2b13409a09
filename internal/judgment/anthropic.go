package judgment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
	"github.com/sells-group/screener-cli/internal/resilience"
	"github.com/sells-group/screener-cli/pkg/anthropic"
)

// systemPrompt is the rubric sent with every judgment request. It is
// identical across a screening run so it is cached upstream.
const systemPrompt = `You are an equity analyst reviewing a small-cap growth company that has already been scored quantitatively. You receive the company's extracted financial metrics, risk assessment, and per-pillar scores as JSON.

Assess the qualitative picture: management alignment, moat durability, catalyst credibility, and anything the numbers understate or overstate. Do not re-litigate the quantitative score.

Respond with ONLY valid JSON, no other text:
{"status": "STRONG_PASS" | "SOFT_PASS" | "MONITOR_ONLY" | "AVOID", "conviction": 0-100, "rationale": "brief explanation"}`

// verdictResponse is the expected model output shape.
type verdictResponse struct {
	Status     string  `json:"status"`
	Tier       string  `json:"tier"`
	Conviction float64 `json:"conviction"`
	Rationale  string  `json:"rationale"`
}

// Limiter is the blocking rate-limit surface the provider depends on.
// *rate.Limiter satisfies it; tests inject a no-op.
type Limiter interface {
	Wait(ctx context.Context) error
}

// AnthropicProvider obtains verdicts from the Anthropic API. Calls are
// spaced by the injected limiter, retried on transient failures, and
// guarded by a circuit breaker so a degraded API cannot stall a
// screening run.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   Limiter
	retry     resilience.RetryConfig
	breaker   *resilience.CircuitBreaker
}

// NewAnthropicProvider builds a provider from config. If limiter is nil
// a token-bucket limiter spacing requests at the configured
// requests-per-minute ceiling is created.
func NewAnthropicProvider(client anthropic.Client, acfg config.AnthropicConfig, jcfg config.JudgmentConfig, limiter Limiter) *AnthropicProvider {
	if limiter == nil {
		rpm := jcfg.RequestsPerMinute
		if rpm <= 0 {
			rpm = 5
		}
		limiter = rate.NewLimiter(rate.Limit(rpm/60.0), 1)
	}

	retry := resilience.DefaultRetryConfig()
	if jcfg.MaxAttempts > 0 {
		retry.MaxAttempts = jcfg.MaxAttempts
	}
	retry.OnRetry = resilience.RetryLogger("anthropic", "judge")

	maxTokens := acfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &AnthropicProvider{
		client:    client,
		model:     acfg.Model,
		maxTokens: maxTokens,
		limiter:   limiter,
		retry:     retry,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			ShouldTrip: resilience.IsTransient,
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("judgment: circuit state change",
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		}),
	}
}

// Judge sends the subject to the model and parses the verdict.
func (p *AnthropicProvider) Judge(ctx context.Context, sub Subject) (model.QualitativeVerdict, error) {
	var zero model.QualitativeVerdict

	payload, err := json.Marshal(sub)
	if err != nil {
		return zero, eris.Wrap(err, "judgment: marshal subject")
	}

	userMsg := fmt.Sprintf("Ticker: %s\nSector: %s\n\nScoring data:\n%s", sub.Ticker, sub.Sector, payload)

	resp, err := resilience.ExecuteVal(ctx, p.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "judgment: rate limiter wait")
			}
			return p.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:     p.model,
				MaxTokens: p.maxTokens,
				System:    anthropic.BuildCachedSystemBlocks(systemPrompt),
				Messages:  []anthropic.Message{{Role: "user", Content: userMsg}},
			})
		})
	})
	if err != nil {
		return zero, eris.Wrap(err, "judgment: anthropic request")
	}

	resp.Usage.LogCost(p.model, "judgment")

	verdict, err := parseVerdict(resp.Text())
	if err != nil {
		return zero, err
	}

	zap.L().Info("judgment: verdict received",
		zap.String("ticker", sub.Ticker),
		zap.String("status", string(verdict.Status)),
		zap.Float64("conviction", verdict.Conviction),
	)
	return verdict, nil
}

// parseVerdict extracts the verdict JSON from model output, tolerating
// surrounding prose.
func parseVerdict(text string) (model.QualitativeVerdict, error) {
	var zero model.QualitativeVerdict

	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return zero, eris.Errorf("judgment: no JSON in response: %s", text)
	}

	var vr verdictResponse
	if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd+1]), &vr); err != nil {
		return zero, eris.Wrap(err, "judgment: parse response JSON")
	}

	status := model.VerdictStatus(vr.Status)
	if !status.Valid() {
		return zero, eris.Errorf("judgment: unknown verdict status %q", vr.Status)
	}

	conviction := vr.Conviction
	if conviction < 0 {
		conviction = 0
	}
	if conviction > 100 {
		conviction = 100
	}

	return model.QualitativeVerdict{Status: status, Tier: vr.Tier, Conviction: conviction}, nil
}
