package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/screener-cli/internal/analyzer"
	"github.com/sells-group/screener-cli/internal/fetcher"
	"github.com/sells-group/screener-cli/internal/judgment"
	"github.com/sells-group/screener-cli/internal/store"
	"github.com/sells-group/screener-cli/pkg/anthropic"
)

// env bundles the wired collaborators a command needs.
type env struct {
	Store    store.Store
	Analyzer *analyzer.Analyzer
}

// initEnv opens the store and wires the analyzer. Without an Anthropic
// key the judgment provider is nil and every verdict is the neutral
// fallback; without a market-data key initEnv fails, since nothing can
// be fetched.
func initEnv(ctx context.Context) (*env, error) {
	if cfg.MarketData.Key == "" {
		return nil, eris.New("market_data.key is required (SCREENER_MARKET_DATA_KEY)")
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	provider := fetcher.NewFMPProvider(fetcher.NewHTTPClient(cfg.MarketData))

	var judge judgment.Provider
	if cfg.Anthropic.Key != "" {
		client := anthropic.NewClient(cfg.Anthropic.Key)
		judge = judgment.NewAnthropicProvider(client, cfg.Anthropic, cfg.Judgment, nil)
	} else {
		zap.L().Warn("no anthropic key configured; qualitative verdicts fall back to neutral")
	}

	return &env{
		Store:    st,
		Analyzer: analyzer.New(provider, judge, cfg),
	}, nil
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close", zap.Error(err))
	}
}
