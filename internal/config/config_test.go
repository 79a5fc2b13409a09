package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/screener-cli/internal/model"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Temp dir so no config.yaml is found.
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "screener.db", cfg.Store.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Screen.MaxConcurrent)
	assert.Equal(t, 4.0, cfg.MarketData.RatePerSec)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)

	// Scoring and risk tables come from code defaults.
	assert.NotEmpty(t, cfg.Scoring.Sectors)
	assert.NotEmpty(t, cfg.Scoring.Tiers)
	assert.Equal(t, 5.0, cfg.Judgment.RequestsPerMinute)
	assert.Equal(t, -20.0, cfg.Judgment.CombinedFloor)
	assert.Equal(t, 3.0, cfg.Risk.DilutionKillRate)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
store:
  driver: postgres
  database_url: postgres://localhost/screener
screen:
  max_concurrent: 8
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/screener", cfg.Store.DatabaseURL)
	assert.Equal(t, 8, cfg.Screen.MaxConcurrent)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Scoring.Sectors)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := "log:\n  level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	t.Setenv("SCREENER_MARKET_DATA_KEY", "test-key")
	t.Setenv("SCREENER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.MarketData.Key)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLoggerConsole(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	require.Error(t, InitLogger(LogConfig{Level: "invalid", Format: "json"}))
}

func TestDefaultScoringConfigValidates(t *testing.T) {
	require.NoError(t, ValidateScoring(DefaultScoringConfig()))
}

func TestValidateScoringRejectsMissingSector(t *testing.T) {
	c := DefaultScoringConfig()
	delete(c.Sectors, model.SectorSaaS)
	require.Error(t, ValidateScoring(c))
}

func TestDefaultTiersDescend(t *testing.T) {
	tiers := DefaultScoringConfig().Tiers
	require.NotEmpty(t, tiers)
	for i := 1; i < len(tiers); i++ {
		assert.Less(t, tiers[i].MinScore, tiers[i-1].MinScore)
	}
}
