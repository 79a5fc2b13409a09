package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener-cli/internal/model"
	"github.com/sells-group/screener-cli/internal/store"
)

func testEnv(t *testing.T) *env {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return &env{Store: st}
}

func storedReport(t *testing.T, e *env, ticker string, score float64) model.AnalysisReport {
	t.Helper()
	r := model.AnalysisReport{
		ID:          uuid.New().String(),
		Ticker:      ticker,
		Sector:      model.SectorSaaS,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Verdict:     model.NeutralVerdict(),
		FinalScore:  score,
		Tier:        model.Tier2,
		Label:       "CANDIDATE",
	}
	require.NoError(t, e.Store.SaveReport(context.Background(), &r))
	return r
}

func TestServeHealth(t *testing.T) {
	router := newRouter(testEnv(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServeListReports(t *testing.T) {
	e := testEnv(t)
	storedReport(t, e, "ACME", 72)
	storedReport(t, e, "BOLT", 55)
	router := newRouter(e)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports?min_score=60", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []model.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "ACME", got[0].Ticker)
}

func TestServeListReportsEmpty(t *testing.T) {
	router := newRouter(testEnv(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	// Empty list, not null.
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestServeGetReport(t *testing.T) {
	e := testEnv(t)
	r := storedReport(t, e, "ACME", 72)
	router := newRouter(e)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+r.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, r.ID, got.ID)
}

func TestServeGetReportNotFound(t *testing.T) {
	router := newRouter(testEnv(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeLatestReport(t *testing.T) {
	e := testEnv(t)
	older := storedReport(t, e, "ACME", 50)
	older.GeneratedAt = older.GeneratedAt.Add(-48 * time.Hour)
	require.NoError(t, e.Store.SaveReport(context.Background(), &older))
	newer := storedReport(t, e, "ACME", 64)
	router := newRouter(e)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickers/acme/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, newer.ID, got.ID)
}

func TestServeAnalyzeBadRequest(t *testing.T) {
	router := newRouter(testEnv(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"inputs":{}}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ticker is required")
}
