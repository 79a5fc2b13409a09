package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresTest(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgresSaveReport(t *testing.T) {
	s, mock := newPostgresTest(t)
	r := sampleReport("ACME", 71.5)
	reportJSON, err := json.Marshal(&r)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO reports`).
		WithArgs(r.ID, r.Ticker, string(r.Sector), r.Tier,
			r.FinalScore, r.Risk.Disqualified, reportJSON, r.GeneratedAt.UTC()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveReport(context.Background(), &r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetReport(t *testing.T) {
	s, mock := newPostgresTest(t)
	r := sampleReport("ACME", 64)
	reportJSON, err := json.Marshal(&r)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT report FROM reports WHERE id`).
		WithArgs(r.ID).
		WillReturnRows(pgxmock.NewRows([]string{"report"}).AddRow(reportJSON))

	got, err := s.GetReport(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Ticker, got.Ticker)
	assert.Equal(t, r.FinalScore, got.FinalScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetReportNotFound(t *testing.T) {
	s, mock := newPostgresTest(t)

	mock.ExpectQuery(`SELECT report FROM reports WHERE id`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"report"}))

	_, err := s.GetReport(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresListReports(t *testing.T) {
	s, mock := newPostgresTest(t)
	a := sampleReport("AAA", 85)
	b := sampleReport("BBB", 60)
	aJSON, _ := json.Marshal(&a)
	bJSON, _ := json.Marshal(&b)

	mock.ExpectQuery(`SELECT report FROM reports WHERE true AND final_score >=`).
		WithArgs(55.0, 100).
		WillReturnRows(pgxmock.NewRows([]string{"report"}).AddRow(aJSON).AddRow(bJSON))

	got, err := s.ListReports(context.Background(), ReportFilter{MinScore: 55})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AAA", got[0].Ticker)
	assert.NoError(t, mock.ExpectationsWereMet())
}
