package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/screener-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	ticker       TEXT NOT NULL,
	sector       TEXT NOT NULL,
	tier         TEXT NOT NULL,
	final_score  REAL NOT NULL,
	disqualified INTEGER NOT NULL DEFAULT 0,
	report       TEXT NOT NULL,
	generated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_ticker ON reports(ticker);
CREATE INDEX IF NOT EXISTS idx_reports_tier ON reports(tier);
CREATE INDEX IF NOT EXISTS idx_reports_score ON reports(final_score DESC);
CREATE INDEX IF NOT EXISTS idx_reports_generated ON reports(ticker, generated_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveReport(ctx context.Context, report *model.AnalysisReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, ticker, sector, tier, final_score, disqualified, report, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   ticker = excluded.ticker, sector = excluded.sector, tier = excluded.tier,
		   final_score = excluded.final_score, disqualified = excluded.disqualified,
		   report = excluded.report, generated_at = excluded.generated_at`,
		report.ID, report.Ticker, string(report.Sector), report.Tier,
		report.FinalScore, report.Risk.Disqualified, string(reportJSON), report.GeneratedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save report %s", report.ID)
}

func (s *SQLiteStore) SaveReports(ctx context.Context, reports []model.AnalysisReport) error {
	if len(reports) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range reports {
		r := &reports[i]
		reportJSON, err := json.Marshal(r)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal report %s", r.ID)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO reports (id, ticker, sector, tier, final_score, disqualified, report, generated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Ticker, string(r.Sector), r.Tier,
			r.FinalScore, r.Risk.Disqualified, string(reportJSON), r.GeneratedAt.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert report %s", r.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit reports")
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*model.AnalysisReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT report FROM reports WHERE id = ?`, id,
	)
	return scanReport(row)
}

func (s *SQLiteStore) LatestReport(ctx context.Context, ticker string) (*model.AnalysisReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT report FROM reports WHERE ticker = ? ORDER BY generated_at DESC LIMIT 1`,
		ticker,
	)
	return scanReport(row)
}

func (s *SQLiteStore) ListReports(ctx context.Context, filter ReportFilter) ([]model.AnalysisReport, error) {
	query := `SELECT report FROM reports WHERE 1=1`
	var args []any

	if filter.Ticker != "" {
		query += ` AND ticker = ?`
		args = append(args, filter.Ticker)
	}
	if filter.Tier != "" {
		query += ` AND tier = ?`
		args = append(args, filter.Tier)
	}
	if filter.MinScore > 0 {
		query += ` AND final_score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY final_score DESC, generated_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close()

	var reports []model.AnalysisReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report")
		}
		var r model.AnalysisReport
		if err := json.Unmarshal([]byte(reportJSON), &r); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal report")
		}
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "sqlite: list reports iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanReport(row scannable) (*model.AnalysisReport, error) {
	var reportJSON string
	err := row.Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan report")
	}

	var r model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal report")
	}
	return &r, nil
}
