package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/screener-cli/internal/db"
	"github.com/sells-group/screener-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot store operations.
var preparedStatements = map[string]string{
	"save_report": `INSERT INTO reports (id, ticker, sector, tier, final_score, disqualified, report, generated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	 ON CONFLICT (id) DO UPDATE SET
	   ticker = $2, sector = $3, tier = $4, final_score = $5, disqualified = $6, report = $7, generated_at = $8`,
	"get_report":    `SELECT report FROM reports WHERE id = $1`,
	"latest_report": `SELECT report FROM reports WHERE ticker = $1 ORDER BY generated_at DESC LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used in tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	ticker       TEXT NOT NULL,
	sector       TEXT NOT NULL,
	tier         TEXT NOT NULL,
	final_score  DOUBLE PRECISION NOT NULL,
	disqualified BOOLEAN NOT NULL DEFAULT false,
	report       JSONB NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_ticker ON reports(ticker);
CREATE INDEX IF NOT EXISTS idx_reports_tier ON reports(tier);
CREATE INDEX IF NOT EXISTS idx_reports_score ON reports(final_score DESC);
CREATE INDEX IF NOT EXISTS idx_reports_generated ON reports(ticker, generated_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, report *model.AnalysisReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal report")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO reports (id, ticker, sector, tier, final_score, disqualified, report, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   ticker = $2, sector = $3, tier = $4, final_score = $5, disqualified = $6, report = $7, generated_at = $8`,
		report.ID, report.Ticker, string(report.Sector), report.Tier,
		report.FinalScore, report.Risk.Disqualified, reportJSON, report.GeneratedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: save report %s", report.ID)
}

// SaveReports bulk-upserts a screening run's reports in one transaction.
func (s *PostgresStore) SaveReports(ctx context.Context, reports []model.AnalysisReport) error {
	if len(reports) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		reportJSON, err := json.Marshal(r)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal report %s", r.ID)
		}
		rows = append(rows, []any{
			r.ID, r.Ticker, string(r.Sector), r.Tier,
			r.FinalScore, r.Risk.Disqualified, reportJSON, r.GeneratedAt.UTC(),
		})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "reports",
		Columns:      []string{"id", "ticker", "sector", "tier", "final_score", "disqualified", "report", "generated_at"},
		ConflictKeys: []string{"id"},
	}, rows)
	return eris.Wrap(err, "postgres: save reports")
}

func (s *PostgresStore) GetReport(ctx context.Context, id string) (*model.AnalysisReport, error) {
	return s.queryReport(ctx, `SELECT report FROM reports WHERE id = $1`, id)
}

func (s *PostgresStore) LatestReport(ctx context.Context, ticker string) (*model.AnalysisReport, error) {
	return s.queryReport(ctx,
		`SELECT report FROM reports WHERE ticker = $1 ORDER BY generated_at DESC LIMIT 1`,
		ticker,
	)
}

func (s *PostgresStore) queryReport(ctx context.Context, query string, arg any) (*model.AnalysisReport, error) {
	var reportJSON []byte
	err := s.pool.QueryRow(ctx, query, arg).Scan(&reportJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get report")
	}

	var r model.AnalysisReport
	if err := json.Unmarshal(reportJSON, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal report")
	}
	return &r, nil
}

func (s *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) ([]model.AnalysisReport, error) {
	query := `SELECT report FROM reports WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Ticker != "" {
		query += fmt.Sprintf(` AND ticker = $%d`, argIdx)
		args = append(args, filter.Ticker)
		argIdx++
	}
	if filter.Tier != "" {
		query += fmt.Sprintf(` AND tier = $%d`, argIdx)
		args = append(args, filter.Tier)
		argIdx++
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(` AND final_score >= $%d`, argIdx)
		args = append(args, filter.MinScore)
		argIdx++
	}
	query += ` ORDER BY final_score DESC, generated_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var reports []model.AnalysisReport
	for rows.Next() {
		var reportJSON []byte
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		var r model.AnalysisReport
		if err := json.Unmarshal(reportJSON, &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal report")
		}
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "postgres: list reports iterate")
}
