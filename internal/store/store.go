// Package store persists analysis reports to SQLite or PostgreSQL.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener-cli/internal/config"
	"github.com/sells-group/screener-cli/internal/model"
)

// ErrNotFound is returned when a requested report does not exist.
var ErrNotFound = eris.New("store: report not found")

// ReportFilter specifies criteria for listing reports.
type ReportFilter struct {
	Ticker   string  `json:"ticker,omitempty"`
	Tier     string  `json:"tier,omitempty"`
	MinScore float64 `json:"min_score,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	Offset   int     `json:"offset,omitempty"`
}

// Store defines the persistence interface for analysis reports.
type Store interface {
	SaveReport(ctx context.Context, report *model.AnalysisReport) error
	SaveReports(ctx context.Context, reports []model.AnalysisReport) error
	GetReport(ctx context.Context, id string) (*model.AnalysisReport, error)
	LatestReport(ctx context.Context, ticker string) (*model.AnalysisReport, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]model.AnalysisReport, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the store named by config.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "screener.db"
		}
		return NewSQLite(path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
