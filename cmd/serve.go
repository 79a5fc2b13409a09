package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/screener-cli/internal/model"
	"github.com/sells-group/screener-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newRouter(env *env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/reports", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		filter := store.ReportFilter{
			Ticker: strings.ToUpper(q.Get("ticker")),
			Tier:   q.Get("tier"),
		}
		filter.MinScore, _ = strconv.ParseFloat(q.Get("min_score"), 64)
		filter.Limit, _ = strconv.Atoi(q.Get("limit"))
		filter.Offset, _ = strconv.Atoi(q.Get("offset"))

		reports, err := env.Store.ListReports(req.Context(), filter)
		if err != nil {
			respondError(w, err)
			return
		}
		if reports == nil {
			reports = []model.AnalysisReport{}
		}
		respondJSON(w, http.StatusOK, reports)
	})

	r.Get("/reports/{id}", func(w http.ResponseWriter, req *http.Request) {
		report, err := env.Store.GetReport(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	})

	r.Get("/tickers/{ticker}/latest", func(w http.ResponseWriter, req *http.Request) {
		ticker := strings.ToUpper(chi.URLParam(req, "ticker"))
		report, err := env.Store.LatestReport(req.Context(), ticker)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	})

	r.Post("/analyze", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Ticker string                  `json:"ticker"`
			Inputs model.QualitativeInputs `json:"inputs"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.Ticker == "" {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "ticker is required"})
			return
		}

		report, err := env.Analyzer.Analyze(req.Context(), strings.ToUpper(body.Ticker), body.Inputs)
		if err != nil {
			respondError(w, err)
			return
		}
		if err := env.Store.SaveReport(req.Context(), report); err != nil {
			zap.L().Error("save report", zap.String("ticker", report.Ticker), zap.Error(err))
		}
		respondJSON(w, http.StatusOK, report)
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, store.ErrNotFound) {
		status = http.StatusNotFound
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
