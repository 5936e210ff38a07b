package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GislainLefranc/Zombieland-sub002/internal/cache"
	"github.com/GislainLefranc/Zombieland-sub002/internal/config"
	"github.com/GislainLefranc/Zombieland-sub002/internal/db"
	"github.com/GislainLefranc/Zombieland-sub002/internal/logger"
	"github.com/GislainLefranc/Zombieland-sub002/internal/metrics"
	"github.com/GislainLefranc/Zombieland-sub002/internal/migrations"
	"github.com/GislainLefranc/Zombieland-sub002/internal/pricing"
	"github.com/GislainLefranc/Zombieland-sub002/internal/quote"
	"github.com/GislainLefranc/Zombieland-sub002/internal/seed"
	"github.com/GislainLefranc/Zombieland-sub002/internal/store"
)

// cacheInvalidator is implemented by the Redis formula cache.
type cacheInvalidator interface {
	Invalidate(ctx context.Context, id int64) error
}

type server struct {
	db      *sql.DB
	quotes  *quote.Service
	cache   cacheInvalidator
	log     *zap.Logger
	metrics http.Handler
}

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	for _, w := range cfg.Warnings {
		zl.Warn("configuration", zap.String("warning", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		zl.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		zl.Fatal("failed to run database migrations", zap.Error(err))
	}

	if cfg.SeedDemo {
		stats, err := seed.Run(ctx, database)
		if err != nil {
			zl.Fatal("failed to seed demo data", zap.Error(err))
		}
		zl.Info("demo seed applied", zap.Int("inserts", stats.Inserts))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repo := store.New(database)
	srv := &server{
		db:      database,
		log:     zl.Named("http"),
		metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}

	var formulas quote.FormulaSource = repo
	if cfg.RedisAddr != "" {
		fc := cache.NewFormulaCache(cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.FormulaCacheTTL,
		}, repo, zl)
		defer fc.Close()
		if err := fc.Ping(ctx); err != nil {
			zl.Warn("redis unreachable, formula cache will fall back to the database", zap.Error(err))
		}
		formulas = fc
		srv.cache = fc
	}

	engine := pricing.NewEngine(pricing.Config{
		DefaultTaxRate:    decimal.NewNullDecimal(cfg.DefaultTaxRate),
		HonorDiscountType: cfg.HonorDiscountType,
	}, zl)
	srv.quotes = quote.NewService(engine, formulas, repo, metrics.New(reg), zl)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	zl.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Get("/formulas/{id}", s.handleGetFormula)
	r.Delete("/formulas/{id}/cache", s.handleInvalidateFormula)
	r.Post("/quotes/preview", s.handlePreview)
	r.Get("/quotes/{id}", s.handleGetQuote)
	r.Post("/quotes/{id}/recompute", s.handleRecompute)
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
