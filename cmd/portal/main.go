package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"application-portal/logger"
	"application-portal/middleware/ratelimit"
	rlapp "application-portal/middleware/ratelimit/application"
	"application-portal/upload"
	"application-portal/upload/application"
)

func main() {
	// .env é opcional; variáveis do ambiente têm precedência.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	lg, err := logger.New(cfg.logLevel, cfg.logFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := buildObjectStore(ctx, cfg)
	if err != nil {
		lg.Fatal("storage setup failed", zap.Error(err))
	}

	limiterStore, closeLimiter, err := buildLimiterStore(ctx, cfg)
	if err != nil {
		lg.Fatal("rate limiter setup failed", zap.Error(err))
	}
	defer closeLimiter()

	stats, closeStats, err := buildStatsStore(ctx, cfg)
	if err != nil {
		lg.Fatal("rate stats setup failed", zap.Error(err))
	}
	defer closeStats()

	svc := application.NewService(application.Options{
		Store:         store,
		MissingConfig: cfg.missingStorage(),
		Limiter: rlapp.Service{
			Store:  limiterStore,
			Stats:  stats,
			Method: http.MethodPost,
			Path:   "/upload",
		},
		Logger: lg,
	})

	router := upload.NewRouter(upload.RouterOptions{
		Service: svc,
		KeyFunc: ratelimit.DefaultKeyFunc(cfg.rateKeyRemoteAddr),
		Logger:  lg,
		Concurrency: ratelimit.ConcurrencyOptions{
			Max:            cfg.concurrencyMax,
			AcquireTimeout: cfg.concurrencyTimeout,
		},
	})

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Info("portal listening", zap.String("addr", cfg.listenAddr))
	logStartup(lg, cfg, store)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server error", zap.Error(err))
	}
}
