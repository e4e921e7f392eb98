package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"application-portal/logger"
	"application-portal/middleware/ratelimit"
	rlapp "application-portal/middleware/ratelimit/application"
	rlinfra "application-portal/middleware/ratelimit/infra"
	"application-portal/upload"
	"application-portal/upload/application"
	"application-portal/upload/infra"
)

// Servidor local sem dependências externas: objetos ficam em memória e o
// limiter usa a janela em memória. Útil para testar o formulário com curl:
//
//	curl -F firstName=Marie -F lastName=Curie -F file=@cv.pdf localhost:8081/upload
func main() {
	lg, err := logger.New("debug", "console")
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	limiter := rlinfra.NewStore(3, time.Hour)
	limiter.StartJanitor(ctx)
	stats := rlinfra.NewMemoryStatsStore(rlinfra.WithTrackKeys(true))
	objects := infra.NewMemoryStore()

	svc := application.NewService(application.Options{
		Store:   objects,
		Limiter: rlapp.Service{Store: limiter, Stats: stats, Method: http.MethodPost, Path: "/upload"},
		Logger:  lg,
	})

	mux := http.NewServeMux()
	mux.Handle("/", upload.NewRouter(upload.RouterOptions{
		Service:     svc,
		KeyFunc:     ratelimit.DefaultKeyFunc(true), // sem proxy na frente
		Logger:      lg,
		Concurrency: ratelimit.ConcurrencyOptions{Max: 50},
	}))
	mux.HandleFunc("GET /debug/objects", func(w http.ResponseWriter, _ *http.Request) {
		writeDebug(w, map[string]any{"paths": objects.Paths()})
	})
	mux.HandleFunc("GET /debug/ratelimit", func(w http.ResponseWriter, _ *http.Request) {
		writeDebug(w, map[string]any{
			"total":   stats.Total(),
			"byRoute": stats.ByRoute(),
			"byKey":   stats.ByKey(),
			"keys":    limiter.Len(),
		})
	})

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Info("example server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Fatal("server error", zap.Error(err))
	}
}
