package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/zhouzirui/wish-api/backend/internal/config"
	"github.com/zhouzirui/wish-api/backend/internal/handler"
	"github.com/zhouzirui/wish-api/backend/internal/middleware"
	"github.com/zhouzirui/wish-api/backend/internal/model/wish"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	wishStore := newStore(cfg.Store)

	opts := handler.Options{AllowedOrigin: cfg.HTTP.AllowedOrigin}
	if cfg.HTTP.MetricsEnabled {
		opts.Metrics = middleware.NewMetrics()
		log.Println("metrics enabled at /metrics")
	}
	if cfg.HTTP.RateLimitEnabled() {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		go limiter.Run(ctx)
		opts.RateLimiter = limiter
		log.Printf("rate limiting at %.2f req/s (burst %d) per client", cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	}

	router := handler.NewRouter(wishStore, opts)

	startServer(ctx, cfg.Server, router)

	if err := wishStore.Persist(context.Background()); err != nil {
		log.Printf("warning: failed to persist wishes: %v", err)
	}
}

func newStore(cfg config.StoreConfig) wish.Store {
	switch cfg.Kind {
	case config.StoreFile:
		log.Printf("wish store: file-seeded from %s (changes are not written back)", cfg.DataFile)
		return wish.NewFileStore(cfg.DataFile)
	default:
		log.Println("wish store: in-memory with sample data")
		return wish.NewMemoryStore(nil)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Wish API listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
