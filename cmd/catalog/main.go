package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/catalog"
	"github.com/ariefcatur/attic-lounges/internal/clock"
	"github.com/ariefcatur/attic-lounges/internal/config"
	"github.com/ariefcatur/attic-lounges/internal/httpx"
	"github.com/ariefcatur/attic-lounges/internal/metrics"
	"github.com/ariefcatur/attic-lounges/internal/postgres"
	"github.com/joho/godotenv"
)

const serviceName = "product-service"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", serviceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	svc := catalog.NewService(&catalog.Repo{DB: db}, clock.NewSystem(), logger)
	if cfg.SeedCatalog {
		if _, err := svc.SeedIfEmpty(ctx); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	router := httpx.NewRouter(httpx.RouterConfig{CORSOrigins: cfg.CORSOrigins, Metrics: metrics.New(serviceName)})
	ch := &httpx.CatalogHandler{
		Catalog: svc,
		Auth:    &httpx.Authenticator{Secret: []byte(cfg.JWTSecret)},
		Log:     logger,
	}
	ch.Register(router)

	srv := &http.Server{Addr: cfg.CatalogAddr, Handler: router}
	go func() {
		logger.Info("http listening", "addr", cfg.CatalogAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
}
