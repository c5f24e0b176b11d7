package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/attic-lounges/internal/catalog"
	"github.com/ariefcatur/attic-lounges/internal/clock"
	"github.com/ariefcatur/attic-lounges/internal/config"
	kafkax "github.com/ariefcatur/attic-lounges/internal/kafka"
	"github.com/ariefcatur/attic-lounges/internal/metrics"
	"github.com/ariefcatur/attic-lounges/internal/orders"
	"github.com/ariefcatur/attic-lounges/internal/postgres"
	"github.com/ariefcatur/attic-lounges/internal/redisx"
	"github.com/joho/godotenv"
)

const serviceName = "availability-worker"

// availability applies ProductAvailabilityChanged events from the order
// outbox to the product catalogue.
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
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	m := metrics.New(serviceName)
	applier := &catalog.Applier{
		Catalog: catalog.NewService(&catalog.Repo{DB: db}, clock.NewSystem(), logger),
		Dedup:   &redisx.Dedup{Redis: rdb, Consumer: "availability"},
		Log:     logger,
		Metrics: m,
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			logger.Warn("metrics server stopped", "err", err)
		}
	}()

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AvailabilityGroup, orders.TopicAvailability, cfg.AvailabilityWorkers, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("consumer started", "group", cfg.AvailabilityGroup, "topic", orders.TopicAvailability, "workers", cfg.AvailabilityWorkers)
		if err := cons.Start(ctx, applier.Handle); err != nil {
			logger.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer")
	cancel()
	<-done
}
