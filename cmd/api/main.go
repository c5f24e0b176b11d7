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

	"github.com/ariefcatur/attic-lounges/internal/availability"
	"github.com/ariefcatur/attic-lounges/internal/clock"
	"github.com/ariefcatur/attic-lounges/internal/config"
	"github.com/ariefcatur/attic-lounges/internal/httpx"
	kafkax "github.com/ariefcatur/attic-lounges/internal/kafka"
	"github.com/ariefcatur/attic-lounges/internal/metrics"
	"github.com/ariefcatur/attic-lounges/internal/orders"
	"github.com/ariefcatur/attic-lounges/internal/outbox"
	"github.com/ariefcatur/attic-lounges/internal/postgres"
	"github.com/ariefcatur/attic-lounges/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis (Idempotency-Key fast path)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	m := metrics.New(cfg.ServiceName)
	repo := &orders.Repo{DB: db, Producer: cfg.ServiceName}
	opts := []orders.Option{orders.WithLogger(logger), orders.WithMetrics(m)}

	var (
		sync     orders.Synchronizer
		producer *kafkax.Producer
		relayed  = make(chan struct{})
	)
	switch cfg.SyncMode {
	case config.SyncOutbox:
		opts = append(opts, orders.WithOutbox())
		producer = kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicAvailability)
		relay := &outbox.Relay{
			Store:     &outbox.PgStore{DB: db},
			Publisher: producer,
			Interval:  cfg.OutboxPollInterval,
			BatchSize: cfg.OutboxBatchSize,
			Log:       logger.With("component", "outbox-relay"),
			Metrics:   m,
		}
		go func() {
			defer close(relayed)
			relay.Run(ctx)
		}()
	default:
		close(relayed)
		sync = availability.NewClient(cfg.ProductServiceURL, cfg.SyncTimeout)
	}
	svc := orders.NewService(repo, sync, clock.NewSystem(), opts...)

	router := httpx.NewRouter(httpx.RouterConfig{CORSOrigins: cfg.CORSOrigins, Metrics: m})
	oh := &httpx.OrdersHandler{
		Orders: svc,
		Auth:   &httpx.Authenticator{Secret: []byte(cfg.JWTSecret)},
		Idem:   &redisx.Idempotency{Redis: rdb},
		Log:    logger,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr, "sync_mode", cfg.SyncMode)
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
	cancel()
	<-relayed
	if producer != nil {
		_ = producer.Close()
	}
}
