package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-storefront/internal/admin"
	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/dashboard"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/metrics"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/payments"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/rabbitmq"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/tracking"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Events: local bus, forwarded to and fed from the configured broker.
	instance := cfg.ServiceName + "-" + cfg.InstanceID
	bridge := &events.Bridge{
		Dedup:    &events.RedisDeduper{Redis: rdb, Service: cfg.ServiceName},
		Instance: instance,
		Log:      log,
	}
	busOpts := []events.Option{events.WithLogger(log), events.WithObserver(metrics.RecordEvent)}

	var (
		prod *kafkax.Producer
		mq   *rabbitmq.RabbitMQ
	)
	switch cfg.EventsSink {
	case "kafka":
		prod = kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrdersChanged, 1024, log)
		prod.Start(ctx)
		busOpts = append(busOpts, events.WithSink(&events.KafkaSink{Producer: prod, Service: instance}))
	case "rabbitmq":
		mq, err = rabbitmq.Dial(cfg.RabbitMQURL, cfg.EventsExchange, instance)
		if err != nil {
			log.Error("rabbitmq connect", "err", err)
			os.Exit(1)
		}
		defer mq.Close()
		busOpts = append(busOpts, events.WithSink(mq))
	case "none":
	default:
		log.Warn("unknown EVENTS_SINK, events stay local", "sink", cfg.EventsSink)
	}
	bus := events.NewBus(busOpts...)
	bridge.Bus = bus

	switch {
	case prod != nil:
		// One group per instance so every instance sees every event.
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, instance, orders.TopicOrdersChanged, 4, log)
		go func() {
			log.Info("orders consumer started", "group", instance, "topic", orders.TopicOrdersChanged)
			if err := cons.Start(ctx, bridge.HandleOrdersChanged); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("orders consumer exit", "err", err)
			}
		}()
	case mq != nil:
		go func() {
			if err := mq.Consume(ctx, bridge.HandleEnvelope, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("rabbitmq consumer exit", "err", err)
			}
		}()
	}

	// Backend client & services
	client := api.New(cfg.BackendURL,
		api.WithTimeout(cfg.BackendTimeout),
		api.WithObserver(metrics.ObserveBackend),
	)
	h := &httpx.Handlers{
		Auth: auth.Parser{Secret: []byte(cfg.JWTSecret)},
		Checkout: &checkout.Service{
			Backend: client,
			Store:   &checkout.RedisStore{Redis: rdb, TTL: cfg.CheckoutTTL},
			Journal: &payments.Journal{DB: db},
			Events:  bus,
			Gateway: checkout.Gateway{
				KeyID:     cfg.GatewayKeyID,
				Secret:    cfg.GatewaySecret,
				Currency:  cfg.GatewayCurrency,
				StoreName: cfg.StoreName,
			},
			Log:    log,
			Record: metrics.RecordOperation,
		},
		Tracking: &tracking.Service{
			Backend: client,
			Events:  bus,
			Support: tracking.Support{Email: cfg.SupportEmail, Phone: cfg.SupportPhone, Hours: cfg.SupportHours},
		},
		Dashboard: &dashboard.Service{
			Backend:    client,
			Categories: cfg.DashboardCategories,
			Events:     bus,
			Log:        log,
		},
		Products: &admin.Products{Backend: client},
		Users:    &admin.Users{Backend: client},
		Bus:      bus,
		Log:      log,
	}
	router := httpx.NewRouter(h)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	// graceful shutdown
	go func() {
		log.Info("HTTP listening", "addr", cfg.HTTPAddr, "instance", instance, "events", cfg.EventsSink)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel() // stop consumers; the producer closes its inbox
	if prod != nil {
		prod.WaitClosed() // drain
	}
}
