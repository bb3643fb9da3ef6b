package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/payments"
	"github.com/ariefcatur/go-storefront/internal/postgres"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	s := &payments.Sweeper{
		Store:  &payments.Journal{DB: db},
		MaxAge: cfg.IntentTTL,
		Limit:  cfg.SweepLimit,
		Log:    log.With("component", "payment-sweeper"),
	}
	log.Info("payment sweeper started", "every", cfg.SweepInterval, "max_age", cfg.IntentTTL)
	s.Run(ctx, cfg.SweepInterval)
	log.Info("payment sweeper stopped")
}
