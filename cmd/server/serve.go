package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiwari-pos/register/internal/catalog"
	"github.com/kiwari-pos/register/internal/config"
	"github.com/kiwari-pos/register/internal/database"
	"github.com/kiwari-pos/register/internal/events"
	"github.com/kiwari-pos/register/internal/logging"
	"github.com/kiwari-pos/register/internal/metrics"
	"github.com/kiwari-pos/register/internal/preorder"
	"github.com/kiwari-pos/register/internal/router"
	"github.com/kiwari-pos/register/internal/session"
	"github.com/kiwari-pos/register/internal/ws"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Log.Level, cfg.Log.Pretty)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.EnvFile != "" {
		logger.Info().Str("file", cfg.EnvFile).Msg("loaded env file")
	}

	menu, closeCatalog, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	m := metrics.New()

	hub := ws.NewHub(logger.With().Str("component", "ws").Logger())
	go hub.Run(ctx)

	broadcaster := events.NewBroadcaster(hub, logger)
	hooks := []session.CompletionHook{broadcaster, events.NewMetricsHook(m)}

	if cfg.Kafka.Brokers != "" {
		publisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error().Err(err).Msg("close kafka writer")
			}
		}()
		hooks = append(hooks, publisher)
		logger.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing completed payments to kafka")
	}

	sessions := session.NewManager(session.Config{
		TaxRate:         cfg.Register.TaxRate,
		StrictAmounts:   cfg.Register.StrictCashAmount,
		QuickAddAmounts: cfg.Register.QuickAddAmounts,
		ClearOnComplete: cfg.Register.ClearOnComplete,
	}, menu, logger.With().Str("component", "session").Logger(),
		session.WithHooks(hooks...),
		session.WithNotifier(broadcaster),
		session.WithObserver(m),
	)

	var tracker *preorder.Tracker
	if cfg.PreOrder.StatusURL != "" {
		tracker = preorder.NewTracker(
			preorder.NewHTTPChecker(cfg.PreOrder.StatusURL, nil),
			broadcaster,
			logger.With().Str("component", "preorder").Logger(),
			preorder.WithInterval(cfg.PreOrder.PollInterval),
			preorder.WithCheckObserver(m),
		)
		defer tracker.StopAll()
		logger.Info().Str("url", cfg.PreOrder.StatusURL).Dur("interval", cfg.PreOrder.PollInterval).Msg("pre-order tracking enabled")
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Port),
		Handler: router.New(router.Deps{
			Config:    cfg,
			Catalog:   menu,
			Sessions:  sessions,
			PreOrders: tracker,
			Hub:       hub,
			Metrics:   m,
			Logger:    logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openCatalog connects to PostgreSQL when DATABASE_URL is set, otherwise it
// serves the built-in sample menu.
func openCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (catalog.Catalog, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set, serving the sample menu")
		return catalog.SampleMenu(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info().Msg("connected to database")

	return catalog.NewStore(database.New(pool)), pool.Close, nil
}
