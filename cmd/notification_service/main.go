package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/platform/config"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/platform/database"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/platform/logger"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/platform/messagebroker"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/app"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/events"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/provider"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/repository/postgres"
	transporthttp "github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/transport/http"
)

const (
	serviceName     = "notification-service"
	shutdownTimeout = 10 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.LogLevel)
	log.Info("Starting service...")

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN)
	if err != nil {
		log.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	log.Info("Database connection pool initialized")

	natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, log, serviceName)
	if err != nil {
		log.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	log.Info("NATS connection initialized")

	// Repositories.
	templateRepo := postgres.NewPgTemplateRepository(dbPool, log)
	settingsRepo := postgres.NewPgSettingsRepository(dbPool, log)
	attemptRepo := postgres.NewPgDeliveryAttemptRepository(dbPool, log)
	orderRepo := postgres.NewPgOrderRepository(dbPool, log)

	if err := settingsRepo.EnsureDefaults(mainCtx); err != nil {
		log.Error("Failed to ensure default settings rows", "error", err)
		os.Exit(1)
	}

	if cfg.SeedTemplatesOnStart {
		seeder := app.NewSeeder(templateRepo, log)
		if err := seeder.Seed(mainCtx); err != nil {
			// Individual template failures are already logged; a total seed
			// failure still should not keep the service down.
			log.Error("Template seeding finished with errors", "error", err)
		} else {
			log.Info("Default templates seeded")
		}
	}

	settings, err := settingsRepo.GetNotificationSettings(mainCtx)
	if err != nil {
		log.Error("Failed to load notification settings", "error", err)
		os.Exit(1)
	}

	providers := buildProviders(cfg, settings, log)

	dispatcher := app.NewDispatcher(
		templateRepo, settingsRepo, attemptRepo,
		providers, natsClient, log, cfg.ProviderSendTimeout,
	)

	poller := app.NewReminderPoller(settingsRepo, orderRepo, attemptRepo, dispatcher, log, app.PollerConfig{
		PollingInterval: cfg.ReminderPollingInterval,
		OrderBatchSize:  cfg.ReminderOrderBatchSize,
		WorkerLimit:     cfg.ReminderWorkerLimit,
	})

	consumer := events.NewConsumer(natsClient, dispatcher, log)

	validate := validator.New()
	adminHandler := transporthttp.NewAdminHandler(templateRepo, settingsRepo, attemptRepo, dispatcher, log, validate)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1/notifications", adminHandler.RegisterRoutes)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	// Event consumer.
	g.Go(func() error {
		if err := consumer.Start(groupCtx); err != nil {
			return fmt.Errorf("starting event consumer: %w", err)
		}
		<-groupCtx.Done()
		consumer.Stop()
		return groupCtx.Err()
	})

	// Payment reminder ticker.
	g.Go(func() error {
		log.Info("Starting payment reminder poller", "polling_interval", cfg.ReminderPollingInterval)
		ticker := time.NewTicker(cfg.ReminderPollingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				dispatched, pollErr := poller.PollAndProcessReminders(groupCtx)
				if pollErr != nil {
					// Settings or order-list loading failed; the next tick
					// retries. Only context cancellation stops the loop.
					log.ErrorContext(groupCtx, "Reminder tick failed", "error", pollErr)
				}
				if dispatched > 0 {
					log.InfoContext(groupCtx, "Reminder tick dispatched notifications", "count", dispatched)
				}
			case <-groupCtx.Done():
				log.InfoContext(groupCtx, "Reminder poller stopping")
				return groupCtx.Err()
			}
		}
	})

	// HTTP server.
	g.Go(func() error {
		log.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown on signal or group failure.
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			log.Info("Received shutdown signal", "signal", sig.String())
			mainCancel()
		case <-groupCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Service exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("Service shut down gracefully")
}

// buildProviders wires one sender per configured channel. Endpoint URLs
// come from config; credentials and sender identifiers come from the
// settings row so operators can rotate them without a deploy (a restart
// picks them up).
func buildProviders(cfg *config.Config, settings *domain.NotificationSettings, log *slog.Logger) map[domain.Channel]provider.NotificationSenderProvider {
	httpClient := &http.Client{Timeout: cfg.ProviderSendTimeout}
	providers := make(map[domain.Channel]provider.NotificationSenderProvider)

	if smsCfg, ok := settings.Channels[domain.ChannelSMS]; ok {
		providers[domain.ChannelSMS] = provider.NewSMSGatewayProvider(
			log, cfg.SMSGatewayURL, smsCfg.APIKey, smsCfg.SenderID, httpClient)
	}
	if waCfg, ok := settings.Channels[domain.ChannelWhatsApp]; ok {
		providers[domain.ChannelWhatsApp] = provider.NewWhatsAppProvider(
			log, cfg.WhatsAppGatewayURL, waCfg.APIKey, waCfg.SenderID, httpClient)
	}
	if wcCfg, ok := settings.Channels[domain.ChannelWhatsAppCloud]; ok {
		providers[domain.ChannelWhatsAppCloud] = provider.NewWhatsAppCloudProvider(
			log, cfg.WhatsAppCloudAPIURL, wcCfg.APIKey, wcCfg.SenderID, httpClient)
	}

	if len(providers) == 0 {
		log.Warn("No notification channels configured; all dispatches will exhaust immediately")
	}
	return providers
}
