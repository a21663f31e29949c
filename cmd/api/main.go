package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm_portal_backend/internal/adapters/storage"
	"crm_portal_backend/internal/billing"
	"crm_portal_backend/internal/compliance"
	"crm_portal_backend/internal/contacts"
	"crm_portal_backend/internal/contracts"
	"crm_portal_backend/internal/dashboards"
	"crm_portal_backend/internal/dashboards/cache"
	"crm_portal_backend/internal/email"
	"crm_portal_backend/internal/events"
	apphttp "crm_portal_backend/internal/http"
	"crm_portal_backend/internal/http/router"
	"crm_portal_backend/internal/integrations"
	"crm_portal_backend/internal/leads"
	"crm_portal_backend/internal/projects"
	"crm_portal_backend/internal/reports"
	"crm_portal_backend/internal/scheduler"
	"crm_portal_backend/internal/search"
	"crm_portal_backend/platform/config"
	"crm_portal_backend/platform/db"
	"crm_portal_backend/platform/logger"
	"crm_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Redis-backed dashboard cache, optional
	dashCache := initDashboardCache(cfg, log)

	// Asynq client for webhook delivery jobs, optional
	deliveryEnqueuer, closeEnqueuer := initDeliveryEnqueuer(cfg, log)
	if closeEnqueuer != nil {
		defer closeEnqueuer()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for contract documents (MinIO), optional
	var storageSvc storage.Service
	if cfg.IsMinIOEnabled() {
		svc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure contract documents bucket", 5, 2*time.Second, func() error {
			return svc.EnsureBucketExists(ctx, cfg.GetBucketContractDocuments())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetBucketContractDocuments())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		storageSvc = svc
		log.Info("storage service initialized", "contractDocumentsBucket", cfg.GetBucketContractDocuments())
	} else {
		log.Warn("MinIO not configured; contract document uploads disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	contactsModule := contacts.NewModule(pool, val, log)
	leadsModule := leads.NewModule(pool, contactsModule.Service(), eventBus, val, log)
	billingModule := billing.NewModule(pool, eventBus, val, log)
	contractsModule := contracts.NewModule(pool, storageSvc, cfg.GetBucketContractDocuments(), eventBus, val, log)
	projectsModule := projects.NewModule(pool, val, log)
	integrationsModule := integrations.NewModule(pool, deliveryEnqueuer, val, log)
	dashboardsModule := dashboards.NewModule(pool, dashCache, log)
	reportsModule := reports.NewModule(pool, log)
	searchModule := search.NewModule(pool, val)

	// Compliance subscribes to domain events for the audit trail
	complianceModule := compliance.NewModule(pool, eventBus, val, log)

	// Invoice notification emails, optional
	if cfg.GetEmailEnabled() && cfg.GetSMTPHost() != "" {
		sender := email.NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		)
		email.NewSubscriber(sender, log).Register(eventBus)
		log.Info("email sender initialized", "host", cfg.GetSMTPHost())
	} else {
		log.Warn("SMTP not configured; invoice emails disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			contactsModule,
			billingModule,
			contractsModule,
			projectsModule,
			integrationsModule,
			dashboardsModule,
			reportsModule,
			searchModule,
			complianceModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initDashboardCache(cfg *config.Config, log *logger.Logger) *cache.Cache {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; dashboard caching disabled")
		return nil
	}

	c, err := cache.New(cfg.GetRedisURL(), cfg.GetDashboardCacheTTL())
	if err != nil {
		log.Error("failed to initialize dashboard cache", "error", err)
		return nil
	}
	return c
}

func initDeliveryEnqueuer(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.DeliveryEnqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; webhook deliveries disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize webhook delivery client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
