package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/adapters/feed"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/emretit/paftamobile-sub007/internal/core/ports"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	"github.com/emretit/paftamobile-sub007/internal/core/services"
	"github.com/emretit/paftamobile-sub007/internal/handlers"
	"github.com/emretit/paftamobile-sub007/internal/middleware"
	"github.com/emretit/paftamobile-sub007/internal/platform/config"
	"github.com/emretit/paftamobile-sub007/internal/platform/events"
	"github.com/emretit/paftamobile-sub007/internal/platform/logger"
	"github.com/emretit/paftamobile-sub007/internal/platform/metrics"
	"github.com/emretit/paftamobile-sub007/internal/platform/scheduler"
	"github.com/emretit/paftamobile-sub007/internal/repositories/database/pgsql"
	"github.com/emretit/paftamobile-sub007/internal/repositories/database/sqlite"
	"github.com/emretit/paftamobile-sub007/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

// @title Exchange Rates API
// @version 1.0
// @description Cached official exchange rates for the ERP.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key

// @security BearerAuth
func main() {
	installSchedule := flag.Bool("install-schedule", false, "install the recurring ingestion schedule and exit")
	refresh := flag.Bool("refresh", false, "run one manual ingestion and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger, logCloser := logger.New(cfg.LogLevel, cfg.LogFile)
	defer logCloser.Close()
	slog.SetDefault(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to open rate store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer repos.Close()

	publisher := newPublisher(cfg, appLogger)
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing event publisher", slog.String("error", err.Error()))
		}
	}()

	ingestionMetrics := metrics.NewIngestionMetrics(prometheus.DefaultRegisterer)
	feedClient := feed.NewHTTPFeedClient(cfg.FeedURL, cfg.FeedUserAgent, cfg.FeedTimeout)
	parser := feed.NewXMLDocumentParser(cfg.FeedRequireDate, domain.TrackedCurrencies)

	container := services.NewServiceContainer(cfg, repos, feedClient, parser, publisher, ingestionMetrics)

	switch {
	case *installSchedule:
		schedule, err := container.Schedule.InstallSchedule(ctx)
		if err != nil {
			appLogger.Error("Failed to install schedule", slog.String("error", err.Error()))
			os.Exit(1)
		}
		appLogger.Info("Schedule installed", slog.String("job", schedule.Name), slog.Duration("interval", schedule.Interval))
		return
	case *refresh:
		result, err := container.Ingestion.Run(ctx, domain.TriggerManual)
		if err != nil {
			appLogger.Error("Manual refresh failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		appLogger.Info("Manual refresh finished", slog.Time("effective_date", result.EffectiveDate), slog.Int("count", len(result.Quotes)))
		return
	}

	var dispatcherDone <-chan struct{}
	if cfg.SchedulerEnabled {
		dispatcher := scheduler.NewDispatcher(repos.ScheduleRepo, cfg.SchedulerPollInterval, cfg.SchedulerMaxRetries, appLogger)
		dispatcher.Register(domain.IngestionJobName, services.IngestionJob(container.Ingestion))
		dispatcherDone = dispatcher.StartAsync(middleware.WithLogger(ctx, appLogger))
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(appLogger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		appLogger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, container); err != nil {
		appLogger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Cold start may fetch the feed inside a request.
		WriteTimeout: cfg.FeedTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	appLogger.Info("Server stopped")

	// The store is closed on return, so a running ingestion has to finish first.
	if dispatcherDone != nil {
		select {
		case <-dispatcherDone:
			appLogger.Info("Dispatcher stopped")
		case <-shutdownCtx.Done():
			appLogger.Warn("Dispatcher still running at shutdown timeout")
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	if cfg.StoreDriver == config.StoreDriverSQLite {
		db, err := sqlite.NewGormDB(cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		appLogger.Info("SQLite rate store opened", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db), nil
	}

	if cfg.MigrateOnStart {
		appLogger.Info("Running database migrations...")
		applied, err := database.MigrateUp(cfg.DatabaseURL)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		if applied {
			appLogger.Info("Database migrations applied successfully.")
		} else {
			appLogger.Info("No new migrations to apply.")
		}
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, err
	}
	appLogger.Info("Database connection pool established.")
	return pgsql.NewRepositoryProvider(dbPool), nil
}

func newPublisher(cfg *config.Config, appLogger *slog.Logger) ports.EventPublisher {
	if !cfg.KafkaEnabled() {
		return events.NoopPublisher{}
	}
	appLogger.Info("Publishing rate events to Kafka", slog.String("topic", cfg.KafkaTopic), slog.Any("brokers", cfg.KafkaBrokers))
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}
