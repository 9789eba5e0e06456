package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-scheduler/internal/api"
	"github.com/phrazzld/scry-scheduler/internal/config"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/domain/fsrs"
	"github.com/phrazzld/scry-scheduler/internal/forecast"
	"github.com/phrazzld/scry-scheduler/internal/platform/metrics"
	"github.com/phrazzld/scry-scheduler/internal/platform/postgres"
	"github.com/phrazzld/scry-scheduler/internal/service/scheduler"
	"github.com/phrazzld/scry-scheduler/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config

	logger   *slog.Logger
	db       *sql.DB
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	cardStore      store.CardStore
	deckStore      store.DeckStore
	reviewLogStore store.ReviewLogStore
	uow            store.UnitOfWork

	scheduler        scheduler.Service
	schedulerHandler *api.SchedulerHandler
	forecastHandler  *api.ForecastHandler
}

// newApplication wires stores, the scheduler and the HTTP handlers around an
// open database. Metrics are registered on registry, which also backs /metrics.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	registry *prometheus.Registry,
) (*application, error) {
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, err
	}

	defaults, err := fsrs.NewConfig(
		domain.ProfileName(cfg.Scheduler.DefaultProfile),
		cfg.Scheduler.DefaultRequestRetention,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler defaults: %w", err)
	}

	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: registry,
		metrics:  metrics.New(registry),
	}

	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.deckStore = postgres.NewPostgresDeckStore(db, logger)
	app.reviewLogStore = postgres.NewPostgresReviewLogStore(db, logger)
	app.uow = store.NewSQLUnitOfWork(db, app.cardStore, app.deckStore, app.reviewLogStore)

	opts := []scheduler.Option{
		scheduler.WithLogger(logger),
		scheduler.WithMetrics(app.metrics),
		scheduler.WithStudyDay(cfg.Scheduler.DayStartHour, loc),
		scheduler.WithRandomCandidateLimit(cfg.Scheduler.RandomCandidateLimit),
	}
	if seed := cfg.Scheduler.RandomSeed; seed != 0 {
		opts = append(opts, scheduler.WithRandomSource(scheduler.NewSeededSource(seed)))
	}
	app.scheduler = scheduler.NewService(app.uow, fsrs.NewEngine(), opts...)

	w := cfg.Forecast.RatingWeights
	app.schedulerHandler = api.NewSchedulerHandler(app.scheduler, logger)
	app.forecastHandler = api.NewForecastHandler(app.cardStore, app.deckStore, api.ForecastSettings{
		DefaultDays: cfg.Forecast.DefaultDays,
		MaxDays:     cfg.Forecast.MaxDays,
		Distribution: forecast.RatingDistribution{
			Again: w.Again,
			Hard:  w.Hard,
			Good:  w.Good,
			Easy:  w.Easy,
		},
		Config:   defaults,
		Location: loc,
		Metrics:  app.metrics,
	}, logger)

	logger.Info("application initialized",
		slog.Int("day_start_hour", cfg.Scheduler.DayStartHour),
		slog.String("timezone", loc.String()),
		slog.Bool("seeded_review_order", cfg.Scheduler.RandomSeed != 0))
	return app, nil
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) shutdownTimeout() time.Duration {
	return time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
}

// cleanup releases the database pool.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
