package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/verticalview/client-portal/internal/config"
	"github.com/verticalview/client-portal/internal/core/ports"
	"github.com/verticalview/client-portal/internal/core/relation"
	"github.com/verticalview/client-portal/internal/core/usecase"
	"github.com/verticalview/client-portal/internal/infrastructure/airtable"
	"github.com/verticalview/client-portal/internal/infrastructure/export/xlsx"
	"github.com/verticalview/client-portal/internal/infrastructure/queue/nats"
	"github.com/verticalview/client-portal/internal/infrastructure/resilience"
)

// Site selects the relationship policy of the process being wired.
type Site int

const (
	SiteAPI Site = iota
	SiteMCP
	SitePortal
)

// Observer receives store call, breaker and portal observations. The
// Prometheus metrics types implement it.
type Observer interface {
	airtable.CallObserver
	ports.PortalObserver
	resilience.StateObserver
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Store    *airtable.Client
	Executor *resilience.Executor
	Queue    *nats.Queue

	Dashboards ports.DashboardLoader
	Reviews    ports.ReviewService
	Records    ports.RecordService
	Exporter   ports.DashboardExporter

	closeFn func()
}

// New wires the store client and use cases for one site. It fails with a
// configuration error when credentials are missing. A NATS connection is
// made only when NATS_URL is set.
func New(ctx context.Context, cfg config.Config, site Site, logger *slog.Logger, observer Observer) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}
	policy, err := sitePolicy(cfg, site)
	if err != nil {
		return nil, err
	}

	executorOpts := []resilience.Option{resilience.WithLogger(logger)}
	if observer != nil {
		executorOpts = append(executorOpts, resilience.WithStateObserver(observer))
	}
	executor := resilience.NewExecutor(cfg.Resilience(), executorOpts...)
	storeOptions := airtable.Options{
		Timeout:            time.Duration(cfg.AirtableTimeoutSeconds) * time.Second,
		RateLimit:          cfg.AirtableRateLimitRPS,
		ResilienceExecutor: executor,
	}
	var portalObserver ports.PortalObserver
	if observer != nil {
		storeOptions.Observer = observer
		portalObserver = observer
	}
	store := airtable.NewWithOptions(cfg.AirtableAPIURL, cfg.AirtableBaseID, cfg.AirtableAPIKey, storeOptions)

	var queue *nats.Queue
	var notifier ports.ReviewNotifier
	if cfg.NATSURL != "" {
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init review notifier: %w", err)
		}
		notifier = queue
	}

	tables := cfg.Tables()
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Executor: executor,
		Queue:    queue,

		Dashboards: usecase.NewDashboardUseCase(store, tables, policy, portalObserver, logger),
		Reviews:    usecase.NewReviewUseCase(store, tables, notifier, portalObserver, logger),
		Records:    usecase.NewRecordsUseCase(store, tables, policy),
		Exporter:   xlsx.NewExporter(),

		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
		},
	}
	logger.InfoContext(ctx, "app_wired",
		"base_id", cfg.AirtableBaseID,
		"video_resolution", string(policy.Videos),
		"team_scope", string(policy.Team),
		"notifications", queue != nil,
	)
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func sitePolicy(cfg config.Config, site Site) (relation.Policy, error) {
	switch site {
	case SiteMCP:
		return cfg.MCPPolicy()
	case SitePortal:
		return cfg.PortalPolicy()
	default:
		return cfg.APIPolicy()
	}
}
