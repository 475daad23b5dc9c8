package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/core/fieldmap"
	"github.com/verticalview/client-portal/internal/core/ports"
	"github.com/verticalview/client-portal/internal/core/relation"
)

// DashboardUseCase assembles a client's typed dashboard: the client record,
// then its contracts, videos and team, each resolved by a filter formula.
type DashboardUseCase struct {
	store    ports.RecordStore
	tables   domain.Tables
	policy   relation.Policy
	observer ports.PortalObserver
	logger   *slog.Logger
	now      func() time.Time
}

func NewDashboardUseCase(
	store ports.RecordStore,
	tables domain.Tables,
	policy relation.Policy,
	observer ports.PortalObserver,
	logger *slog.Logger,
) *DashboardUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardUseCase{
		store:    store,
		tables:   tables,
		policy:   policy,
		observer: observerOrNoop(observer),
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *DashboardUseCase) LoadByID(ctx context.Context, clientID string) (*domain.Dashboard, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "load dashboard", "client id is required")
	}
	return uc.load(ctx, relation.ClientByID(clientID), clientID)
}

func (uc *DashboardUseCase) LoadByEmail(ctx context.Context, email string) (*domain.Dashboard, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "load dashboard", "email is required")
	}
	return uc.load(ctx, relation.ClientByEmail(email), email)
}

func (uc *DashboardUseCase) load(ctx context.Context, clientFilter, ref string) (*domain.Dashboard, error) {
	dashboard, err := uc.assemble(ctx, clientFilter, ref)
	uc.observer.ObserveDashboardLoad(outcomeOf(err))
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (uc *DashboardUseCase) assemble(ctx context.Context, clientFilter, ref string) (*domain.Dashboard, error) {
	clients, err := uc.store.List(ctx, uc.tables.Clients, domain.ListOptions{Filter: clientFilter, MaxRecords: 1})
	if err != nil {
		return nil, fmt.Errorf("fetch client: %w", err)
	}
	if len(clients) == 0 {
		return nil, domain.NewError(domain.ErrNotFound, "load dashboard", fmt.Sprintf("client %s not found", ref))
	}
	client := fieldmap.Client(clients[0])

	contractRecords, err := uc.store.List(ctx, uc.tables.Contracts, domain.ListOptions{Filter: relation.Contracts(client.CompanyName)})
	if err != nil {
		return nil, fmt.Errorf("fetch contracts: %w", err)
	}
	videoRecords, err := uc.store.List(ctx, uc.tables.Videos, domain.ListOptions{Filter: relation.Videos(client.CompanyName, uc.policy.Videos)})
	if err != nil {
		return nil, fmt.Errorf("fetch videos: %w", err)
	}
	teamRecords, err := uc.store.List(ctx, uc.tables.Team, domain.ListOptions{Filter: relation.Team(client.CompanyName, uc.policy.Team)})
	if err != nil {
		return nil, fmt.Errorf("fetch team: %w", err)
	}

	dashboard := &domain.Dashboard{
		Client:    client,
		Contracts: make([]domain.Contract, 0, len(contractRecords)),
		Videos:    make([]domain.Video, 0, len(videoRecords)),
		Team:      make([]domain.TeamMember, 0, len(teamRecords)),
		FetchedAt: uc.now().UTC(),
	}
	for _, rec := range contractRecords {
		dashboard.Contracts = append(dashboard.Contracts, fieldmap.Contract(rec))
	}
	for _, rec := range videoRecords {
		video := fieldmap.Video(rec)
		if !video.Stage.Known() {
			uc.observer.ObserveUnknownStatus()
			uc.logger.Warn("unrecognized_video_status",
				"client_id", client.ID,
				"video_id", video.ID,
				"status", video.Status,
			)
		}
		dashboard.Videos = append(dashboard.Videos, video)
	}
	for _, rec := range teamRecords {
		dashboard.Team = append(dashboard.Team, fieldmap.TeamMember(rec))
	}
	return dashboard, nil
}
