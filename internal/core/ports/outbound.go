package ports

import (
	"context"
	"io"

	"github.com/verticalview/client-portal/internal/core/domain"
)

// RecordStore is the remote tabular store. Every call hits the network;
// nothing is cached.
type RecordStore interface {
	List(ctx context.Context, table string, opts domain.ListOptions) ([]domain.Record, error)
	Get(ctx context.Context, table, id string) (*domain.Record, error)
	Create(ctx context.Context, table string, fields domain.Fields) (*domain.Record, error)
	Update(ctx context.Context, table, id string, fields domain.Fields) (*domain.Record, error)
	Delete(ctx context.Context, table, id string) error
}

// ReviewNotifier announces client review decisions.
type ReviewNotifier interface {
	PublishReviewEvent(ctx context.Context, event domain.ReviewEvent) error
}

// ReviewJournal keeps the history of review decisions received from the
// notifier.
type ReviewJournal interface {
	Append(ctx context.Context, event domain.ReviewEvent) (bool, error)
	ListByVideo(ctx context.Context, videoID string, limit int) ([]domain.ReviewEvent, error)
}

// DashboardExporter renders a dashboard as a downloadable document.
type DashboardExporter interface {
	ContentType() string
	Export(w io.Writer, dashboard *domain.Dashboard) error
}

// PortalObserver receives business-level observations. Implementations must
// be safe for concurrent use.
type PortalObserver interface {
	ObserveDashboardLoad(outcome string)
	ObserveUnknownStatus()
	ObserveReviewTransition(action domain.ReviewAction, outcome string)
}
