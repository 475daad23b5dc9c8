package ports

import (
	"context"

	"github.com/verticalview/client-portal/internal/core/domain"
)

// DashboardLoader assembles a client's typed dashboard.
type DashboardLoader interface {
	LoadByID(ctx context.Context, clientID string) (*domain.Dashboard, error)
	LoadByEmail(ctx context.Context, email string) (*domain.Dashboard, error)
}

// ReviewService applies client review decisions to videos.
type ReviewService interface {
	Validate(ctx context.Context, videoID string) (*domain.Video, error)
	RequestRevision(ctx context.Context, videoID, comment string) (*domain.Video, error)
	SubmitFeedback(ctx context.Context, feedback domain.Feedback) (*domain.Record, error)
	SetStatus(ctx context.Context, videoID, status, comment string) (*domain.Video, error)
}

// RecordService is the generic record surface used by the assistant tools
// and the REST facade.
type RecordService interface {
	List(ctx context.Context, table string, opts domain.ListOptions) ([]domain.Record, error)
	Get(ctx context.Context, table, id string) (*domain.Record, error)
	Create(ctx context.Context, table string, fields domain.Fields) (*domain.Record, error)
	Update(ctx context.Context, table, id string, fields domain.Fields) (*domain.Record, error)
	Delete(ctx context.Context, table, id string) error
	ClientBundle(ctx context.Context, ref string, byEmail bool) (*domain.RecordBundle, error)
}
