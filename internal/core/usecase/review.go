package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/core/fieldmap"
	"github.com/verticalview/client-portal/internal/core/ports"
)

// ReviewUseCase performs the only status changes a client may make: accept a
// video under review, or send it back with a revision comment.
type ReviewUseCase struct {
	store    ports.RecordStore
	tables   domain.Tables
	notifier ports.ReviewNotifier
	observer ports.PortalObserver
	logger   *slog.Logger
	now      func() time.Time
}

func NewReviewUseCase(
	store ports.RecordStore,
	tables domain.Tables,
	notifier ports.ReviewNotifier,
	observer ports.PortalObserver,
	logger *slog.Logger,
) *ReviewUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewUseCase{
		store:    store,
		tables:   tables,
		notifier: notifier,
		observer: observerOrNoop(observer),
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *ReviewUseCase) Validate(ctx context.Context, videoID string) (*domain.Video, error) {
	video, err := uc.validate(ctx, videoID)
	uc.observer.ObserveReviewTransition(domain.ReviewValidated, outcomeOf(err))
	return video, err
}

func (uc *ReviewUseCase) validate(ctx context.Context, videoID string) (*domain.Video, error) {
	video, err := uc.loadReviewable(ctx, "validate video", videoID)
	if err != nil {
		return nil, err
	}

	updated, err := uc.setStatus(ctx, video.ID, domain.StageClientValidated)
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, domain.ReviewEvent{
		Action:     domain.ReviewValidated,
		VideoID:    updated.ID,
		VideoTitle: video.Title,
		Status:     updated.Status,
	})
	return updated, nil
}

// RequestRevision records the client's comment as a feedback record and moves
// the video to internal revision. A blank comment is rejected before any
// store call.
func (uc *ReviewUseCase) RequestRevision(ctx context.Context, videoID, comment string) (*domain.Video, error) {
	video, err := uc.requestRevision(ctx, videoID, comment)
	uc.observer.ObserveReviewTransition(domain.ReviewRevisionRequested, outcomeOf(err))
	return video, err
}

func (uc *ReviewUseCase) requestRevision(ctx context.Context, videoID, comment string) (*domain.Video, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "request revision", "a revision comment is required")
	}

	video, err := uc.loadReviewable(ctx, "request revision", videoID)
	if err != nil {
		return nil, err
	}

	feedback, err := uc.store.Create(ctx, uc.tables.Feedbacks, fieldmap.FeedbackFields(domain.Feedback{
		VideoID: video.ID,
		Title:   "Feedback - " + video.Title,
		Comment: comment,
		Type:    domain.RevisionFeedbackType,
	}))
	if err != nil {
		return nil, fmt.Errorf("create revision feedback: %w", err)
	}

	updated, err := uc.setStatus(ctx, video.ID, domain.StageInternalRevision)
	if err != nil {
		uc.logger.Error("revision_feedback_orphaned",
			"video_id", video.ID,
			"feedback_id", feedback.ID,
			"error", err,
		)
		return nil, err
	}

	uc.notify(ctx, domain.ReviewEvent{
		Action:     domain.ReviewRevisionRequested,
		VideoID:    updated.ID,
		VideoTitle: video.Title,
		Status:     updated.Status,
		Comment:    comment,
		FeedbackID: feedback.ID,
	})
	return updated, nil
}

// moveToRevision changes the status only. The feedback record is expected to
// have been submitted separately.
func (uc *ReviewUseCase) moveToRevision(ctx context.Context, videoID string) (*domain.Video, error) {
	video, err := uc.loadReviewable(ctx, "request revision", videoID)
	if err != nil {
		return nil, err
	}
	updated, err := uc.setStatus(ctx, video.ID, domain.StageInternalRevision)
	if err != nil {
		return nil, err
	}
	uc.notify(ctx, domain.ReviewEvent{
		Action:     domain.ReviewRevisionRequested,
		VideoID:    updated.ID,
		VideoTitle: video.Title,
		Status:     updated.Status,
	})
	return updated, nil
}

// SubmitFeedback stores a feedback record as given, without a status change.
func (uc *ReviewUseCase) SubmitFeedback(ctx context.Context, feedback domain.Feedback) (*domain.Record, error) {
	feedback.VideoID = strings.TrimSpace(feedback.VideoID)
	if feedback.VideoID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "submit feedback", "video id is required")
	}
	rec, err := uc.store.Create(ctx, uc.tables.Feedbacks, fieldmap.FeedbackFields(feedback))
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return rec, nil
}

// SetStatus applies a requested status by routing it to the matching client
// transition. Any other target is refused. A revision without a comment only
// moves the status, for callers that already posted their feedback.
func (uc *ReviewUseCase) SetStatus(ctx context.Context, videoID, status, comment string) (*domain.Video, error) {
	switch target := domain.ParseStage(status); target {
	case domain.StageClientValidated:
		return uc.Validate(ctx, videoID)
	case domain.StageInternalRevision:
		if strings.TrimSpace(comment) != "" {
			return uc.RequestRevision(ctx, videoID, comment)
		}
		video, err := uc.moveToRevision(ctx, videoID)
		uc.observer.ObserveReviewTransition(domain.ReviewRevisionRequested, outcomeOf(err))
		return video, err
	default:
		return nil, domain.NewError(domain.ErrInvalidTransition, "set video status",
			fmt.Sprintf("clients may not move a video to %q", status))
	}
}

func (uc *ReviewUseCase) loadReviewable(ctx context.Context, operation, videoID string) (*domain.Video, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, operation, "video id is required")
	}

	rec, err := uc.store.Get(ctx, uc.tables.Videos, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetch video: %w", err)
	}
	video := fieldmap.Video(*rec)
	if !video.Stage.NeedsClientAction() {
		return nil, domain.NewError(domain.ErrInvalidTransition, operation,
			fmt.Sprintf("video %s is %q, not awaiting client review", video.ID, video.Status))
	}
	return &video, nil
}

func (uc *ReviewUseCase) setStatus(ctx context.Context, videoID string, stage domain.Stage) (*domain.Video, error) {
	rec, err := uc.store.Update(ctx, uc.tables.Videos, videoID, fieldmap.StatusFields(stage.Literal()))
	if err != nil {
		return nil, fmt.Errorf("update video status: %w", err)
	}
	video := fieldmap.Video(*rec)
	return &video, nil
}

func (uc *ReviewUseCase) notify(ctx context.Context, event domain.ReviewEvent) {
	if uc.notifier == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = uc.now().UTC()
	if err := uc.notifier.PublishReviewEvent(ctx, event); err != nil {
		uc.logger.Warn("review_notification_failed",
			"video_id", event.VideoID,
			"action", string(event.Action),
			"error", err,
		)
	}
}
