package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/verticalview/client-portal/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func reviewVideo(id, title string, stage domain.Stage) domain.Record {
	return domain.Record{ID: id, Fields: domain.Fields{
		"Titre vidéo":       title,
		"Statut production": stage.Literal(),
	}}
}

func TestValidateMovesReviewToClientValidated(t *testing.T) {
	store := newRecordStoreFake()
	store.put(reviewVideo("recV1", "Trailer Cut", domain.StageClientReview))
	notifier := &notifierFake{}
	observer := &observerFake{}
	uc := NewReviewUseCase(store, testTables, notifier, observer, discardLogger())

	video, err := uc.Validate(context.Background(), "recV1")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if video.Stage != domain.StageClientValidated {
		t.Fatalf("expected client validated, got %s", video.Stage)
	}
	if creates := store.callsOf("create"); len(creates) != 0 {
		t.Fatalf("validate must not create feedback, got %d creates", len(creates))
	}
	updates := store.callsOf("update")
	if len(updates) != 1 || updates[0].fields["Statut production"] != domain.StageClientValidated.Literal() {
		t.Fatalf("unexpected updates %+v", updates)
	}
	if len(notifier.events) != 1 || notifier.events[0].Action != domain.ReviewValidated || notifier.events[0].ID == "" {
		t.Fatalf("unexpected events %+v", notifier.events)
	}
	if len(observer.transitions) != 1 || observer.transitions[0] != "validated:success" {
		t.Fatalf("unexpected observations %v", observer.transitions)
	}
}

func TestValidateRejectsVideoNotUnderReview(t *testing.T) {
	store := newRecordStoreFake()
	store.put(reviewVideo("recV1", "Trailer Cut", domain.StagePostProduction))
	uc := NewReviewUseCase(store, testTables, nil, nil, discardLogger())

	_, err := uc.Validate(context.Background(), "recV1")
	if !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if updates := store.callsOf("update"); len(updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(updates))
	}
}

func TestRequestRevisionCreatesFeedbackThenMovesStatus(t *testing.T) {
	store := newRecordStoreFake()
	store.put(reviewVideo("recV1", "Trailer Cut", domain.StageClientReview))
	notifier := &notifierFake{}
	uc := NewReviewUseCase(store, testTables, notifier, nil, discardLogger())

	video, err := uc.RequestRevision(context.Background(), "recV1", "  Shorten intro  ")
	if err != nil {
		t.Fatalf("RequestRevision() error = %v", err)
	}
	if video.Stage != domain.StageInternalRevision {
		t.Fatalf("expected internal revision, got %s", video.Stage)
	}

	creates := store.callsOf("create")
	if len(creates) != 1 {
		t.Fatalf("expected exactly one feedback, got %d", len(creates))
	}
	fb := creates[0]
	if fb.table != "Feedbacks" || fb.fields["Titre"] != "Feedback - Trailer Cut" || fb.fields["Commentaire"] != "Shorten intro" {
		t.Fatalf("unexpected feedback %+v", fb)
	}
	if fb.fields["Type"] != domain.RevisionFeedbackType {
		t.Fatalf("unexpected feedback type %v", fb.fields["Type"])
	}
	linked, ok := fb.fields["Vidéo"].([]string)
	if !ok || len(linked) != 1 || linked[0] != "recV1" {
		t.Fatalf("feedback must link the video, got %#v", fb.fields["Vidéo"])
	}

	var order []string
	for _, c := range store.calls {
		order = append(order, c.op)
	}
	if len(order) != 3 || order[0] != "get" || order[1] != "create" || order[2] != "update" {
		t.Fatalf("unexpected call order %v", order)
	}
	if len(notifier.events) != 1 || notifier.events[0].FeedbackID == "" || notifier.events[0].Comment != "Shorten intro" {
		t.Fatalf("unexpected events %+v", notifier.events)
	}
}

func TestRequestRevisionBlankCommentMakesNoStoreCalls(t *testing.T) {
	store := newRecordStoreFake()
	store.put(reviewVideo("recV1", "Trailer Cut", domain.StageClientReview))
	observer := &observerFake{}
	uc := NewReviewUseCase(store, testTables, nil, observer, discardLogger())

	for _, comment := range []string{"", "   ", "\n\t"} {
		_, err := uc.RequestRevision(context.Background(), "recV1", comment)
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %q, got %v", comment, err)
		}
	}
	if len(store.calls) != 0 {
		t.Fatalf("expected zero store calls, got %+v", store.calls)
	}
	if observer.transitions[0] != "revision_requested:invalid_input" {
		t.Fatalf("unexpected observation %v", observer.transitions)
	}
}

func TestStoreFailureLeavesNoEventAndKeepsMessage(t *testing.T) {
	store := newRecordStoreFake()
	store.put(reviewVideo("recV1", "Trailer Cut", domain.StageClientReview))
	storeErr := domain.NewError(domain.ErrRemoteStore, "airtable.update", "INVALID_PERMISSIONS")
	store.failOn["update"] = storeErr
	notifier := &notifierFake{}
	uc := NewReviewUseCase(store, testTables, notifier, nil, discardLogger())

	_, err := uc.Validate(context.Background(), "recV1")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("no event expected on failure")
	}
}

func TestNotifierFailureDoesNotFailTransition(t *testing.T) {
	store := newRecordStoreFake()
	store.put(reviewVideo("recV1", "Trailer Cut", domain.StageClientReview))
	uc := NewReviewUseCase(store, testTables, &notifierFake{err: errors.New("nats down")}, nil, discardLogger())

	if _, err := uc.Validate(context.Background(), "recV1"); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestSetStatusRoutesOnlyClientTransitions(t *testing.T) {
	store := newRecordStoreFake()
	store.put(reviewVideo("recV1", "Trailer Cut", domain.StageClientReview))
	store.put(reviewVideo("recV2", "Teaser", domain.StageClientReview))
	uc := NewReviewUseCase(store, testTables, nil, nil, discardLogger())

	video, err := uc.SetStatus(context.Background(), "recV1", "Validé par le client", "")
	if err != nil || video.Stage != domain.StageClientValidated {
		t.Fatalf("SetStatus(validated) = %v, %v", video, err)
	}
	video, err = uc.SetStatus(context.Background(), "recV2", "✏️ 5. Révision interne", "Color grade")
	if err != nil || video.Stage != domain.StageInternalRevision {
		t.Fatalf("SetStatus(revision) = %v, %v", video, err)
	}
	if _, err := uc.SetStatus(context.Background(), "recV1", "📦 7. Livrée", ""); !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestSubmitFeedbackRequiresVideo(t *testing.T) {
	store := newRecordStoreFake()
	uc := NewReviewUseCase(store, testTables, nil, nil, discardLogger())

	if _, err := uc.SubmitFeedback(context.Background(), domain.Feedback{Comment: "hi"}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	rec, err := uc.SubmitFeedback(context.Background(), domain.Feedback{VideoID: "recV1", Title: "Note", Comment: "Nice", Type: "💬 Commentaire"})
	if err != nil {
		t.Fatalf("SubmitFeedback() error = %v", err)
	}
	if rec.Fields["Commentaire"] != "Nice" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestFeedbackThenStatusChangeCreatesOneFeedback(t *testing.T) {
	store := newRecordStoreFake()
	store.put(reviewVideo("recV1", "Trailer Cut", domain.StageClientReview))
	notifier := &notifierFake{}
	uc := NewReviewUseCase(store, testTables, notifier, nil, discardLogger())
	ctx := context.Background()

	if _, err := uc.SubmitFeedback(ctx, domain.Feedback{
		VideoID: "recV1",
		Title:   "Feedback - Trailer Cut",
		Comment: "Shorten intro",
		Type:    domain.RevisionFeedbackType,
	}); err != nil {
		t.Fatalf("SubmitFeedback() error = %v", err)
	}
	video, err := uc.SetStatus(ctx, "recV1", domain.StageInternalRevision.Literal(), "")
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if video.Stage != domain.StageInternalRevision {
		t.Fatalf("expected internal revision, got %s", video.Stage)
	}
	if creates := store.callsOf("create"); len(creates) != 1 {
		t.Fatalf("expected exactly one feedback record, got %d", len(creates))
	}
	if len(notifier.events) != 1 || notifier.events[0].FeedbackID != "" {
		t.Fatalf("unexpected events %+v", notifier.events)
	}
}

func TestStatusOnlyRevisionKeepsReviewGuard(t *testing.T) {
	store := newRecordStoreFake()
	store.put(reviewVideo("recV1", "Trailer Cut", domain.StagePostProduction))
	uc := NewReviewUseCase(store, testTables, nil, nil, discardLogger())

	_, err := uc.SetStatus(context.Background(), "recV1", domain.StageInternalRevision.Literal(), "")
	if !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if updates := store.callsOf("update"); len(updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(updates))
	}
}

func TestRevisionStatusFailureLogsOrphanedFeedback(t *testing.T) {
	store := newRecordStoreFake()
	store.put(reviewVideo("recV1", "Trailer Cut", domain.StageClientReview))
	store.failOn["update"] = domain.NewError(domain.ErrRemoteStore, "airtable.update", "INVALID_PERMISSIONS")
	var logs bytes.Buffer
	uc := NewReviewUseCase(store, testTables, nil, nil, slog.New(slog.NewJSONHandler(&logs, nil)))

	if _, err := uc.RequestRevision(context.Background(), "recV1", "Shorten intro"); !domain.IsKind(err, domain.ErrRemoteStore) {
		t.Fatalf("expected remote store error, got %v", err)
	}
	creates := store.callsOf("create")
	if len(creates) != 1 {
		t.Fatalf("expected one feedback create, got %d", len(creates))
	}
	out := logs.String()
	if !strings.Contains(out, "revision_feedback_orphaned") || !strings.Contains(out, `"feedback_id":"rec`) {
		t.Fatalf("expected orphan log with feedback id, got %s", out)
	}
}
