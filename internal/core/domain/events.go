package domain

import "time"

type ReviewAction string

const (
	ReviewValidated         ReviewAction = "validated"
	ReviewRevisionRequested ReviewAction = "revision_requested"
)

// ReviewEvent is emitted after a client-initiated status change has been
// written to the store.
type ReviewEvent struct {
	ID         string       `json:"id"`
	Action     ReviewAction `json:"action"`
	VideoID    string       `json:"video_id"`
	VideoTitle string       `json:"video_title"`
	Status     string       `json:"status"`
	Comment    string       `json:"comment,omitempty"`
	FeedbackID string       `json:"feedback_id,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}
