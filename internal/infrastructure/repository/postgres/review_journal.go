package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/verticalview/client-portal/internal/core/domain"
)

// ReviewJournal keeps an append-only history of client review decisions.
type ReviewJournal struct {
	db *sql.DB
}

func NewReviewJournal(db *sql.DB) *ReviewJournal {
	return &ReviewJournal{db: db}
}

func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (j *ReviewJournal) EnsureSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize DDL across concurrent subscribers.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS review_events (
	id TEXT PRIMARY KEY,
	action TEXT NOT NULL,
	video_id TEXT NOT NULL,
	video_title TEXT NOT NULL,
	status TEXT NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	feedback_id TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS review_events_video_idx ON review_events (video_id, occurred_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure review journal schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Append stores event. Redelivered events with a known id are ignored; the
// result reports whether a row was written.
func (j *ReviewJournal) Append(ctx context.Context, event domain.ReviewEvent) (bool, error) {
	if event.ID == "" {
		return false, domain.NewError(domain.ErrInvalidInput, "append review event", "event id is required")
	}
	result, err := j.db.ExecContext(ctx, `
INSERT INTO review_events (id, action, video_id, video_title, status, comment, feedback_id, occurred_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO NOTHING
`, event.ID, string(event.Action), event.VideoID, event.VideoTitle, event.Status, event.Comment, event.FeedbackID, event.OccurredAt.UTC())
	if err != nil {
		return false, fmt.Errorf("append review event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append review event rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListByVideo returns the most recent decisions on a video, newest first.
func (j *ReviewJournal) ListByVideo(ctx context.Context, videoID string, limit int) ([]domain.ReviewEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, action, video_id, video_title, status, comment, feedback_id, occurred_at
FROM review_events
WHERE video_id = $1
ORDER BY occurred_at DESC
LIMIT $2
`, videoID, limit)
	if err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ReviewEvent, 0)
	for rows.Next() {
		var event domain.ReviewEvent
		var action string
		if err := rows.Scan(
			&event.ID,
			&action,
			&event.VideoID,
			&event.VideoTitle,
			&event.Status,
			&event.Comment,
			&event.FeedbackID,
			&event.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan review event: %w", err)
		}
		event.Action = domain.ReviewAction(action)
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review events: %w", err)
	}
	return out, nil
}
