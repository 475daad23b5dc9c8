package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/core/ports"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Follow review decisions published on NATS",
		Long:  "Follow review decisions published on NATS. When REVIEW_JOURNAL_DSN is set, each decision is also recorded in the review journal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			if app.Queue == nil {
				return fmt.Errorf("review notifications are disabled: set NATS_URL")
			}
			journal, closeJournal, err := ctx.openJournal(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer closeJournal()

			return app.Queue.SubscribeReviewEvents(cmd.Context(), func(c context.Context, event domain.ReviewEvent) error {
				if journal != nil {
					if _, err := journal.Append(c, event); err != nil {
						return err
					}
				}
				return printEvent(cmd, ctx.output(), event)
			})
		},
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <video-id>",
		Short: "List recorded review decisions for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			journal, closeJournal, err := ctx.openJournal(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer closeJournal()
			if journal == nil {
				return fmt.Errorf("review journal is disabled: set REVIEW_JOURNAL_DSN")
			}
			return showHistory(cmd, ctx.output(), journal, args[0], limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of decisions to show")
	return cmd
}

func showHistory(cmd *cobra.Command, format string, journal ports.ReviewJournal, videoID string, limit int) error {
	events, err := journal.ListByVideo(cmd.Context(), videoID, limit)
	if err != nil {
		return err
	}
	return writeOutput(cmd, format, events, func(w io.Writer, _ bool) error {
		if len(events) == 0 {
			_, err := fmt.Fprintf(w, "No review decisions recorded for %s.\n", videoID)
			return err
		}
		for _, event := range events {
			if _, err := fmt.Fprintln(w, formatEvent(event)); err != nil {
				return err
			}
		}
		return nil
	})
}

func printEvent(cmd *cobra.Command, format string, event domain.ReviewEvent) error {
	return writeOutput(cmd, format, event, func(w io.Writer, _ bool) error {
		_, err := fmt.Fprintln(w, formatEvent(event))
		return err
	})
}

func formatEvent(event domain.ReviewEvent) string {
	line := fmt.Sprintf("%s  %-18s  %s (%s)", event.OccurredAt.Local().Format("2006-01-02 15:04:05"), event.Action, event.VideoTitle, event.VideoID)
	if event.Comment != "" {
		line += fmt.Sprintf("  %q", event.Comment)
	}
	return line
}
