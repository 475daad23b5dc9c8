package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <video-id>",
		Short: "Approve a video that is awaiting your review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := loadController(cmd.Context(), ctx, ctx.clientRef())
			if err != nil {
				return err
			}
			if err := ctrl.Validate(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("validate %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Video %s validated.\n", args[0])
			return printSnapshot(cmd, ctx, ctrl.Snapshot())
		},
	}
}

func newReviseCommand(ctx *commandContext) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "revise <video-id>",
		Short: "Ask the team for changes on a video awaiting your review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(comment) == "" {
				return fmt.Errorf("a comment describing the requested changes is required (--comment)")
			}
			ctrl, err := loadController(cmd.Context(), ctx, ctx.clientRef())
			if err != nil {
				return err
			}
			if err := ctrl.RequestRevision(cmd.Context(), args[0], comment); err != nil {
				return fmt.Errorf("request revision on %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Revision requested on %s.\n", args[0])
			return printSnapshot(cmd, ctx, ctrl.Snapshot())
		},
	}
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Requested changes")
	return cmd
}
