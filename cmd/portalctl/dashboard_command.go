package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/verticalview/client-portal/internal/controller"
)

func newDashboardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the client's videos, contracts and team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showDashboard(cmd, ctx, ctx.clientRef())
		},
	}
}

func newOpenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open <portal-link>",
		Short: "Open the dashboard from a portal link (?client=rec… or ?ref=rec…)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if controller.MagicLinkClientID(args[0]) == "" {
				return errNoClient
			}
			return showDashboard(cmd, ctx, args[0])
		},
	}
}

func showDashboard(cmd *cobra.Command, ctx *commandContext, ref string) error {
	ctrl, err := loadController(cmd.Context(), ctx, ref)
	if err != nil {
		return err
	}
	return printSnapshot(cmd, ctx, ctrl.Snapshot())
}

func loadController(c context.Context, ctx *commandContext, ref string, opts ...controller.Option) (*controller.Controller, error) {
	ctrl, err := ctx.newController(c, opts...)
	if err != nil {
		return nil, err
	}
	if err := ctx.login(c, ctrl, ref); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func printSnapshot(cmd *cobra.Command, ctx *commandContext, view controller.View) error {
	if view.Dashboard == nil {
		return errNoClient
	}
	out := newDashboardOutput(view.Dashboard, time.Now())
	return writeOutput(cmd, ctx.output(), out, func(w io.Writer, colorize bool) error {
		return renderDashboard(w, out, colorize)
	})
}
