package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verticalview/client-portal/internal/controller"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the dashboard on screen and refresh it periodically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []controller.Option
			if interval > 0 {
				opts = append(opts, controller.WithInterval(interval))
			}
			var lastPrinted time.Time
			opts = append(opts, controller.WithListener(func(v controller.View) {
				if v.State != controller.StateDashboard || !v.LastRefresh.After(lastPrinted) {
					return
				}
				lastPrinted = v.LastRefresh
				if shouldColorize(cmd.OutOrStdout()) {
					fmt.Fprint(cmd.OutOrStdout(), "\x1b[H\x1b[2J")
				}
				if err := printSnapshot(cmd, ctx, v); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			}))

			ctrl, err := loadController(cmd.Context(), ctx, ctx.clientRef(), opts...)
			if err != nil {
				return err
			}
			ctrl.Start(cmd.Context())
			defer ctrl.Stop()

			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default PORTAL_REFRESH_SECONDS)")
	return cmd
}
