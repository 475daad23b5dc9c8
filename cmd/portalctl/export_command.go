package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verticalview/client-portal/internal/infrastructure/storage/localfs"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save the dashboard as a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := loadController(cmd.Context(), ctx, ctx.clientRef())
			if err != nil {
				return err
			}
			app, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			if dir == "" {
				dir = app.Config.ExportDir
			}
			storage, err := localfs.New(dir)
			if err != nil {
				return err
			}

			dashboard := ctrl.Snapshot().Dashboard
			var buf bytes.Buffer
			if err := app.Exporter.Export(&buf, dashboard); err != nil {
				return fmt.Errorf("export dashboard: %w", err)
			}
			name := fmt.Sprintf("dashboard-%s-%s.xlsx", dashboard.Client.ID, time.Now().Format("2006-01-02"))
			path, err := storage.Save(cmd.Context(), name, &buf)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Destination directory (default PORTAL_EXPORT_DIR)")
	return cmd
}
