package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var clientFlag string
	var outputFlag string
	var logLevelFlag string

	ctx := newCommandContext(&clientFlag, &outputFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "portalctl",
		Short:         "Client portal in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFlag {
			case outputTable, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFlag)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		ctx.close()
	}

	rootCmd.PersistentFlags().StringVar(&clientFlag, "client", "", "Client record id or portal link")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", outputTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level written to stderr")

	rootCmd.AddCommand(newDashboardCommand(ctx))
	rootCmd.AddCommand(newOpenCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newReviseCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newEventsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
