package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var dsnFlag string

	ctx := newCommandContext(&dsnFlag)

	rootCmd := &cobra.Command{
		Use:           "hansardctl",
		Short:         "Operator tools for the hansard parser and store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dburl", "", "Postgres URL (default $SERVICE_PGSQL_DBURL)")

	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newReingestCommand(ctx))
	rootCmd.AddCommand(newSummariesCommand(ctx))
	rootCmd.AddCommand(newSchemaCommand(ctx))

	return rootCmd
}
