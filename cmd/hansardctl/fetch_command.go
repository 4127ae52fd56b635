package main

import (
	"fmt"

	"github.com/spf13/cobra"

	ingestmod "hansard/internal/services/ingest/module"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <date>",
		Short: "Fetch one sitting report through the local cache and print its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayFlag("date", args[0])
			if err != nil {
				return err
			}
			deps, err := ctx.deps(cmd.Context(), false)
			if err != nil {
				return err
			}
			m, err := ingestmod.New(deps, nil)
			if err != nil {
				return err
			}

			e, err := m.Cache().FetchEntry(cmd.Context(), day)
			if err != nil {
				return err
			}
			state := "downloaded"
			if e.Hit {
				state = "cached"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %d bytes)\n", e.Path, state, len(e.Body))
			return nil
		},
	}
}
