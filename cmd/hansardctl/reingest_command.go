package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	ingestmod "hansard/internal/services/ingest/module"
	ingestrepo "hansard/internal/services/ingest/repo"
	summod "hansard/internal/services/summaries/module"
)

func newReingestCommand(ctx *commandContext) *cobra.Command {
	var from, to string
	var withAI bool

	cmd := &cobra.Command{
		Use:   "reingest",
		Short: "Re-fetch and re-parse every stored sitting day",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := dayFlag("start", from)
			if err != nil {
				return err
			}
			end, err := dayFlag("end", to)
			if err != nil {
				return err
			}

			deps, err := ctx.deps(cmd.Context(), true)
			if err != nil {
				return err
			}
			m, err := ingestmod.New(deps, nil)
			if err != nil {
				return err
			}
			if withAI {
				sm, err := summod.New(deps)
				if err != nil {
					return err
				}
				m.Service().WithSummaries(sm.Port())
			}

			began := time.Now()
			if err := m.Runner().Reingest(cmd.Context(), start, end); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reingest done in %s\n", time.Since(began).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "start", "", "Only sittings on or after this day")
	cmd.Flags().StringVar(&to, "end", "", "Only sittings on or before this day")
	cmd.Flags().BoolVar(&withAI, "ai", false, "Also regenerate summaries (needs CORE_AI_ENABLED=1)")
	return cmd
}

func newSchemaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the hansard tables when missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.store(cmd.Context())
			if err != nil {
				return err
			}
			if err := ingestrepo.EnsureSchema(cmd.Context(), st.PG); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema ok")
			return nil
		},
	}
}
