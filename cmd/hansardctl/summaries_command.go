package main

import (
	"github.com/spf13/cobra"

	"hansard/internal/services/summaries/domain"
	summod "hansard/internal/services/summaries/module"
)

func newSummariesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summaries",
		Short: "Generate and backfill speech summaries",
	}
	cmd.AddCommand(newSummariesBackfillCommand(ctx))
	cmd.AddCommand(newSummariesDateCommand(ctx))
	return cmd
}

func newSummariesBackfillCommand(ctx *commandContext) *cobra.Command {
	var (
		from, to      string
		limit, batch  int
		progressEvery int
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Summarize stored speeches that are missing or stale",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := dayFlag("start", from)
			if err != nil {
				return err
			}
			end, err := dayFlag("end", to)
			if err != nil {
				return err
			}
			svc, err := summariesPort(cmd, ctx)
			if err != nil {
				return err
			}
			rep, err := svc.Backfill(cmd.Context(), domain.BackfillRequest{
				From:          start,
				To:            end,
				Limit:         limit,
				BatchSize:     batch,
				ProgressEvery: progressEvery,
			})
			if werr := writeJSON(cmd, rep); werr != nil && err == nil {
				err = werr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&from, "start", "", "First sitting day")
	cmd.Flags().StringVar(&to, "end", "", "Last sitting day")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many rows (0 = no limit)")
	cmd.Flags().IntVar(&batch, "batch-size", 200, "Rows read per page")
	cmd.Flags().IntVar(&progressEvery, "progress-every", 50, "Log progress every N rows")
	return cmd
}

func newSummariesDateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "date <date>",
		Short: "Summarize one stored sitting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayFlag("date", args[0])
			if err != nil {
				return err
			}
			svc, err := summariesPort(cmd, ctx)
			if err != nil {
				return err
			}
			rep, err := svc.SummarizeDate(cmd.Context(), day)
			if err != nil {
				return err
			}
			return writeJSON(cmd, rep)
		},
	}
}

func summariesPort(cmd *cobra.Command, ctx *commandContext) (domain.Port, error) {
	deps, err := ctx.deps(cmd.Context(), true)
	if err != nil {
		return nil, err
	}
	m, err := summod.New(deps)
	if err != nil {
		return nil, err
	}
	return m.Port(), nil
}
