package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hansard/internal/adapters/render"
	"hansard/internal/core/transcript"
	perr "hansard/internal/platform/errors"
)

func newParseCommand() *cobra.Command {
	var (
		format  string
		tableID string
		maxCell int
	)

	cmd := &cobra.Command{
		Use:   "parse <file.json>",
		Short: "Parse a saved sitting report offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := render.ParseKind(tableID)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return perr.Wrapf(err, perr.ErrorCodeNotFound, "read %s", args[0])
			}

			doc, err := transcript.Decode(raw)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if doc.Blank() {
				fmt.Fprintln(out, "no sitting in this document")
				return nil
			}
			s, err := transcript.ParseDocument(doc)
			if err != nil {
				return err
			}
			if s.Empty() {
				fmt.Fprintf(out, "no sitting detected for %s\n", s.SittingDate)
				return nil
			}

			switch format {
			case "json":
				return writeJSON(cmd, s)
			case "csv":
				for _, k := range kinds {
					fmt.Fprintln(out, render.CSV(render.GridOf(s, k)))
				}
			case "table":
				fmt.Fprintf(out, "Sitting %s  attendance=%d ptba=%d speeches=%d\n",
					s.SittingDate, len(s.Attendance), len(s.Leave), len(s.Speeches))
				for _, k := range kinds {
					fmt.Fprintf(out, "\n%s\n", k)
					fmt.Fprintln(out, render.Table(render.GridOf(s, k), maxCell))
				}
				printStats(cmd, s.Stats)
			default:
				return perr.WithField(perr.InvalidArgf("unknown format %q (table, csv, json)", format), "format")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, csv or json")
	cmd.Flags().StringVar(&tableID, "table", "all", "Which table: attendance, ptba, speeches or all")
	cmd.Flags().IntVar(&maxCell, "max-cell", 60, "Clip table cells to this many characters (0 = no clip)")
	return cmd
}

func printStats(cmd *cobra.Command, st transcript.Stats) {
	fmt.Fprintf(cmd.OutOrStdout(), "\n%+v\n", st)
}
