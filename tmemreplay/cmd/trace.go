package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/tmemsim/tracing"
	"github.com/spf13/cobra"
)

var (
	traceQuery = tracing.AnyUnit()
	traceDraws bool
)

var traceCmd = &cobra.Command{
	Use:   "trace <db>",
	Short: "Print the classification changes recorded with --trace-db.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := tracing.NewTraceReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		if traceDraws {
			return printDraws(cmd.Context(), cmd.OutOrStdout(), reader)
		}

		return printChanges(cmd.Context(), cmd.OutOrStdout(), reader, traceQuery)
	},
}

func init() {
	f := traceCmd.Flags()
	f.IntVar(&traceQuery.Unit, "unit", -1,
		"Only print changes of this unit")
	f.Uint64Var(&traceQuery.Draw, "draw", 0,
		"Only print changes recorded during this draw")
	f.StringVar(&traceQuery.Cause, "cause", "",
		"Only print changes with this cause, such as bind or overlap")
	f.IntVar(&traceQuery.Limit, "limit", 0,
		"Print at most this many changes, all if 0")
	f.BoolVar(&traceDraws, "draws", false,
		"Print the per-draw results instead of the changes")
	rootCmd.AddCommand(traceCmd)
}

func printChanges(
	ctx context.Context,
	w io.Writer,
	reader *tracing.TraceReader,
	q tracing.ChangeQuery,
) error {
	changes, total, err := reader.Changes(ctx, q)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "SEQ\tDRAW\tUNIT\tBEFORE\tAFTER\tCAUSE")
	for _, e := range changes {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\n",
			e.Seq, e.Draw, e.Unit, e.Before, e.After, e.Cause)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%d of %d changes\n", len(changes), total)

	return err
}

func printDraws(ctx context.Context, w io.Writer, reader *tracing.TraceReader) error {
	draws, err := reader.Draws(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "DRAW\tUSED\tCACHED\tVALID\tINVALID")
	for _, d := range draws {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n",
			d.Draw, d.Used, d.Cached, d.Valid, d.Invalid)
	}

	return tw.Flush()
}
