package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sarchlab/tmemsim/tmem"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot>",
	Short: "Print the units stored in a texture cache snapshot.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		t := tmem.MakeBuilder().Build("TMEM")
		if err := t.Load(f); err != nil {
			return err
		}

		return printUnits(cmd.OutOrStdout(), t.Units())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func printUnits(w io.Writer, units [tmem.NumUnits]tmem.UnitState) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "UNIT\tSTATE\tEVEN\tODD")
	for i, u := range units {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			i, u.Classification, formatBank(u.Even), formatBank(u.Odd))
	}

	return tw.Flush()
}

func formatBank(b tmem.Bank) string {
	return fmt.Sprintf("%dx%d @0x%05x size 0x%x", b.Width, b.Height, b.Base, b.Size)
}
