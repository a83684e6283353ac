package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fabhiansan/tsunami-simulation/internal/feature"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reasons",
		Short: "按原因输出被拒绝坐标数量及样例",
		Args:  cobra.NoArgs,
		RunE:  runReasons,
	}
	RootCmd.AddCommand(cmd)
}

func runReasons(cmd *cobra.Command, args []string) error {
	res, err := load(cmd.Context())
	if err != nil {
		return err
	}
	s := res.Summary
	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, map[string]any{
			"invalid_reasons": s.InvalidReasons,
			"samples":         s.Samples,
		})
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "reason\tcount")
	for _, r := range feature.Reasons {
		fmt.Fprintf(tw, "%s\t%d\n", r, s.InvalidReasons[r])
	}
	if len(s.Samples) > 0 {
		fmt.Fprintln(tw, "\nfeature\tx\ty\treason")
		for _, smp := range s.Samples {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", smp.Feature, smp.X, smp.Y, smp.Reason)
		}
	}
	return tw.Flush()
}
