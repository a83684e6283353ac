package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fabhiansan/tsunami-simulation/internal/dataset"
)

func init() {
	cmd := &cobra.Command{
		Use:   "step <timestep>",
		Short: "输出单个时间步的智能体坐标",
		Args:  cobra.ExactArgs(1),
		RunE:  runStep,
	}
	cmd.Flags().IntP("limit", "n", 0, "文本输出的最大行数（0 表示全部）")
	RootCmd.AddCommand(cmd)
}

// runStep：未命中时错误中附带前 20 个可用时间步
func runStep(cmd *cobra.Command, args []string) error {
	step, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid timestep %q", args[0])
	}
	limit, _ := cmd.Flags().GetInt("limit")

	res, err := load(cmd.Context())
	if err != nil {
		return err
	}
	b, err := dataset.Lookup(res, step)
	if err != nil {
		var nf *dataset.NotFoundError
		if errors.As(err, &nf) {
			return fmt.Errorf("%w (available: %v)", nf, nf.Available)
		}
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, b)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tx\ty\ttype")
	for i := range b.X {
		if limit > 0 && i >= limit {
			fmt.Fprintf(tw, "...\t%d more\t\t\n", len(b.X)-limit)
			break
		}
		fmt.Fprintf(tw, "%d\t%g\t%g\t%s\n", i, b.X[i], b.Y[i], b.Types[i])
	}
	return tw.Flush()
}
