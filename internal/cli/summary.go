package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "输出导入统计",
		Args:  cobra.NoArgs,
		RunE:  runSummary,
	}
	RootCmd.AddCommand(cmd)
}

// runSummary：输出统计；text 格式为对齐的键值表
func runSummary(cmd *cobra.Command, args []string) error {
	res, err := load(cmd.Context())
	if err != nil {
		return err
	}
	s := res.Summary
	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, s)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "source\t%s\n", s.Source)
	fmt.Fprintf(tw, "run_id\t%s\n", s.RunID)
	fmt.Fprintf(tw, "features\t%d\n", s.Features)
	fmt.Fprintf(tw, "timesteps\t%d\n", len(s.AllTimesteps))
	fmt.Fprintf(tw, "range\t%d..%d\n", s.MinTimestamp, s.MaxTimestamp)
	fmt.Fprintf(tw, "total_agents\t%d\n", s.TotalAgents)
	fmt.Fprintf(tw, "valid_coords\t%d\n", s.ValidCoords)
	fmt.Fprintf(tw, "invalid_coords\t%d\n", s.InvalidCoords)
	fmt.Fprintf(tw, "duration_ms\t%d\n", s.DurationMs)
	if s.Error != "" {
		fmt.Fprintf(tw, "error\t%s\n", s.Error)
		fmt.Fprintf(tw, "suggestion\t%s\n", s.Suggestion)
	}
	return tw.Flush()
}
