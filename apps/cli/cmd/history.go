package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/ordercheck/packages/history"
)

var (
	historyPathFlag  string
	historyLimitFlag int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous runs",
	Long: `Show the runs recorded with --history, newest first.

Examples:
  ordercheck history --history .ordercheck.db
  ordercheck history --history sqlite://runs.db --limit 5`,
	Args: noArgs,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyPathFlag, "history", getEnvString("ORDERCHECK_HISTORY", ""), "SQLite database of previous runs (env: ORDERCHECK_HISTORY)")
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", history.DefaultListLimit, "Maximum number of runs to show")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	if historyPathFlag == "" {
		return usageError(fmt.Errorf("--history is required"))
	}
	if historyLimitFlag <= 0 {
		return usageError(fmt.Errorf("--limit must be positive, got %d", historyLimitFlag))
	}

	store, err := history.Open(historyPathFlag)
	if err != nil {
		return configError(err)
	}
	defer store.Close()

	runs, err := store.List(commandContext(cmd), historyLimitFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tRUN ID\tPASSED\tFAILED\tSKIPPED\tRATE\tDURATION\tFAILED CHECKS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1f%%\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.RunID,
			r.Summary.Passed,
			r.Summary.Failed,
			r.Summary.Skipped,
			r.Summary.SuccessRate,
			r.Duration.Round(time.Millisecond),
			strings.Join(r.FailedChecks, ", "),
		)
	}
	return tw.Flush()
}
