package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/warp/worklog-engine/engine"
	"github.com/warp/worklog-engine/export"
)

var listPeriod string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the sessions of a pay period",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listPeriod, "period", "", "Period key, its start date (default current)")
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	period, err := app.Tracker.ResolvePeriod(listPeriod)
	if err != nil {
		return err
	}
	s := app.Tracker.Summary(period)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, period.Label)
	if len(s.Entries) == 0 {
		fmt.Fprintln(out, "No sessions recorded.")
		return nil
	}
	printEntries(out, s.Entries, app.Resolved.Vocabulary)
	fmt.Fprintf(out, "Total: %s\n", s.Total)
	return nil
}

func printEntries(w io.Writer, entries []engine.TimeEntry, vocab engine.Vocabulary) {
	for _, e := range entries {
		fmt.Fprintf(w, "%-38s %s  %-8s %s-%s  %s\n",
			e.ID,
			e.Date.Format(export.CSVDateLayout),
			vocab.Label(e.Location),
			e.TimeIn, e.TimeOut,
			engine.FormatDuration(e.Duration()),
		)
	}
}
