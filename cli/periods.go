package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/worklog-engine/engine"
)

var (
	periodsCount  int
	periodsFuture int
	periodsOrder  string
)

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List selectable pay periods around today",
	Args:  cobra.NoArgs,
	RunE:  runPeriods,
}

func init() {
	periodsCmd.Flags().IntVar(&periodsCount, "count", 0, "Number of periods (default from config)")
	periodsCmd.Flags().IntVar(&periodsFuture, "future", 0, "Also list this many upcoming periods")
	periodsCmd.Flags().StringVar(&periodsOrder, "order", "", "Order: desc (newest first) or asc")
}

func runPeriods(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	count := app.Resolved.Count
	if periodsCount != 0 {
		count = periodsCount
	}
	if count < 1 || count > engine.MaxPeriodCount {
		return fmt.Errorf("count must be between 1 and %d, got %d", engine.MaxPeriodCount, count)
	}
	if periodsFuture < 0 || periodsFuture > engine.MaxPeriodCount {
		return fmt.Errorf("future must be between 0 and %d, got %d", engine.MaxPeriodCount, periodsFuture)
	}
	order := app.Resolved.Order
	if periodsOrder != "" {
		if order, err = engine.ParseOrder(periodsOrder); err != nil {
			return err
		}
	}

	today := app.Tracker.Today()
	pc := app.Tracker.PeriodConfig()
	current := pc.PeriodFor(today)

	periods := pc.GeneratePeriods(count, today, order)
	if periodsFuture > 0 {
		periods = pc.Window(today, count-1, periodsFuture, order)
	}

	out := cmd.OutOrStdout()
	for _, p := range periods {
		marker := " "
		if p.Value == current.Value {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-12s%s\n", marker, p.Value, p.Label)
	}
	return nil
}
