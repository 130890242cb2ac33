package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/worklog-engine/engine"
	"github.com/warp/worklog-engine/timesheet"
)

var (
	addDate     string
	addLocation string
	addIn       string
	addOut      string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a work session",
	Example: `  worklog add --location remote --in 09:00 --out 17:30
  worklog add --date 2024-03-01 --location Tienda --in 08:00 --out 16:00`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "Session date YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&addLocation, "location", "", "remote or onsite (display labels accepted)")
	addCmd.Flags().StringVar(&addIn, "in", "", "Time in, HH:MM")
	addCmd.Flags().StringVar(&addOut, "out", "", "Time out, HH:MM")
}

func runAdd(cmd *cobra.Command, args []string) error {
	app, err := openWritableApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	date := addDate
	if date == "" {
		date = app.Tracker.Today().String()
	}

	entry, err := app.Tracker.Add(cmd.Context(), timesheet.NewEntry{
		Date:     date,
		Location: addLocation,
		TimeIn:   addIn,
		TimeOut:  addOut,
	})
	if err != nil {
		return err
	}

	period := app.Tracker.PeriodConfig().PeriodFor(entry.Date)
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s: %s %s %s-%s (%s) in %s\n",
		entry.ID,
		entry.Date,
		app.Resolved.Vocabulary.Label(entry.Location),
		entry.TimeIn, entry.TimeOut,
		engine.FormatDuration(entry.Duration()),
		period.Label,
	)
	return nil
}
