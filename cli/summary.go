package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/worklog-engine/engine"
)

var (
	summaryPeriod string
	summaryFormat string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the total and pay breakdown of a period",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryPeriod, "period", "", "Period key, its start date (default current)")
	summaryCmd.Flags().StringVar(&summaryFormat, "format", "text", "Output format: text, json")
}

type summaryJSON struct {
	Period       string `json:"period"`
	Label        string `json:"label"`
	Entries      int    `json:"entries"`
	TotalMinutes int    `json:"totalMinutes"`
	Total        string `json:"total"`
	WorkDays     int    `json:"workDays"`
	ExtraHours   int    `json:"extraHours"`
	ExtraMinutes int    `json:"extraMinutes"`
	GrandTotal   string `json:"grandTotal"`
	Currency     string `json:"currency"`
}

func runSummary(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	period, err := app.Tracker.ResolvePeriod(summaryPeriod)
	if err != nil {
		return err
	}
	s := app.Tracker.Summary(period)
	b := s.Breakdown
	rates := app.Tracker.Rates()
	cur := app.Resolved.Currency
	out := cmd.OutOrStdout()

	switch summaryFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaryJSON{
			Period:       period.Value,
			Label:        period.Label,
			Entries:      len(s.Entries),
			TotalMinutes: s.TotalMinutes,
			Total:        s.Total,
			WorkDays:     b.WorkDays,
			ExtraHours:   b.ExtraHours,
			ExtraMinutes: b.ExtraMinutes,
			GrandTotal:   engine.FormatMoney(b.GrandTotal),
			Currency:     cur,
		})
	case "text":
		fmt.Fprintf(out, "%-10s%s\n", "Period:", period.Label)
		fmt.Fprintf(out, "%-10s%d\n", "Sessions:", len(s.Entries))
		fmt.Fprintf(out, "%-10s%s\n", "Total:", s.Total)
		fmt.Fprintf(out, "%-10s%d x %s%s = %s%s\n", "Days:", b.WorkDays, cur, engine.FormatMoney(rates.DayRate), cur, engine.FormatMoney(b.DaysSubtotal))
		fmt.Fprintf(out, "%-10s%d x %s%s = %s%s\n", "Hours:", b.ExtraHours, cur, engine.FormatMoney(rates.HourRate()), cur, engine.FormatMoney(b.HoursSubtotal))
		fmt.Fprintf(out, "%-10s%d x %s%s = %s%s\n", "Minutes:", b.ExtraMinutes, cur, rates.MinuteRate().StringFixed(4), cur, engine.FormatMoney(b.MinutesSubtotal))
		fmt.Fprintf(out, "%-10s%s%s\n", "Pay:", cur, engine.FormatMoney(b.GrandTotal))
		return nil
	default:
		return fmt.Errorf("unknown format %q: must be text or json", summaryFormat)
	}
}
