package cli

import (
	"github.com/spf13/cobra"
	"github.com/warp/worklog-engine/export"
)

var receiptPeriod string

var receiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "Print the pay receipt of a period",
	Args:  cobra.NoArgs,
	RunE:  runReceipt,
}

func init() {
	receiptCmd.Flags().StringVar(&receiptPeriod, "period", "", "Period key, its start date (default current)")
}

func runReceipt(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	period, err := app.Tracker.ResolvePeriod(receiptPeriod)
	if err != nil {
		return err
	}
	s := app.Tracker.Summary(period)

	return export.WriteReceipt(cmd.OutOrStdout(), export.Receipt{
		Period:      s.Period,
		Entries:     s.Entries,
		Breakdown:   s.Breakdown,
		Rates:       app.Tracker.Rates(),
		Currency:    app.Resolved.Currency,
		Vocabulary:  app.Resolved.Vocabulary,
		GeneratedAt: app.Tracker.Now(),
	})
}
