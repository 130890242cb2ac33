package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/worklog-engine/export"
)

var (
	exportPeriod string
	exportTotals bool
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a period's sessions as CSV",
	Long: `Writes the sessions of a period as CSV, most recent first.

With --output auto the file is named Horas-<period>.csv in the current
directory. Without --output the CSV goes to stdout.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportPeriod, "period", "", "Period key, its start date (default current)")
	exportCmd.Flags().BoolVar(&exportTotals, "totals", false, "Append duration and pay totals")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file, or auto")
}

func runExport(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	period, err := app.Tracker.ResolvePeriod(exportPeriod)
	if err != nil {
		return err
	}
	s := app.Tracker.Summary(period)

	opts := export.CSVOptions{Vocabulary: app.Resolved.Vocabulary, Currency: app.Resolved.Currency}
	if exportTotals {
		opts.Total = &s.Breakdown
	}
	write := func(w io.Writer) error {
		return export.WriteCSV(w, s.Entries, opts)
	}

	name := exportOutput
	if name == "auto" {
		name = export.FileName(period, "csv")
	}
	if name == "" {
		return write(cmd.OutOrStdout())
	}

	if err := writeFile(name, write); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d sessions to %s\n", len(s.Entries), name)
	return nil
}

// writeFile creates name and reports write and close failures alike.
func writeFile(name string, write func(io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", name, closeErr)
		}
	}()
	return write(f)
}
