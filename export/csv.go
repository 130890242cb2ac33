/*
Package export renders a period's entries for people outside the app.

FORMATS:
  csv.go      Spreadsheet export. Header, column order and the dd/MM/yy
              and HH:MM formats are a compatibility surface.
  receipt.go  Plain-text pay receipt with the priced breakdown and the
              per-session detail.

Both writers take entries already filtered and ordered by the engine and
render them in the given order.
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/warp/worklog-engine/engine"
)

// CSVHeader is the fixed header row.
var CSVHeader = []string{"Fecha", "Modalidad", "Entrada", "Salida", "Duracion"}

// CSVDateLayout renders dates as dd/MM/yy.
const CSVDateLayout = "02/01/06"

// CSVOptions controls labels and the optional totals footer.
type CSVOptions struct {
	Vocabulary engine.Vocabulary

	// Total, when set, appends a blank row, a duration total and a pay total.
	Total    *engine.Breakdown
	Currency string
}

// WriteCSV writes one row per entry.
func WriteCSV(w io.Writer, entries []engine.TimeEntry, opts CSVOptions) error {
	vocab := opts.Vocabulary
	if vocab.Name == "" {
		vocab = engine.VocabularySpanish
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.Date.Format(CSVDateLayout),
			vocab.Label(e.Location),
			e.TimeIn,
			e.TimeOut,
			engine.FormatTotalDuration(e.Duration().TotalMinutes()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write entry %s: %w", e.ID, err)
		}
	}

	if b := opts.Total; b != nil {
		footer := [][]string{
			{"", "", "", "", ""},
			{"Total", "", "", "", engine.FormatTotalDuration(b.TotalMinutes)},
			{"Pago", "", "", "", opts.Currency + engine.FormatMoney(b.GrandTotal)},
		}
		if err := cw.WriteAll(footer); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FileName is the suggested download name for a period's export.
func FileName(p engine.Period, ext string) string {
	return "Horas-" + p.Value + "." + ext
}
