package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/worklog-engine/engine"
)

const receiptWidth = 44

// Receipt is everything the pay receipt shows.
type Receipt struct {
	Title       string
	Period      engine.Period
	Entries     []engine.TimeEntry
	Breakdown   engine.Breakdown
	Rates       engine.RateTable
	Currency    string
	Vocabulary  engine.Vocabulary
	GeneratedAt time.Time
}

// Heading is "Resumen - <pay month> <half>/2". The pay month is the month
// the period ends in.
func (r Receipt) Heading() string {
	return fmt.Sprintf("Resumen - %s %d/2", r.Period.End.Format("Jan"), r.Period.Half)
}

// WriteReceipt renders r as fixed-width text.
func WriteReceipt(w io.Writer, r Receipt) error {
	if r.Title == "" {
		r.Title = "HoWo"
	}
	if r.Vocabulary.Name == "" {
		r.Vocabulary = engine.VocabularySpanish
	}
	b := r.Breakdown
	money := func(d decimal.Decimal, places int32) string {
		return r.Currency + d.StringFixed(places)
	}

	var sb strings.Builder
	sb.WriteString(center(r.Title) + "\n")
	sb.WriteString(center(r.Heading()) + "\n")
	sb.WriteString(center(r.Period.Label) + "\n")
	sb.WriteString(rule('-') + "\n")

	line := func(label, value string) {
		sb.WriteString(fmt.Sprintf("%-16s%*s\n", label, receiptWidth-16, value))
	}
	line(fmt.Sprintf("Días de %dh:", r.Rates.MinutesPerDay()/60), fmt.Sprintf("%d días x %s", b.WorkDays, money(r.Rates.DayRate, 2)))
	line("", "= "+money(b.DaysSubtotal, 2))
	line("Horas Extra:", fmt.Sprintf("%d hrs x %s", b.ExtraHours, money(r.Rates.HourRate(), 2)))
	line("", "= "+money(b.HoursSubtotal, 2))
	line("Minutos Extra:", fmt.Sprintf("%d min x %s", b.ExtraMinutes, money(r.Rates.MinuteRate(), 4)))
	line("", "= "+money(b.MinutesSubtotal, 2))

	sb.WriteString(rule('-') + "\n")
	sb.WriteString(fmt.Sprintf("%*s\n", receiptWidth, "TOTAL: "+money(b.GrandTotal, 2)))
	sb.WriteString(fmt.Sprintf("%*s\n", receiptWidth, "("+engine.FormatTotalDuration(b.TotalMinutes)+")"))
	sb.WriteString(rule('-') + "\n")

	sb.WriteString(center("DETALLE DE HORAS") + "\n")
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Fecha\tModalidad\tHorario\tDuración")
	for _, e := range r.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s-%s\t%s\n",
			e.Date.Format(CSVDateLayout),
			r.Vocabulary.Label(e.Location),
			e.TimeIn, e.TimeOut,
			engine.FormatDuration(e.Duration()),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	sb.WriteString(rule('-') + "\n")

	sb.WriteString(center("Gracias por su trabajo!") + "\n")
	if !r.GeneratedAt.IsZero() {
		sb.WriteString(center(r.GeneratedAt.Format("02/01/2006 15:04")) + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func rule(c rune) string {
	return strings.Repeat(string(c), receiptWidth)
}

func center(s string) string {
	n := len([]rune(s))
	if n >= receiptWidth {
		return s
	}
	return strings.Repeat(" ", (receiptWidth-n)/2) + s
}
