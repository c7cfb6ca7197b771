package nexus

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportHeader is the header row of WriteCSV.
var ExportHeader = []string{"date", "time", "portfolio", "type", "quantity", "unitPrice", "amount", "realizedProfit", "realizedProfitPct"}

// ExportRow formats an entry as a CSV row: date and time in UTC, quantity
// with 4 decimals, amounts with 2. Realized profit columns are empty for
// anything but a disposal.
func ExportRow(e Entry) []string {
	at := e.Date.UTC()
	row := []string{
		at.Format("2006-01-02"),
		at.Format("15:04:05"),
		e.Portfolio.Label(),
		e.Kind.String(),
		e.Quantity.StringFixed(4),
		e.UnitPrice.StringFixed(2),
		e.Amount.StringFixed(2),
		"",
		"",
	}
	if e.Realized() {
		row[7] = e.RealizedProfit.StringFixed(2)
		row[8] = fmt.Sprintf("%.2f", float64(e.RealizedProfitPct))
	}
	return row
}

// WriteCSV writes entries as CSV, most recent first.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, e := range SortEntries(entries, ByDate, false) {
		if err := cw.Write(ExportRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
