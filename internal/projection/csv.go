package projection

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Column headers for the exported projection views.
var (
	monthCSVHeader    = []string{"Month", "Year", "FixedExpenses", "Installments", "ProjectedTotal"}
	categoryCSVHeader = []string{"Category", "ProjectedTotal"}
)

// WriteMonthCSV writes the by-month projection as CSV, one row per month.
func WriteMonthCSV(w io.Writer, months []MonthProjection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(monthCSVHeader); err != nil {
		return err
	}
	for _, m := range months {
		row := []string{
			m.Month,
			strconv.Itoa(m.Year),
			formatAmount(m.Fixed),
			formatAmount(m.Installments),
			formatAmount(m.Total),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCategoryCSV writes the by-category projection as CSV, already sorted
// descending by total.
func WriteCategoryCSV(w io.Writer, cats []CategoryProjection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(categoryCSVHeader); err != nil {
		return err
	}
	for _, c := range cats {
		if err := cw.Write([]string{c.Category, formatAmount(c.Total)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
