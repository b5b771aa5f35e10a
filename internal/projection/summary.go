package projection

import "grana/internal/core"

// Summary holds the dashboard totals for a single calendar month.
// Income, expenses and balance come from transactions dated in that month;
// the fixed total is the sum of all active fixed expenses regardless of month.
type Summary struct {
	Year       int
	Month      int
	Income     core.Money
	Expenses   core.Money
	Balance    core.Money
	FixedTotal core.Money
}

// Summarize computes the month summary over in-memory collections.
// Like the projection functions it is pure and mutates nothing.
func Summarize(txs []core.Transaction, fixed []core.FixedExpense, year, month int) Summary {
	s := Summary{Year: year, Month: month}
	for _, tx := range txs {
		if tx.Date.Year() != year || int(tx.Date.Time.Month()) != month {
			continue
		}
		switch tx.Kind {
		case core.Income:
			s.Income.Cents += tx.Amount.Cents
		case core.Expense:
			s.Expenses.Cents += tx.Amount.Cents
		}
	}
	s.Balance.Cents = s.Income.Cents - s.Expenses.Cents
	for _, fe := range fixed {
		if fe.Active {
			s.FixedTotal.Cents += fe.Amount.Cents
		}
	}
	return s
}
