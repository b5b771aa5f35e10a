package projection

import (
	"testing"

	"grana/internal/core"
)

func TestSummarize(t *testing.T) {
	txs := []core.Transaction{
		{Amount: core.Money{Cents: 500000}, Kind: core.Income, Date: core.NewDate(2024, 3, 1), Category: "Outros", Description: "salary"},
		{Amount: core.Money{Cents: 120000}, Kind: core.Expense, Date: core.NewDate(2024, 3, 10), Category: "Moradia", Description: "rent"},
		{Amount: core.Money{Cents: 8000}, Kind: core.Expense, Date: core.NewDate(2024, 3, 22), Category: "Lazer", Description: "cinema"},
		// Different month and year: ignored.
		{Amount: core.Money{Cents: 99900}, Kind: core.Expense, Date: core.NewDate(2024, 4, 1), Category: "Lazer", Description: "trip"},
		{Amount: core.Money{Cents: 77700}, Kind: core.Income, Date: core.NewDate(2023, 3, 1), Category: "Outros", Description: "old salary"},
	}
	fixed := []core.FixedExpense{
		{Amount: core.Money{Cents: 30000}, DayOfMonth: 5, Category: "Moradia", Active: true, Description: "internet"},
		{Amount: core.Money{Cents: 44000}, DayOfMonth: 8, Category: "Saúde", Active: false, Description: "old gym"},
	}

	s := Summarize(txs, fixed, 2024, 3)

	if s.Income.Cents != 500000 {
		t.Errorf("income = %d, want 500000", s.Income.Cents)
	}
	if s.Expenses.Cents != 128000 {
		t.Errorf("expenses = %d, want 128000", s.Expenses.Cents)
	}
	if s.Balance.Cents != 372000 {
		t.Errorf("balance = %d, want 372000", s.Balance.Cents)
	}
	if s.FixedTotal.Cents != 30000 {
		t.Errorf("fixed total = %d, want 30000", s.FixedTotal.Cents)
	}
}
