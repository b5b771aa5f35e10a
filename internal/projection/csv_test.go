package projection

import (
	"strings"
	"testing"

	"grana/internal/core"
)

func TestWriteMonthCSV(t *testing.T) {
	ref := core.NewDate(2024, 1, 15)
	fixed := []core.FixedExpense{fixedExpense(10050, 5, "Moradia", true)}
	months := ByMonth(fixed, nil, ref)

	var sb strings.Builder
	if err := WriteMonthCSV(&sb, months); err != nil {
		t.Fatalf("WriteMonthCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 13 {
		t.Fatalf("lines = %d, want header + 12 rows", len(lines))
	}
	if lines[0] != "Month,Year,FixedExpenses,Installments,ProjectedTotal" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "janeiro,2024,100.50,0.00,100.50" {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestWriteCategoryCSV(t *testing.T) {
	cats := []CategoryProjection{
		{Category: "Moradia", Total: 1200},
		{Category: "Lazer", Total: 33.33},
	}

	var sb strings.Builder
	if err := WriteCategoryCSV(&sb, cats); err != nil {
		t.Fatalf("WriteCategoryCSV: %v", err)
	}

	got := strings.TrimSpace(sb.String())
	want := "Category,ProjectedTotal\nMoradia,1200.00\nLazer,33.33"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
