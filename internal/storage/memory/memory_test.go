package memory

import (
	"context"
	"errors"
	"testing"

	"grana/internal/core"
	"grana/internal/services"
)

func TestUserLookupIsCaseInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateUser(ctx, core.User{Email: "User@Example.COM", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.GetUserByEmail(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.ID != id {
		t.Errorf("user id = %d, want %d", u.ID, id)
	}

	if _, err := s.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("missing user err = %v, want ErrNotFound", err)
	}
}

func TestTransactionOwnerScoping(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateTransaction(ctx, core.Transaction{
		OwnerID:     1,
		Description: "Mercado",
		Amount:      core.Money{Cents: 5000},
		Kind:        core.Expense,
		Date:        core.NewDate(2024, 3, 10),
		Category:    "Alimentação",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if _, err := s.GetTransaction(ctx, 2, id); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("cross-owner get err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTransaction(ctx, 2, id); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("cross-owner delete err = %v, want ErrNotFound", err)
	}
	if err := s.UpdateTransaction(ctx, core.Transaction{ID: id, OwnerID: 2}); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("cross-owner update err = %v, want ErrNotFound", err)
	}

	if _, err := s.GetTransaction(ctx, 1, id); err != nil {
		t.Errorf("owner get err = %v, want nil", err)
	}
}

func TestListTransactionsSortedByDateDesc(t *testing.T) {
	s := New()
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2024, 1, 5),
		core.NewDate(2024, 3, 1),
		core.NewDate(2024, 2, 15),
	}
	for _, d := range dates {
		_, err := s.CreateTransaction(ctx, core.Transaction{
			OwnerID:     1,
			Description: "t",
			Amount:      core.Money{Cents: 100},
			Kind:        core.Expense,
			Date:        d,
			Category:    "Outros",
		})
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	txs, err := s.ListTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("len = %d, want 3", len(txs))
	}
	for i := 1; i < len(txs); i++ {
		if txs[i].Date.After(txs[i-1].Date.Time) {
			t.Errorf("transactions not sorted by date desc: %v before %v", txs[i-1].Date, txs[i].Date)
		}
	}
}

func TestInstallmentsAreCopiedNotShared(t *testing.T) {
	s := New()
	ctx := context.Background()

	plan := &core.Installments{Current: 1, Total: 3}
	id, err := s.CreateTransaction(ctx, core.Transaction{
		OwnerID:      1,
		Description:  "Notebook",
		Amount:       core.Money{Cents: 30000},
		Kind:         core.Expense,
		Date:         core.NewDate(2024, 1, 10),
		Category:     "Outros",
		Installments: plan,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	// Mutating the caller's plan must not leak into the store.
	plan.Current = 99

	got, err := s.GetTransaction(ctx, 1, id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Installments.Current != 1 {
		t.Errorf("stored installment current = %d, want 1", got.Installments.Current)
	}

	// Mutating the returned copy must not leak either.
	got.Installments.Current = 50
	again, _ := s.GetTransaction(ctx, 1, id)
	if again.Installments.Current != 1 {
		t.Errorf("installment current after reader mutation = %d, want 1", again.Installments.Current)
	}
}

func TestFixedExpensesSortedByDay(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, day := range []int{20, 5, 12} {
		_, err := s.CreateFixedExpense(ctx, core.FixedExpense{
			OwnerID:     1,
			Description: "fe",
			Amount:      core.Money{Cents: 100},
			DayOfMonth:  day,
			Category:    "Moradia",
			Active:      true,
		})
		if err != nil {
			t.Fatalf("CreateFixedExpense: %v", err)
		}
	}

	fes, err := s.ListFixedExpenses(ctx, 1)
	if err != nil {
		t.Fatalf("ListFixedExpenses: %v", err)
	}
	days := []int{fes[0].DayOfMonth, fes[1].DayOfMonth, fes[2].DayOfMonth}
	if days[0] != 5 || days[1] != 12 || days[2] != 20 {
		t.Errorf("days = %v, want [5 12 20]", days)
	}
}

func TestCategoriesSortedByName(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, name := range []string{"Transporte", "Alimentação", "Moradia"} {
		if _, err := s.CreateCategory(ctx, core.Category{OwnerID: 1, Name: name}); err != nil {
			t.Fatalf("CreateCategory: %v", err)
		}
	}

	cats, err := s.ListCategories(ctx, 1)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if cats[0].Name != "Alimentação" || cats[1].Name != "Moradia" || cats[2].Name != "Transporte" {
		t.Errorf("order = [%s %s %s]", cats[0].Name, cats[1].Name, cats[2].Name)
	}
}

func TestListUserIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	var want []int64
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		id, err := s.CreateUser(ctx, core.User{Email: email, PasswordHash: "h"})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		want = append(want, id)
	}

	ids, err := s.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(ids) != len(want) {
		t.Fatalf("len = %d, want %d", len(ids), len(want))
	}
	for i := range ids {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, core.User{Email: "dup@example.com", PasswordHash: "h1"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateUser(ctx, core.User{Email: "DUP@example.com", PasswordHash: "h2"}); !errors.Is(err, services.ErrDuplicateEmail) {
		t.Errorf("duplicate err = %v, want ErrDuplicateEmail", err)
	}

	ids, err := s.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("users stored = %d, want 1", len(ids))
	}
}
