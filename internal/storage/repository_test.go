package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"grana/internal/core"
	"grana/internal/services"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "grana.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsAndUserRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, core.User{Email: "User@Example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := repo.GetUserByEmail(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.ID != id || u.PasswordHash != "hash" {
		t.Errorf("user = %+v, want id %d with stored hash", u, id)
	}

	if _, err := repo.CreateUser(ctx, core.User{Email: "user@example.com", PasswordHash: "x"}); !errors.Is(err, services.ErrDuplicateEmail) {
		t.Errorf("duplicate insert err = %v, want ErrDuplicateEmail", err)
	}

	ids, err := repo.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("ids = %v, want [%d]", ids, id)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := core.Transaction{
		OwnerID:      1,
		Description:  "Notebook",
		Amount:       core.Money{Cents: 120000},
		Kind:         core.Expense,
		Date:         core.NewDate(2024, 3, 10),
		Category:     "Outros",
		Installments: &core.Installments{Current: 2, Total: 12},
	}
	id, err := repo.CreateTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	got, err := repo.GetTransaction(ctx, 1, id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Description != "Notebook" || got.Amount.Cents != 120000 || got.Kind != core.Expense {
		t.Errorf("transaction = %+v", got)
	}
	if got.Date.String() != "2024-03-10" {
		t.Errorf("date = %s, want 2024-03-10", got.Date)
	}
	if got.Installments == nil || got.Installments.Current != 2 || got.Installments.Total != 12 {
		t.Errorf("installments = %+v, want 2/12", got.Installments)
	}

	// Update drops the installment plan.
	got.Installments = nil
	got.Amount.Cents = 99990
	if err := repo.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	got, err = repo.GetTransaction(ctx, 1, id)
	if err != nil {
		t.Fatalf("GetTransaction after update: %v", err)
	}
	if got.Installments != nil {
		t.Errorf("installments = %+v, want nil", got.Installments)
	}
	if got.Amount.Cents != 99990 {
		t.Errorf("amount = %d, want 99990", got.Amount.Cents)
	}

	if err := repo.DeleteTransaction(ctx, 1, id); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, 1, id); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("get after delete err = %v, want ErrNotFound", err)
	}
}

func TestTransactionOwnerScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateTransaction(ctx, core.Transaction{
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

	if _, err := repo.GetTransaction(ctx, 2, id); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("cross-owner get err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, 2, id); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("cross-owner delete err = %v, want ErrNotFound", err)
	}

	txs, err := repo.ListTransactions(ctx, 2)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("other owner sees %d transactions", len(txs))
	}
}

func TestListTransactionsOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, d := range []core.Date{
		core.NewDate(2024, 1, 5),
		core.NewDate(2024, 3, 1),
		core.NewDate(2024, 2, 15),
	} {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
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

	txs, err := repo.ListTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	want := []string{"2024-03-01", "2024-02-15", "2024-01-05"}
	for i, tx := range txs {
		if tx.Date.String() != want[i] {
			t.Errorf("txs[%d].Date = %s, want %s", i, tx.Date, want[i])
		}
	}
}

func TestFixedExpenseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateFixedExpense(ctx, core.FixedExpense{
		OwnerID:     1,
		Description: "Aluguel",
		Amount:      core.Money{Cents: 150000},
		DayOfMonth:  5,
		Category:    "Moradia",
		Active:      true,
	})
	if err != nil {
		t.Fatalf("CreateFixedExpense: %v", err)
	}

	fe, err := repo.GetFixedExpense(ctx, 1, id)
	if err != nil {
		t.Fatalf("GetFixedExpense: %v", err)
	}
	if !fe.Active || fe.DayOfMonth != 5 {
		t.Errorf("fixed expense = %+v", fe)
	}

	fe.Active = false
	if err := repo.UpdateFixedExpense(ctx, fe); err != nil {
		t.Fatalf("UpdateFixedExpense: %v", err)
	}
	fe, err = repo.GetFixedExpense(ctx, 1, id)
	if err != nil {
		t.Fatalf("GetFixedExpense after update: %v", err)
	}
	if fe.Active {
		t.Error("fixed expense still active after update")
	}

	if err := repo.DeleteFixedExpense(ctx, 1, id); err != nil {
		t.Fatalf("DeleteFixedExpense: %v", err)
	}
	if _, err := repo.GetFixedExpense(ctx, 1, id); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("get after delete err = %v, want ErrNotFound", err)
	}
}

func TestCategoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateCategory(ctx, core.Category{OwnerID: 1, Name: "Transporte", Color: "#3b82f6"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, core.Category{OwnerID: 1, Name: "Alimentação", Color: "#ef4444"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	cats, err := repo.ListCategories(ctx, 1)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Alimentação" {
		t.Errorf("cats = %+v, want name-sorted with Alimentação first", cats)
	}

	if err := repo.UpdateCategory(ctx, core.Category{ID: id, OwnerID: 1, Name: "Carro", Color: "#000000"}); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if err := repo.DeleteCategory(ctx, 1, id); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := repo.DeleteCategory(ctx, 1, id); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}
