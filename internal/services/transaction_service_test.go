package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"grana/internal/core"
	"grana/internal/services"
	"grana/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) PublishChange(_ context.Context, entity, op string, id, ownerID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, entity+":"+op)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	owners []int64
}

func (n *recordingNotifier) Notify(_ context.Context, ownerID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.owners = append(n.owners, ownerID)
}

func validTx() core.Transaction {
	return core.Transaction{
		OwnerID:     1,
		Description: "Mercado",
		Amount:      core.Money{Cents: 5000},
		Kind:        core.Expense,
		Date:        core.NewDate(2024, 3, 10),
		Category:    "Alimentação",
	}
}

func TestTransactionService_CreatePublishesAndNotifies(t *testing.T) {
	store := memory.New()
	pub := &recordingPublisher{}
	not := &recordingNotifier{}
	svc := services.NewTransactionService(store, pub, not)

	id, err := svc.Create(context.Background(), validTx())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == 0 {
		t.Fatal("Create returned zero id")
	}
	if len(pub.events) != 1 || pub.events[0] != "transaction:created" {
		t.Errorf("events = %v, want [transaction:created]", pub.events)
	}
	if len(not.owners) != 1 || not.owners[0] != 1 {
		t.Errorf("notified owners = %v, want [1]", not.owners)
	}
}

func TestTransactionService_CreateRejectsInvalid(t *testing.T) {
	store := memory.New()
	pub := &recordingPublisher{}
	svc := services.NewTransactionService(store, pub, nil)

	tx := validTx()
	tx.Amount.Cents = 0
	if _, err := svc.Create(context.Background(), tx); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Create err = %v, want ErrInvalidAmount", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("invalid create still published %v", pub.events)
	}
}

func TestTransactionService_PublishFailureDoesNotFailWrite(t *testing.T) {
	store := memory.New()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := services.NewTransactionService(store, pub, nil)

	id, err := svc.Create(context.Background(), validTx())
	if err != nil {
		t.Fatalf("Create with failing publisher: %v", err)
	}
	if _, err := svc.Get(context.Background(), 1, id); err != nil {
		t.Errorf("Get after create: %v", err)
	}
}

func TestTransactionService_UpdatePatchesOnlyGivenFields(t *testing.T) {
	store := memory.New()
	svc := services.NewTransactionService(store, nil, nil)
	ctx := context.Background()

	tx := validTx()
	tx.Installments = &core.Installments{Current: 1, Total: 3}
	id, err := svc.Create(ctx, tx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newAmount := core.Money{Cents: 7500}
	updated, err := svc.Update(ctx, 1, id, services.TransactionPatch{Amount: &newAmount})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Amount.Cents != 7500 {
		t.Errorf("amount = %d, want 7500", updated.Amount.Cents)
	}
	if updated.Description != "Mercado" {
		t.Errorf("description changed to %q", updated.Description)
	}
	if updated.Installments == nil || updated.Installments.Total != 3 {
		t.Errorf("installments = %+v, want total 3 preserved", updated.Installments)
	}

	updated, err = svc.Update(ctx, 1, id, services.TransactionPatch{ClearInstallments: true})
	if err != nil {
		t.Fatalf("Update clear installments: %v", err)
	}
	if updated.Installments != nil {
		t.Errorf("installments = %+v, want nil after clear", updated.Installments)
	}
}

func TestTransactionService_UpdateRejectsInvalidPatch(t *testing.T) {
	store := memory.New()
	svc := services.NewTransactionService(store, nil, nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, validTx())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	empty := ""
	if _, err := svc.Update(ctx, 1, id, services.TransactionPatch{Description: &empty}); !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("Update err = %v, want ErrEmptyDescription", err)
	}

	// Stored value must be untouched after a rejected patch.
	got, err := svc.Get(ctx, 1, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Description != "Mercado" {
		t.Errorf("description = %q, want Mercado", got.Description)
	}
}

func TestTransactionService_UpdateMissing(t *testing.T) {
	store := memory.New()
	svc := services.NewTransactionService(store, nil, nil)

	if _, err := svc.Update(context.Background(), 1, 42, services.TransactionPatch{}); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Update err = %v, want ErrNotFound", err)
	}
}

func TestTransactionService_Delete(t *testing.T) {
	store := memory.New()
	pub := &recordingPublisher{}
	svc := services.NewTransactionService(store, pub, nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, validTx())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, 1, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, 1, id); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if len(pub.events) != 2 || pub.events[1] != "transaction:deleted" {
		t.Errorf("events = %v, want created then deleted", pub.events)
	}
}

func TestCategoryService_SeedDefaults(t *testing.T) {
	store := memory.New()
	not := &recordingNotifier{}
	svc := services.NewCategoryService(store, nil, not)
	ctx := context.Background()

	svc.SeedDefaults(ctx, 7)

	cats, err := svc.List(ctx, 7)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cats) != len(core.DefaultCategories) {
		t.Errorf("seeded = %d, want %d", len(cats), len(core.DefaultCategories))
	}
	if len(not.owners) != 1 {
		t.Errorf("notifications = %d, want 1", len(not.owners))
	}
}

func TestFixedExpenseService_Update(t *testing.T) {
	store := memory.New()
	svc := services.NewFixedExpenseService(store, nil, nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, core.FixedExpense{
		OwnerID:     1,
		Description: "Aluguel",
		Amount:      core.Money{Cents: 150000},
		DayOfMonth:  5,
		Category:    "Moradia",
		Active:      true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	inactive := false
	fe, err := svc.Update(ctx, 1, id, services.FixedExpensePatch{Active: &inactive})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if fe.Active {
		t.Error("fixed expense still active after patch")
	}
	if fe.Amount.Cents != 150000 {
		t.Errorf("amount = %d, want unchanged 150000", fe.Amount.Cents)
	}

	badDay := 40
	if _, err := svc.Update(ctx, 1, id, services.FixedExpensePatch{DayOfMonth: &badDay}); !errors.Is(err, core.ErrInvalidDayOfMonth) {
		t.Errorf("Update err = %v, want ErrInvalidDayOfMonth", err)
	}
}
