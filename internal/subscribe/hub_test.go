package subscribe

import (
	"context"
	"testing"

	"grana/internal/core"
	"grana/internal/storage/memory"
)

func TestHub_SubscribeDeliversInitialSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	hub := NewHub(NewLoader(store, store, store))

	ownerID, _ := store.CreateUser(ctx, core.User{Email: "a@example.com", PasswordHash: "x"})
	_, err := store.CreateTransaction(ctx, core.Transaction{
		OwnerID:     ownerID,
		Description: "groceries",
		Amount:      core.Money{Cents: 5000},
		Kind:        core.Expense,
		Date:        core.NewDate(2024, 1, 3),
		Category:    "Alimentação",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	ch, cancel, err := hub.Subscribe(ctx, ownerID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	snap := <-ch
	if snap.OwnerID != ownerID {
		t.Errorf("owner = %d, want %d", snap.OwnerID, ownerID)
	}
	if len(snap.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(snap.Transactions))
	}
	if snap.Transactions[0].Description != "groceries" {
		t.Errorf("description = %q", snap.Transactions[0].Description)
	}
}

func TestHub_NotifyDeliversFreshSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	hub := NewHub(NewLoader(store, store, store))

	ownerID, _ := store.CreateUser(ctx, core.User{Email: "a@example.com", PasswordHash: "x"})

	ch, cancel, err := hub.Subscribe(ctx, ownerID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()
	<-ch // drain initial

	_, _ = store.CreateFixedExpense(ctx, core.FixedExpense{
		OwnerID:     ownerID,
		Description: "rent",
		Amount:      core.Money{Cents: 120000},
		DayOfMonth:  5,
		Category:    "Moradia",
		Active:      true,
	})
	hub.Notify(ctx, ownerID)

	snap := <-ch
	if len(snap.FixedExpenses) != 1 {
		t.Fatalf("fixed expenses = %d, want 1", len(snap.FixedExpenses))
	}
}

func TestHub_NotifyCoalescesWhenSubscriberLags(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	hub := NewHub(NewLoader(store, store, store))

	ownerID, _ := store.CreateUser(ctx, core.User{Email: "a@example.com", PasswordHash: "x"})

	ch, cancel, err := hub.Subscribe(ctx, ownerID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()
	// Do not drain: initial snapshot still pending.

	for i := 0; i < 3; i++ {
		_, _ = store.CreateCategory(ctx, core.Category{OwnerID: ownerID, Name: string(rune('A' + i))})
		hub.Notify(ctx, ownerID)
	}

	// The pending snapshot must be the latest state, not a stale queue entry.
	snap := <-ch
	if len(snap.Categories) != 3 {
		t.Errorf("categories = %d, want 3 (latest snapshot)", len(snap.Categories))
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected queued snapshot: %+v", extra)
	default:
	}
}

func TestHub_NotifyWithoutSubscribersIsNoop(t *testing.T) {
	store := memory.New()
	hub := NewHub(NewLoader(store, store, store))
	hub.Notify(context.Background(), 42) // must not panic or block
}
