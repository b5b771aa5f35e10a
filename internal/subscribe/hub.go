// Package subscribe implements per-owner live snapshots: every change to an
// owner's data produces a fresh full copy of their collections, delivered to
// all of that owner's subscribers. This replaces the original product's
// remote live-query subscriptions with an explicit repository-backed hub.
package subscribe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"grana/internal/core"
	applog "grana/internal/log"
	"grana/internal/services"
)

// Snapshot is a full, immutable copy of one owner's collections.
type Snapshot struct {
	OwnerID       int64               `json:"owner_id"`
	Transactions  []core.Transaction  `json:"transactions"`
	FixedExpenses []core.FixedExpense `json:"fixed_expenses"`
	Categories    []core.Category     `json:"categories"`
	TakenAt       time.Time           `json:"taken_at"`
}

// Loader assembles snapshots from the backing stores.
type Loader struct {
	transactions  services.TransactionStore
	fixedExpenses services.FixedExpenseStore
	categories    services.CategoryStore
}

func NewLoader(txs services.TransactionStore, fes services.FixedExpenseStore, cats services.CategoryStore) *Loader {
	return &Loader{transactions: txs, fixedExpenses: fes, categories: cats}
}

func (l *Loader) Load(ctx context.Context, ownerID int64) (Snapshot, error) {
	txs, err := l.transactions.ListTransactions(ctx, ownerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	fes, err := l.fixedExpenses.ListFixedExpenses(ctx, ownerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load fixed expenses: %w", err)
	}
	cats, err := l.categories.ListCategories(ctx, ownerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load categories: %w", err)
	}
	return Snapshot{
		OwnerID:       ownerID,
		Transactions:  txs,
		FixedExpenses: fes,
		Categories:    cats,
		TakenAt:       time.Now().UTC(),
	}, nil
}

// Hub fans snapshots out to subscribers. Each subscriber channel holds at
// most one pending snapshot; when a subscriber lags, older snapshots are
// replaced by newer ones rather than queued.
type Hub struct {
	loader *Loader

	mu   sync.Mutex
	subs map[int64]map[chan Snapshot]struct{}
}

var _ services.ChangeNotifier = (*Hub)(nil)

func NewHub(loader *Loader) *Hub {
	return &Hub{
		loader: loader,
		subs:   make(map[int64]map[chan Snapshot]struct{}),
	}
}

// Subscribe registers for an owner's snapshots. The current snapshot is
// delivered immediately; the returned cancel function must be called when
// the consumer is done.
func (h *Hub) Subscribe(ctx context.Context, ownerID int64) (<-chan Snapshot, func(), error) {
	snap, err := h.loader.Load(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan Snapshot, 1)
	ch <- snap

	h.mu.Lock()
	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[chan Snapshot]struct{})
	}
	h.subs[ownerID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[ownerID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, ownerID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel, nil
}

// Notify implements services.ChangeNotifier. It loads a fresh snapshot and
// delivers it to every subscriber of the owner, coalescing when a subscriber
// still holds an undelivered one.
func (h *Hub) Notify(ctx context.Context, ownerID int64) {
	h.mu.Lock()
	n := len(h.subs[ownerID])
	h.mu.Unlock()
	if n == 0 {
		return
	}

	snap, err := h.loader.Load(ctx, ownerID)
	if err != nil {
		applog.FromContext(ctx).Error("Failed to load snapshot for subscribers",
			applog.FieldOwnerID, ownerID,
			applog.FieldError, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[ownerID] {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
