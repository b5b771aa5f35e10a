// Package memory provides an in-process store used as the default backend
// and in tests. It mirrors the SQLite repository's semantics, including
// owner scoping and ErrNotFound.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"grana/internal/core"
	"grana/internal/services"
)

type Store struct {
	mu     sync.Mutex
	nextID int64

	users         map[int64]core.User
	transactions  map[int64]core.Transaction
	fixedExpenses map[int64]core.FixedExpense
	categories    map[int64]core.Category
}

var _ services.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:         make(map[int64]core.User),
		transactions:  make(map[int64]core.Transaction),
		fixedExpenses: make(map[int64]core.FixedExpense),
		categories:    make(map[int64]core.Category),
	}
}

func (s *Store) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, u core.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return 0, services.ErrDuplicateEmail
		}
	}
	u.ID = s.nextIDLocked()
	s.users[u.ID] = u
	return u.ID, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, services.ErrNotFound
}

func (s *Store) ListUserIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// --- transactions ---

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextIDLocked()
	if tx.Installments != nil {
		cp := *tx.Installments
		tx.Installments = &cp
	}
	s.transactions[tx.ID] = tx
	return tx.ID, nil
}

func (s *Store) GetTransaction(_ context.Context, ownerID, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.OwnerID != ownerID {
		return core.Transaction{}, services.ErrNotFound
	}
	return cloneTransaction(tx), nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var txs []core.Transaction
	for _, tx := range s.transactions {
		if tx.OwnerID == ownerID {
			txs = append(txs, cloneTransaction(tx))
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.After(txs[j].Date.Time)
		}
		return txs[i].ID > txs[j].ID
	})
	return txs, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[tx.ID]
	if !ok || existing.OwnerID != tx.OwnerID {
		return services.ErrNotFound
	}
	if tx.Installments != nil {
		cp := *tx.Installments
		tx.Installments = &cp
	}
	s.transactions[tx.ID] = tx
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.OwnerID != ownerID {
		return services.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

// --- fixed expenses ---

func (s *Store) CreateFixedExpense(_ context.Context, fe core.FixedExpense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fe.ID = s.nextIDLocked()
	s.fixedExpenses[fe.ID] = fe
	return fe.ID, nil
}

func (s *Store) GetFixedExpense(_ context.Context, ownerID, id int64) (core.FixedExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fe, ok := s.fixedExpenses[id]
	if !ok || fe.OwnerID != ownerID {
		return core.FixedExpense{}, services.ErrNotFound
	}
	return fe, nil
}

func (s *Store) ListFixedExpenses(_ context.Context, ownerID int64) ([]core.FixedExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var fes []core.FixedExpense
	for _, fe := range s.fixedExpenses {
		if fe.OwnerID == ownerID {
			fes = append(fes, fe)
		}
	}
	sort.Slice(fes, func(i, j int) bool {
		if fes[i].DayOfMonth != fes[j].DayOfMonth {
			return fes[i].DayOfMonth < fes[j].DayOfMonth
		}
		return fes[i].ID < fes[j].ID
	})
	return fes, nil
}

func (s *Store) UpdateFixedExpense(_ context.Context, fe core.FixedExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.fixedExpenses[fe.ID]
	if !ok || existing.OwnerID != fe.OwnerID {
		return services.ErrNotFound
	}
	s.fixedExpenses[fe.ID] = fe
	return nil
}

func (s *Store) DeleteFixedExpense(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fe, ok := s.fixedExpenses[id]
	if !ok || fe.OwnerID != ownerID {
		return services.ErrNotFound
	}
	delete(s.fixedExpenses, id)
	return nil
}

// --- categories ---

func (s *Store) CreateCategory(_ context.Context, c core.Category) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextIDLocked()
	s.categories[c.ID] = c
	return c.ID, nil
}

func (s *Store) ListCategories(_ context.Context, ownerID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cats []core.Category
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			cats = append(cats, c)
		}
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok || existing.OwnerID != c.OwnerID {
		return services.ErrNotFound
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return services.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func cloneTransaction(tx core.Transaction) core.Transaction {
	if tx.Installments != nil {
		cp := *tx.Installments
		tx.Installments = &cp
	}
	return tx
}
