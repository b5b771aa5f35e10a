package services

import (
	"context"
	"fmt"

	"grana/internal/core"
)

// FixedExpenseService orchestrates recurring fixed-expense writes.
type FixedExpenseService struct {
	store     FixedExpenseStore
	publisher ChangePublisher
	notifier  ChangeNotifier
}

func NewFixedExpenseService(store FixedExpenseStore, publisher ChangePublisher, notifier ChangeNotifier) *FixedExpenseService {
	return &FixedExpenseService{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
	}
}

// FixedExpensePatch carries the fields of a partial update.
type FixedExpensePatch struct {
	Description *string
	Amount      *core.Money
	DayOfMonth  *int
	Category    *string
	Active      *bool
}

func (s *FixedExpenseService) Create(ctx context.Context, fe core.FixedExpense) (int64, error) {
	if err := fe.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.CreateFixedExpense(ctx, fe)
	if err != nil {
		return 0, fmt.Errorf("save fixed expense: %w", err)
	}
	s.afterWrite(ctx, OpCreated, id, fe.OwnerID)
	return id, nil
}

func (s *FixedExpenseService) List(ctx context.Context, ownerID int64) ([]core.FixedExpense, error) {
	return s.store.ListFixedExpenses(ctx, ownerID)
}

func (s *FixedExpenseService) Update(ctx context.Context, ownerID, id int64, patch FixedExpensePatch) (core.FixedExpense, error) {
	fe, err := s.store.GetFixedExpense(ctx, ownerID, id)
	if err != nil {
		return core.FixedExpense{}, err
	}

	if patch.Description != nil {
		fe.Description = *patch.Description
	}
	if patch.Amount != nil {
		fe.Amount = *patch.Amount
	}
	if patch.DayOfMonth != nil {
		fe.DayOfMonth = *patch.DayOfMonth
	}
	if patch.Category != nil {
		fe.Category = *patch.Category
	}
	if patch.Active != nil {
		fe.Active = *patch.Active
	}

	if err := fe.Validate(); err != nil {
		return core.FixedExpense{}, err
	}
	if err := s.store.UpdateFixedExpense(ctx, fe); err != nil {
		return core.FixedExpense{}, fmt.Errorf("update fixed expense: %w", err)
	}
	s.afterWrite(ctx, OpUpdated, id, ownerID)
	return fe, nil
}

func (s *FixedExpenseService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteFixedExpense(ctx, ownerID, id); err != nil {
		return err
	}
	s.afterWrite(ctx, OpDeleted, id, ownerID)
	return nil
}

func (s *FixedExpenseService) afterWrite(ctx context.Context, op string, id, ownerID int64) {
	publishChange(ctx, s.publisher, EntityFixedExpense, op, id, ownerID)
	if s.notifier != nil {
		s.notifier.Notify(ctx, ownerID)
	}
}
