package services

import (
	"context"
	"fmt"

	"grana/internal/core"
	applog "grana/internal/log"
)

// TransactionService orchestrates transaction writes: store first, then
// best-effort change publication and snapshot notification.
type TransactionService struct {
	store     TransactionStore
	publisher ChangePublisher
	notifier  ChangeNotifier
}

func NewTransactionService(store TransactionStore, publisher ChangePublisher, notifier ChangeNotifier) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
	}
}

// TransactionPatch carries the fields of a partial update. Nil fields keep
// the stored value; ClearInstallments removes an existing plan.
type TransactionPatch struct {
	Description       *string
	Amount            *core.Money
	Kind              *core.TransactionKind
	Date              *core.Date
	Category          *string
	Installments      *core.Installments
	ClearInstallments bool
}

func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}
	s.afterWrite(ctx, EntityTransaction, OpCreated, id, tx.OwnerID)
	return id, nil
}

func (s *TransactionService) Get(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, ownerID, id)
}

func (s *TransactionService) List(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, ownerID)
}

func (s *TransactionService) Update(ctx context.Context, ownerID, id int64, patch TransactionPatch) (core.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Kind != nil {
		tx.Kind = *patch.Kind
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.ClearInstallments {
		tx.Installments = nil
	} else if patch.Installments != nil {
		cp := *patch.Installments
		tx.Installments = &cp
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.afterWrite(ctx, EntityTransaction, OpUpdated, id, ownerID)
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		return err
	}
	s.afterWrite(ctx, EntityTransaction, OpDeleted, id, ownerID)
	return nil
}

func (s *TransactionService) afterWrite(ctx context.Context, entity, op string, id, ownerID int64) {
	publishChange(ctx, s.publisher, entity, op, id, ownerID)
	if s.notifier != nil {
		s.notifier.Notify(ctx, ownerID)
	}
}

// publishChange publishes a change event without ever failing the request.
func publishChange(ctx context.Context, publisher ChangePublisher, entity, op string, id, ownerID int64) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishChange(ctx, entity, op, id, ownerID); err != nil {
		applog.FromContext(ctx).Error("Failed to publish change event",
			applog.FieldEntity, entity,
			applog.FieldOperation, op,
			applog.FieldEntityID, id,
			applog.FieldOwnerID, ownerID,
			applog.FieldError, err)
	}
}
