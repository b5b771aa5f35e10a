// Package services provides business logic and orchestration between
// storage, change-event publication and snapshot subscribers.
package services

import (
	"context"
	"errors"

	"grana/internal/core"
)

var (
	// ErrNotFound is returned by stores when an id does not exist for the owner.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned by CreateUser when the email is taken.
	// Stores enforce this, so concurrent registrations cannot race past a
	// handler-level existence check.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store ports. Both the SQLite repository and the in-memory store satisfy
// these; services and handlers only ever see the interfaces.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (int64, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		ListUserIDs(ctx context.Context) ([]int64, error)
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error)
		GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error)
		ListTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, ownerID, id int64) error
	}

	FixedExpenseStore interface {
		CreateFixedExpense(ctx context.Context, fe core.FixedExpense) (int64, error)
		GetFixedExpense(ctx context.Context, ownerID, id int64) (core.FixedExpense, error)
		ListFixedExpenses(ctx context.Context, ownerID int64) ([]core.FixedExpense, error)
		UpdateFixedExpense(ctx context.Context, fe core.FixedExpense) error
		DeleteFixedExpense(ctx context.Context, ownerID, id int64) error
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) (int64, error)
		ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, ownerID, id int64) error
	}

	// Store is the full backend surface the application needs.
	Store interface {
		UserStore
		TransactionStore
		FixedExpenseStore
		CategoryStore
	}
)

// ChangePublisher publishes entity change events. Publication is best effort:
// services log failures but never fail the originating request.
type ChangePublisher interface {
	PublishChange(ctx context.Context, entity, op string, id, ownerID int64) error
}

// ChangeNotifier is told after every successful write so live snapshot
// subscribers can be refreshed.
type ChangeNotifier interface {
	Notify(ctx context.Context, ownerID int64)
}

// Change event vocabulary shared with the AMQP layer and the worker.
const (
	EntityTransaction  = "transaction"
	EntityFixedExpense = "fixed_expense"
	EntityCategory     = "category"

	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)
