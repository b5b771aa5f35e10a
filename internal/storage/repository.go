// Package storage implements the persistent SQLite backend.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"grana/internal/core"
	applog "grana/internal/log"
	"grana/internal/services"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type SQLiteRepository struct {
	db *sql.DB
}

var _ services.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// runMigrations brings the schema up to date. migrate owns its database
// handle for the duration: its driver locks the connection it is given, and
// closing the instance also closes that connection, so the main pool stays
// out of it.
func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer migrateDB.Close()

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("wrap sqlite connection: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("build migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES (?, ?)`,
		strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return 0, services.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id: %w", err)
	}
	applog.FromContext(ctx).Info("User created", applog.FieldOwnerID, id)
	return id, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, services.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	cur, tot := installmentColumns(tx.Installments)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (owner_id, description, amount_cents, kind, date, category, installment_current, installment_total)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.OwnerID, tx.Description, tx.Amount.Cents, string(tx.Kind), tx.Date.String(), tx.Category, cur, tot)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, description, amount_cents, kind, date, category, installment_current, installment_total
		 FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, services.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, description, amount_cents, kind, date, category, installment_current, installment_total
		 FROM transactions WHERE owner_id = ? ORDER BY date DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	cur, tot := installmentColumns(tx.Installments)
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET description = ?, amount_cents = ?, kind = ?, date = ?, category = ?,
		 installment_current = ?, installment_total = ?
		 WHERE id = ? AND owner_id = ?`,
		tx.Description, tx.Amount.Cents, string(tx.Kind), tx.Date.String(), tx.Category, cur, tot, tx.ID, tx.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// --- fixed expenses ---

func (r *SQLiteRepository) CreateFixedExpense(ctx context.Context, fe core.FixedExpense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO fixed_expenses (owner_id, description, amount_cents, day_of_month, category, active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fe.OwnerID, fe.Description, fe.Amount.Cents, fe.DayOfMonth, fe.Category, boolToInt(fe.Active))
	if err != nil {
		return 0, fmt.Errorf("create fixed expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fixed expense id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetFixedExpense(ctx context.Context, ownerID, id int64) (core.FixedExpense, error) {
	var fe core.FixedExpense
	var active int
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, description, amount_cents, day_of_month, category, active
		 FROM fixed_expenses WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&fe.ID, &fe.OwnerID, &fe.Description, &fe.Amount.Cents, &fe.DayOfMonth, &fe.Category, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FixedExpense{}, services.ErrNotFound
	}
	if err != nil {
		return core.FixedExpense{}, fmt.Errorf("get fixed expense: %w", err)
	}
	fe.Active = active != 0
	return fe, nil
}

func (r *SQLiteRepository) ListFixedExpenses(ctx context.Context, ownerID int64) ([]core.FixedExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, description, amount_cents, day_of_month, category, active
		 FROM fixed_expenses WHERE owner_id = ? ORDER BY day_of_month, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list fixed expenses: %w", err)
	}
	defer rows.Close()

	var fes []core.FixedExpense
	for rows.Next() {
		var fe core.FixedExpense
		var active int
		if err := rows.Scan(&fe.ID, &fe.OwnerID, &fe.Description, &fe.Amount.Cents, &fe.DayOfMonth, &fe.Category, &active); err != nil {
			return nil, fmt.Errorf("scan fixed expense: %w", err)
		}
		fe.Active = active != 0
		fes = append(fes, fe)
	}
	return fes, rows.Err()
}

func (r *SQLiteRepository) UpdateFixedExpense(ctx context.Context, fe core.FixedExpense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fixed_expenses SET description = ?, amount_cents = ?, day_of_month = ?, category = ?, active = ?
		 WHERE id = ? AND owner_id = ?`,
		fe.Description, fe.Amount.Cents, fe.DayOfMonth, fe.Category, boolToInt(fe.Active), fe.ID, fe.OwnerID)
	if err != nil {
		return fmt.Errorf("update fixed expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteFixedExpense(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM fixed_expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete fixed expense: %w", err)
	}
	return requireRow(res)
}

// --- categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (owner_id, name, color) VALUES (?, ?, ?)`,
		c.OwnerID, c.Name, c.Color)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, color FROM categories WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ? WHERE id = ? AND owner_id = ?`,
		c.Name, c.Color, c.ID, c.OwnerID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var kind, date string
	var cur, tot sql.NullInt64
	if err := row.Scan(&tx.ID, &tx.OwnerID, &tx.Description, &tx.Amount.Cents, &kind, &date, &tx.Category, &cur, &tot); err != nil {
		return core.Transaction{}, err
	}
	tx.Kind = core.TransactionKind(kind)
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	tx.Date = d
	if cur.Valid && tot.Valid {
		tx.Installments = &core.Installments{Current: int(cur.Int64), Total: int(tot.Int64)}
	}
	return tx, nil
}

func installmentColumns(in *core.Installments) (cur, tot sql.NullInt64) {
	if in == nil {
		return
	}
	cur = sql.NullInt64{Int64: int64(in.Current), Valid: true}
	tot = sql.NullInt64{Int64: int64(in.Total), Valid: true}
	return
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return services.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
