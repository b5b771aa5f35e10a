package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

// ISODate is the wire and storage format for calendar dates.
const ISODate = "2006-01-02"

type (
	TransactionKind string

	// Date is a calendar date (UTC midnight). It carries no time-of-day
	// semantics even though it wraps time.Time.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Installments marks a transaction as one payment of a multi-payment
	// plan. Current is the position this record represents (1-based).
	Installments struct {
		Current int `json:"current"`
		Total   int `json:"total"`
	}

	Transaction struct {
		ID           int64           `json:"id"`
		OwnerID      int64           `json:"-"`
		Description  string          `json:"description"`
		Amount       Money           `json:"amount"`
		Kind         TransactionKind `json:"kind"`
		Date         Date            `json:"date"`
		Category     string          `json:"category"`
		Installments *Installments   `json:"installments,omitempty"`
	}

	FixedExpense struct {
		ID          int64  `json:"id"`
		OwnerID     int64  `json:"-"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		DayOfMonth  int    `json:"day_of_month"`
		Category    string `json:"category"`
		Active      bool   `json:"active"`
	}

	Category struct {
		ID      int64  `json:"id"`
		OwnerID int64  `json:"-"`
		Name    string `json:"name"`
		Color   string `json:"color"`
	}

	User struct {
		ID           int64  `json:"id"`
		Email        string `json:"email"`
		PasswordHash string `json:"-"`
	}
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrInvalidDayOfMonth   = errors.New("day of month must be between 1 and 31")
	ErrInvalidInstallments = errors.New("installment current must be between 1 and total")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCategory       = errors.New("empty category")
	ErrEmptyName           = errors.New("empty name")
)

// DefaultCategories is seeded for every new user.
var DefaultCategories = []Category{
	{Name: "Alimentação", Color: "#ef4444"},
	{Name: "Transporte", Color: "#3b82f6"},
	{Name: "Moradia", Color: "#10b981"},
	{Name: "Saúde", Color: "#f59e0b"},
	{Name: "Educação", Color: "#8b5cf6"},
	{Name: "Lazer", Color: "#ec4899"},
	{Name: "Vestuário", Color: "#06b6d4"},
	{Name: "Outros", Color: "#84cc16"},
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(ISODate, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date in ISO form.
func (d Date) String() string {
	return d.Format(ISODate)
}

// AddMonths advances the date by n calendar months. Day overflow normalizes
// forward (Jan 31 + 1 month = Mar 2/3), matching time.AddDate.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.AddDate(0, n, 0)}
}

// MarshalJSON renders the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (k TransactionKind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return ErrInvalidKind
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (i Installments) Validate() error {
	if i.Current < 1 || i.Total < i.Current {
		return ErrInvalidInstallments
	}
	return nil
}

// Remaining returns how many installments are still unpaid as of this record.
func (i Installments) Remaining() int {
	return i.Total - i.Current
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Installments != nil {
		if err := t.Installments.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsInstallmentExpense reports whether the transaction is an expense that
// belongs to an installment plan with payments still outstanding.
func (t Transaction) IsInstallmentExpense() bool {
	return t.Kind == Expense && t.Installments != nil && t.Installments.Remaining() > 0
}

func (fe FixedExpense) Validate() error {
	if len(strings.TrimSpace(fe.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(fe.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := fe.Amount.Validate(); err != nil {
		return err
	}
	if fe.DayOfMonth < 1 || fe.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	if strings.TrimSpace(fe.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}
