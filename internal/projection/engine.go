// Package projection computes forward-looking expense projections over
// in-memory collections. All functions are pure: they take snapshots plus an
// explicit reference date and never touch storage or the clock.
package projection

import (
	"fmt"
	"math"
	"sort"
	"time"

	"grana/internal/core"
)

// WindowMonths is the length of the projection window: the calendar month
// containing the reference date plus the following eleven.
const WindowMonths = 12

// MonthProjection is one month of the forward projection.
type MonthProjection struct {
	Key          string  `json:"key"` // YYYY-MM
	Month        string  `json:"month"`
	Year         int     `json:"year"`
	Fixed        float64 `json:"fixed_expenses"`
	Installments float64 `json:"installments"`
	Total        float64 `json:"total"`
}

// CategoryProjection is the projected total attributed to one category.
type CategoryProjection struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Options carries the sentinel labels used when a transaction or fixed
// expense references a category that is not in the supplied category list.
type Options struct {
	FallbackCategory      string
	FixedFallbackCategory string
}

// DefaultOptions returns the labels the original product shows.
func DefaultOptions() Options {
	return Options{
		FallbackCategory:      "Outros",
		FixedFallbackCategory: "Despesas Fixas",
	}
}

var monthNamesPT = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// MonthName returns the pt-BR display name for a month (1-12).
func MonthName(month time.Month) string {
	return monthNamesPT[int(month)-1]
}

type monthBucket struct {
	fixed        float64
	installments float64
}

// ByMonth projects fixed and installment expenses over the 12 months starting
// at the month containing ref. The result always has exactly WindowMonths
// entries in chronological order; amounts accumulate unrounded and are rounded
// to two decimals only on output.
func ByMonth(fixed []core.FixedExpense, txs []core.Transaction, ref core.Date) []MonthProjection {
	start := windowStart(ref)
	end := windowEnd(ref)

	keys := make([]string, 0, WindowMonths)
	buckets := make(map[string]*monthBucket, WindowMonths)
	for i := 0; i < WindowMonths; i++ {
		k := monthKey(start.AddMonths(i).Time)
		keys = append(keys, k)
		buckets[k] = &monthBucket{}
	}

	// Every active fixed expense is due once per window month. A day-of-month
	// beyond the month's length still counts for that month; it never rolls
	// into the next one.
	for _, fe := range fixed {
		if !fe.Active {
			continue
		}
		amount := fe.Amount.Float()
		for _, k := range keys {
			b := buckets[k]
			b.fixed += amount
		}
	}

	for _, tx := range txs {
		if !tx.IsInstallmentExpense() {
			continue
		}
		plan := tx.Installments
		perInstallment := tx.Amount.Float() / float64(plan.Total)
		// The first projected installment lands Current months after the
		// transaction's own date. This mirrors the shipped behavior; see the
		// open question recorded in DESIGN.md before changing it.
		for i := plan.Current; i < plan.Total; i++ {
			due := tx.Date.AddMonths(i)
			if due.After(end.Time) {
				break
			}
			b, ok := buckets[monthKey(due.Time)]
			if !ok {
				continue
			}
			b.installments += perInstallment
		}
	}

	out := make([]MonthProjection, 0, WindowMonths)
	for i, k := range keys {
		m := start.AddMonths(i)
		b := buckets[k]
		out = append(out, MonthProjection{
			Key:          k,
			Month:        MonthName(m.Time.Month()),
			Year:         m.Year(),
			Fixed:        round2(b.fixed),
			Installments: round2(b.installments),
			Total:        round2(b.fixed + b.installments),
		})
	}
	return out
}

// ByCategory aggregates the same projection per category instead of per month.
// Installments are window-capped exactly as in ByMonth; each active fixed
// expense contributes its full amount once, with no window cutoff. Output is
// sorted by descending total, ties broken by category name.
func ByCategory(fixed []core.FixedExpense, txs []core.Transaction, cats []core.Category, ref core.Date, opts Options) []CategoryProjection {
	known := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		known[c.Name] = struct{}{}
	}

	start := windowStart(ref)
	end := windowEnd(ref)
	inWindow := make(map[string]struct{}, WindowMonths)
	for i := 0; i < WindowMonths; i++ {
		inWindow[monthKey(start.AddMonths(i).Time)] = struct{}{}
	}

	totals := make(map[string]float64)

	for _, tx := range txs {
		if !tx.IsInstallmentExpense() {
			continue
		}
		plan := tx.Installments
		perInstallment := tx.Amount.Float() / float64(plan.Total)
		remaining := 0
		for i := plan.Current; i < plan.Total; i++ {
			due := tx.Date.AddMonths(i)
			if due.After(end.Time) {
				break
			}
			if _, ok := inWindow[monthKey(due.Time)]; ok {
				remaining++
			}
		}
		if remaining == 0 {
			continue
		}
		label := tx.Category
		if _, ok := known[label]; !ok {
			label = opts.FallbackCategory
		}
		totals[label] += perInstallment * float64(remaining)
	}

	for _, fe := range fixed {
		if !fe.Active {
			continue
		}
		label := fe.Category
		if _, ok := known[label]; !ok {
			label = opts.FixedFallbackCategory
		}
		totals[label] += fe.Amount.Float()
	}

	out := make([]CategoryProjection, 0, len(totals))
	for name, total := range totals {
		out = append(out, CategoryProjection{Category: name, Total: round2(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// windowStart returns the first day of the month containing ref.
func windowStart(ref core.Date) core.Date {
	return core.NewDate(ref.Year(), int(ref.Time.Month()), 1)
}

// windowEnd returns the last day of the final window month.
func windowEnd(ref core.Date) core.Date {
	return core.Date{Time: time.Date(ref.Year(), ref.Time.Month()+WindowMonths, 0, 0, 0, 0, 0, time.UTC)}
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
