package core

import (
	"sort"
	"time"
)

// CategoryAmount is an expense total aggregated by category name.
type CategoryAmount struct {
	Name   string  `json:"category"`
	Amount float64 `json:"amount"`
}

// dayLayout renders the calendar-date portion of a timestamp. Day
// comparison is done on this rendering without zone conversion, matching
// the original ISO-prefix behavior.
const dayLayout = "2006-01-02"

// TotalIncome sums the amounts of all income transactions.
func TotalIncome(txns []Transaction) float64 {
	var sum float64
	for _, t := range txns {
		if t.Type == Income {
			sum += t.Amount
		}
	}
	return sum
}

// TotalExpense sums the amounts of all expense transactions.
func TotalExpense(txns []Transaction) float64 {
	var sum float64
	for _, t := range txns {
		if t.Type == Expense {
			sum += t.Amount
		}
	}
	return sum
}

// Balance is total income minus total expense. It may be negative.
func Balance(txns []Transaction) float64 {
	return TotalIncome(txns) - TotalExpense(txns)
}

// SpentToday sums expense amounts whose date falls on the same calendar
// day as ref.
func SpentToday(txns []Transaction, ref time.Time) float64 {
	day := ref.Format(dayLayout)
	var sum float64
	for _, t := range txns {
		if t.Type == Expense && t.Date.Format(dayLayout) == day {
			sum += t.Amount
		}
	}
	return sum
}

// CategoryBreakdown groups expense transactions by exact category string
// and sums their amounts. Entries are sorted by amount descending; ties
// keep first-encountered order. Income transactions are excluded. The
// result is empty (never nil-vs-error) when there are no expenses.
func CategoryBreakdown(txns []Transaction) []CategoryAmount {
	totals := make(map[string]float64)
	order := make([]string, 0)
	for _, t := range txns {
		if t.Type != Expense {
			continue
		}
		if _, seen := totals[t.Category]; !seen {
			order = append(order, t.Category)
		}
		totals[t.Category] += t.Amount
	}

	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryAmount{Name: name, Amount: totals[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	return out
}
