// Package report derives display aggregates from a transaction sequence.
// Every function is pure: no stored state, deterministic for a given
// input and evaluation instant, safe to recompute on every call.
package report

import (
	"sort"
	"time"

	"budget/internal/core"
)

// Summary holds the headline figures for the dashboard cards.
type Summary struct {
	TotalIncome   core.Money
	TotalExpenses core.Money
	Balance       core.Money
	MonthIncome   core.Money
	MonthExpenses core.Money
}

// MonthRow is one point of the monthly trend series.
type MonthRow struct {
	Month    string // YYYY-MM
	Income   core.Money
	Expenses core.Money
	Net      core.Money
}

// CategoryRow aggregates income and expenses for one category label.
type CategoryRow struct {
	Category string
	Income   core.Money
	Expenses core.Money
	Total    core.Money
}

// CategoryShare is one slice of the expense distribution.
type CategoryShare struct {
	Category string
	Amount   core.Money
}

// Summarize computes all-time totals plus income/expense sums for the
// calendar month containing now. An empty input yields all zeros.
func Summarize(txs []core.Transaction, now time.Time) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Kind {
		case core.Income:
			s.TotalIncome.Cents += t.Amount.Cents
			if t.Date.SameMonth(now) {
				s.MonthIncome.Cents += t.Amount.Cents
			}
		case core.Expense:
			s.TotalExpenses.Cents += t.Amount.Cents
			if t.Date.SameMonth(now) {
				s.MonthExpenses.Cents += t.Amount.Cents
			}
		}
	}
	s.Balance.Cents = s.TotalIncome.Cents - s.TotalExpenses.Cents
	return s
}

// MonthlySeries groups transactions by calendar month and returns one
// row per distinct month, ascending by YYYY-MM key. Rows for months
// with only one kind still carry a zero for the other.
func MonthlySeries(txs []core.Transaction) []MonthRow {
	index := make(map[string]int)
	rows := make([]MonthRow, 0)
	for _, t := range txs {
		key := t.Date.MonthKey()
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, MonthRow{Month: key})
		}
		if t.Kind == core.Income {
			rows[i].Income.Cents += t.Amount.Cents
		} else {
			rows[i].Expenses.Cents += t.Amount.Cents
		}
		rows[i].Net.Cents = rows[i].Income.Cents - rows[i].Expenses.Cents
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Month < rows[b].Month
	})
	return rows
}

// CategoryBreakdown groups transactions by category regardless of kind
// and returns rows sorted descending by income+expense total. Ties keep
// first-encountered order.
func CategoryBreakdown(txs []core.Transaction) []CategoryRow {
	index := make(map[string]int)
	rows := make([]CategoryRow, 0)
	for _, t := range txs {
		i, ok := index[t.Category]
		if !ok {
			i = len(rows)
			index[t.Category] = i
			rows = append(rows, CategoryRow{Category: t.Category})
		}
		if t.Kind == core.Income {
			rows[i].Income.Cents += t.Amount.Cents
		} else {
			rows[i].Expenses.Cents += t.Amount.Cents
		}
		rows[i].Total.Cents = rows[i].Income.Cents + rows[i].Expenses.Cents
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Total.Cents > rows[b].Total.Cents
	})
	return rows
}

// ExpenseDistribution sums expense amounts per category, descending by
// amount, for proportional (share-of-whole) display. Income is ignored.
func ExpenseDistribution(txs []core.Transaction) []CategoryShare {
	index := make(map[string]int)
	rows := make([]CategoryShare, 0)
	for _, t := range txs {
		if t.Kind != core.Expense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(rows)
			index[t.Category] = i
			rows = append(rows, CategoryShare{Category: t.Category})
		}
		rows[i].Amount.Cents += t.Amount.Cents
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Amount.Cents > rows[b].Amount.Cents
	})
	return rows
}
