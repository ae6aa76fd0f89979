package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"budget/internal/report"
)

// renderPartial serves a cached report partial, rendering and caching
// it on miss. Keys are per user, so one user's mutation never evicts
// another's view.
func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, userID, partial, tmpl string, data func() any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	key := s.partialKey(userID, partial)
	if html, found := s.partialCache.Get(key); found {
		slog.DebugContext(r.Context(), "Partial cache hit", "partial", partial, "user_id", userID)
		_, _ = w.Write([]byte(html))
		return
	}

	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, tmpl, data()); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", tmpl)
		_, _ = w.Write([]byte(`<div class="error">Could not render this view</div>`))
		return
	}

	s.partialCache.Set(key, buf.String())
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.renderPartial(w, r, user.ID, "stats", "stats.html", func() any {
		summary := report.Summarize(s.ledger.List(r.Context(), user.ID), time.Now())
		return struct {
			TotalIncome   string
			TotalExpenses string
			Balance       string
			MonthIncome   string
			MonthExpenses string
			Negative      bool
		}{
			TotalIncome:   formatAmount(summary.TotalIncome.Cents),
			TotalExpenses: formatAmount(summary.TotalExpenses.Cents),
			Balance:       formatAmount(summary.Balance.Cents),
			MonthIncome:   formatAmount(summary.MonthIncome.Cents),
			MonthExpenses: formatAmount(summary.MonthExpenses.Cents),
			Negative:      summary.Balance.Cents < 0,
		}
	})
}

type barRow struct {
	Label  string
	Amount string
	Width  int
}

// barWidth scales a value to a 0-100 percent width against the largest
// value in the series, keeping tiny nonzero bars visible.
func barWidth(cents, maxCents int64) int {
	if maxCents <= 0 || cents <= 0 {
		return 0
	}
	width := int((cents*100 + maxCents/2) / maxCents)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

func (s *Server) handleAnalyticsMonthly(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.renderPartial(w, r, user.ID, "monthly", "analytics_monthly.html", func() any {
		rows := report.MonthlySeries(s.ledger.List(r.Context(), user.ID))

		var maxCents int64
		for _, row := range rows {
			if row.Income.Cents > maxCents {
				maxCents = row.Income.Cents
			}
			if row.Expenses.Cents > maxCents {
				maxCents = row.Expenses.Cents
			}
		}

		type monthRow struct {
			Month         string
			Income        string
			Expenses      string
			Net           string
			IncomeWidth   int
			ExpensesWidth int
		}
		data := struct{ Rows []monthRow }{}
		for _, row := range rows {
			data.Rows = append(data.Rows, monthRow{
				Month:         row.Month,
				Income:        formatAmount(row.Income.Cents),
				Expenses:      formatAmount(row.Expenses.Cents),
				Net:           formatAmount(row.Net.Cents),
				IncomeWidth:   barWidth(row.Income.Cents, maxCents),
				ExpensesWidth: barWidth(row.Expenses.Cents, maxCents),
			})
		}
		return data
	})
}

func (s *Server) handleAnalyticsCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.renderPartial(w, r, user.ID, "categories", "analytics_categories.html", func() any {
		rows := report.CategoryBreakdown(s.ledger.List(r.Context(), user.ID))

		var maxCents int64
		for _, row := range rows {
			if row.Total.Cents > maxCents {
				maxCents = row.Total.Cents
			}
		}

		type categoryRow struct {
			Category string
			Income   string
			Expenses string
			Width    int
		}
		data := struct{ Rows []categoryRow }{}
		for _, row := range rows {
			data.Rows = append(data.Rows, categoryRow{
				Category: row.Category,
				Income:   formatAmount(row.Income.Cents),
				Expenses: formatAmount(row.Expenses.Cents),
				Width:    barWidth(row.Total.Cents, maxCents),
			})
		}
		return data
	})
}

func (s *Server) handleAnalyticsExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.renderPartial(w, r, user.ID, "expenses", "analytics_expenses.html", func() any {
		shares := report.ExpenseDistribution(s.ledger.List(r.Context(), user.ID))

		var totalCents int64
		for _, share := range shares {
			totalCents += share.Amount.Cents
		}

		type shareRow struct {
			Category string
			Amount   string
			Percent  string
			Width    int
		}
		data := struct{ Rows []shareRow }{}
		for _, share := range shares {
			percent := 0.0
			if totalCents > 0 {
				percent = float64(share.Amount.Cents) * 100 / float64(totalCents)
			}
			data.Rows = append(data.Rows, shareRow{
				Category: share.Category,
				Amount:   formatAmount(share.Amount.Cents),
				Percent:  fmt.Sprintf("%.1f%%", percent),
				Width:    barWidth(share.Amount.Cents, totalCents),
			})
		}
		return data
	})
}
