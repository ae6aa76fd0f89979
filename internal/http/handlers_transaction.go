package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"budget/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	data := struct {
		Name              string
		IncomeCategories  []string
		ExpenseCategories []string
	}{
		Name:              user.Name,
		IncomeCategories:  core.IncomeCategories,
		ExpenseCategories: core.ExpenseCategories,
	}
	s.render(w, r, "dashboard.html", data)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		writeErrorFragment(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	kind := core.Kind(sanitizeInput(r.Form.Get("kind")))
	category := sanitizeInput(r.Form.Get("category"))
	note := sanitizeInput(r.Form.Get("note"))

	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		writeErrorFragment(w, http.StatusUnprocessableEntity, "Amount must be a positive number")
		return
	}
	date, err := core.ParseDate(r.Form.Get("date"))
	if err != nil {
		writeErrorFragment(w, http.StatusUnprocessableEntity, "Date must be YYYY-MM-DD")
		return
	}

	tx, err := s.ledger.Add(r.Context(), user.ID, kind, core.Money{Cents: cents}, category, date, note)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAmount):
			writeErrorFragment(w, http.StatusUnprocessableEntity, "Amount must be a positive number")
		case errors.Is(err, core.ErrMissingField):
			writeErrorFragment(w, http.StatusUnprocessableEntity, "Kind, amount, category, and date are all required")
		default:
			slog.ErrorContext(r.Context(), "Transaction create failed", "error", err, "user_id", user.ID)
			writeErrorFragment(w, http.StatusInternalServerError, "Could not save the transaction")
		}
		return
	}

	s.invalidatePartials(user.ID)
	w.Header().Set("HX-Trigger", `{"transaction:changed": {"id": "`+tx.ID+`"}}`)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Recorded ` + template.HTMLEscapeString(string(tx.Kind)) +
		` of ` + template.HTMLEscapeString(formatAmount(tx.Amount.Cents)) +
		` (` + template.HTMLEscapeString(tx.Category) + `)</div>`))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		writeErrorFragment(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		writeErrorFragment(w, http.StatusUnprocessableEntity, "Missing transaction id")
		return
	}

	if err := s.ledger.Delete(r.Context(), user.ID, id); err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete failed", "error", err, "transaction_id", id, "user_id", user.ID)
		writeErrorFragment(w, http.StatusInternalServerError, "Could not delete the transaction")
		return
	}

	s.invalidatePartials(user.ID)
	w.Header().Set("HX-Trigger", `{"transaction:changed": {"id": "`+id+`"}}`)
	w.WriteHeader(http.StatusOK)
}

// transactionRow is the view model for one history entry.
type transactionRow struct {
	ID       string
	Kind     string
	Amount   string
	Category string
	Date     string
	Note     string
}

// handleTransactionList renders the history partial, filtered by the
// optional q query parameter. Search results are never cached.
func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	txs := filterTransactions(s.ledger.List(r.Context(), user.ID), query)

	data := struct {
		Query string
		Rows  []transactionRow
	}{Query: query}
	for _, t := range txs {
		amount := formatAmount(t.Amount.Cents)
		if t.Kind == core.Expense {
			amount = "-" + amount
		} else {
			amount = "+" + amount
		}
		data.Rows = append(data.Rows, transactionRow{
			ID:       t.ID,
			Kind:     string(t.Kind),
			Amount:   amount,
			Category: t.Category,
			Date:     t.Date.String(),
			Note:     t.Note,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.render(w, r, "transactions.html", data)
}
