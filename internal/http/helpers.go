package http

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"budget/internal/core"
)

// clientIP extracts the client address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// formatAmount formats cents as a currency string (e.g., "$12.34").
func formatAmount(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(units, 10) + "." + fmt.Sprintf("%02d", rem)
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// filterTransactions returns the transactions matching the search term:
// case-insensitive substring of category, note, or the decimal amount.
// An empty term matches everything.
func filterTransactions(txs []core.Transaction, term string) []core.Transaction {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return txs
	}
	var out []core.Transaction
	for _, t := range txs {
		amount := strconv.FormatFloat(float64(t.Amount.Cents)/100, 'f', -1, 64)
		if strings.Contains(strings.ToLower(t.Category), term) ||
			strings.Contains(strings.ToLower(t.Note), term) ||
			strings.Contains(amount, term) {
			out = append(out, t)
		}
	}
	return out
}

// writeErrorFragment renders an inline error div for HTMX swaps.
func writeErrorFragment(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(msg) + `</div>`))
}
