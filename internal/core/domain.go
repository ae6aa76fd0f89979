package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind is the polarity of a transaction.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// User is a registered account, as exposed outside the credential
	// store. The stored secret never leaves internal/auth.
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	Transaction struct {
		ID       string `json:"id"`
		Kind     Kind   `json:"kind"`
		Amount   Money  `json:"amount"`
		Category string `json:"category"`
		Date     Date   `json:"date"`
		Note     string `json:"note,omitempty"`
	}
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingField       = errors.New("missing required field")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day. Time of day is discarded.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MonthKey returns the YYYY-MM grouping key. Lexicographic order of keys
// matches chronological order.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// SameMonth reports whether d falls in the same calendar month as t.
func (d Date) SameMonth(t time.Time) bool {
	return d.Year() == t.Year() && d.Time.Month() == t.Month()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(dateLayout, strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the amount with polarity applied: positive for income,
// negative for expense. The stored amount itself is always positive.
func (t Transaction) Signed() int64 {
	if t.Kind == Expense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrMissingField
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrMissingField
	}
	if t.Date.IsZero() {
		return ErrMissingField
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}
