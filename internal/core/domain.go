package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  EntryType = "Income"
	Expense EntryType = "Expense"
)

const (
	SourceIncome  ProgressSource = "income"
	SourceExpense ProgressSource = "expense"
	SourceBalance ProgressSource = "balance"
)

type (
	// EntryType is stored verbatim in money_entries.type.
	EntryType string

	// ProgressSource names the aggregate a goal is measured against.
	ProgressSource string

	MoneyEntry struct {
		ID           string    `db:"id" json:"id"`
		UserID       string    `db:"user_id" json:"user_id"`
		Type         EntryType `db:"type" json:"type"`
		Amount       int64     `db:"amount" json:"amount"`
		Date         string    `db:"date" json:"date"`
		CreatedAt    time.Time `db:"created_at" json:"created_at"`
		Category     string    `db:"category" json:"category"`
		Note         string    `db:"note" json:"note"`
		SourceMethod string    `db:"source_method" json:"source_method"`
		ChannelBank  string    `db:"channel_bank" json:"channel_bank"`
	}

	// Goal is a savings target, shown to users as a "dream".
	Goal struct {
		ID        string         `db:"id" json:"id"`
		UserID    string         `db:"user_id" json:"user_id"`
		Title     string         `db:"title" json:"title"`
		Target    int64          `db:"target" json:"target"`
		Current   int64          `db:"current" json:"current"`
		Deadline  string         `db:"deadline" json:"deadline"`
		Note      string         `db:"note" json:"note"`
		Source    ProgressSource `db:"source_type" json:"source_type"`
		CreatedAt time.Time      `db:"created_at" json:"created_at"`
	}

	User struct {
		ID           string    `db:"id" json:"id"`
		Name         string    `db:"name" json:"name"`
		Email        string    `db:"email" json:"email"`
		Country      string    `db:"country" json:"country"`
		Bio          string    `db:"bio" json:"bio"`
		Birthdate    string    `db:"birthdate" json:"birthdate"`
		CreatedAt    time.Time `db:"created_at" json:"created_at"`
		Username     string    `db:"username" json:"username"`
		PasswordHash string    `db:"password" json:"-"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid entry type")
	ErrInvalidSource = errors.New("invalid progress source")
	ErrEmptyTitle    = errors.New("empty goal title")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyUsername = errors.New("empty username")
	ErrMissingUserID = errors.New("missing user id")
	ErrNoteTooLong   = errors.New("note too long (max 500 characters)")
	ErrTitleTooLong  = errors.New("title too long (max 120 characters)")
)

// ParseEntryType accepts the stored spelling case-insensitively.
func ParseEntryType(s string) (EntryType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

// ParseProgressSource maps an empty value to SourceIncome, which is what
// rows created before the column existed are treated as.
func ParseProgressSource(s string) (ProgressSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "income":
		return SourceIncome, nil
	case "expense":
		return SourceExpense, nil
	case "balance":
		return SourceBalance, nil
	default:
		return "", ErrInvalidSource
	}
}

func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

// Normalize returns the effective source, defaulting blanks to income.
func (s ProgressSource) Normalize() ProgressSource {
	if s == "" {
		return SourceIncome
	}
	return s
}

func (e MoneyEntry) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrMissingUserID
	}
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Note) > 500 {
		return ErrNoteTooLong
	}
	return nil
}

// Active reports whether the goal takes part in milestone evaluation.
func (g Goal) Active() bool {
	return g.Target > 0
}

// Validate rejects malformed goals. A non-positive target is accepted:
// such goals are stored but stay inactive.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return ErrMissingUserID
	}
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if len(g.Title) > 120 {
		return ErrTitleTooLong
	}
	if len(g.Note) > 500 {
		return ErrNoteTooLong
	}
	switch g.Source.Normalize() {
	case SourceIncome, SourceExpense, SourceBalance:
	default:
		return ErrInvalidSource
	}
	return nil
}

// SplitByType partitions a mixed ledger into income and expense entries,
// preserving order.
func SplitByType(entries []MoneyEntry) (income, expense []MoneyEntry) {
	for _, e := range entries {
		switch e.Type {
		case Income:
			income = append(income, e)
		case Expense:
			expense = append(expense, e)
		}
	}
	return income, expense
}

// Sum totals entry amounts.
func Sum(entries []MoneyEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Amount
	}
	return total
}
