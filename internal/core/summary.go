package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	RangeToday SummaryRange = "today"
	RangeWeek  SummaryRange = "week"
	RangeMonth SummaryRange = "month"
	RangeYear  SummaryRange = "year"
	RangeAll   SummaryRange = "all"
)

// SummaryRange selects which entries a report covers.
type SummaryRange string

var ErrUnknownRange = errors.New("unknown summary range")

// ParseSummaryRange defaults an empty value to the current month.
func ParseSummaryRange(s string) (SummaryRange, error) {
	switch r := SummaryRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeMonth, nil
	case RangeToday, RangeWeek, RangeMonth, RangeYear, RangeAll:
		return r, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownRange, s)
	}
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// Summary is a compact overview of the entries inside one range.
type Summary struct {
	Range             SummaryRange     `json:"range"`
	Income            int64            `json:"income"`
	Expense           int64            `json:"expense"`
	Balance           int64            `json:"balance"`
	IncomeByCategory  []CategoryAmount `json:"income_by_category"`
	ExpenseByCategory []CategoryAmount `json:"expense_by_category"`
}

// FilterByRange keeps entries whose date falls into r relative to today.
// Entries with unparseable dates only survive RangeAll.
func FilterByRange(entries []MoneyEntry, r SummaryRange, today time.Time) []MoneyEntry {
	if r == RangeAll {
		return entries
	}
	today = CalendarDate(today)
	weekStart := today.AddDate(0, 0, -6)

	var out []MoneyEntry
	for _, e := range entries {
		d, ok := ParseEntryDate(e.Date)
		if !ok {
			continue
		}
		var keep bool
		switch r {
		case RangeToday:
			keep = d.Equal(today)
		case RangeWeek:
			keep = !d.Before(weekStart)
		case RangeMonth:
			keep = d.Year() == today.Year() && d.Month() == today.Month()
		case RangeYear:
			keep = d.Year() == today.Year()
		}
		if keep {
			out = append(out, e)
		}
	}
	return out
}

// Summarize aggregates entries already filtered to r.
func Summarize(entries []MoneyEntry, r SummaryRange) Summary {
	income, expense := SplitByType(entries)
	s := Summary{
		Range:             r,
		Income:            Sum(income),
		Expense:           Sum(expense),
		IncomeByCategory:  ByCategory(income),
		ExpenseByCategory: ByCategory(expense),
	}
	s.Balance = s.Income - s.Expense
	return s
}

// ByCategory sums amounts per category, largest first, ties by name.
func ByCategory(entries []MoneyEntry) []CategoryAmount {
	sums := make(map[string]int64)
	for _, e := range entries {
		sums[e.Category] += e.Amount
	}
	out := make([]CategoryAmount, 0, len(sums))
	for name, amount := range sums {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}
