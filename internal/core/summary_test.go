package core

import (
	"testing"
	"time"
)

func TestFilterByRange(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	entries := []MoneyEntry{
		{ID: "today", Date: "2025-06-15"},
		{ID: "week", Date: "10-06-2025"},
		{ID: "month", Date: "01/06/2025"},
		{ID: "year", Date: "2025-01-02 08:00"},
		{ID: "old", Date: "2024-12-31"},
		{ID: "bad", Date: "soon"},
	}

	cases := []struct {
		r    SummaryRange
		want []string
	}{
		{RangeToday, []string{"today"}},
		{RangeWeek, []string{"today", "week"}},
		{RangeMonth, []string{"today", "week", "month"}},
		{RangeYear, []string{"today", "week", "month", "year"}},
		{RangeAll, []string{"today", "week", "month", "year", "old", "bad"}},
	}
	for _, tc := range cases {
		got := FilterByRange(entries, tc.r, today)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %d entries, want %d", tc.r, len(got), len(tc.want))
		}
		for i, id := range tc.want {
			if got[i].ID != id {
				t.Fatalf("%s: entry %d = %s, want %s", tc.r, i, got[i].ID, id)
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	entries := []MoneyEntry{
		{Type: Income, Amount: 1000, Category: "Salary"},
		{Type: Income, Amount: 200, Category: "Bonus"},
		{Type: Expense, Amount: 300, Category: "Food"},
		{Type: Expense, Amount: 300, Category: "Bills"},
		{Type: Expense, Amount: 100, Category: "Food"},
	}
	s := Summarize(entries, RangeAll)
	if s.Income != 1200 || s.Expense != 700 || s.Balance != 500 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if len(s.ExpenseByCategory) != 2 || s.ExpenseByCategory[0].Name != "Food" || s.ExpenseByCategory[0].Amount != 400 {
		t.Fatalf("unexpected expense categories: %+v", s.ExpenseByCategory)
	}
	if s.IncomeByCategory[0].Name != "Salary" {
		t.Fatalf("unexpected income order: %+v", s.IncomeByCategory)
	}
}

func TestByCategoryTieBreak(t *testing.T) {
	got := ByCategory([]MoneyEntry{
		{Amount: 5, Category: "b"},
		{Amount: 5, Category: "a"},
	})
	if got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("ties must sort by name: %+v", got)
	}
}

func TestParseSummaryRange(t *testing.T) {
	if r, err := ParseSummaryRange(""); err != nil || r != RangeMonth {
		t.Fatalf("empty range should default to month, got %q %v", r, err)
	}
	if r, err := ParseSummaryRange("Week"); err != nil || r != RangeWeek {
		t.Fatalf("expected week, got %q %v", r, err)
	}
	if _, err := ParseSummaryRange("decade"); err == nil {
		t.Fatalf("expected error for unknown range")
	}
}
