package services

import (
	"context"
	"fmt"
	"time"

	"tabungan/internal/core"
	"tabungan/internal/i18n"
	"tabungan/internal/storage"
)

var rangeLabels = map[core.SummaryRange]i18n.Key{
	core.RangeToday: i18n.SummaryRangeToday,
	core.RangeWeek:  i18n.SummaryRangeWeek,
	core.RangeMonth: i18n.SummaryRangeMonth,
	core.RangeYear:  i18n.SummaryRangeYear,
	core.RangeAll:   i18n.SummaryRangeAll,
}

// Report is a Summary with a display label and Rupiah formatted totals.
type Report struct {
	core.Summary
	Label           string `json:"label"`
	IncomeDisplay   string `json:"income_display"`
	ExpenseDisplay  string `json:"expense_display"`
	BalanceDisplay  string `json:"balance_display"`
	Entries         int    `json:"entries"`
	PercentOfIncome int    `json:"expense_percent_of_income"`
}

type ReportService struct {
	entries storage.EntryStore
	prefs   *PreferenceService
	zone    *time.Location
	now     func() time.Time
}

func NewReportService(entries storage.EntryStore, prefs *PreferenceService, zone *time.Location) *ReportService {
	if zone == nil {
		zone = time.Local
	}
	return &ReportService{entries: entries, prefs: prefs, zone: zone, now: time.Now}
}

// Summary reports the user's entries inside r. A zero today means the
// current date in the service zone.
func (s *ReportService) Summary(ctx context.Context, userID string, r core.SummaryRange, today time.Time) (Report, error) {
	if today.IsZero() {
		today = core.Today(s.now(), s.zone)
	}
	entries, err := s.entries.ListEntries(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("list entries: %w", err)
	}

	filtered := core.FilterByRange(entries, r, today)
	sum := core.Summarize(filtered, r)
	cat := i18n.For(s.prefs.Language(ctx, userID))

	return Report{
		Summary:         sum,
		Label:           cat.Text(rangeLabels[r]),
		IncomeDisplay:   core.FormatRupiah(sum.Income),
		ExpenseDisplay:  core.FormatRupiah(sum.Expense),
		BalanceDisplay:  core.FormatRupiah(sum.Balance),
		Entries:         len(filtered),
		PercentOfIncome: core.Percent(sum.Expense, sum.Income),
	}, nil
}
