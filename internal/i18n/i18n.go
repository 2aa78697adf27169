// Package i18n holds the user-facing message tables.
//
// Messages are addressed by Key, a closed enumeration. Validate checks at
// startup that every language defines every key, so lookups never fall back.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type Language string

const (
	EN Language = "EN"
	ID Language = "ID"
)

// Languages lists the supported languages; the first one is the default.
var Languages = []Language{EN, ID}

type Key int

const (
	GoalReachedSingle Key = iota
	GoalReachedMulti
	GoalReachedNotificationTitle
	GoalReachedNotificationDesc
	GoalReachedNotificationBody
	GoalReachedPopupExpense
	GoalReachedPopupIncomeBalance
	GoalDeadlineTitle
	GoalDeadlineBody
	DeadlineToday
	LabelGoal
	SummaryRangeToday
	SummaryRangeWeek
	SummaryRangeMonth
	SummaryRangeYear
	SummaryRangeAll
	ErrLoginFailed
	ErrSignupFailed
	ErrUsernameTaken
	ErrProfileSaveFailed
	ErrInvalidInput
	ErrNotFound
	ErrUnauthorized
	ErrServer
	ErrRateLimited

	keyCount
)

var keyNames = [keyCount]string{
	GoalReachedSingle:             "goal_reached_single",
	GoalReachedMulti:              "goal_reached_multi",
	GoalReachedNotificationTitle:  "goal_reached_notification_title",
	GoalReachedNotificationDesc:   "goal_reached_notification_desc",
	GoalReachedNotificationBody:   "goal_reached_notification_body",
	GoalReachedPopupExpense:       "goal_reached_popup_expense",
	GoalReachedPopupIncomeBalance: "goal_reached_popup_income_balance",
	GoalDeadlineTitle:             "goal_deadline_title",
	GoalDeadlineBody:              "goal_deadline_body",
	DeadlineToday:                 "deadline_today",
	LabelGoal:                     "label_goal",
	SummaryRangeToday:             "summary_range_today",
	SummaryRangeWeek:              "summary_range_week",
	SummaryRangeMonth:             "summary_range_month",
	SummaryRangeYear:              "summary_range_year",
	SummaryRangeAll:               "summary_range_all",
	ErrLoginFailed:                "error_login_failed",
	ErrSignupFailed:               "error_signup_failed",
	ErrUsernameTaken:              "error_username_taken",
	ErrProfileSaveFailed:          "error_profile_save_failed",
	ErrInvalidInput:               "error_invalid_input",
	ErrNotFound:                   "error_not_found",
	ErrUnauthorized:               "error_unauthorized",
	ErrServer:                     "error_server",
	ErrRateLimited:                "error_rate_limited",
}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// Validate returns an error naming every missing or blank message.
func Validate() error {
	var missing []string
	for _, lang := range Languages {
		table, ok := tables[lang]
		if !ok {
			missing = append(missing, fmt.Sprintf("%s: no table", lang))
			continue
		}
		for k := Key(0); k < keyCount; k++ {
			if strings.TrimSpace(table[k]) == "" {
				missing = append(missing, fmt.Sprintf("%s.%s", lang, k))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete message tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ParseLanguage maps a stored preference to a Language, defaulting to EN.
func ParseLanguage(s string) Language {
	if strings.EqualFold(strings.TrimSpace(s), string(ID)) {
		return ID
	}
	return EN
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Indonesian})

// FromAcceptLanguage picks the best supported language for an
// Accept-Language header value.
func FromAcceptLanguage(header string) Language {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return EN
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return EN
	}
	return Languages[idx]
}

// Catalog renders messages for one language.
type Catalog struct {
	lang  Language
	table [keyCount]string
}

func For(lang Language) Catalog {
	table, ok := tables[lang]
	if !ok {
		lang, table = EN, tables[EN]
	}
	return Catalog{lang: lang, table: table}
}

func (c Catalog) Language() Language {
	return c.lang
}

// Text returns the raw message for k.
func (c Catalog) Text(k Key) string {
	if k < 0 || k >= keyCount {
		return ""
	}
	return c.table[k]
}

// Format substitutes {name} placeholders in the message for k.
func (c Catalog) Format(k Key, args map[string]string) string {
	msg := c.Text(k)
	if len(args) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(args)*2)
	for name, value := range args {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
