package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tabungan/internal/i18n"
	"tabungan/internal/storage"
)

const (
	PrefAppLanguage          = "app_language"
	PrefSelectedTheme        = "selected_theme"
	PrefFingerprintEnabled   = "fingerprint_enabled"
	PrefBiometricAllowed     = "biometric_allowed"
	PrefHasSeenWelcome       = "has_seen_welcome"
	PrefNotificationsEnabled = "notifications_enabled"
)

var (
	ErrUnknownPreference = errors.New("unknown preference")
	ErrInvalidPreference = errors.New("invalid preference value")
)

// Themes lists the accepted selected_theme values.
var Themes = []string{
	"StandardLight", "StandardDark",
	"CartoonFood", "CartoonSpace", "CartoonMonster", "CartoonHero",
	"CartoonSea", "CartoonPlant", "CartoonPinky", "CartoonColorful",
}

var prefDefaults = map[string]string{
	PrefAppLanguage:          string(i18n.EN),
	PrefSelectedTheme:        "StandardLight",
	PrefFingerprintEnabled:   "false",
	PrefBiometricAllowed:     "false",
	PrefHasSeenWelcome:       "false",
	PrefNotificationsEnabled: "true",
}

// PrefKey is the local_flags key of one user preference.
func PrefKey(userID, key string) string {
	return fmt.Sprintf("pref_%s_%s", userID, key)
}

type PreferenceService struct {
	flags storage.FlagStore
}

func NewPreferenceService(flags storage.FlagStore) *PreferenceService {
	return &PreferenceService{flags: flags}
}

// Get returns the stored value, or the default when none was saved.
func (p *PreferenceService) Get(ctx context.Context, userID, key string) (string, error) {
	def, ok := prefDefaults[key]
	if !ok {
		return "", ErrUnknownPreference
	}
	v, found, err := p.flags.GetFlag(ctx, PrefKey(userID, key))
	if err != nil {
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	if !found {
		return def, nil
	}
	return v, nil
}

// Set validates and stores value, returning the normalized form.
func (p *PreferenceService) Set(ctx context.Context, userID, key, value string) (string, error) {
	normalized, err := normalizePreference(key, value)
	if err != nil {
		return "", err
	}
	if err := p.flags.SetFlag(ctx, PrefKey(userID, key), normalized); err != nil {
		return "", fmt.Errorf("set preference %s: %w", key, err)
	}
	return normalized, nil
}

func normalizePreference(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch key {
	case PrefAppLanguage:
		switch strings.ToUpper(value) {
		case string(i18n.EN), string(i18n.ID):
			return strings.ToUpper(value), nil
		}
		return "", fmt.Errorf("%w: %s must be EN or ID", ErrInvalidPreference, key)
	case PrefSelectedTheme:
		for _, t := range Themes {
			if t == value {
				return value, nil
			}
		}
		return "", fmt.Errorf("%w: unknown theme %q", ErrInvalidPreference, value)
	case PrefFingerprintEnabled, PrefBiometricAllowed, PrefHasSeenWelcome, PrefNotificationsEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s must be a boolean", ErrInvalidPreference, key)
		}
		return strconv.FormatBool(b), nil
	default:
		return "", ErrUnknownPreference
	}
}

// Language is the user's app language, EN when unset or unreadable.
func (p *PreferenceService) Language(ctx context.Context, userID string) i18n.Language {
	v, err := p.Get(ctx, userID, PrefAppLanguage)
	if err != nil {
		return i18n.EN
	}
	return i18n.ParseLanguage(v)
}

// NotificationsEnabled defaults to true; an unparsable stored value also
// counts as enabled.
func (p *PreferenceService) NotificationsEnabled(ctx context.Context, userID string) (bool, error) {
	v, err := p.Get(ctx, userID, PrefNotificationsEnabled)
	if err != nil {
		return false, err
	}
	b, perr := strconv.ParseBool(v)
	if perr != nil {
		return true, nil
	}
	return b, nil
}
