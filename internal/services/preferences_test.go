package services

import (
	"context"
	"errors"
	"testing"

	"tabungan/internal/i18n"
	"tabungan/internal/storage/memory"
)

func TestPreferences(t *testing.T) {
	store := memory.New()
	p := NewPreferenceService(store)
	ctx := context.Background()

	if v, err := p.Get(ctx, "u1", PrefAppLanguage); err != nil || v != "EN" {
		t.Fatalf("default language = %q, %v", v, err)
	}
	if on, err := p.NotificationsEnabled(ctx, "u1"); err != nil || !on {
		t.Fatalf("notifications should default to on")
	}

	tests := []struct {
		key, value string
		want       string
		wantErr    error
	}{
		{PrefAppLanguage, "id", "ID", nil},
		{PrefAppLanguage, "fr", "", ErrInvalidPreference},
		{PrefSelectedTheme, "CartoonSea", "CartoonSea", nil},
		{PrefSelectedTheme, "Neon", "", ErrInvalidPreference},
		{PrefNotificationsEnabled, "0", "false", nil},
		{PrefHasSeenWelcome, "TRUE", "true", nil},
		{PrefFingerprintEnabled, "maybe", "", ErrInvalidPreference},
		{"saved_password", "x", "", ErrUnknownPreference},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := p.Set(ctx, "u1", tt.key, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}

	if lang := p.Language(ctx, "u1"); lang != i18n.ID {
		t.Fatalf("language = %s", lang)
	}
	if on, _ := p.NotificationsEnabled(ctx, "u1"); on {
		t.Fatalf("notifications were turned off")
	}
	if v, _, _ := store.GetFlag(ctx, "pref_u1_selected_theme"); v != "CartoonSea" {
		t.Fatalf("stored under unexpected key")
	}
	if lang := p.Language(ctx, "u2"); lang != i18n.EN {
		t.Fatalf("other users keep the default, got %s", lang)
	}
	if _, err := p.Get(ctx, "u1", "saved_username"); !errors.Is(err, ErrUnknownPreference) {
		t.Fatalf("got %v", err)
	}
}
