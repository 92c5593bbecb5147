package i18n

import (
	"context"
	"strings"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "AppTitle")
	if got != "Madrasa Panel" {
		t.Errorf("T(AppTitle) = %q, want 'Madrasa Panel'", got)
	}

	got = T(ctx, "LoginButton")
	if got != "Sign in" {
		t.Errorf("T(LoginButton) = %q, want 'Sign in'", got)
	}
}

func TestTranslateUrdu(t *testing.T) {
	ctx := initLang(t, "ur")

	got := T(ctx, "AppTitle")
	if got != "مدرسہ پینل" {
		t.Errorf("T(AppTitle) = %q, want 'مدرسہ پینل'", got)
	}

	got = T(ctx, "Logout")
	if got != "لاگ آؤٹ" {
		t.Errorf("T(Logout) = %q, want 'لاگ آؤٹ'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got1 := Tp(ctx, "AlertsCount", 1)
	if got1 != "1 alert received." {
		t.Errorf("Tp(AlertsCount, 1) = %q, want '1 alert received.'", got1)
	}

	got5 := Tp(ctx, "AlertsCount", 5)
	if got5 != "5 alerts received." {
		t.Errorf("Tp(AlertsCount, 5) = %q, want '5 alerts received.'", got5)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "SignedInAs", map[string]any{"Name": "Yusuf"})
	if got != "Signed in as Yusuf" {
		t.Errorf("Td(SignedInAs) = %q, want 'Signed in as Yusuf'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestTranslatorAlertMessage(t *testing.T) {
	initLang(t, "en")
	tr := NewTranslator("en")

	got := tr.Translate("PoorPerformanceAlert", map[string]any{
		"Name":       "Ahmad",
		"RollNumber": "R-001",
		"Condition":  "Need Focus",
	})
	for _, want := range []string{"Ahmad", "R-001", "Need Focus"} {
		if !strings.Contains(got, want) {
			t.Errorf("alert message %q does not mention %q", got, want)
		}
	}
}

func TestDefaultLanguageFallback(t *testing.T) {
	ctx := initLang(t, "ur")
	ctx = WithLocalizer(ctx, NewLocalizer("fr"))

	// The bundle's default language is used when the requested one has no file.
	got := T(ctx, "AppTitle")
	if got != "مدرسہ پینل" {
		t.Errorf("T(AppTitle) with fr = %q, want the ur default", got)
	}
}

func TestDir(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"en", "ltr"},
		{"ur", "rtl"},
		{"ur-PK", "rtl"},
		{"ar", "rtl"},
		{"", "ltr"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			ctx := WithLang(context.Background(), tt.lang)
			if got := Dir(ctx); got != tt.want {
				t.Errorf("Dir(%q) = %q, want %q", tt.lang, got, tt.want)
			}
		})
	}
}
