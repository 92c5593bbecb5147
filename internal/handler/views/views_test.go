package views

import (
	"context"
	"strings"
	"testing"

	appI18n "github.com/madrasa-panel/madrasa/internal/i18n"
	"github.com/madrasa-panel/madrasa/internal/model"
)

func renderCtx(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := appI18n.Init(lang); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	ctx := appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer(lang))
	ctx = appI18n.WithLang(ctx, lang)
	return model.ContextWithCSRFToken(ctx, "tok123")
}

func TestLoginPage(t *testing.T) {
	ctx := renderCtx(t, "en")

	var sb strings.Builder
	if err := LoginPage(`<b>bad</b>`).Render(ctx, &sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := sb.String()
	for _, want := range []string{`name="csrf_token" value="tok123"`, "Sign in", `dir="ltr"`, "&lt;b&gt;bad&lt;/b&gt;"} {
		if !strings.Contains(html, want) {
			t.Errorf("login page missing %q", want)
		}
	}
	if strings.Contains(html, "<b>bad</b>") {
		t.Error("error message was not escaped")
	}
}

func TestAlertsPageUrdu(t *testing.T) {
	ctx := renderCtx(t, "ur")

	var sb strings.Builder
	user := &model.User{Username: "yusuf", DisplayName: "Yusuf"}
	if err := AlertsPage(user).Render(ctx, &sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := sb.String()
	for _, want := range []string{`dir="rtl"`, `lang="ur"`, "Yusuf", "/ws", "کارکردگی کی اطلاعات"} {
		if !strings.Contains(html, want) {
			t.Errorf("alerts page missing %q", want)
		}
	}
}
