package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	appI18n "github.com/madrasa-panel/madrasa/internal/i18n"
	"github.com/madrasa-panel/madrasa/internal/model"
)

// LoginPage renders the sign-in form. errMsg is shown above the form when set.
func LoginPage(errMsg string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<div class="card"><h1>`, esc(appI18n.T(ctx, "LoginTitle")), `</h1>`); err != nil {
			return err
		}
		if errMsg != "" {
			if err := write(w, `<p class="error" role="alert">`, esc(errMsg), `</p>`); err != nil {
				return err
			}
		}
		return write(w,
			`<form method="post" action="/login">`,
			`<input type="hidden" name="csrf_token" value="`, esc(model.CSRFTokenFromContext(ctx)), `">`,
			`<label for="username">`, esc(appI18n.T(ctx, "Username")), `</label>`,
			`<input id="username" name="username" autocomplete="username" required>`,
			`<label for="password">`, esc(appI18n.T(ctx, "Password")), `</label>`,
			`<input id="password" name="password" type="password" autocomplete="current-password" required>`,
			`<button type="submit">`, esc(appI18n.T(ctx, "LoginButton")), `</button>`,
			`</form></div>`,
		)
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return page(appI18n.T(ctx, "AppTitle"), nil, body).Render(ctx, w)
	})
}
