// Package views renders the server-side HTML pages.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	appI18n "github.com/madrasa-panel/madrasa/internal/i18n"
)

const styles = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f6f7f9; color: #1d2430; }
header { background: #14532d; color: #fff; padding: .75rem 1.5rem; display: flex; justify-content: space-between; align-items: center; }
header form { margin: 0; }
main { max-width: 56rem; margin: 2rem auto; padding: 0 1rem; }
.card { background: #fff; border-radius: .5rem; padding: 1.25rem 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); margin-bottom: 1rem; }
.error { color: #b91c1c; }
.status { font-size: .85rem; }
.alert { border-left: 4px solid #b91c1c; }
.alert time { color: #6b7280; font-size: .8rem; }
label { display: block; margin-top: .75rem; }
input { width: 100%; padding: .5rem; box-sizing: border-box; }
button { margin-top: 1rem; padding: .5rem 1rem; background: #14532d; color: #fff; border: 0; border-radius: .25rem; cursor: pointer; }
`

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func esc(s string) string { return templ.EscapeString(s) }

// page wraps body in the common document shell.
func page(title string, header, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w,
			`<!DOCTYPE html><html lang="`, esc(appI18n.Lang(ctx)), `" dir="`, appI18n.Dir(ctx), `"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`, esc(title), `</title><style>`, styles, `</style></head><body>`,
		); err != nil {
			return err
		}
		if header != nil {
			if err := header.Render(ctx, w); err != nil {
				return err
			}
		}
		if err := write(w, `<main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</main></body></html>`)
	})
}
