package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	appI18n "github.com/madrasa-panel/madrasa/internal/i18n"
	"github.com/madrasa-panel/madrasa/internal/model"
)

// alertsScript keeps a websocket open to /ws and prepends every alert frame.
const alertsScript = `<script>
(function () {
  var list = document.getElementById("alerts");
  var status = document.getElementById("status");
  var empty = document.getElementById("empty");
  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function () { status.textContent = status.dataset.live; };
    ws.onclose = function () {
      status.textContent = status.dataset.down;
      setTimeout(connect, 3000);
    };
    ws.onmessage = function (ev) {
      var frame = JSON.parse(ev.data);
      if (frame.event !== "alert") return;
      var a = frame.data;
      var item = document.createElement("div");
      item.className = "card alert";
      var title = document.createElement("strong");
      title.textContent = a.studentName + " (" + a.rollNumber + ") - " + a.condition;
      var msg = document.createElement("p");
      msg.textContent = a.message;
      var when = document.createElement("time");
      when.textContent = new Date(a.sentAt).toLocaleString();
      item.append(title, msg, when);
      if (empty) { empty.remove(); empty = null; }
      list.prepend(item);
    };
  }
  connect();
})();
</script>`

func header(user *model.User) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		name := ""
		if user != nil {
			name = user.DisplayName
			if name == "" {
				name = user.Username
			}
		}
		return write(w,
			`<header><strong>`, esc(appI18n.T(ctx, "AppTitle")), `</strong><span>`,
			esc(appI18n.Td(ctx, "SignedInAs", map[string]any{"Name": name})), `</span>`,
			`<form method="post" action="/logout">`,
			`<input type="hidden" name="csrf_token" value="`, esc(model.CSRFTokenFromContext(ctx)), `">`,
			`<button type="submit">`, esc(appI18n.T(ctx, "Logout")), `</button></form></header>`,
		)
	})
}

// AlertsPage renders the live performance alert monitor.
func AlertsPage(user *model.User) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w,
			`<div class="card"><h1>`, esc(appI18n.T(ctx, "AlertsTitle")), `</h1>`,
			`<p>`, esc(appI18n.T(ctx, "AlertsHint")), `</p>`,
			`<p id="status" class="status" data-live="`, esc(appI18n.T(ctx, "AlertsConnected")),
			`" data-down="`, esc(appI18n.T(ctx, "AlertsDisconnected")), `"></p></div>`,
			`<div id="alerts"><p id="empty">`, esc(appI18n.T(ctx, "AlertsEmpty")), `</p></div>`,
			alertsScript,
		)
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return page(appI18n.T(ctx, "AlertsTitle"), header(user), body).Render(ctx, w)
	})
}
