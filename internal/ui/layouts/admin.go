package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pymetra/registration/internal/ctxkeys"
	"github.com/pymetra/registration/internal/ui/components"
)

const baseCSS = `body{font-family:system-ui,sans-serif;margin:0;background:#f9fafb;color:#111827}
main{max-width:72rem;margin:0 auto;padding:1.5rem}
header{display:flex;justify-content:space-between;align-items:center;padding:1rem 1.5rem;background:#111827;color:#fff}
header a{color:#fff;text-decoration:none}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{padding:.5rem;border-bottom:1px solid #e5e7eb;text-align:left;font-size:.875rem}
button,.button{cursor:pointer;border-radius:.25rem;padding:.4rem .8rem;border:1px solid #111827;background:#111827;color:#fff;text-decoration:none}
.card{background:#fff;border:1px solid #e5e7eb;border-radius:.5rem;padding:1rem;margin-bottom:1rem}
.flash{background:#ecfdf5;border-color:#10b981}
.error{background:#fef2f2;border-color:#ef4444}
.inline{display:inline}`

// Admin wraps a page body with the panel chrome
func Admin(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		appName := "Admin"
		if cfg := ctxkeys.Config(ctx); cfg != nil {
			appName = cfg.AppName
		}
		nonce := templ.EscapeString(templ.GetNonce(ctx))

		head := `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">` +
			`<meta name="viewport" content="width=device-width, initial-scale=1">` +
			`<title>` + templ.EscapeString(title+" · "+appName) + `</title>` +
			`<style nonce="` + nonce + `">` + baseCSS + `</style></head><body>`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}

		nav := []templ.Component{
			components.Link("/admin", "", components.Text(appName+" admin")),
		}
		if ctxkeys.Admin(ctx) != "" {
			nav = append(nav, components.El("nav", "",
				components.NavLink("/admin", "Registrations"),
				components.NavLink("/admin/export/csv", "Export CSV"),
				components.NavLink("/admin/export/sheets-data", "Sheets data"),
				components.PostForm("/admin/logout", "Log out", "secondary"),
			))
		}
		if err := components.El("header", "", nav...).Render(ctx, w); err != nil {
			return err
		}
		if err := components.El("main", "", body).Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}
