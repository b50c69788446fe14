package components

import (
	"context"
	"io"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pymetra/registration/internal/ctxkeys"
)

const badgeBase = "inline-flex items-center rounded-full px-2 py-0.5 text-xs font-medium bg-gray-100 text-gray-800"

var statusClasses = map[string]string{
	"pending":   "bg-yellow-100 text-yellow-800",
	"contacted": "bg-blue-100 text-blue-800",
	"accepted":  "bg-green-100 text-green-800",
	"rejected":  "bg-red-100 text-red-800",
}

var title = cases.Title(language.Und)

// BadgeClass merges the status color over the base badge classes
func BadgeClass(status string, extra ...string) string {
	return twmerge.Merge(append([]string{badgeBase, statusClasses[status]}, extra...)...)
}

// Badge shows a registration status
func Badge(status string) templ.Component {
	return El("span", BadgeClass(status), Text(title.String(status)))
}

const buttonBase = "inline-flex items-center rounded px-3 py-2 text-sm font-medium bg-gray-900 text-white hover:bg-gray-700"

var buttonVariants = map[string]string{
	"secondary":   "bg-white text-gray-900 border hover:bg-gray-100",
	"destructive": "bg-red-600 hover:bg-red-500",
	"small":       "px-2 py-1 text-xs",
}

// ButtonClass merges a variant over the base button classes
func ButtonClass(variant string) string {
	return twmerge.Merge(buttonBase, buttonVariants[variant])
}

const (
	navBase   = "px-3 py-2 text-sm text-gray-300 hover:text-white"
	navActive = "text-white font-semibold underline"
)

// NavLink is a header link, highlighted when it points at the current path
func NavLink(href, label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := navBase
		if ctxkeys.URLPath(ctx) == href {
			class = twmerge.Merge(navBase, navActive)
		}
		return Link(href, class, Text(label)).Render(ctx, w)
	})
}
