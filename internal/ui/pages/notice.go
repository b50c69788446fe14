package pages

import (
	"github.com/a-h/templ"

	"github.com/pymetra/registration/internal/ui/components"
	"github.com/pymetra/registration/internal/ui/layouts"
)

// Notice is a short result page with a link back to the dashboard
func Notice(title, message string, isError bool) templ.Component {
	class := "card flash"
	if isError {
		class = "card error"
	}
	return layouts.Admin(title, components.Group(
		components.El("div", class,
			components.El("h1", "", components.Text(title)),
			components.El("p", "", components.Text(message)),
		),
		components.Link("/admin", "button", components.Text("Back to dashboard")),
	))
}

func NotFound() templ.Component {
	return Notice("Not found", "The page or file you requested does not exist.", true)
}
