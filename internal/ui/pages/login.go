package pages

import (
	"github.com/a-h/templ"

	"github.com/pymetra/registration/internal/ui/components"
	"github.com/pymetra/registration/internal/ui/layouts"
)

// Login is the operator sign-in form
func Login(username, errMsg string) templ.Component {
	var body []templ.Component
	if errMsg != "" {
		body = append(body, components.El("div", "card error", components.Text(errMsg)))
	}
	body = append(body,
		components.El("h1", "", components.Text("Sign in")),
		components.Form("/admin/login", "",
			components.Input("Username", "username", "text", username, true),
			components.Input("Password", "password", "password", "", true),
			components.SubmitButton("Sign in", ""),
		),
	)
	return layouts.Admin("Sign in", components.El("div", "card", body...))
}
