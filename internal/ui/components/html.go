// Package components holds small HTML building blocks for the admin panel.
package components

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/pymetra/registration/internal/ctxkeys"
)

// Text escapes s for HTML
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

// Group renders components one after another
func Group(cs ...templ.Component) templ.Component {
	return templ.Join(cs...)
}

// El renders <tag class="...">children</tag>
func El(tag, class string, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		open := "<" + tag
		if class != "" {
			open += ` class="` + templ.EscapeString(class) + `"`
		}
		if _, err := io.WriteString(w, open+">"); err != nil {
			return err
		}
		for _, c := range children {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</"+tag+">")
		return err
	})
}

// Link renders an anchor; unsafe URLs are replaced by templ.URL
func Link(href, class string, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		safe := string(templ.URL(href))
		if _, err := io.WriteString(w, `<a href="`+templ.EscapeString(safe)+`" class="`+templ.EscapeString(class)+`">`); err != nil {
			return err
		}
		for _, c := range children {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</a>")
		return err
	})
}

// CSRFField is the hidden input checked by the CSRF middleware
func CSRFField() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<input type="hidden" name="csrf_token" value="`+templ.EscapeString(ctxkeys.CSRFToken(ctx))+`">`)
		return err
	})
}

// Form renders a POST form to action with the CSRF field first
func Form(action, class string, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		open := `<form method="post" action="` + templ.EscapeString(string(templ.URL(action))) + `"`
		if class != "" {
			open += ` class="` + templ.EscapeString(class) + `"`
		}
		if _, err := io.WriteString(w, open+">"); err != nil {
			return err
		}
		if err := CSRFField().Render(ctx, w); err != nil {
			return err
		}
		for _, c := range children {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</form>")
		return err
	})
}

// SubmitButton renders a submit button in the given variant
func SubmitButton(label, variant string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<button type="submit" class="`+templ.EscapeString(ButtonClass(variant))+`">`+templ.EscapeString(label)+`</button>`)
		return err
	})
}

// PostForm is a one-button form, used for actions like logout or backfill
func PostForm(action, label, variant string, fields ...templ.Component) templ.Component {
	return Form(action, "inline", append(fields, SubmitButton(label, variant))...)
}

// Hidden renders a hidden input
func Hidden(name, value string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<input type="hidden" name="`+templ.EscapeString(name)+`" value="`+templ.EscapeString(value)+`">`)
		return err
	})
}

// Input renders a labelled input
func Input(label, name, inputType, value string, required bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<label class="block mb-4"><span class="block text-sm mb-1">`)
		b.WriteString(templ.EscapeString(label))
		b.WriteString(`</span><input class="w-full border rounded px-3 py-2" name="`)
		b.WriteString(templ.EscapeString(name))
		b.WriteString(`" type="`)
		b.WriteString(templ.EscapeString(inputType))
		b.WriteString(`" value="`)
		b.WriteString(templ.EscapeString(value))
		b.WriteString(`"`)
		if required {
			b.WriteString(" required")
		}
		b.WriteString("></label>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Select renders a <select> with the given options
func Select(name string, options ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<select name="`+templ.EscapeString(name)+`">`); err != nil {
			return err
		}
		for _, o := range options {
			if err := o.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</select>")
		return err
	})
}

// Option renders an <option> whose label is the title-cased value
func Option(value string, selected bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		attr := ""
		if selected {
			attr = " selected"
		}
		_, err := io.WriteString(w, `<option value="`+templ.EscapeString(value)+`"`+attr+`>`+templ.EscapeString(title.String(value))+`</option>`)
		return err
	})
}
