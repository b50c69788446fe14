package markdown

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

func (p *Parser) ParseWithFrontmatter(source []byte) (content []byte, meta map[string]any, err error) {
	context := parser.NewContext()
	var buf bytes.Buffer

	err = p.md.Convert(source, &buf, parser.WithContext(context))
	if err != nil {
		return nil, nil, err
	}

	data := frontmatter.Get(context)
	if data == nil {
		meta = make(map[string]any)
	} else {
		err = data.Decode(&meta)
		if err != nil {
			meta = make(map[string]any)
		}
	}

	return buf.Bytes(), meta, nil
}

// Message is a rendered email: subject from frontmatter, markdown body as text and HTML
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Templates renders markdown email templates with text/template placeholders
type Templates struct {
	parser *Parser
	tmpl   *template.Template
}

// NewTemplates parses every *.md file of fsys; a template is addressed by its file name
func NewTemplates(fsys fs.FS, pattern string) (*Templates, error) {
	tmpl, err := template.New("").Option("missingkey=zero").ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Templates{parser: NewParser(), tmpl: tmpl}, nil
}

func (t *Templates) Render(name string, data any) (*Message, error) {
	var source bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&source, name, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}

	html, meta, err := t.parser.ParseWithFrontmatter(source.Bytes())
	if err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}

	msg := &Message{
		Text: stripFrontmatter(source.String()),
		HTML: string(html),
	}
	if subject, ok := meta["subject"].(string); ok {
		msg.Subject = subject
	}
	return msg, nil
}

// stripFrontmatter drops a leading "---" delimited YAML block
func stripFrontmatter(source string) string {
	if !strings.HasPrefix(source, "---\n") {
		return strings.TrimSpace(source)
	}
	rest := source[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return strings.TrimSpace(source)
	}
	return strings.TrimSpace(rest[end+len("\n---\n"):])
}
