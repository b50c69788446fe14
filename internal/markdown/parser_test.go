package markdown

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesRender(t *testing.T) {
	fsys := fstest.MapFS{
		"hello.md": {Data: []byte("---\nsubject: Hello {{.Name}}\n---\n**Name:** {{.Name}}\n\n{{if .Link}}Link: {{.Link}}{{end}}\n")},
	}

	templates, err := NewTemplates(fsys, "*.md")
	require.NoError(t, err)

	msg, err := templates.Render("hello.md", map[string]string{"Name": "Ana"})
	require.NoError(t, err)

	assert.Equal(t, "Hello Ana", msg.Subject)
	assert.Equal(t, "**Name:** Ana", msg.Text)
	assert.Contains(t, msg.HTML, "<strong>Name:</strong> Ana")
	assert.NotContains(t, msg.HTML, "subject:")
}

func TestTemplatesRender_Unknown(t *testing.T) {
	templates, err := NewTemplates(fstest.MapFS{"a.md": {Data: []byte("x")}}, "*.md")
	require.NoError(t, err)

	_, err = templates.Render("missing.md", nil)
	assert.Error(t, err)
}

func TestStripFrontmatter(t *testing.T) {
	assert.Equal(t, "body", stripFrontmatter("---\nsubject: x\n---\nbody\n"))
	assert.Equal(t, "no meta", stripFrontmatter("no meta\n"))
}
