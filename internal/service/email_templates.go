package service

import (
	"embed"
	"strings"

	"github.com/pymetra/registration/internal/markdown"
	"github.com/pymetra/registration/internal/model"
	"github.com/pymetra/registration/internal/service/remote"
)

//go:embed templates/*.md
var templatesFS embed.FS

const registrationTemplate = "registration.md"

type registrationEmailData struct {
	AppName        string
	ID             string
	FullName       string
	Email          string
	GeographicArea string
	MainSector     string
	Language       string
	RegisteredAt   string
	Filename       string
	Attached       bool
	RemoteName     string
	RemoteLink     string
}

func newRegistrationEmailData(appName string, reg *model.Registration, file *remote.File, attached bool) registrationEmailData {
	data := registrationEmailData{
		AppName:        appName,
		ID:             reg.ID,
		FullName:       yamlSafe(reg.FullName),
		Email:          reg.Email,
		GeographicArea: reg.GeographicArea,
		MainSector:     reg.MainSector,
		Language:       strings.ToUpper(reg.Language),
		RegisteredAt:   reg.CreatedAt.Format("02/01/2006 15:04:05"),
		Filename:       reg.Filename(),
		Attached:       attached,
	}
	if file != nil {
		data.RemoteName = file.Name
		data.RemoteLink = file.Link
	} else if reg.HasRemoteFile() {
		data.RemoteName = reg.Filename()
		data.RemoteLink = reg.RemoteLink()
	}
	return data
}

// yamlSafe keeps a value from breaking the quoted frontmatter subject
func yamlSafe(s string) string {
	return strings.NewReplacer(`"`, "'", `\`, "/", "\n", " ", "\r", " ").Replace(s)
}

func loadEmailTemplates() (*markdown.Templates, error) {
	return markdown.NewTemplates(templatesFS, "templates/*.md")
}

func renderRegistrationEmail(templates *markdown.Templates, data registrationEmailData) (*markdown.Message, error) {
	msg, err := templates.Render(registrationTemplate, data)
	if err != nil {
		return nil, err
	}
	if msg.Subject == "" {
		msg.Subject = "New agent registration - " + data.FullName
	}
	return msg, nil
}
