package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/pymetra/registration/internal/model"
	"github.com/pymetra/registration/internal/ui/components"
	"github.com/pymetra/registration/internal/ui/layouts"
)

type DashboardData struct {
	Total            int
	Latest           []*model.Registration
	GoogleConfigured bool
	RemoteConnected  bool
	Notice           string
}

var tableHeaders = []string{"Name", "Email", "Area", "Sector", "Date", "CV", "Status"}

func Dashboard(data DashboardData) templ.Component {
	var body []templ.Component

	if data.Notice != "" {
		body = append(body, components.El("div", "card flash", components.Text(data.Notice)))
	}

	body = append(body,
		components.El("div", "card",
			components.El("h1", "", components.Text("Registrations")),
			components.El("p", "", components.Text("Total registrations: "+strconv.Itoa(data.Total))),
			components.Link("/admin/export/csv", "button", components.Text("Export CSV")),
			components.Text(" "),
			components.Link("/admin/export/sheets-data", "button", components.Text("Sheets data")),
		),
		remotePanel(data),
		components.El("div", "card",
			components.El("h2", "", components.Text("Latest registrations")),
			registrationsTable(data.Latest),
		),
	)

	return layouts.Admin("Dashboard", components.Group(body...))
}

func remotePanel(data DashboardData) templ.Component {
	heading := components.El("h2", "", components.Text("Google replication"))

	switch {
	case !data.GoogleConfigured:
		return components.El("div", "card", heading,
			components.El("p", "", components.Text("Not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET to enable Sheets, Drive and Gmail replication.")),
		)
	case !data.RemoteConnected:
		return components.El("div", "card", heading,
			components.El("p", "", components.Text("Not connected. New registrations are stored locally and mailed as a backup.")),
			components.Link("/admin/google/login", "button", components.Text("Connect Google account")),
		)
	default:
		return components.El("div", "card", heading,
			components.El("p", "", components.Text("Connected. Registrations are replicated to Sheets, Drive and Gmail.")),
			components.PostForm("/admin/backfill", "Upload local CVs to Drive", ""),
			components.Text(" "),
			components.PostForm("/admin/google/disconnect", "Disconnect", "destructive"),
		)
	}
}

func registrationsTable(registrations []*model.Registration) templ.Component {
	if len(registrations) == 0 {
		return components.El("p", "", components.Text("No registrations yet."))
	}

	headers := make([]templ.Component, 0, len(tableHeaders))
	for _, h := range tableHeaders {
		headers = append(headers, components.El("th", "", components.Text(h)))
	}

	rows := make([]templ.Component, 0, len(registrations))
	for _, reg := range registrations {
		rows = append(rows, registrationRow(reg))
	}

	return components.El("table", "",
		components.El("thead", "", components.El("tr", "", headers...)),
		components.El("tbody", "", rows...),
	)
}

func registrationRow(reg *model.Registration) templ.Component {
	cv := components.Text("-")
	if reg.HasLocalFile() || reg.HasRemoteFile() {
		cv = components.Link("/admin/download-cv/"+reg.ID, "", components.Text(reg.Filename()))
	}

	return components.El("tr", "",
		components.El("td", "", components.Text(reg.FullName)),
		components.El("td", "", components.Text(reg.Email)),
		components.El("td", "", components.Text(reg.GeographicArea)),
		components.El("td", "", components.Text(reg.MainSector)),
		components.El("td", "", components.Text(reg.CreatedAt.Format("02/01/2006 15:04"))),
		components.El("td", "", cv),
		components.El("td", "",
			components.Badge(reg.Status),
			components.Form("/admin/registrations/"+reg.ID+"/status", "inline",
				statusSelect(reg.Status),
				components.SubmitButton("Update", "small"),
			),
		),
	)
}

var statuses = []string{"pending", "contacted", "accepted", "rejected"}

func statusSelect(current string) templ.Component {
	options := make([]templ.Component, 0, len(statuses))
	for _, s := range statuses {
		options = append(options, components.Option(s, s == current))
	}
	return components.Select("status", options...)
}
