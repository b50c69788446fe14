// Package remote replicates registrations to Google Sheets, Drive and Gmail.
//
// Every operation checks the injected Credentials first and fails with
// ErrNotAuthenticated, without network I/O, when no usable token is stored.
// Calls are not deduplicated: callers skip work using the record's stored
// remote file id.
package remote

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pymetra/registration/internal/model"
)

var ErrNotAuthenticated = errors.New("remote replication not authenticated")

// Credentials provides OAuth tokens for the Google APIs.
// Valid must not perform network I/O.
type Credentials interface {
	Valid(ctx context.Context) bool
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// File identifies an uploaded file in remote storage
type File struct {
	ID   string
	Name string
	Link string
}

// FileMeta describes a file to upload
type FileMeta struct {
	Name        string
	Description string
	ContentType string
	FolderID    string
}

// Message is a plain text email sent through the remote mailbox
type Message struct {
	To      string
	Subject string
	Body    string
}

// API is the Google surface used by Client. GoogleAPI implements it.
type API interface {
	AppendValues(ctx context.Context, spreadsheetID, valueRange string, row []any) error
	CreateFile(ctx context.Context, meta FileMeta, content io.Reader) (*File, error)
	GetFile(ctx context.Context, fileID string) (io.ReadCloser, error)
	SendRaw(ctx context.Context, raw []byte) error
}

// APIFactory builds an API bound to a token source
type APIFactory func(ctx context.Context, ts oauth2.TokenSource) (API, error)

const (
	sheetTimeLayout = "02/01/2006 15:04:05"
	fileTimeLayout  = "20060102_150405"
	descTimeLayout  = "02/01/2006 15:04"
)

// SheetHeaders names the columns produced by SheetRow
var SheetHeaders = []string{
	"Full Name", "Email", "Geographic Area", "Main Sector", "Registered At", "Language", "Status",
}

var titleCaser = cases.Title(language.Und)

// SheetRow formats a registration as a spreadsheet row (columns A:G)
func SheetRow(reg *model.Registration) []any {
	return []any{
		reg.FullName,
		reg.Email,
		reg.GeographicArea,
		reg.MainSector,
		reg.CreatedAt.Format(sheetTimeLayout),
		strings.ToUpper(reg.Language),
		titleCaser.String(reg.Status),
	}
}

var emailReplacer = strings.NewReplacer("@", "_", ".", "_")

// FileName returns the remote name for an applicant's résumé
func FileName(at time.Time, email, original string) string {
	return at.Format(fileTimeLayout) + "_" + emailReplacer.Replace(email) + "_" + original
}

// FileDescription is the description stored alongside the remote file
func FileDescription(at time.Time, email string) string {
	return "CV from " + email + " - " + at.Format(descTimeLayout)
}
