package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes requested during the consent flow
var Scopes = []string{
	sheets.SpreadsheetsScope,
	gmail.GmailSendScope,
	drive.DriveFileScope,
}

// GoogleAPI talks to Sheets, Drive and Gmail with a single token source
type GoogleAPI struct {
	sheets *sheets.Service
	drive  *drive.Service
	gmail  *gmail.Service
}

func NewGoogleAPI(ctx context.Context, ts oauth2.TokenSource) (API, error) {
	opt := option.WithTokenSource(ts)

	sheetsSvc, err := sheets.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	gmailSvc, err := gmail.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}

	return &GoogleAPI{
		sheets: sheetsSvc,
		drive:  driveSvc,
		gmail:  gmailSvc,
	}, nil
}

func (g *GoogleAPI) AppendValues(ctx context.Context, spreadsheetID, valueRange string, row []any) error {
	body := &sheets.ValueRange{Values: [][]any{row}}
	_, err := g.sheets.Spreadsheets.Values.Append(spreadsheetID, valueRange, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (g *GoogleAPI) CreateFile(ctx context.Context, meta FileMeta, content io.Reader) (*File, error) {
	file := &drive.File{
		Name:        meta.Name,
		Description: meta.Description,
		MimeType:    meta.ContentType,
	}
	if meta.FolderID != "" {
		file.Parents = []string{meta.FolderID}
	}

	created, err := g.drive.Files.Create(file).
		Media(content, googleapi.ContentType(meta.ContentType)).
		Fields("id", "name", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	return &File{
		ID:   created.Id,
		Name: created.Name,
		Link: created.WebViewLink,
	}, nil
}

func (g *GoogleAPI) GetFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := g.drive.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (g *GoogleAPI) SendRaw(ctx context.Context, raw []byte) error {
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	_, err := g.gmail.Users.Messages.Send("me", msg).Context(ctx).Do()
	return err
}
