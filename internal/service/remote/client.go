package remote

import (
	"context"
	"fmt"
	"io"

	"github.com/pymetra/registration/internal/model"
)

// ClientConfig holds the remote destinations
type ClientConfig struct {
	SpreadsheetID string
	SheetRange    string
	FolderID      string
}

type Client struct {
	creds  Credentials
	newAPI APIFactory
	cfg    ClientConfig
}

func NewClient(creds Credentials, newAPI APIFactory, cfg ClientConfig) *Client {
	if cfg.SheetRange == "" {
		cfg.SheetRange = "A:G"
	}
	return &Client{
		creds:  creds,
		newAPI: newAPI,
		cfg:    cfg,
	}
}

// Authenticated reports whether remote calls can be attempted
func (c *Client) Authenticated(ctx context.Context) bool {
	return c.creds.Valid(ctx)
}

func (c *Client) api(ctx context.Context) (API, error) {
	if !c.creds.Valid(ctx) {
		return nil, ErrNotAuthenticated
	}
	ts, err := c.creds.TokenSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("token source: %w", err)
	}
	api, err := c.newAPI(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("google api: %w", err)
	}
	return api, nil
}

// AppendRow adds the registration to the configured spreadsheet
func (c *Client) AppendRow(ctx context.Context, reg *model.Registration) error {
	api, err := c.api(ctx)
	if err != nil {
		return err
	}
	if c.cfg.SpreadsheetID == "" {
		return fmt.Errorf("append row: spreadsheet id not configured")
	}
	if err := api.AppendValues(ctx, c.cfg.SpreadsheetID, c.cfg.SheetRange, SheetRow(reg)); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// UploadFile stores the applicant's résumé in the configured Drive folder
func (c *Client) UploadFile(ctx context.Context, reg *model.Registration, content io.Reader, contentType string) (*File, error) {
	api, err := c.api(ctx)
	if err != nil {
		return nil, err
	}
	meta := FileMeta{
		Name:        FileName(reg.CreatedAt, reg.Email, reg.Filename()),
		Description: FileDescription(reg.CreatedAt, reg.Email),
		ContentType: contentType,
		FolderID:    c.cfg.FolderID,
	}
	file, err := api.CreateFile(ctx, meta, content)
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	return file, nil
}

// SendMessage mails msg through the authenticated Gmail account
func (c *Client) SendMessage(ctx context.Context, msg Message) error {
	api, err := c.api(ctx)
	if err != nil {
		return err
	}
	raw, err := BuildMIME(msg)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	if err := api.SendRaw(ctx, raw); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// DownloadFile streams a previously uploaded file; the caller closes it
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	api, err := c.api(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := api.GetFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	return rc, nil
}
