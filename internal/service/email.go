package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/pymetra/registration/internal/markdown"
	"github.com/pymetra/registration/internal/model"
)

// Attachment is a file sent along with a notification
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type EmailService struct {
	client    *resend.Client
	templates *markdown.Templates
	fromEmail string
	recipient string
	isDev     bool
	appName   string
}

func NewEmailService(apiKey, fromEmail, recipient, appName string, isDev bool) (*EmailService, error) {
	templates, err := loadEmailTemplates()
	if err != nil {
		return nil, err
	}

	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		templates: templates,
		fromEmail: fromEmail,
		recipient: recipient,
		isDev:     isDev,
		appName:   appName,
	}, nil
}

// SendRegistrationNotification mails the operator about a new registration, attaching the CV when given
func (s *EmailService) SendRegistrationNotification(ctx context.Context, reg *model.Registration, attachment *Attachment) error {
	msg, err := renderRegistrationEmail(s.templates, newRegistrationEmailData(s.appName, reg, nil, attachment != nil))
	if err != nil {
		return fmt.Errorf("render registration email: %w", err)
	}

	if s.isDev {
		attrs := []any{"type", "registration", "to", s.recipient, "subject", msg.Subject, "registration_id", reg.ID}
		if attachment != nil {
			attrs = append(attrs, "attachment", attachment.Filename, "attachment_bytes", len(attachment.Content))
		}
		slog.Info("email sent (dev mode)", attrs...)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{s.recipient},
		ReplyTo: reg.Email,
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}
	if attachment != nil {
		params.Attachments = []*resend.Attachment{{
			Filename:    attachment.Filename,
			Content:     attachment.Content,
			ContentType: attachment.ContentType,
		}}
	}

	_, err = s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", "registration", "to", s.recipient, "registration_id", reg.ID)
	}
	return err
}
