package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pymetra/registration/internal/markdown"
	"github.com/pymetra/registration/internal/model"
	"github.com/pymetra/registration/internal/repository"
	"github.com/pymetra/registration/internal/service/remote"
	"github.com/pymetra/registration/internal/storage"
	"github.com/pymetra/registration/internal/validation"
)

const RegistrationSuccessMessage = "Registration completed successfully"

// ErrInvalidSubmission wraps every client input error of Register
var ErrInvalidSubmission = errors.New("invalid submission")

// Notifier sends the local backup notification
type Notifier interface {
	SendRegistrationNotification(ctx context.Context, reg *model.Registration, attachment *Attachment) error
}

// Replicator is the remote replication surface, implemented by remote.Client
type Replicator interface {
	Authenticated(ctx context.Context) bool
	AppendRow(ctx context.Context, reg *model.Registration) error
	UploadFile(ctx context.Context, reg *model.Registration, content io.Reader, contentType string) (*remote.File, error)
	SendMessage(ctx context.Context, msg remote.Message) error
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// RegistrationInput is one applicant submission
type RegistrationInput struct {
	FullName       string
	Email          string
	GeographicArea string
	MainSector     string
	Language       string

	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type RegistrationService struct {
	repo        repository.RegistrationRepository
	store       storage.Storage
	replicator  Replicator
	notifier    Notifier
	templates   *markdown.Templates
	constraints validation.FileConstraints
	recipient   string
	appName     string
	now         func() time.Time
}

func NewRegistrationService(
	repo repository.RegistrationRepository,
	store storage.Storage,
	replicator Replicator,
	notifier Notifier,
	maxUploadSize int64,
	recipient string,
	appName string,
) (*RegistrationService, error) {
	templates, err := loadEmailTemplates()
	if err != nil {
		return nil, err
	}
	return &RegistrationService{
		repo:        repo,
		store:       store,
		replicator:  replicator,
		notifier:    notifier,
		templates:   templates,
		constraints: validation.CVConstraints(maxUploadSize),
		recipient:   recipient,
		appName:     appName,
		now:         time.Now,
	}, nil
}

// MaxUploadSize is the largest accepted résumé in bytes
func (s *RegistrationService) MaxUploadSize() int64 {
	return s.constraints.MaxSize
}

// Register validates and persists a submission, then replicates and notifies on a best-effort basis.
// Only validation errors (wrapping ErrInvalidSubmission) and record persistence errors are returned.
func (s *RegistrationService) Register(ctx context.Context, in RegistrationInput) (*model.RegistrationResult, error) {
	if err := s.validate(&in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	content, err := io.ReadAll(io.LimitReader(in.Content, s.constraints.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: could not read CV file", ErrInvalidSubmission)
	}
	if err := validation.ValidateUpload(in.ContentType, int64(len(content)), s.constraints); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	filename := in.Filename
	reg := &model.Registration{
		ID:             uuid.NewString(),
		FullName:       in.FullName,
		Email:          in.Email,
		GeographicArea: in.GeographicArea,
		MainSector:     in.MainSector,
		Language:       in.Language,
		CVFilename:     &filename,
		Status:         model.StatusPending,
		CreatedAt:      s.now().UTC(),
	}
	contentType := validation.MediaType(in.ContentType)

	key := storage.CVKey(reg.CreatedAt, reg.Email, reg.ID, filename)
	localSaved := false
	if err := s.store.Save(ctx, key, bytes.NewReader(content), contentType); err != nil {
		slog.Error("failed to store cv locally", "error", err, "email", reg.Email, "key", key)
	} else {
		reg.CVFilePath = &key
		localSaved = true
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		if localSaved {
			if delErr := s.store.Delete(ctx, key); delErr != nil {
				slog.Warn("failed to remove orphaned cv", "error", delErr, "key", key)
			}
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}
	slog.Info("registration created", "registration_id", reg.ID, "email", reg.Email, "cv_saved_locally", localSaved)

	// the record exists; finish notifying even if the client goes away
	ctx = context.WithoutCancel(ctx)

	remoteMail, remoteUpload := s.replicate(ctx, reg, content, contentType)

	var attachment *Attachment
	if localSaved {
		attachment = &Attachment{Filename: filename, ContentType: contentType, Content: content}
	}
	localMail := true
	if err := s.notifier.SendRegistrationNotification(ctx, reg, attachment); err != nil {
		slog.Error("failed to send backup notification", "error", err, "registration_id", reg.ID)
		localMail = false
	}

	return &model.RegistrationResult{
		Message:        RegistrationSuccessMessage,
		RegistrationID: reg.ID,
		EmailSent:      remoteMail || localMail,
		CVSaved:        remoteUpload || localSaved,
	}, nil
}

func (s *RegistrationService) validate(in *RegistrationInput) error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.GeographicArea = strings.TrimSpace(in.GeographicArea)
	in.MainSector = strings.TrimSpace(in.MainSector)
	in.Language = strings.TrimSpace(in.Language)
	if in.Language == "" {
		in.Language = model.DefaultLanguage
	}

	if err := validation.ValidateName(in.FullName); err != nil {
		return err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := validation.ValidateText("geographic area", in.GeographicArea, 200); err != nil {
		return err
	}
	if err := validation.ValidateText("main sector", in.MainSector, 200); err != nil {
		return err
	}
	if err := validation.ValidateLanguage(in.Language); err != nil {
		return err
	}
	if in.Content == nil || in.Filename == "" {
		return validation.ErrFileRequired
	}
	return validation.ValidateUpload(in.ContentType, in.Size, s.constraints)
}

// replicate runs the remote bundle: append-row and upload-file concurrently,
// then send-message so it can link the uploaded file. Each call is attempted
// once and its failure only clears its own flag.
func (s *RegistrationService) replicate(ctx context.Context, reg *model.Registration, content []byte, contentType string) (mailSent, uploaded bool) {
	if !s.replicator.Authenticated(ctx) {
		slog.Info("remote replication skipped, not authenticated", "registration_id", reg.ID)
		return false, false
	}

	var file *remote.File
	var g errgroup.Group

	g.Go(func() error {
		if err := s.replicator.AppendRow(ctx, reg); err != nil {
			slog.Error("failed to append registration to sheet", "error", err, "registration_id", reg.ID)
		}
		return nil
	})
	g.Go(func() error {
		f, err := s.replicator.UploadFile(ctx, reg, bytes.NewReader(content), contentType)
		if err != nil {
			slog.Error("failed to upload cv to drive", "error", err, "registration_id", reg.ID)
			return nil
		}
		file = f
		return nil
	})
	_ = g.Wait()

	if file != nil {
		uploaded = true
		if err := s.repo.SetRemoteFile(ctx, reg.ID, file.ID, file.Link); err != nil {
			slog.Error("failed to record remote file", "error", err, "registration_id", reg.ID, "remote_file_id", file.ID)
		} else {
			reg.RemoteFileID = &file.ID
			reg.RemoteFileLink = &file.Link
		}
	}

	msg, err := renderRegistrationEmail(s.templates, newRegistrationEmailData(s.appName, reg, file, false))
	if err != nil {
		slog.Error("failed to render remote message", "error", err, "registration_id", reg.ID)
		return false, uploaded
	}
	err = s.replicator.SendMessage(ctx, remote.Message{
		To:      s.recipient,
		Subject: msg.Subject,
		Body:    msg.Text,
	})
	if err != nil {
		slog.Error("failed to send message through gmail", "error", err, "registration_id", reg.ID)
		return false, uploaded
	}
	return true, uploaded
}

// CVFile opens a registration's résumé: the local copy when present, else the remote copy.
// It returns repository.ErrRegistrationNotFound or storage.ErrNotFound when there is nothing to serve.
func (s *RegistrationService) CVFile(ctx context.Context, id string) (io.ReadCloser, *model.Registration, error) {
	reg, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if reg.HasLocalFile() {
		rc, err := s.store.Open(ctx, reg.FilePath())
		if err == nil {
			return rc, reg, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, nil, err
		}
		slog.Warn("local cv missing", "registration_id", id, "key", reg.FilePath())
	}

	if reg.HasRemoteFile() {
		rc, err := s.replicator.DownloadFile(ctx, *reg.RemoteFileID)
		if err != nil {
			return nil, nil, fmt.Errorf("remote cv: %w", err)
		}
		return rc, reg, nil
	}

	return nil, nil, storage.ErrNotFound
}

func (s *RegistrationService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Latest returns up to limit records, newest first; limit is clamped to [1, 1000]
func (s *RegistrationService) Latest(ctx context.Context, limit int) ([]*model.Registration, error) {
	return s.repo.Latest(ctx, ClampLimit(limit, 50))
}

// UpdateStatus is the administrative status change
func (s *RegistrationService) UpdateStatus(ctx context.Context, id, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || len(status) > 50 {
		return fmt.Errorf("%w: status must be between 1 and 50 characters", ErrInvalidSubmission)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

const MaxListLimit = 1000

// ClampLimit applies def to non-positive limits and caps at MaxListLimit
func ClampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// Reason returns the applicant-facing part of an ErrInvalidSubmission error
func Reason(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalidSubmission.Error()+": ")
}
