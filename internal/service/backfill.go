package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pymetra/registration/internal/model"
	"github.com/pymetra/registration/internal/repository"
	"github.com/pymetra/registration/internal/service/remote"
	"github.com/pymetra/registration/internal/storage"
	"github.com/pymetra/registration/internal/validation"
)

// BackfillService uploads local-only résumés to remote storage
type BackfillService struct {
	repo       repository.RegistrationRepository
	store      storage.Storage
	replicator Replicator
}

func NewBackfillService(repo repository.RegistrationRepository, store storage.Storage, replicator Replicator) *BackfillService {
	return &BackfillService{
		repo:       repo,
		store:      store,
		replicator: replicator,
	}
}

// Run scans every registration once. Records that already have a remote file
// are skipped, so running it again is a no-op for migrated records. A single
// record's failure never stops the scan; cancellation does, between records,
// returning the counts so far.
func (s *BackfillService) Run(ctx context.Context) (*model.BackfillReport, error) {
	if !s.replicator.Authenticated(ctx) {
		return nil, remote.ErrNotAuthenticated
	}

	registrations, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	report := &model.BackfillReport{Total: len(registrations)}
	for _, reg := range registrations {
		if err := ctx.Err(); err != nil {
			slog.Warn("backfill interrupted", "migrated", report.Migrated, "failed", report.Failed)
			return report, err
		}

		if reg.HasRemoteFile() {
			report.AlreadyRemote++
			continue
		}

		alreadySet, err := s.migrate(ctx, reg)
		switch {
		case alreadySet:
			report.AlreadyRemote++
		case err != nil:
			report.Failed++
			slog.Warn("backfill failed for registration", "registration_id", reg.ID, "error", err)
		default:
			report.Migrated++
			slog.Info("backfill migrated registration", "registration_id", reg.ID)
		}
	}

	slog.Info("backfill finished",
		"migrated", report.Migrated,
		"already_remote", report.AlreadyRemote,
		"failed", report.Failed,
		"total", report.Total,
	)
	return report, nil
}

func (s *BackfillService) migrate(ctx context.Context, reg *model.Registration) (alreadySet bool, err error) {
	if !reg.HasLocalFile() {
		return false, errors.New("no local file recorded")
	}

	exists, err := s.store.Exists(ctx, reg.FilePath())
	if err != nil {
		return false, fmt.Errorf("check local file: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("local file %s is missing", reg.FilePath())
	}

	rc, err := s.store.Open(ctx, reg.FilePath())
	if err != nil {
		return false, fmt.Errorf("open local file: %w", err)
	}
	defer rc.Close()

	file, err := s.replicator.UploadFile(ctx, reg, rc, validation.CVContentType(reg.FilePath()))
	if err != nil {
		return false, err
	}

	err = s.repo.SetRemoteFile(ctx, reg.ID, file.ID, file.Link)
	if errors.Is(err, repository.ErrRemoteFileAlreadySet) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("record remote file %s: %w", file.ID, err)
	}
	return false, nil
}
