package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/pymetra/registration/internal/model"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRemoteFileAlreadySet = errors.New("registration already has a remote file")
)

type RegistrationRepository interface {
	Create(ctx context.Context, registration *model.Registration) error
	ByID(ctx context.Context, id string) (*model.Registration, error)
	Count(ctx context.Context) (int, error)
	Latest(ctx context.Context, limit int) ([]*model.Registration, error)
	All(ctx context.Context) ([]*model.Registration, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetRemoteFile(ctx context.Context, id, fileID, link string) error
}

type registrationRepository struct {
	db *sqlx.DB
}

func NewRegistrationRepository(db *sqlx.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	query := `INSERT INTO registrations (id, full_name, email, geographic_area, main_sector, language, cv_filename, cv_file_path, remote_file_id, remote_file_link, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		reg.ID,
		reg.FullName,
		reg.Email,
		reg.GeographicArea,
		reg.MainSector,
		reg.Language,
		reg.CVFilename,
		reg.CVFilePath,
		reg.RemoteFileID,
		reg.RemoteFileLink,
		reg.Status,
		reg.CreatedAt,
	)

	return err
}

func (r *registrationRepository) ByID(ctx context.Context, id string) (*model.Registration, error) {
	reg := &model.Registration{}
	query := `SELECT * FROM registrations WHERE id = $1`

	err := r.db.GetContext(ctx, reg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}

	return reg, nil
}

func (r *registrationRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM registrations`)
	return count, err
}

// Latest returns up to limit registrations, newest first
func (r *registrationRepository) Latest(ctx context.Context, limit int) ([]*model.Registration, error) {
	registrations := []*model.Registration{}
	query := `SELECT * FROM registrations ORDER BY created_at DESC, id LIMIT $1`

	err := r.db.SelectContext(ctx, &registrations, query, limit)
	if err != nil {
		return nil, err
	}

	return registrations, nil
}

// All returns every registration, oldest first, for batch jobs
func (r *registrationRepository) All(ctx context.Context) ([]*model.Registration, error) {
	registrations := []*model.Registration{}
	query := `SELECT * FROM registrations ORDER BY created_at ASC, id`

	err := r.db.SelectContext(ctx, &registrations, query)
	if err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE registrations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return expectOneRow(result, ErrRegistrationNotFound)
}

// SetRemoteFile records the remote copy of the CV.
// The update only applies while no remote file is recorded, so a stored remote id is never replaced.
func (r *registrationRepository) SetRemoteFile(ctx context.Context, id, fileID, link string) error {
	query := `UPDATE registrations SET remote_file_id = $1, remote_file_link = $2 WHERE id = $3 AND remote_file_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, fileID, link, id)
	if err != nil {
		return err
	}

	err = expectOneRow(result, ErrRemoteFileAlreadySet)
	if errors.Is(err, ErrRemoteFileAlreadySet) {
		// distinguish a missing row from one that was already migrated
		_, lookupErr := r.ByID(ctx, id)
		if lookupErr != nil {
			return lookupErr
		}
	}
	return err
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
