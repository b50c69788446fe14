package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pymetra/registration/internal/model"
)

var ErrCredentialNotFound = errors.New("credential not found")

type CredentialRepository interface {
	ByProvider(ctx context.Context, provider string) (*model.Credential, error)
	Save(ctx context.Context, credential *model.Credential) error
	Delete(ctx context.Context, provider string) error
}

type credentialRepository struct {
	db *sqlx.DB
}

func NewCredentialRepository(db *sqlx.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) ByProvider(ctx context.Context, provider string) (*model.Credential, error) {
	cred := &model.Credential{}
	query := `SELECT * FROM oauth_credentials WHERE provider = $1`

	err := r.db.GetContext(ctx, cred, query, provider)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}

	return cred, nil
}

// Save upserts the credential for its provider
func (r *credentialRepository) Save(ctx context.Context, cred *model.Credential) error {
	if cred.UpdatedAt.IsZero() {
		cred.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO oauth_credentials (provider, access_token, refresh_token, token_type, expiry, scopes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			scopes = excluded.scopes,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		cred.Provider,
		cred.AccessToken,
		cred.RefreshToken,
		cred.TokenType,
		cred.Expiry,
		cred.Scopes,
		cred.UpdatedAt,
	)
	return err
}

func (r *credentialRepository) Delete(ctx context.Context, provider string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM oauth_credentials WHERE provider = $1`, provider)
	return err
}
