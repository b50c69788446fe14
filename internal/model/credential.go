package model

import (
	"time"
)

const CredentialProviderGoogle = "google"

// Credential is a stored OAuth token used for remote replication
type Credential struct {
	Provider     string     `db:"provider"`
	AccessToken  string     `db:"access_token"`
	RefreshToken string     `db:"refresh_token"`
	TokenType    string     `db:"token_type"`
	Expiry       *time.Time `db:"expiry"`
	Scopes       string     `db:"scopes"` // space separated
	UpdatedAt    time.Time  `db:"updated_at"`
}
