package model

import (
	"time"
)

const (
	DefaultLanguage = "es"
	StatusPending   = "pending"
)

// Registration is one applicant's submission.
// Optional fields are nil until the step that produces them succeeds.
type Registration struct {
	ID             string    `db:"id" json:"id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Email          string    `db:"email" json:"email"`
	GeographicArea string    `db:"geographic_area" json:"geographic_area"`
	MainSector     string    `db:"main_sector" json:"main_sector"`
	Language       string    `db:"language" json:"language"`
	CVFilename     *string   `db:"cv_filename" json:"cv_filename,omitempty"`
	CVFilePath     *string   `db:"cv_file_path" json:"cv_file_path,omitempty"`
	RemoteFileID   *string   `db:"remote_file_id" json:"remote_file_id,omitempty"`
	RemoteFileLink *string   `db:"remote_file_link" json:"remote_file_link,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"timestamp"`
}

// HasLocalFile reports whether a stored file path was recorded.
// Whether the file still exists is a question for the file store.
func (r *Registration) HasLocalFile() bool {
	return r.CVFilePath != nil && *r.CVFilePath != ""
}

func (r *Registration) HasRemoteFile() bool {
	return r.RemoteFileID != nil && *r.RemoteFileID != ""
}

func (r *Registration) Filename() string {
	if r.CVFilename == nil {
		return ""
	}
	return *r.CVFilename
}

func (r *Registration) FilePath() string {
	if r.CVFilePath == nil {
		return ""
	}
	return *r.CVFilePath
}

func (r *Registration) RemoteLink() string {
	if r.RemoteFileLink == nil {
		return ""
	}
	return *r.RemoteFileLink
}

// RegistrationResult is what the applicant gets back after submitting
type RegistrationResult struct {
	Message        string `json:"message"`
	RegistrationID string `json:"registration_id"`
	EmailSent      bool   `json:"email_sent"`
	CVSaved        bool   `json:"cv_saved"`
}

// BackfillReport counts the outcome of one backfill run
type BackfillReport struct {
	Migrated      int `json:"migrated"`
	AlreadyRemote int `json:"already_remote"`
	Failed        int `json:"failed"`
	Total         int `json:"total"`
}
