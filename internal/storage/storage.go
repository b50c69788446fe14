package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	cfg "github.com/pymetra/registration/internal/config"
)

var ErrNotFound = errors.New("stored file not found")

// Storage defines the interface for CV file storage
type Storage interface {
	// Save stores a file at the given key
	Save(ctx context.Context, key string, file io.Reader, contentType string) error

	// Open returns a reader for the stored file, ErrNotFound if it is missing
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether a file is stored at key
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes a file at the given key
	Delete(ctx context.Context, key string) error

	// Close releases the underlying connection
	Close() error
}

// New creates the storage selected by STORAGE_DRIVER
func New(ctx context.Context, c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(ctx, S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	case "local", "":
		slog.Info("initializing local storage", "dir", c.StorageLocalDir)
		return NewLocalStorage(ctx, c.StorageLocalDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

// CVKey builds the storage key for an applicant's CV: <timestamp>_<email>_<id>_cv<ext>.
// The id prefix keeps keys distinct when one address submits twice in a second.
func CVKey(now time.Time, email, id, originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%s_%s_cv%s", now.Format("20060102_150405"), SafeEmail(email), id, ext)
}

// SafeEmail flattens an email address into something usable in file names
func SafeEmail(email string) string {
	return strings.NewReplacer("@", "_", ".", "_", "/", "_", "\\", "_").Replace(email)
}
