package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
)

// LocalStorage keeps files in a directory on disk through a gocloud file bucket
type LocalStorage struct {
	bucket *blob.Bucket
}

func NewLocalStorage(ctx context.Context, dir string) (*LocalStorage, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}

	// no .attrs sidecar files next to the CVs
	bucket, err := fileblob.OpenBucket(abs, &fileblob.Options{
		Metadata: fileblob.MetadataDontWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage directory: %w", err)
	}

	return &LocalStorage{bucket: bucket}, nil
}

func (s *LocalStorage) Save(ctx context.Context, key string, file io.Reader, contentType string) error {
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(writeCtx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to open writer: %w", err)
	}

	_, err = w.ReadFrom(file)
	if err != nil {
		// cancelling before Close discards the partial write
		cancel()
		_ = w.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("failed to commit file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return r, nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.Exists(ctx, key)
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (s *LocalStorage) Close() error {
	return s.bucket.Close()
}
