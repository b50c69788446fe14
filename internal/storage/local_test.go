package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveOpenExists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewLocalStorage(ctx, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	content := []byte("%PDF-1.4 fake cv")
	key := "20250301_100000_ana_x_com_cv.pdf"

	require.NoError(t, store.Save(ctx, key, bytes.NewReader(content), "application/pdf"))

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	// the file lands in the directory under its key, without sidecar files
	onDisk, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)
	_, err = os.Stat(filepath.Join(dir, key+".attrs"))
	assert.True(t, os.IsNotExist(err))

	r, err := store.Open(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, content, got)
}

func TestLocalStorage_MissingFile(t *testing.T) {
	ctx := context.Background()

	store, err := NewLocalStorage(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exists, err := store.Exists(ctx, "nope.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Open(ctx, "nope.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "nope.pdf"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestLocalStorage_FailedWriteLeavesNothing(t *testing.T) {
	ctx := context.Background()

	store, err := NewLocalStorage(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	err = store.Save(ctx, "broken.pdf", failingReader{}, "application/pdf")
	require.Error(t, err)

	exists, err := store.Exists(ctx, "broken.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCVKey(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 5, 7, 0, time.UTC)

	id := "3f2b9c1e-0000-4000-8000-000000000000"

	assert.Equal(t, "20250301_090507_ana_x_com_3f2b9c1e_cv.pdf", CVKey(now, "ana@x.com", id, "My CV.PDF"))
	assert.Equal(t, "20250301_090507_a_b_c_d_3f2b9c1e_cv", CVKey(now, "a.b@c.d", id, "resume"))
	assert.NotEqual(t, CVKey(now, "ana@x.com", id, "cv.pdf"), CVKey(now, "ana@x.com", "7a000000-1111", "cv.pdf"))
}
