package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pymetra/registration/internal/model"
	"github.com/pymetra/registration/internal/service/remote"
)

func seedRegistration(t *testing.T, f *fixture, id string, localContent []byte, remoteID string) *model.Registration {
	t.Helper()
	ctx := context.Background()

	name := "cv.pdf"
	reg := &model.Registration{
		ID:             id,
		FullName:       "Applicant " + id,
		Email:          id + "@x.com",
		GeographicArea: "Madrid",
		MainSector:     "Retail",
		Language:       "es",
		CVFilename:     &name,
		Status:         model.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if localContent != nil {
		key := id + "_cv.pdf"
		require.NoError(t, f.store.Save(ctx, key, bytes.NewReader(localContent), "application/pdf"))
		reg.CVFilePath = &key
	}
	if remoteID != "" {
		link := "https://drive.example/" + remoteID
		reg.RemoteFileID = &remoteID
		reg.RemoteFileLink = &link
	}
	require.NoError(t, f.repo.Create(ctx, reg))
	return reg
}

func TestBackfill_RequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	f.replicator.On("Authenticated").Return(false)

	report, err := NewBackfillService(f.repo, f.store, f.replicator).Run(context.Background())
	assert.ErrorIs(t, err, remote.ErrNotAuthenticated)
	assert.Nil(t, report)
}

func TestBackfill_CountsAndIdempotence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seedRegistration(t, f, "local-ok", []byte("one"), "")
	seedRegistration(t, f, "local-fails", []byte("two"), "")
	seedRegistration(t, f, "remote", []byte("three"), "drive-existing")
	seedRegistration(t, f, "no-file", nil, "")
	missing := seedRegistration(t, f, "missing-file", []byte("four"), "")
	require.NoError(t, f.store.Delete(ctx, missing.FilePath()))

	f.replicator.On("Authenticated").Return(true)
	f.replicator.On("UploadFile", "local-ok", []byte("one"), "application/pdf").
		Return(&remote.File{ID: "drive-ok", Link: "https://drive.example/ok"}, nil).Once()
	f.replicator.On("UploadFile", "local-fails", []byte("two"), "application/pdf").
		Return(nil, errors.New("quota")).Once()

	svc := NewBackfillService(f.repo, f.store, f.replicator)

	report, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.BackfillReport{Migrated: 1, AlreadyRemote: 1, Failed: 3, Total: 5}, *report)

	reg, err := f.repo.ByID(ctx, "local-ok")
	require.NoError(t, err)
	assert.Equal(t, "drive-ok", *reg.RemoteFileID)

	// second run: the failed upload is retried, nothing is migrated twice
	f.replicator.On("UploadFile", "local-fails", []byte("two"), "application/pdf").
		Return(nil, errors.New("quota")).Once()

	report, err = svc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Migrated)
	assert.Equal(t, 2, report.AlreadyRemote)
	assert.Equal(t, 3, report.Failed)

	f.replicator.AssertNumberOfCalls(t, "UploadFile", 3)
	f.replicator.AssertExpectations(t)
}

func TestBackfill_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	for i := range 3 {
		seedRegistration(t, f, fmt.Sprintf("reg-%d", i), []byte("cv"), "")
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.replicator.On("Authenticated").Return(true)
	f.replicator.On("UploadFile", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(&remote.File{ID: "drive", Link: "link"}, nil).Once()

	report, err := NewBackfillService(f.repo, f.store, f.replicator).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 3, report.Total)
	f.replicator.AssertNumberOfCalls(t, "UploadFile", 1)
}
