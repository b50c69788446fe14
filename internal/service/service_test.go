package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pymetra/registration/internal/model"
	"github.com/pymetra/registration/internal/repository"
	"github.com/pymetra/registration/internal/service/remote"
	"github.com/pymetra/registration/internal/storage"
	"github.com/pymetra/registration/internal/testutil"
)

type mockReplicator struct {
	mock.Mock
}

func (m *mockReplicator) Authenticated(ctx context.Context) bool {
	return m.Called().Bool(0)
}

func (m *mockReplicator) AppendRow(ctx context.Context, reg *model.Registration) error {
	return m.Called(reg.ID).Error(0)
}

func (m *mockReplicator) UploadFile(ctx context.Context, reg *model.Registration, content io.Reader, contentType string) (*remote.File, error) {
	data, _ := io.ReadAll(content)
	args := m.Called(reg.ID, data, contentType)
	file, _ := args.Get(0).(*remote.File)
	return file, args.Error(1)
}

func (m *mockReplicator) SendMessage(ctx context.Context, msg remote.Message) error {
	return m.Called(msg).Error(0)
}

func (m *mockReplicator) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	args := m.Called(fileID)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

type sentNotification struct {
	reg        *model.Registration
	attachment *Attachment
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentNotification
}

func (f *fakeNotifier) SendRegistrationNotification(ctx context.Context, reg *model.Registration, attachment *Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{reg: reg, attachment: attachment})
	return f.err
}

type failingSaveStore struct {
	storage.Storage
}

func (failingSaveStore) Save(context.Context, string, io.Reader, string) error {
	return errors.New("disk full")
}

// failingCreateRepo accepts reads but cannot persist new records
type failingCreateRepo struct {
	repository.RegistrationRepository
}

func (failingCreateRepo) Create(context.Context, *model.Registration) error {
	return errors.New("database is locked")
}

type fixture struct {
	repo       repository.RegistrationRepository
	dir        string
	store      *storage.LocalStorage
	replicator *mockReplicator
	notifier   *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewLocalStorage(context.Background(), dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &fixture{
		repo:       repository.NewRegistrationRepository(testutil.NewDB(t)),
		dir:        dir,
		store:      store,
		replicator: &mockReplicator{},
		notifier:   &fakeNotifier{},
	}
}

func (f *fixture) registrationService(t *testing.T, store storage.Storage) *RegistrationService {
	t.Helper()
	if store == nil {
		store = f.store
	}
	return f.serviceWith(t, f.repo, store)
}

func (f *fixture) serviceWith(t *testing.T, repo repository.RegistrationRepository, store storage.Storage) *RegistrationService {
	t.Helper()
	svc, err := NewRegistrationService(repo, store, f.replicator, f.notifier, 5<<20, "ops@pymetra.test", "Pymetra")
	require.NoError(t, err)
	return svc
}

func readCV(t *testing.T, svc *RegistrationService, id string) string {
	t.Helper()
	rc, _, err := svc.CVFile(context.Background(), id)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func validInput(content []byte) RegistrationInput {
	return RegistrationInput{
		FullName:       "Ana Ruiz",
		Email:          "ana@x.com",
		GeographicArea: "Madrid",
		MainSector:     "Retail",
		Filename:       "cv.pdf",
		ContentType:    "application/pdf",
		Size:           int64(len(content)),
		Content:        bytes.NewReader(content),
	}
}
