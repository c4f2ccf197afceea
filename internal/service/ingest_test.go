package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectStore is a mock implementation of ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetByS3Key(ctx context.Context, key string) (*domain.Document, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, filter DocumentFilter) ([]*domain.Document, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) Restore(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) IncrementQueryCounts(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// fakeTxRunner runs the callback against fixed repositories without a
// real transaction.
type fakeTxRunner struct {
	repos  TxRepositories
	called bool
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	f.called = true
	return fn(f.repos)
}

type fakeTxRepos struct {
	docs   DocumentRepositoryInterface
	chunks ChunkRepositoryInterface
}

func (f *fakeTxRepos) Documents() DocumentRepositoryInterface { return f.docs }
func (f *fakeTxRepos) Chunks() ChunkRepositoryInterface       { return f.chunks }

func newIngestService(txRunner TxRunner, store ObjectStore, embedder EmbeddingClient) *IngestService {
	svc := NewIngestService(txRunner, store, embedder, 1000, 1024*1024)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	svc.uuidGen = &sequenceUUIDGenerator{}
	return svc
}

func TestUpload_MissingFile(t *testing.T) {
	store := new(MockObjectStore)
	svc := newIngestService(&fakeTxRunner{}, store, new(MockEmbeddingClient))

	_, err := svc.Upload(context.Background(), UploadInput{Name: "FCOM", Type: domain.DocumentTypeFCOM})
	assert.ErrorIs(t, err, domain.ErrMissingFile)
	store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_FileTooLarge(t *testing.T) {
	store := new(MockObjectStore)
	svc := newIngestService(&fakeTxRunner{}, store, new(MockEmbeddingClient))

	_, err := svc.Upload(context.Background(), UploadInput{
		Name: "FCOM",
		Type: domain.DocumentTypeFCOM,
		Data: make([]byte, 1024*1024+1),
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	store := new(MockObjectStore)
	svc := newIngestService(&fakeTxRunner{}, store, new(MockEmbeddingClient))

	_, err := svc.Upload(context.Background(), UploadInput{
		Name:     "notes",
		Type:     domain.DocumentTypeOther,
		FileName: "notes.txt",
		Data:     []byte("plain text, not a manual"),
	})
	assert.ErrorIs(t, err, domain.ErrNotAPDF)
	store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_StorageFailureAbortsIngestion(t *testing.T) {
	store := new(MockObjectStore)
	txRunner := &fakeTxRunner{}
	svc := newIngestService(txRunner, store, new(MockEmbeddingClient))

	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, "application/pdf").
		Return(errors.New("bucket unavailable"))

	_, err := svc.Upload(context.Background(), UploadInput{
		Name:     "FCOM",
		Type:     domain.DocumentTypeFCOM,
		FileName: "fcom.pdf",
		Data:     []byte("%PDF-1.4 pretend"),
	})
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrStorageOperationFail.Message, domainErr.Message)
	assert.False(t, txRunner.called)
}

func TestUpload_UnparseablePDFCleansUpObject(t *testing.T) {
	store := new(MockObjectStore)
	txRunner := &fakeTxRunner{}
	svc := newIngestService(txRunner, store, new(MockEmbeddingClient))

	// Carries the PDF magic header but is not a parseable document.
	data := []byte("%PDF-1.4 truncated garbage")

	store.On("PutObject", mock.Anything, mock.Anything, data, "application/pdf").Return(nil)
	store.On("DeleteObject", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Upload(context.Background(), UploadInput{
		Name:     "FCOM",
		Type:     domain.DocumentTypeFCOM,
		FileName: "fcom.pdf",
		Data:     data,
	})
	require.Error(t, err)
	assert.False(t, txRunner.called)
	store.AssertCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}

func TestObjectKey(t *testing.T) {
	svc := newIngestService(&fakeTxRunner{}, new(MockObjectStore), new(MockEmbeddingClient))

	key := svc.objectKey("fcom vol 1.pdf")
	assert.Equal(t, "documents/1773478800000-fcom vol 1.pdf", key)

	// Path components are stripped so keys stay under the prefix.
	key = svc.objectKey("../../etc/passwd")
	assert.Equal(t, "documents/1773478800000-passwd", key)

	key = svc.objectKey("")
	assert.Equal(t, "documents/1773478800000-document.pdf", key)
}
