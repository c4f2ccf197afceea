package service

import (
	"context"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/pdfextract"
	"github.com/flightdeck-ai/flightdeck/internal/telemetry"
)

// ObjectStore is the object storage surface ingestion depends on.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
}

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// IngestService turns an uploaded PDF into a retrievable document: the
// original bytes go to object storage, the text is chunked and embedded,
// and the document row plus all chunk rows commit in one transaction. A
// query can therefore never observe a half-ingested document.
type IngestService struct {
	txRunner       TxRunner
	store          ObjectStore
	embedder       EmbeddingClient
	uuidGen        UUIDGenerator
	now            func() time.Time
	chunkSize      int
	maxUploadBytes int64
}

func NewIngestService(txRunner TxRunner, store ObjectStore, embedder EmbeddingClient, chunkSize int, maxUploadBytes int64) *IngestService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &IngestService{
		txRunner:       txRunner,
		store:          store,
		embedder:       embedder,
		uuidGen:        &DefaultUUIDGenerator{},
		now:            time.Now,
		chunkSize:      chunkSize,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadInput is the input for ingesting a document.
type UploadInput struct {
	Name         string
	Type         domain.DocumentType
	AircraftType string
	Version      string
	Notes        string
	FileName     string
	Data         []byte
	UploadedBy   string
}

// Upload validates, stores and indexes a PDF manual.
func (s *IngestService) Upload(ctx context.Context, input UploadInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Upload", telemetry.SpanAttributes{
		UserID:    input.UploadedBy,
		Operation: "upload_document",
	})
	defer span.End()

	if len(input.Data) == 0 {
		return nil, domain.ErrMissingFile
	}
	if s.maxUploadBytes > 0 && int64(len(input.Data)) > s.maxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}
	if !pdfextract.IsPDF(input.Data) {
		return nil, domain.ErrNotAPDF
	}
	if input.Name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "document name is required")
	}

	doc := &domain.Document{
		ID:           s.uuidGen.NewString(),
		Name:         input.Name,
		Type:         input.Type,
		AircraftType: input.AircraftType,
		Version:      input.Version,
		Notes:        input.Notes,
		S3Key:        s.objectKey(input.FileName),
		Status:       domain.DocumentStatusReady,
		UploadedBy:   input.UploadedBy,
		UploadDate:   s.now().UTC(),
	}
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}

	if err := s.store.PutObject(ctx, doc.S3Key, input.Data, "application/pdf"); err != nil {
		span.SetError(err)
		return nil, domain.ErrStorageOperationFail.WithCause(err)
	}

	extracted, err := pdfextract.Extract(input.Data)
	if err != nil {
		s.cleanupObject(ctx, doc.S3Key)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to extract PDF text", err)
	}
	doc.PageCount = extracted.PageCount

	chunks := ChunkText(extracted.Text, s.chunkSize)

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Documents().Create(ctx, doc); err != nil {
			return err
		}
		for i, content := range chunks {
			embedding, err := s.embedder.GenerateEmbedding(ctx, content)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i, err)
			}
			chunk := &domain.Chunk{
				ID:         s.uuidGen.NewString(),
				DocumentID: doc.ID,
				ChunkIndex: i,
				Content:    content,
				Embedding:  embedding,
			}
			if err := repos.Chunks().Create(ctx, chunk); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		s.cleanupObject(ctx, doc.S3Key)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "document ingestion failed", err)
	}

	return doc, nil
}

// objectKey mirrors the stored layout: documents/<unix-ms>-<filename>.
func (s *IngestService) objectKey(fileName string) string {
	name := path.Base(fileName)
	if name == "." || name == "/" || name == "" {
		name = "document.pdf"
	}
	return fmt.Sprintf("documents/%d-%s", s.now().UnixMilli(), name)
}

// cleanupObject removes the stored object after a failed ingestion. The
// delete is best effort; the orphan sweep catches anything left behind.
func (s *IngestService) cleanupObject(ctx context.Context, key string) {
	if err := s.store.DeleteObject(ctx, key); err != nil {
		log.Printf("ingest: failed to clean up object %s: %v", key, err)
		telemetry.CaptureError(ctx, err)
	}
}
