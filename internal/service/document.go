package service

import (
	"context"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/telemetry"
)

// DocumentSort selects the ordering of a document listing.
type DocumentSort string

const (
	DocumentSortDate    DocumentSort = "date"
	DocumentSortName    DocumentSort = "name"
	DocumentSortQueries DocumentSort = "queries"
)

// DocumentFilter narrows a document listing. The literal value "all"
// on Type or Aircraft disables that filter.
type DocumentFilter struct {
	Type     string
	Aircraft string
	Search   string
	Sort     DocumentSort
}

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetByS3Key(ctx context.Context, key string) (*domain.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]*domain.Document, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	IncrementQueryCounts(ctx context.Context, ids []string) error
}

// ChunkRepositoryInterface defines the repository interface for chunk persistence
type ChunkRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Chunk) error
	SearchNearest(ctx context.Context, embedding []float32, limit int) ([]*domain.RetrievedChunk, error)
	CountByDocument(ctx context.Context, documentID string) (int, error)
}

// DocumentService handles the document catalog: listing, lookup and the
// soft-delete lifecycle. Ingestion lives in IngestService.
type DocumentService struct {
	docRepo DocumentRepositoryInterface
}

func NewDocumentService(docRepo DocumentRepositoryInterface) *DocumentService {
	return &DocumentService{docRepo: docRepo}
}

// List returns non-deleted documents matching the filter.
func (s *DocumentService) List(ctx context.Context, filter DocumentFilter) ([]*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.List", telemetry.SpanAttributes{Operation: "list_documents"})
	defer span.End()

	docs, err := s.docRepo.List(ctx, filter)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return docs, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// Delete soft-deletes a document. Its chunks and stored object are
// retained so the document can be restored. Deleting an already-deleted
// document succeeds without changing anything further.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{DocumentID: id, Operation: "delete_document"})
	defer span.End()

	if err := s.docRepo.SoftDelete(ctx, id); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// Restore returns a soft-deleted document to the ready state. Restoring
// a document that was never deleted is a no-op.
func (s *DocumentService) Restore(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Restore", telemetry.SpanAttributes{DocumentID: id, Operation: "restore_document"})
	defer span.End()

	if err := s.docRepo.Restore(ctx, id); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}
