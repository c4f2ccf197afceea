package jobs

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/storage"
)

// sweepMinAge protects objects from in-flight uploads: an object younger
// than this may belong to an ingestion whose transaction has not
// committed yet.
const sweepMinAge = time.Hour

// SweepDocumentRepository is the document lookup the sweep needs.
type SweepDocumentRepository interface {
	GetByS3Key(ctx context.Context, key string) (*domain.Document, error)
}

// SweepObjectStore lists and deletes stored objects.
type SweepObjectStore interface {
	ListObjects(ctx context.Context, prefix string) ([]storage.StoredObject, error)
	DeleteObject(ctx context.Context, key string) error
}

// OrphanSweep reconciles object storage against the document table.
// Ingestion deletes its uploaded object when the database transaction
// fails, but that delete is best effort; this sweep removes any object
// no document row references.
type OrphanSweep struct {
	docRepo SweepDocumentRepository
	store   SweepObjectStore
	prefix  string
	now     func() time.Time
}

func NewOrphanSweep(docRepo SweepDocumentRepository, store SweepObjectStore) *OrphanSweep {
	return &OrphanSweep{
		docRepo: docRepo,
		store:   store,
		prefix:  "documents/",
		now:     time.Now,
	}
}

// ProcessJobs deletes unreferenced objects older than sweepMinAge.
func (s *OrphanSweep) ProcessJobs(ctx context.Context) error {
	objects, err := s.store.ListObjects(ctx, s.prefix)
	if err != nil {
		return err
	}

	cutoff := s.now().Add(-sweepMinAge)
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}

		_, err := s.docRepo.GetByS3Key(ctx, obj.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			return err
		}

		if err := s.store.DeleteObject(ctx, obj.Key); err != nil {
			log.Printf("sweep: failed to delete orphan object %s: %v", obj.Key, err)
			continue
		}
		log.Printf("sweep: deleted orphan object %s", obj.Key)
	}

	return nil
}
