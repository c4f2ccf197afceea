package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

const documentColumns = `id, name, type, aircraft_type, version, notes, s3_key, page_count, status, query_count, uploaded_by, upload_date, deleted_at`

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, name, type, aircraft_type, version, notes, s3_key, page_count, status, query_count, uploaded_by, upload_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.Name, d.Type, nullableString(d.AircraftType), nullableString(d.Version), nullableString(d.Notes),
		d.S3Key, d.PageCount, d.Status, d.QueryCount, d.UploadedBy, d.UploadDate,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// GetByS3Key looks a document up by its object-store key. Used by the
// orphan sweep to decide whether a stored object is still referenced.
func (r *DocumentRepository) GetByS3Key(ctx context.Context, key string) (*domain.Document, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE s3_key = $1`, key)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// List returns non-deleted documents matching the filter. Type and
// aircraft filters are exact; search is a case-insensitive substring
// match on the document name.
func (r *DocumentRepository) List(ctx context.Context, filter service.DocumentFilter) ([]*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE status != $1`
	args := []any{domain.DocumentStatusDeleted}

	if filter.Type != "" && filter.Type != "all" {
		args = append(args, filter.Type)
		query += ` AND type = $` + strconv.Itoa(len(args))
	}
	if filter.Aircraft != "" && filter.Aircraft != "all" {
		args = append(args, filter.Aircraft)
		query += ` AND aircraft_type = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND name ILIKE $` + strconv.Itoa(len(args))
	}

	switch filter.Sort {
	case service.DocumentSortName:
		query += ` ORDER BY name ASC`
	case service.DocumentSortQueries:
		query += ` ORDER BY query_count DESC`
	default:
		query += ` ORDER BY upload_date DESC`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// SoftDelete marks a document deleted without removing its chunks or the
// stored object. Deleting an already-deleted document is a no-op.
func (r *DocumentRepository) SoftDelete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, deleted_at = $2 WHERE id = $3`,
		domain.DocumentStatusDeleted, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Restore returns a soft-deleted document to ready status and clears the
// delete timestamp.
func (r *DocumentRepository) Restore(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, deleted_at = NULL WHERE id = $2`,
		domain.DocumentStatusReady, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// IncrementQueryCounts bumps the query counter of each listed document.
// Callers pass distinct IDs; each document is counted once per query even
// when several of its chunks were retrieved.
func (r *DocumentRepository) IncrementQueryCounts(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`UPDATE documents SET query_count = query_count + 1 WHERE id = ANY($1)`,
		ids,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	var aircraft, version, notes, uploadedBy *string
	err := row.Scan(
		&d.ID, &d.Name, &d.Type, &aircraft, &version, &notes, &d.S3Key,
		&d.PageCount, &d.Status, &d.QueryCount, &uploadedBy, &d.UploadDate, &d.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if aircraft != nil {
		d.AircraftType = *aircraft
	}
	if version != nil {
		d.Version = *version
	}
	if notes != nil {
		d.Notes = *notes
	}
	if uploadedBy != nil {
		d.UploadedBy = *uploadedBy
	}
	return &d, nil
}

