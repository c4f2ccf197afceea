package repository

import (
	"context"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository handles persistence of document chunks and their
// embedding vectors.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

func (r *ChunkRepository) Create(ctx context.Context, c *domain.Chunk) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO document_chunks (id, document_id, chunk_index, content, embedding)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.DocumentID, c.ChunkIndex, c.Content, pgvector.NewVector(c.Embedding),
	)
	return err
}

// SearchNearest returns the chunks whose embeddings are closest to the
// query vector under L2 distance, nearest first. Chunks of soft-deleted
// documents are excluded.
func (r *ChunkRepository) SearchNearest(ctx context.Context, embedding []float32, limit int) ([]*domain.RetrievedChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT dc.content, d.id, d.name, d.type, d.aircraft_type
		 FROM document_chunks dc
		 JOIN documents d ON d.id = dc.document_id
		 WHERE d.status = $1
		 ORDER BY dc.embedding <-> $2
		 LIMIT $3`,
		domain.DocumentStatusReady, pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.RetrievedChunk
	for rows.Next() {
		var rc domain.RetrievedChunk
		var aircraft *string
		if err := rows.Scan(&rc.Content, &rc.DocumentID, &rc.DocumentName, &rc.DocumentType, &aircraft); err != nil {
			return nil, err
		}
		if aircraft != nil {
			rc.AircraftType = *aircraft
		}
		results = append(results, &rc)
	}
	return results, rows.Err()
}

// CountByDocument returns the number of chunks stored for a document.
func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM document_chunks WHERE document_id = $1`,
		documentID,
	).Scan(&count)
	return count, err
}
