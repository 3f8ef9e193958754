package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository handles persistence of chunked document embeddings
// and vector similarity search over them.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ReplaceChunks deletes existing chunks for a document and inserts new ones.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.KnowledgeChunk) error {
	_, err := r.db.Exec(ctx, `DELETE FROM knowledge_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		return nil
	}

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO knowledge_chunks (id, document_id, chunk_index, content, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID,
			c.DocumentID,
			c.ChunkIndex,
			c.Content,
			pgvector.NewVector(c.Embedding),
			createdAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// ListByDocument returns a document's chunks in reconstruction order.
func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.KnowledgeChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, chunk_index, content, created_at
		 FROM knowledge_chunks WHERE document_id = $1 ORDER BY chunk_index ASC`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.KnowledgeChunk
	for rows.Next() {
		var c domain.KnowledgeChunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// SearchByEmbedding returns the chunks of approved documents nearest to
// the query embedding by cosine distance, with feedback aggregates joined
// in. Ties in distance are broken by chunk id so result order is stable.
func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, embedding []float32, filters service.SearchFilters, limit int) ([]*domain.RetrievedChunk, error) {
	if limit <= 0 {
		limit = 6
	}

	vec := pgvector.NewVector(embedding)

	query := `
		SELECT c.id, c.document_id, d.title, c.content,
		       1 - (c.embedding <=> $1) AS similarity,
		       COALESCE(f.score, 0) AS feedback_score,
		       COALESCE(f.downvotes, 0) AS downvotes
		FROM knowledge_chunks c
		JOIN knowledge_documents d ON d.id = c.document_id
		LEFT JOIN (
			SELECT chunk_id,
			       AVG(rating - 3)::float4 AS score,
			       COUNT(*) FILTER (WHERE rating <= 2) AS downvotes
			FROM feedback_records
			WHERE chunk_id IS NOT NULL
			GROUP BY chunk_id
		) f ON f.chunk_id = c.id
		WHERE d.allowed = TRUE AND c.embedding IS NOT NULL`
	args := []interface{}{vec}

	if filters.Category != "" {
		args = append(args, filters.Category)
		query += fmt.Sprintf(" AND d.category = $%d", len(args))
	}
	if len(filters.ProductTags) > 0 {
		args = append(args, filters.ProductTags)
		query += fmt.Sprintf(" AND d.product_tags && $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(`
		ORDER BY c.embedding <=> $1, c.id
		LIMIT $%d`, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.RetrievedChunk, 0)
	for rows.Next() {
		var chunk domain.RetrievedChunk
		if err := rows.Scan(&chunk.ChunkID, &chunk.DocumentID, &chunk.Title, &chunk.Content, &chunk.Similarity, &chunk.FeedbackScore, &chunk.Downvotes); err != nil {
			return nil, err
		}
		results = append(results, &chunk)
	}

	return results, rows.Err()
}
