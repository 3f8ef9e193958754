package repository

import (
	"context"
	"errors"
	"time"

	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/pagination"
	"github.com/apexfab/roofmate/internal/service"
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

func (r *DocumentRepository) Create(ctx context.Context, d *domain.KnowledgeDocument) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_documents (id, title, content, category, audience, product_tags, allowed, source_key, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.Title, d.Content, nullableString(d.Category), nullableString(d.Audience), d.ProductTags, d.Allowed, nullableString(d.SourceKey), d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeDocument, error) {
	var d domain.KnowledgeDocument
	var category, audience, sourceKey *string
	err := r.db.QueryRow(ctx,
		`SELECT id, title, content, category, audience, product_tags, allowed, source_key, created_at, updated_at
		 FROM knowledge_documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Title, &d.Content, &category, &audience, &d.ProductTags, &d.Allowed, &sourceKey, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if category != nil {
		d.Category = *category
	}
	if audience != nil {
		d.Audience = *audience
	}
	if sourceKey != nil {
		d.SourceKey = *sourceKey
	}
	return &d, nil
}

func (r *DocumentRepository) Update(ctx context.Context, d *domain.KnowledgeDocument) error {
	d.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_documents SET title = $1, content = $2, category = $3, audience = $4, product_tags = $5, source_key = $6, updated_at = $7
		 WHERE id = $8`,
		d.Title, d.Content, nullableString(d.Category), nullableString(d.Audience), d.ProductTags, nullableString(d.SourceKey), d.UpdatedAt, d.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// SetAllowed flips retrieval eligibility for a document. Chunks of a
// disallowed document stop appearing in search results immediately.
func (r *DocumentRepository) SetAllowed(ctx context.Context, id string, allowed bool) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_documents SET allowed = $1, updated_at = $2 WHERE id = $3`,
		allowed, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM knowledge_documents WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error) {
	limit = pagination.ClampLimit(limit)

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, title, content, category, audience, product_tags, allowed, source_key, created_at, updated_at
			 FROM knowledge_documents
			 WHERE (updated_at, id) < ($1, $2)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, title, content, category, audience, product_tags, allowed, source_key, created_at, updated_at
			 FROM knowledge_documents
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanDocumentRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.UpdatedAt)
	}

	return &service.DocumentPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.KnowledgeDocument, error) {
	var results []*domain.KnowledgeDocument
	for rows.Next() {
		var d domain.KnowledgeDocument
		var category, audience, sourceKey *string
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &category, &audience, &d.ProductTags, &d.Allowed, &sourceKey, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if category != nil {
			d.Category = *category
		}
		if audience != nil {
			d.Audience = *audience
		}
		if sourceKey != nil {
			d.SourceKey = *sourceKey
		}
		results = append(results, &d)
	}
	return results, rows.Err()
}
