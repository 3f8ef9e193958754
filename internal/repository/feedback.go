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

// FeedbackRepository persists feedback and correction records. Both tables
// are append-only: rows are inserted by end users and updated only through
// the review methods, never deleted.
type FeedbackRepository struct {
	db dbtx
}

func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{db: pool}
}

func NewFeedbackRepositoryWithTx(tx pgx.Tx) *FeedbackRepository {
	return &FeedbackRepository{db: tx}
}

func (r *FeedbackRepository) CreateFeedback(ctx context.Context, f *domain.FeedbackRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO feedback_records (id, chunk_id, document_id, conversation_id, session_id, rating, note, status, reviewed_by, created_at, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		f.ID, nullableString(f.ChunkID), nullableString(f.DocumentID), f.ConversationID, f.SessionID, f.Rating, f.Note, f.Status, nullableString(f.ReviewedBy), f.CreatedAt, f.ReviewedAt,
	)
	return err
}

func (r *FeedbackRepository) GetFeedbackByID(ctx context.Context, id string) (*domain.FeedbackRecord, error) {
	var f domain.FeedbackRecord
	var chunkID, documentID, reviewedBy *string
	err := r.db.QueryRow(ctx,
		`SELECT id, chunk_id, document_id, conversation_id, session_id, rating, note, status, reviewed_by, created_at, reviewed_at
		 FROM feedback_records WHERE id = $1`,
		id,
	).Scan(&f.ID, &chunkID, &documentID, &f.ConversationID, &f.SessionID, &f.Rating, &f.Note, &f.Status, &reviewedBy, &f.CreatedAt, &f.ReviewedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFeedbackNotFound
		}
		return nil, err
	}
	if chunkID != nil {
		f.ChunkID = *chunkID
	}
	if documentID != nil {
		f.DocumentID = *documentID
	}
	if reviewedBy != nil {
		f.ReviewedBy = *reviewedBy
	}
	return &f, nil
}

// ReviewFeedback transitions a feedback record out of the "new" status.
// Returns ErrAlreadyReviewed if the record was already reviewed.
func (r *FeedbackRepository) ReviewFeedback(ctx context.Context, id string, status domain.FeedbackStatus, reviewedBy string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE feedback_records SET status = $1, reviewed_by = $2, reviewed_at = $3
		 WHERE id = $4 AND status = $5`,
		status, reviewedBy, time.Now().UTC(), id, domain.FeedbackStatusNew,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		if _, getErr := r.GetFeedbackByID(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrAlreadyReviewed
	}
	return nil
}

func (r *FeedbackRepository) ListFeedbackWithCursor(ctx context.Context, status domain.FeedbackStatus, cursor *pagination.Cursor, limit int) (*service.FeedbackPageResult, error) {
	limit = pagination.ClampLimit(limit)

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, chunk_id, document_id, conversation_id, session_id, rating, note, status, reviewed_by, created_at, reviewed_at
			 FROM feedback_records
			 WHERE status = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			status, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, chunk_id, document_id, conversation_id, session_id, rating, note, status, reviewed_by, created_at, reviewed_at
			 FROM feedback_records
			 WHERE status = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			status, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.FeedbackRecord
	for rows.Next() {
		var f domain.FeedbackRecord
		var chunkID, documentID, reviewedBy *string
		if err := rows.Scan(&f.ID, &chunkID, &documentID, &f.ConversationID, &f.SessionID, &f.Rating, &f.Note, &f.Status, &reviewedBy, &f.CreatedAt, &f.ReviewedAt); err != nil {
			return nil, err
		}
		if chunkID != nil {
			f.ChunkID = *chunkID
		}
		if documentID != nil {
			f.DocumentID = *documentID
		}
		if reviewedBy != nil {
			f.ReviewedBy = *reviewedBy
		}
		items = append(items, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &service.FeedbackPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *FeedbackRepository) CreateCorrection(ctx context.Context, c *domain.CorrectionRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO correction_records (id, chunk_id, document_id, conversation_id, session_id, proposed_text, status, reviewed_by, created_at, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, nullableString(c.ChunkID), nullableString(c.DocumentID), c.ConversationID, c.SessionID, c.ProposedText, c.Status, nullableString(c.ReviewedBy), c.CreatedAt, c.ReviewedAt,
	)
	return err
}

func (r *FeedbackRepository) GetCorrectionByID(ctx context.Context, id string) (*domain.CorrectionRecord, error) {
	var c domain.CorrectionRecord
	var chunkID, documentID, reviewedBy *string
	err := r.db.QueryRow(ctx,
		`SELECT id, chunk_id, document_id, conversation_id, session_id, proposed_text, status, reviewed_by, created_at, reviewed_at
		 FROM correction_records WHERE id = $1`,
		id,
	).Scan(&c.ID, &chunkID, &documentID, &c.ConversationID, &c.SessionID, &c.ProposedText, &c.Status, &reviewedBy, &c.CreatedAt, &c.ReviewedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCorrectionNotFound
		}
		return nil, err
	}
	if chunkID != nil {
		c.ChunkID = *chunkID
	}
	if documentID != nil {
		c.DocumentID = *documentID
	}
	if reviewedBy != nil {
		c.ReviewedBy = *reviewedBy
	}
	return &c, nil
}

// ReviewCorrection transitions a correction record out of the "pending"
// status. Returns ErrAlreadyReviewed if the record was already reviewed.
func (r *FeedbackRepository) ReviewCorrection(ctx context.Context, id string, status domain.CorrectionStatus, reviewedBy string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE correction_records SET status = $1, reviewed_by = $2, reviewed_at = $3
		 WHERE id = $4 AND status = $5`,
		status, reviewedBy, time.Now().UTC(), id, domain.CorrectionStatusPending,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		if _, getErr := r.GetCorrectionByID(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrAlreadyReviewed
	}
	return nil
}

func (r *FeedbackRepository) ListCorrectionsWithCursor(ctx context.Context, status domain.CorrectionStatus, cursor *pagination.Cursor, limit int) (*service.CorrectionPageResult, error) {
	limit = pagination.ClampLimit(limit)

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, chunk_id, document_id, conversation_id, session_id, proposed_text, status, reviewed_by, created_at, reviewed_at
			 FROM correction_records
			 WHERE status = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			status, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, chunk_id, document_id, conversation_id, session_id, proposed_text, status, reviewed_by, created_at, reviewed_at
			 FROM correction_records
			 WHERE status = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			status, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.CorrectionRecord
	for rows.Next() {
		var c domain.CorrectionRecord
		var chunkID, documentID, reviewedBy *string
		if err := rows.Scan(&c.ID, &chunkID, &documentID, &c.ConversationID, &c.SessionID, &c.ProposedText, &c.Status, &reviewedBy, &c.CreatedAt, &c.ReviewedAt); err != nil {
			return nil, err
		}
		if chunkID != nil {
			c.ChunkID = *chunkID
		}
		if documentID != nil {
			c.DocumentID = *documentID
		}
		if reviewedBy != nil {
			c.ReviewedBy = *reviewedBy
		}
		items = append(items, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &service.CorrectionPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
