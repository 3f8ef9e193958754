package service

import (
	"context"
	"time"

	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/pagination"
	"github.com/apexfab/roofmate/internal/telemetry"
)

// FeedbackRepositoryInterface defines the repository interface for the
// feedback and correction ledgers.
type FeedbackRepositoryInterface interface {
	CreateFeedback(ctx context.Context, f *domain.FeedbackRecord) error
	GetFeedbackByID(ctx context.Context, id string) (*domain.FeedbackRecord, error)
	ReviewFeedback(ctx context.Context, id string, status domain.FeedbackStatus, reviewedBy string) error
	ListFeedbackWithCursor(ctx context.Context, status domain.FeedbackStatus, cursor *pagination.Cursor, limit int) (*FeedbackPageResult, error)
	CreateCorrection(ctx context.Context, c *domain.CorrectionRecord) error
	GetCorrectionByID(ctx context.Context, id string) (*domain.CorrectionRecord, error)
	ReviewCorrection(ctx context.Context, id string, status domain.CorrectionStatus, reviewedBy string) error
	ListCorrectionsWithCursor(ctx context.Context, status domain.CorrectionStatus, cursor *pagination.Cursor, limit int) (*CorrectionPageResult, error)
}

type FeedbackPageResult struct {
	Items      []*domain.FeedbackRecord
	NextCursor string
	HasMore    bool
}

type CorrectionPageResult struct {
	Items      []*domain.CorrectionRecord
	NextCursor string
	HasMore    bool
}

// FeedbackService manages the append-only feedback and correction ledgers.
// End users create records; only reviewers transition their status.
// Approving a correction promotes the proposed text to a draft knowledge
// document that must itself pass review before entering retrieval.
type FeedbackService struct {
	repo     FeedbackRepositoryInterface
	txRunner TxRunner
	uuidGen  UUIDGenerator
}

// NewFeedbackService creates a new FeedbackService instance
func NewFeedbackService(repo FeedbackRepositoryInterface, txRunner TxRunner) *FeedbackService {
	return &FeedbackService{
		repo:     repo,
		txRunner: txRunner,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// NewFeedbackServiceWithUUIDGen creates a new FeedbackService with custom UUID generator (for testing)
func NewFeedbackServiceWithUUIDGen(repo FeedbackRepositoryInterface, txRunner TxRunner, uuidGen UUIDGenerator) *FeedbackService {
	return &FeedbackService{
		repo:     repo,
		txRunner: txRunner,
		uuidGen:  uuidGen,
	}
}

// RecordFeedbackInput represents the input for recording feedback
type RecordFeedbackInput struct {
	ChunkID        string
	DocumentID     string
	ConversationID string
	SessionID      string
	Rating         int
	Note           string
}

// RecordCorrectionInput represents the input for proposing a correction
type RecordCorrectionInput struct {
	ChunkID        string
	DocumentID     string
	ConversationID string
	SessionID      string
	ProposedText   string
}

// RecordFeedback appends a user rating to the feedback ledger.
func (s *FeedbackService) RecordFeedback(ctx context.Context, input RecordFeedbackInput) (*domain.FeedbackRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "FeedbackService.RecordFeedback", telemetry.SpanAttributes{
		DocumentID: input.DocumentID,
		Operation:  "record_feedback",
	})
	defer span.End()

	record := &domain.FeedbackRecord{
		ID:             s.uuidGen.NewString(),
		ChunkID:        input.ChunkID,
		DocumentID:     input.DocumentID,
		ConversationID: input.ConversationID,
		SessionID:      input.SessionID,
		Rating:         input.Rating,
		Note:           input.Note,
		Status:         domain.FeedbackStatusNew,
		CreatedAt:      time.Now().UTC(),
	}

	if err := domain.ValidateFeedbackRecord(record); err != nil {
		return nil, err
	}

	if err := s.repo.CreateFeedback(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// RecordCorrection appends a user-proposed correction to the ledger.
func (s *FeedbackService) RecordCorrection(ctx context.Context, input RecordCorrectionInput) (*domain.CorrectionRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "FeedbackService.RecordCorrection", telemetry.SpanAttributes{
		DocumentID: input.DocumentID,
		Operation:  "record_correction",
	})
	defer span.End()

	record := &domain.CorrectionRecord{
		ID:             s.uuidGen.NewString(),
		ChunkID:        input.ChunkID,
		DocumentID:     input.DocumentID,
		ConversationID: input.ConversationID,
		SessionID:      input.SessionID,
		ProposedText:   input.ProposedText,
		Status:         domain.CorrectionStatusPending,
		CreatedAt:      time.Now().UTC(),
	}

	if err := domain.ValidateCorrectionRecord(record); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCorrection(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// ReviewFeedback marks a feedback record as reviewed or rejected.
func (s *FeedbackService) ReviewFeedback(ctx context.Context, id string, status domain.FeedbackStatus, reviewedBy string) (*domain.FeedbackRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "FeedbackService.ReviewFeedback", telemetry.SpanAttributes{
		Operation: "review_feedback",
	})
	defer span.End()

	if reviewedBy == "" {
		return nil, domain.ErrReviewerRequired
	}
	if status != domain.FeedbackStatusReviewed && status != domain.FeedbackStatusRejected {
		return nil, domain.ErrInvalidFeedbackStatus
	}

	if err := s.repo.ReviewFeedback(ctx, id, status, reviewedBy); err != nil {
		return nil, err
	}

	return s.repo.GetFeedbackByID(ctx, id)
}

// ReviewCorrection approves or rejects a proposed correction. Approval
// also creates an unapproved draft document from the proposed text and
// queues its embedding job, all in one transaction.
func (s *FeedbackService) ReviewCorrection(ctx context.Context, id string, status domain.CorrectionStatus, reviewedBy string) (*domain.CorrectionRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "FeedbackService.ReviewCorrection", telemetry.SpanAttributes{
		Operation: "review_correction",
	})
	defer span.End()

	if reviewedBy == "" {
		return nil, domain.ErrReviewerRequired
	}
	if status != domain.CorrectionStatusApproved && status != domain.CorrectionStatusRejected {
		return nil, domain.ErrInvalidFeedbackStatus
	}

	correction, err := s.repo.GetCorrectionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status == domain.CorrectionStatusRejected {
		if err := s.repo.ReviewCorrection(ctx, id, status, reviewedBy); err != nil {
			return nil, err
		}
		return s.repo.GetCorrectionByID(ctx, id)
	}

	now := time.Now().UTC()
	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Feedback().ReviewCorrection(ctx, id, status, reviewedBy); err != nil {
			return err
		}

		doc := domain.NewKnowledgeDocument(
			s.uuidGen.NewString(),
			"Correction "+correction.ID,
			correction.ProposedText,
			"correction",
			"",
			nil,
			"",
			now,
		)
		if err := repos.Documents().Create(ctx, doc); err != nil {
			return err
		}

		job := domain.NewEmbeddingJob(s.uuidGen.NewString(), doc.ID, now)
		return repos.EmbeddingJobs().Create(ctx, job)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetCorrectionByID(ctx, id)
}

type ListFeedbackInput struct {
	Status domain.FeedbackStatus
	Cursor string
	Limit  int
}

type ListCorrectionsInput struct {
	Status domain.CorrectionStatus
	Cursor string
	Limit  int
}

func (s *FeedbackService) ListFeedback(ctx context.Context, input ListFeedbackInput) (*FeedbackPageResult, error) {
	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	status := input.Status
	if status == "" {
		status = domain.FeedbackStatusNew
	}

	return s.repo.ListFeedbackWithCursor(ctx, status, cursor, input.Limit)
}

func (s *FeedbackService) ListCorrections(ctx context.Context, input ListCorrectionsInput) (*CorrectionPageResult, error) {
	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	status := input.Status
	if status == "" {
		status = domain.CorrectionStatusPending
	}

	return s.repo.ListCorrectionsWithCursor(ctx, status, cursor, input.Limit)
}
