package service

import (
	"context"
	"time"

	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/pagination"
	"github.com/apexfab/roofmate/internal/telemetry"
	"github.com/google/uuid"
)

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.KnowledgeDocument) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeDocument, error)
	Update(ctx context.Context, d *domain.KnowledgeDocument) error
	SetAllowed(ctx context.Context, id string, allowed bool) error
	Delete(ctx context.Context, id string) error
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
}

type DocumentPageResult struct {
	Items      []*domain.KnowledgeDocument
	NextCursor string
	HasMore    bool
}

// EmbeddingJobRepositoryInterface defines the repository interface for embedding job persistence
type EmbeddingJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// KnowledgeService handles ingestion and curation of knowledge documents.
// New and updated documents start with Allowed=false and only enter the
// retrieval pool once a reviewer approves them.
type KnowledgeService struct {
	docRepo DocumentRepositoryInterface
	jobRepo EmbeddingJobRepositoryInterface
	uuidGen UUIDGenerator
}

// NewKnowledgeService creates a new KnowledgeService instance
func NewKnowledgeService(docRepo DocumentRepositoryInterface, jobRepo EmbeddingJobRepositoryInterface) *KnowledgeService {
	return &KnowledgeService{
		docRepo: docRepo,
		jobRepo: jobRepo,
		uuidGen: &DefaultUUIDGenerator{},
	}
}

// NewKnowledgeServiceWithUUIDGen creates a new KnowledgeService with custom UUID generator (for testing)
func NewKnowledgeServiceWithUUIDGen(
	docRepo DocumentRepositoryInterface,
	jobRepo EmbeddingJobRepositoryInterface,
	uuidGen UUIDGenerator,
) *KnowledgeService {
	return &KnowledgeService{
		docRepo: docRepo,
		jobRepo: jobRepo,
		uuidGen: uuidGen,
	}
}

// CreateDocumentInput represents the input for ingesting a document
type CreateDocumentInput struct {
	Title       string
	Content     string
	Category    string
	Audience    string
	ProductTags []string
	SourceKey   string
}

// UpdateDocumentInput represents the input for updating a document
type UpdateDocumentInput struct {
	DocumentID  string
	Title       string
	Content     string
	Category    string
	Audience    string
	ProductTags []string
	SourceKey   string
}

type ListDocumentsInput struct {
	Cursor string
	Limit  int
}

type ListDocumentsOutput struct {
	Items   []*domain.KnowledgeDocument
	Cursor  string
	HasMore bool
}

// CreateDocument ingests a new document and queues an embedding job.
// The document starts unapproved.
func (s *KnowledgeService) CreateDocument(ctx context.Context, input CreateDocumentInput) (*domain.KnowledgeDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.CreateDocument", telemetry.SpanAttributes{
		Operation: "create",
	})
	defer span.End()

	now := time.Now().UTC()
	doc := domain.NewKnowledgeDocument(
		s.uuidGen.NewString(),
		input.Title,
		input.Content,
		input.Category,
		input.Audience,
		input.ProductTags,
		input.SourceKey,
		now,
	)

	if err := domain.ValidateKnowledgeDocument(doc); err != nil {
		return nil, err
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	job := domain.NewEmbeddingJob(s.uuidGen.NewString(), doc.ID, now)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	return doc, nil
}

// GetDocument retrieves a document by ID
func (s *KnowledgeService) GetDocument(ctx context.Context, id string) (*domain.KnowledgeDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.GetDocument", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "get",
	})
	defer span.End()

	return s.docRepo.GetByID(ctx, id)
}

// UpdateDocument updates a document's content and queues a fresh embedding
// job. Approval is revoked: edited content must be re-reviewed before it
// re-enters the retrieval pool.
func (s *KnowledgeService) UpdateDocument(ctx context.Context, input UpdateDocumentInput) (*domain.KnowledgeDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.UpdateDocument", telemetry.SpanAttributes{
		DocumentID: input.DocumentID,
		Operation:  "update",
	})
	defer span.End()

	now := time.Now().UTC()

	doc, err := s.docRepo.GetByID(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}

	doc.Title = input.Title
	doc.Content = input.Content
	doc.Category = input.Category
	doc.Audience = input.Audience
	doc.ProductTags = input.ProductTags
	doc.SourceKey = input.SourceKey
	doc.UpdatedAt = now

	if err := domain.ValidateKnowledgeDocument(doc); err != nil {
		return nil, err
	}

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.docRepo.SetAllowed(ctx, doc.ID, false); err != nil {
		return nil, err
	}
	doc.Allowed = false

	job := domain.NewEmbeddingJob(s.uuidGen.NewString(), doc.ID, now)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	return doc, nil
}

// SetAllowed flips a document's retrieval eligibility.
func (s *KnowledgeService) SetAllowed(ctx context.Context, id string, allowed bool) error {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.SetAllowed", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "set_allowed",
	})
	defer span.End()

	return s.docRepo.SetAllowed(ctx, id, allowed)
}

// DeleteDocument removes a document and, via cascade, its chunks.
func (s *KnowledgeService) DeleteDocument(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.DeleteDocument", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "delete",
	})
	defer span.End()

	return s.docRepo.Delete(ctx, id)
}

func (s *KnowledgeService) ListDocuments(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.ListDocuments", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	result, err := s.docRepo.ListWithCursor(ctx, cursor, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListDocumentsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}
