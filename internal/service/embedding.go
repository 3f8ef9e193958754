package service

import (
	"context"
	"fmt"
	"time"

	"github.com/apexfab/roofmate/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingDocumentRepository defines the repository interface for embedding operations
type EmbeddingDocumentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.KnowledgeDocument, error)
}

// EmbeddingChunkRepository defines the repository interface for chunked document embeddings
type EmbeddingChunkRepository interface {
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.KnowledgeChunk) error
}

// EmbeddingService chunks a document and generates one embedding per chunk.
// It is called by the background worker when an embedding job is claimed.
type EmbeddingService struct {
	client    EmbeddingClient
	docRepo   EmbeddingDocumentRepository
	chunkRepo EmbeddingChunkRepository
	uuidGen   UUIDGenerator
	chunkCfg  ChunkConfig
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient, docRepo EmbeddingDocumentRepository, chunkRepo EmbeddingChunkRepository) *EmbeddingService {
	return NewEmbeddingServiceWithConfig(client, docRepo, chunkRepo, DefaultChunkConfig())
}

func NewEmbeddingServiceWithConfig(
	client EmbeddingClient,
	docRepo EmbeddingDocumentRepository,
	chunkRepo EmbeddingChunkRepository,
	chunkCfg ChunkConfig,
) *EmbeddingService {
	return &EmbeddingService{
		client:    client,
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		uuidGen:   &DefaultUUIDGenerator{},
		chunkCfg:  chunkCfg,
	}
}

// GenerateEmbedding chunks the document and stores an embedding per chunk,
// replacing any chunks from a prior ingestion of the same document.
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, documentID string) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	source := doc.Content
	if source == "" {
		source = doc.Title
	}

	chunks := chunkText(source, s.chunkCfg)
	chunkEntries := make([]domain.KnowledgeChunk, 0, len(chunks))
	createdAt := time.Now().UTC()

	for i, chunk := range chunks {
		embedText := buildChunkEmbeddingText(doc, chunk)
		embedding, err := s.client.GenerateEmbedding(ctx, embedText)
		if err != nil {
			return fmt.Errorf("failed to generate chunk embedding: %w", err)
		}

		chunkEntries = append(chunkEntries, domain.KnowledgeChunk{
			ID:         s.uuidGen.NewString(),
			DocumentID: doc.ID,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  embedding,
			CreatedAt:  createdAt,
		})
	}

	if err := s.chunkRepo.ReplaceChunks(ctx, documentID, chunkEntries); err != nil {
		return fmt.Errorf("failed to update document chunks: %w", err)
	}

	return nil
}

// buildChunkEmbeddingText prepends the document title so chunk embeddings
// carry document-level context.
func buildChunkEmbeddingText(d *domain.KnowledgeDocument, chunk string) string {
	if d.Title != "" && chunk != "" {
		return d.Title + "\n\n" + chunk
	}
	if chunk != "" {
		return chunk
	}
	return d.Title
}
