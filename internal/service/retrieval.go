package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/telemetry"
)

// NoKnowledgeNotice is emitted in place of retrieved context when no
// approved chunks match. Downstream prompt construction relies on this
// explicit marker rather than an empty context block.
const NoKnowledgeNotice = "no approved knowledge matches"

// SearchFilters narrows a similarity search to a document category or
// set of product tags. Zero values mean no filtering.
type SearchFilters struct {
	Category    string
	ProductTags []string
}

// RetrieveOptions controls a single retrieval call.
type RetrieveOptions struct {
	MatchCount  int
	Category    string
	ProductTags []string
}

// ChunkSearchRepository defines the repository interface for vector search
type ChunkSearchRepository interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, filters SearchFilters, limit int) ([]*domain.RetrievedChunk, error)
}

// RetrievalConfig controls retrieval defaults.
type RetrievalConfig struct {
	MatchCount      int
	ContextMaxChars int
}

// DefaultRetrievalConfig returns the default retrieval configuration.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		MatchCount:      6,
		ContextMaxChars: 6000,
	}
}

// RetrievalService retrieves approved knowledge chunks by vector
// similarity. Retrieval is best-effort: an embedding or search failure
// degrades to an empty result rather than failing the caller, because a
// missing context block is recoverable downstream and a hard error is not.
type RetrievalService struct {
	repo      ChunkSearchRepository
	embedding EmbeddingClient
	cfg       RetrievalConfig
}

// NewRetrievalService creates a new RetrievalService instance
func NewRetrievalService(repo ChunkSearchRepository, embedding EmbeddingClient) *RetrievalService {
	return NewRetrievalServiceWithConfig(repo, embedding, DefaultRetrievalConfig())
}

// NewRetrievalServiceWithConfig creates a new RetrievalService with explicit configuration.
func NewRetrievalServiceWithConfig(repo ChunkSearchRepository, embedding EmbeddingClient, cfg RetrievalConfig) *RetrievalService {
	if cfg.MatchCount <= 0 {
		cfg.MatchCount = DefaultRetrievalConfig().MatchCount
	}
	if cfg.ContextMaxChars <= 0 {
		cfg.ContextMaxChars = DefaultRetrievalConfig().ContextMaxChars
	}
	return &RetrievalService{
		repo:      repo,
		embedding: embedding,
		cfg:       cfg,
	}
}

// Retrieve returns the approved chunks most similar to the query text,
// highest similarity first. Never returns an error: embedding or search
// failures are logged and reported to Sentry, and the result degrades to
// an empty slice.
func (s *RetrievalService) Retrieve(ctx context.Context, queryText string, opts RetrieveOptions) []*domain.RetrievedChunk {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	if strings.TrimSpace(queryText) == "" {
		return []*domain.RetrievedChunk{}
	}

	if s.embedding == nil || s.repo == nil {
		return []*domain.RetrievedChunk{}
	}

	embedding, err := s.embedding.GenerateEmbedding(ctx, queryText)
	if err != nil {
		log.Printf("retrieval: embedding failed, returning no chunks: %v", err)
		telemetry.CaptureError(ctx, err)
		return []*domain.RetrievedChunk{}
	}

	matchCount := opts.MatchCount
	if matchCount <= 0 {
		matchCount = s.cfg.MatchCount
	}

	filters := SearchFilters{
		Category:    opts.Category,
		ProductTags: opts.ProductTags,
	}

	chunks, err := s.repo.SearchByEmbedding(ctx, embedding, filters, matchCount)
	if err != nil {
		log.Printf("retrieval: similarity search failed, returning no chunks: %v", err)
		telemetry.CaptureError(ctx, err)
		return []*domain.RetrievedChunk{}
	}

	if len(chunks) > matchCount {
		chunks = chunks[:matchCount]
	}

	return chunks
}

// BuildContext renders retrieved chunks into a single context block for
// prompt construction, truncated to the configured character budget. An
// empty chunk list yields the explicit no-match notice.
func (s *RetrievalService) BuildContext(chunks []*domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return NoKnowledgeNotice
	}

	var b strings.Builder
	for i, chunk := range chunks {
		entry := fmt.Sprintf("[%d] %s (similarity %.2f)\n%s\n\n", i+1, chunk.Title, chunk.Similarity, chunk.Content)
		if b.Len()+len(entry) > s.cfg.ContextMaxChars {
			// The notice is reserved for zero retrieved chunks, so the
			// first entry is truncated to the budget rather than dropped.
			if i == 0 {
				b.WriteString(entry[:s.cfg.ContextMaxChars])
			}
			break
		}
		b.WriteString(entry)
	}

	return strings.TrimSpace(b.String())
}
