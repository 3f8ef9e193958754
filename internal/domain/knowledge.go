package domain

import (
	"fmt"
	"time"
)

// KnowledgeDocument represents one ingested source document. Documents are
// chunked at ingestion time; only documents with Allowed=true are eligible
// for retrieval.
type KnowledgeDocument struct {
	ID          string
	Title       string
	Content     string
	Category    string
	Audience    string
	ProductTags []string
	Allowed     bool
	SourceKey   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewKnowledgeDocument creates a new KnowledgeDocument instance
func NewKnowledgeDocument(
	id, title, content, category, audience string,
	productTags []string,
	sourceKey string,
	createdAt time.Time,
) *KnowledgeDocument {
	return &KnowledgeDocument{
		ID:          id,
		Title:       title,
		Content:     content,
		Category:    category,
		Audience:    audience,
		ProductTags: productTags,
		Allowed:     false,
		SourceKey:   sourceKey,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// ValidateKnowledgeDocument validates a KnowledgeDocument instance
func ValidateKnowledgeDocument(d *KnowledgeDocument) error {
	if d == nil {
		return fmt.Errorf("knowledge document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("knowledge document ID is required")
	}

	if d.Title == "" {
		return fmt.Errorf("knowledge document Title is required")
	}

	if d.Content == "" {
		return fmt.Errorf("knowledge document Content is required")
	}

	return nil
}

// KnowledgeChunk is one ordered, non-overlapping segment of a document with
// its own embedding vector. ChunkIndex is unique within a document and
// determines reconstruction order.
type KnowledgeChunk struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}

// RetrievedChunk is one unit of retrieved knowledge with its relevance score.
// Similarity is a cosine-similarity-derived value in [0,1]; it is a monotonic
// relevance proxy, not an absolute probability.
type RetrievedChunk struct {
	ChunkID       string
	DocumentID    string
	Title         string
	Content       string
	Similarity    float32
	FeedbackScore float32
	Downvotes     int
}
