package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewKnowledgeDocument(t *testing.T) {
	now := time.Now().UTC()
	doc := NewKnowledgeDocument(
		"doc-1",
		"U2600 Install Guide",
		"Attach the base plate before torquing.",
		"install",
		"sales",
		[]string{"u2600"},
		"anchor/u-anchors/u2600/install.pdf",
		now,
	)

	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "install", doc.Category)
	assert.False(t, doc.Allowed, "new documents must not be retrievable before review")
	assert.Equal(t, now, doc.CreatedAt)
	assert.Equal(t, now, doc.UpdatedAt)
}

func TestValidateKnowledgeDocument(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		doc     *KnowledgeDocument
		wantErr string
	}{
		{
			name:    "nil document",
			doc:     nil,
			wantErr: "cannot be nil",
		},
		{
			name:    "missing ID",
			doc:     &KnowledgeDocument{Title: "t", Content: "c"},
			wantErr: "ID is required",
		},
		{
			name:    "missing title",
			doc:     &KnowledgeDocument{ID: "doc-1", Content: "c"},
			wantErr: "Title is required",
		},
		{
			name:    "missing content",
			doc:     &KnowledgeDocument{ID: "doc-1", Title: "t"},
			wantErr: "Content is required",
		},
		{
			name: "valid",
			doc:  NewKnowledgeDocument("doc-1", "t", "c", "", "", nil, "", now),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKnowledgeDocument(tt.doc)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCanonicalSolution_Folder(t *testing.T) {
	derived := &CanonicalSolution{Key: "snow-retention", Securing: "snow-retention"}
	assert.Equal(t, "solutions/snow-retention", derived.Folder())
	assert.False(t, derived.HasExplicitFolder())

	explicit := &CanonicalSolution{
		Key:           "unitized-snow-fence",
		Securing:      "snow-retention/unitized-snow-fence",
		StorageFolder: "solutions/snow-retention/unitized-snow-fence",
	}
	assert.Equal(t, "solutions/snow-retention/unitized-snow-fence", explicit.Folder())
	assert.True(t, explicit.HasExplicitFolder())
}
