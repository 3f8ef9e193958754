package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validFeedback() *FeedbackRecord {
	return &FeedbackRecord{
		ID:             "fb-1",
		ChunkID:        "chunk-1",
		ConversationID: "conv-1",
		SessionID:      "sess-1",
		Rating:         4,
		Status:         FeedbackStatusNew,
	}
}

func TestValidateFeedbackRecord(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateFeedbackRecord(validFeedback()))
	})

	t.Run("missing conversation", func(t *testing.T) {
		f := validFeedback()
		f.ConversationID = ""
		assert.ErrorIs(t, ValidateFeedbackRecord(f), ErrMissingConversation)
	})

	t.Run("missing session", func(t *testing.T) {
		f := validFeedback()
		f.SessionID = ""
		assert.ErrorIs(t, ValidateFeedbackRecord(f), ErrMissingSession)
	})

	t.Run("missing chunk and document", func(t *testing.T) {
		f := validFeedback()
		f.ChunkID = ""
		f.DocumentID = ""
		assert.ErrorIs(t, ValidateFeedbackRecord(f), ErrMissingTarget)
	})

	t.Run("document only is enough", func(t *testing.T) {
		f := validFeedback()
		f.ChunkID = ""
		f.DocumentID = "doc-1"
		assert.NoError(t, ValidateFeedbackRecord(f))
	})

	t.Run("rating bounds", func(t *testing.T) {
		for _, rating := range []int{0, -1, 6, 100} {
			f := validFeedback()
			f.Rating = rating
			assert.ErrorIs(t, ValidateFeedbackRecord(f), ErrInvalidRating, "rating %d", rating)
		}
		for rating := 1; rating <= 5; rating++ {
			f := validFeedback()
			f.Rating = rating
			assert.NoError(t, ValidateFeedbackRecord(f), "rating %d", rating)
		}
	})
}

func TestValidateCorrectionRecord(t *testing.T) {
	valid := func() *CorrectionRecord {
		return &CorrectionRecord{
			ID:             "corr-1",
			DocumentID:     "doc-1",
			ConversationID: "conv-1",
			SessionID:      "sess-1",
			ProposedText:   "The U2400 plate ships with EPDM adhesive, not TPO.",
			Status:         CorrectionStatusPending,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateCorrectionRecord(valid()))
	})

	t.Run("missing proposed text", func(t *testing.T) {
		c := valid()
		c.ProposedText = ""
		assert.ErrorIs(t, ValidateCorrectionRecord(c), ErrMissingProposedText)
	})

	t.Run("missing session", func(t *testing.T) {
		c := valid()
		c.SessionID = ""
		assert.ErrorIs(t, ValidateCorrectionRecord(c), ErrMissingSession)
	})
}

func TestDomainError(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "bad input")
	assert.Equal(t, "[VALIDATION_ERROR] bad input", err.Error())
	assert.Nil(t, err.Unwrap())

	wrapped := NewDomainErrorWithCause(ErrCodeInternalError, "store failed", assert.AnError)
	assert.Contains(t, wrapped.Error(), "store failed")
	assert.Equal(t, assert.AnError, wrapped.Unwrap())
}
