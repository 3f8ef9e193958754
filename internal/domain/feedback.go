package domain

import (
	"fmt"
	"time"
)

// FeedbackStatus represents the review status of a feedback record
type FeedbackStatus string

const (
	FeedbackStatusNew      FeedbackStatus = "new"
	FeedbackStatusReviewed FeedbackStatus = "reviewed"
	FeedbackStatusRejected FeedbackStatus = "rejected"
)

// CorrectionStatus represents the review status of a correction record
type CorrectionStatus string

const (
	CorrectionStatusPending  CorrectionStatus = "pending"
	CorrectionStatusApproved CorrectionStatus = "approved"
	CorrectionStatusRejected CorrectionStatus = "rejected"
)

// FeedbackRecord is a user-submitted rating tied to a chunk or document.
// Records are append-only: created by end users, mutated only by reviewers,
// never deleted.
type FeedbackRecord struct {
	ID             string
	ChunkID        string
	DocumentID     string
	ConversationID string
	SessionID      string
	Rating         int
	Note           string
	Status         FeedbackStatus
	ReviewedBy     string
	CreatedAt      time.Time
	ReviewedAt     *time.Time
}

// CorrectionRecord is a user-proposed correction to retrieved content.
// Approval may promote the proposed text to a draft knowledge document.
type CorrectionRecord struct {
	ID             string
	ChunkID        string
	DocumentID     string
	ConversationID string
	SessionID      string
	ProposedText   string
	Status         CorrectionStatus
	ReviewedBy     string
	CreatedAt      time.Time
	ReviewedAt     *time.Time
}

// ValidateFeedbackRecord validates a FeedbackRecord instance
func ValidateFeedbackRecord(f *FeedbackRecord) error {
	if f == nil {
		return fmt.Errorf("feedback record cannot be nil")
	}

	if f.ID == "" {
		return fmt.Errorf("feedback record ID is required")
	}

	if f.ConversationID == "" {
		return ErrMissingConversation
	}

	if f.SessionID == "" {
		return ErrMissingSession
	}

	if f.ChunkID == "" && f.DocumentID == "" {
		return ErrMissingTarget
	}

	if f.Rating < 1 || f.Rating > 5 {
		return ErrInvalidRating
	}

	if !isValidFeedbackStatus(f.Status) {
		return ErrInvalidFeedbackStatus
	}

	return nil
}

// ValidateCorrectionRecord validates a CorrectionRecord instance
func ValidateCorrectionRecord(c *CorrectionRecord) error {
	if c == nil {
		return fmt.Errorf("correction record cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("correction record ID is required")
	}

	if c.ConversationID == "" {
		return ErrMissingConversation
	}

	if c.SessionID == "" {
		return ErrMissingSession
	}

	if c.ChunkID == "" && c.DocumentID == "" {
		return ErrMissingTarget
	}

	if c.ProposedText == "" {
		return ErrMissingProposedText
	}

	return nil
}

func isValidFeedbackStatus(s FeedbackStatus) bool {
	switch s {
	case FeedbackStatusNew, FeedbackStatusReviewed, FeedbackStatusRejected:
		return true
	}
	return false
}
