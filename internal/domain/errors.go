package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrMissingConversation   = NewDomainError(ErrCodeValidation, "conversation ID is required")
	ErrMissingSession        = NewDomainError(ErrCodeValidation, "session ID is required")
	ErrMissingTarget         = NewDomainError(ErrCodeValidation, "chunk ID or document ID is required")
	ErrInvalidRating         = NewDomainError(ErrCodeValidation, "rating must be between 1 and 5")
	ErrMissingProposedText   = NewDomainError(ErrCodeValidation, "proposed text is required")
	ErrInvalidFeedbackStatus = NewDomainError(ErrCodeValidation, "invalid feedback status")
)

// Not found errors
var (
	ErrDocumentNotFound   = NewDomainError(ErrCodeNotFound, "knowledge document not found")
	ErrChunkNotFound      = NewDomainError(ErrCodeNotFound, "knowledge chunk not found")
	ErrFeedbackNotFound   = NewDomainError(ErrCodeNotFound, "feedback record not found")
	ErrCorrectionNotFound = NewDomainError(ErrCodeNotFound, "correction record not found")
)

// Authorization errors
var (
	ErrReviewerRequired = NewDomainError(ErrCodeForbidden, "reviewer role required")
)

// Operation errors
var (
	ErrAlreadyReviewed = NewDomainError(ErrCodeInvalidOperation, "record has already been reviewed")
)
