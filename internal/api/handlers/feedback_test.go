package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apexfab/roofmate/internal/api/middleware"
	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) RecordFeedback(ctx context.Context, input service.RecordFeedbackInput) (*domain.FeedbackRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackService) RecordCorrection(ctx context.Context, input service.RecordCorrectionInput) (*domain.CorrectionRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CorrectionRecord), args.Error(1)
}

func (m *MockFeedbackService) ReviewFeedback(ctx context.Context, id string, status domain.FeedbackStatus, reviewedBy string) (*domain.FeedbackRecord, error) {
	args := m.Called(ctx, id, status, reviewedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackService) ReviewCorrection(ctx context.Context, id string, status domain.CorrectionStatus, reviewedBy string) (*domain.CorrectionRecord, error) {
	args := m.Called(ctx, id, status, reviewedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CorrectionRecord), args.Error(1)
}

func (m *MockFeedbackService) ListFeedback(ctx context.Context, input service.ListFeedbackInput) (*service.FeedbackPageResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FeedbackPageResult), args.Error(1)
}

func (m *MockFeedbackService) ListCorrections(ctx context.Context, input service.ListCorrectionsInput) (*service.CorrectionPageResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CorrectionPageResult), args.Error(1)
}

func newTestFeedback() *domain.FeedbackRecord {
	return &domain.FeedbackRecord{
		ID:             "fb-123",
		ChunkID:        "chunk-1",
		ConversationID: "conv-1",
		SessionID:      "sess-1",
		Rating:         2,
		Note:           "outdated torque value",
		Status:         domain.FeedbackStatusNew,
		CreatedAt:      time.Now().UTC(),
	}
}

func newTestCorrection() *domain.CorrectionRecord {
	return &domain.CorrectionRecord{
		ID:             "corr-123",
		ChunkID:        "chunk-1",
		ConversationID: "conv-1",
		SessionID:      "sess-1",
		ProposedText:   "Torque to 12 ft-lbs, not 10.",
		Status:         domain.CorrectionStatusPending,
		CreatedAt:      time.Now().UTC(),
	}
}

func reviewerRequest(method, url, param, value string, body []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(param, value)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.ReviewerKey, "reviewer@apexfab.com")
	return req.WithContext(ctx)
}

func TestFeedbackHandler_RecordFeedback_Success(t *testing.T) {
	mockSvc := new(MockFeedbackService)
	handler := NewFeedbackHandler(mockSvc)

	mockSvc.On("RecordFeedback", mock.Anything, service.RecordFeedbackInput{
		ChunkID:        "chunk-1",
		ConversationID: "conv-1",
		SessionID:      "sess-1",
		Rating:         2,
		Note:           "outdated torque value",
	}).Return(newTestFeedback(), nil)

	body := `{"chunk_id":"chunk-1","conversation_id":"conv-1","session_id":"sess-1","rating":2,"note":"outdated torque value"}`
	req := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.RecordFeedback(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "fb-123", data["id"])
	assert.Equal(t, "new", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestFeedbackHandler_RecordFeedback_ValidationError(t *testing.T) {
	mockSvc := new(MockFeedbackService)
	handler := NewFeedbackHandler(mockSvc)

	mockSvc.On("RecordFeedback", mock.Anything, mock.Anything).Return(nil, domain.ErrMissingConversation)

	body := `{"chunk_id":"chunk-1","session_id":"sess-1","rating":2}`
	req := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.RecordFeedback(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "conversation ID is required")
}

func TestFeedbackHandler_RecordFeedback_InvalidJSON(t *testing.T) {
	handler := NewFeedbackHandler(new(MockFeedbackService))

	req := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewReader([]byte(`{invalid`)))
	w := httptest.NewRecorder()

	handler.RecordFeedback(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestFeedbackHandler_RecordCorrection_Success(t *testing.T) {
	mockSvc := new(MockFeedbackService)
	handler := NewFeedbackHandler(mockSvc)

	mockSvc.On("RecordCorrection", mock.Anything, mock.MatchedBy(func(input service.RecordCorrectionInput) bool {
		return input.ProposedText == "Torque to 12 ft-lbs, not 10."
	})).Return(newTestCorrection(), nil)

	body := `{"chunk_id":"chunk-1","conversation_id":"conv-1","session_id":"sess-1","proposed_text":"Torque to 12 ft-lbs, not 10."}`
	req := httptest.NewRequest(http.MethodPost, "/corrections", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.RecordCorrection(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestFeedbackHandler_RecordCorrection_MissingText(t *testing.T) {
	mockSvc := new(MockFeedbackService)
	handler := NewFeedbackHandler(mockSvc)

	mockSvc.On("RecordCorrection", mock.Anything, mock.Anything).Return(nil, domain.ErrMissingProposedText)

	body := `{"chunk_id":"chunk-1","conversation_id":"conv-1","session_id":"sess-1"}`
	req := httptest.NewRequest(http.MethodPost, "/corrections", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.RecordCorrection(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "proposed text is required")
}

func TestFeedbackHandler_ReviewFeedback_Success(t *testing.T) {
	mockSvc := new(MockFeedbackService)
	handler := NewFeedbackHandler(mockSvc)

	reviewed := newTestFeedback()
	reviewed.Status = domain.FeedbackStatusReviewed
	reviewed.ReviewedBy = "reviewer@apexfab.com"
	mockSvc.On("ReviewFeedback", mock.Anything, "fb-123", domain.FeedbackStatusReviewed, "reviewer@apexfab.com").
		Return(reviewed, nil)

	body := `{"status":"reviewed"}`
	req := reviewerRequest(http.MethodPost, "/feedback/fb-123/review", "id", "fb-123", []byte(body))
	w := httptest.NewRecorder()

	handler.ReviewFeedback(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "reviewed", data["status"])
	assert.Equal(t, "reviewer@apexfab.com", data["reviewed_by"])
	mockSvc.AssertExpectations(t)
}

func TestFeedbackHandler_ReviewFeedback_NoReviewer(t *testing.T) {
	handler := NewFeedbackHandler(new(MockFeedbackService))

	body := `{"status":"reviewed"}`
	req := httptest.NewRequest(http.MethodPost, "/feedback/fb-123/review", bytes.NewReader([]byte(body)))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "fb-123")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.ReviewFeedback(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFeedbackHandler_ReviewFeedback_AlreadyReviewed(t *testing.T) {
	mockSvc := new(MockFeedbackService)
	handler := NewFeedbackHandler(mockSvc)

	mockSvc.On("ReviewFeedback", mock.Anything, "fb-123", domain.FeedbackStatusRejected, "reviewer@apexfab.com").
		Return(nil, domain.ErrAlreadyReviewed)

	body := `{"status":"rejected"}`
	req := reviewerRequest(http.MethodPost, "/feedback/fb-123/review", "id", "fb-123", []byte(body))
	w := httptest.NewRecorder()

	handler.ReviewFeedback(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestFeedbackHandler_ReviewCorrection_Approve(t *testing.T) {
	mockSvc := new(MockFeedbackService)
	handler := NewFeedbackHandler(mockSvc)

	approved := newTestCorrection()
	approved.Status = domain.CorrectionStatusApproved
	approved.ReviewedBy = "reviewer@apexfab.com"
	mockSvc.On("ReviewCorrection", mock.Anything, "corr-123", domain.CorrectionStatusApproved, "reviewer@apexfab.com").
		Return(approved, nil)

	body := `{"status":"approved"}`
	req := reviewerRequest(http.MethodPost, "/corrections/corr-123/review", "id", "corr-123", []byte(body))
	w := httptest.NewRecorder()

	handler.ReviewCorrection(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "approved", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestFeedbackHandler_ReviewCorrection_NotFound(t *testing.T) {
	mockSvc := new(MockFeedbackService)
	handler := NewFeedbackHandler(mockSvc)

	mockSvc.On("ReviewCorrection", mock.Anything, "corr-999", domain.CorrectionStatusRejected, "reviewer@apexfab.com").
		Return(nil, domain.ErrCorrectionNotFound)

	body := `{"status":"rejected"}`
	req := reviewerRequest(http.MethodPost, "/corrections/corr-999/review", "id", "corr-999", []byte(body))
	w := httptest.NewRecorder()

	handler.ReviewCorrection(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestFeedbackHandler_ListFeedback_Success(t *testing.T) {
	mockSvc := new(MockFeedbackService)
	handler := NewFeedbackHandler(mockSvc)

	mockSvc.On("ListFeedback", mock.Anything, service.ListFeedbackInput{
		Status: domain.FeedbackStatusNew,
		Limit:  5,
	}).Return(&service.FeedbackPageResult{
		Items:      []*domain.FeedbackRecord{newTestFeedback()},
		NextCursor: "cursor-1",
		HasMore:    true,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/feedback?status=new&limit=5", nil)
	w := httptest.NewRecorder()

	handler.ListFeedback(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Len(t, data["items"], 1)
	assert.Equal(t, "cursor-1", data["cursor"])
	mockSvc.AssertExpectations(t)
}

func TestFeedbackHandler_ListCorrections_Success(t *testing.T) {
	mockSvc := new(MockFeedbackService)
	handler := NewFeedbackHandler(mockSvc)

	mockSvc.On("ListCorrections", mock.Anything, service.ListCorrectionsInput{
		Status: domain.CorrectionStatusPending,
	}).Return(&service.CorrectionPageResult{
		Items: []*domain.CorrectionRecord{newTestCorrection()},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/corrections?status=pending", nil)
	w := httptest.NewRecorder()

	handler.ListCorrections(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Len(t, data["items"], 1)
	assert.Equal(t, false, data["has_more"])
	mockSvc.AssertExpectations(t)
}

func TestFeedbackHandler_ListFeedback_InvalidLimit(t *testing.T) {
	handler := NewFeedbackHandler(new(MockFeedbackService))

	req := httptest.NewRequest(http.MethodGet, "/feedback?limit=abc", nil)
	w := httptest.NewRecorder()

	handler.ListFeedback(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid limit")
}
