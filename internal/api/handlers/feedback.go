package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/apexfab/roofmate/internal/api"
	"github.com/apexfab/roofmate/internal/api/middleware"
	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/service"
	"github.com/go-chi/chi/v5"
)

type FeedbackLedgerService interface {
	RecordFeedback(ctx context.Context, input service.RecordFeedbackInput) (*domain.FeedbackRecord, error)
	RecordCorrection(ctx context.Context, input service.RecordCorrectionInput) (*domain.CorrectionRecord, error)
	ReviewFeedback(ctx context.Context, id string, status domain.FeedbackStatus, reviewedBy string) (*domain.FeedbackRecord, error)
	ReviewCorrection(ctx context.Context, id string, status domain.CorrectionStatus, reviewedBy string) (*domain.CorrectionRecord, error)
	ListFeedback(ctx context.Context, input service.ListFeedbackInput) (*service.FeedbackPageResult, error)
	ListCorrections(ctx context.Context, input service.ListCorrectionsInput) (*service.CorrectionPageResult, error)
}

type FeedbackHandler struct {
	svc FeedbackLedgerService
}

func NewFeedbackHandler(svc FeedbackLedgerService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

type RecordFeedbackRequest struct {
	ChunkID        string `json:"chunk_id"`
	DocumentID     string `json:"document_id"`
	ConversationID string `json:"conversation_id"`
	SessionID      string `json:"session_id"`
	Rating         int    `json:"rating"`
	Note           string `json:"note"`
}

type RecordCorrectionRequest struct {
	ChunkID        string `json:"chunk_id"`
	DocumentID     string `json:"document_id"`
	ConversationID string `json:"conversation_id"`
	SessionID      string `json:"session_id"`
	ProposedText   string `json:"proposed_text"`
}

type ReviewRequest struct {
	Status string `json:"status"`
}

type FeedbackResponse struct {
	ID             string `json:"id"`
	ChunkID        string `json:"chunk_id,omitempty"`
	DocumentID     string `json:"document_id,omitempty"`
	ConversationID string `json:"conversation_id"`
	SessionID      string `json:"session_id"`
	Rating         int    `json:"rating"`
	Note           string `json:"note,omitempty"`
	Status         string `json:"status"`
	ReviewedBy     string `json:"reviewed_by,omitempty"`
	CreatedAt      string `json:"created_at"`
	ReviewedAt     string `json:"reviewed_at,omitempty"`
}

type CorrectionResponse struct {
	ID             string `json:"id"`
	ChunkID        string `json:"chunk_id,omitempty"`
	DocumentID     string `json:"document_id,omitempty"`
	ConversationID string `json:"conversation_id"`
	SessionID      string `json:"session_id"`
	ProposedText   string `json:"proposed_text"`
	Status         string `json:"status"`
	ReviewedBy     string `json:"reviewed_by,omitempty"`
	CreatedAt      string `json:"created_at"`
	ReviewedAt     string `json:"reviewed_at,omitempty"`
}

type ListFeedbackResponse struct {
	Items   []*FeedbackResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

type ListCorrectionsResponse struct {
	Items   []*CorrectionResponse `json:"items"`
	Cursor  string                `json:"cursor,omitempty"`
	HasMore bool                  `json:"has_more"`
}

const timestampLayout = "2006-01-02T15:04:05Z"

func feedbackToResponse(f *domain.FeedbackRecord) *FeedbackResponse {
	resp := &FeedbackResponse{
		ID:             f.ID,
		ChunkID:        f.ChunkID,
		DocumentID:     f.DocumentID,
		ConversationID: f.ConversationID,
		SessionID:      f.SessionID,
		Rating:         f.Rating,
		Note:           f.Note,
		Status:         string(f.Status),
		ReviewedBy:     f.ReviewedBy,
		CreatedAt:      f.CreatedAt.Format(timestampLayout),
	}
	if f.ReviewedAt != nil {
		resp.ReviewedAt = f.ReviewedAt.Format(timestampLayout)
	}
	return resp
}

func correctionToResponse(c *domain.CorrectionRecord) *CorrectionResponse {
	resp := &CorrectionResponse{
		ID:             c.ID,
		ChunkID:        c.ChunkID,
		DocumentID:     c.DocumentID,
		ConversationID: c.ConversationID,
		SessionID:      c.SessionID,
		ProposedText:   c.ProposedText,
		Status:         string(c.Status),
		ReviewedBy:     c.ReviewedBy,
		CreatedAt:      c.CreatedAt.Format(timestampLayout),
	}
	if c.ReviewedAt != nil {
		resp.ReviewedAt = c.ReviewedAt.Format(timestampLayout)
	}
	return resp
}

func (h *FeedbackHandler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	var req RecordFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.svc.RecordFeedback(r.Context(), service.RecordFeedbackInput{
		ChunkID:        req.ChunkID,
		DocumentID:     req.DocumentID,
		ConversationID: req.ConversationID,
		SessionID:      req.SessionID,
		Rating:         req.Rating,
		Note:           req.Note,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, feedbackToResponse(record))
}

func (h *FeedbackHandler) RecordCorrection(w http.ResponseWriter, r *http.Request) {
	var req RecordCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.svc.RecordCorrection(r.Context(), service.RecordCorrectionInput{
		ChunkID:        req.ChunkID,
		DocumentID:     req.DocumentID,
		ConversationID: req.ConversationID,
		SessionID:      req.SessionID,
		ProposedText:   req.ProposedText,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, correctionToResponse(record))
}

func (h *FeedbackHandler) ReviewFeedback(w http.ResponseWriter, r *http.Request) {
	reviewer := middleware.GetReviewer(r.Context())
	if reviewer == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.svc.ReviewFeedback(r.Context(), id, domain.FeedbackStatus(req.Status), reviewer)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, feedbackToResponse(record))
}

func (h *FeedbackHandler) ReviewCorrection(w http.ResponseWriter, r *http.Request) {
	reviewer := middleware.GetReviewer(r.Context())
	if reviewer == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.svc.ReviewCorrection(r.Context(), id, domain.CorrectionStatus(req.Status), reviewer)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, correctionToResponse(record))
}

func listLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	limit, err := listLimit(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid limit")
		return
	}

	out, err := h.svc.ListFeedback(r.Context(), service.ListFeedbackInput{
		Status: domain.FeedbackStatus(r.URL.Query().Get("status")),
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*FeedbackResponse, 0, len(out.Items))
	for _, record := range out.Items {
		items = append(items, feedbackToResponse(record))
	}

	api.Success(w, http.StatusOK, ListFeedbackResponse{
		Items:   items,
		Cursor:  out.NextCursor,
		HasMore: out.HasMore,
	})
}

func (h *FeedbackHandler) ListCorrections(w http.ResponseWriter, r *http.Request) {
	limit, err := listLimit(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid limit")
		return
	}

	out, err := h.svc.ListCorrections(r.Context(), service.ListCorrectionsInput{
		Status: domain.CorrectionStatus(r.URL.Query().Get("status")),
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*CorrectionResponse, 0, len(out.Items))
	for _, record := range out.Items {
		items = append(items, correctionToResponse(record))
	}

	api.Success(w, http.StatusOK, ListCorrectionsResponse{
		Items:   items,
		Cursor:  out.NextCursor,
		HasMore: out.HasMore,
	})
}
