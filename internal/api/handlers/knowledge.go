package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/apexfab/roofmate/internal/api"
	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/service"
	"github.com/go-chi/chi/v5"
)

type DocumentService interface {
	CreateDocument(ctx context.Context, input service.CreateDocumentInput) (*domain.KnowledgeDocument, error)
	GetDocument(ctx context.Context, id string) (*domain.KnowledgeDocument, error)
	UpdateDocument(ctx context.Context, input service.UpdateDocumentInput) (*domain.KnowledgeDocument, error)
	SetAllowed(ctx context.Context, id string, allowed bool) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error)
}

type KnowledgeHandler struct {
	svc DocumentService
}

func NewKnowledgeHandler(svc DocumentService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type CreateDocumentRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Audience    string   `json:"audience"`
	ProductTags []string `json:"product_tags"`
	SourceKey   string   `json:"source_key"`
}

type UpdateDocumentRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Audience    string   `json:"audience"`
	ProductTags []string `json:"product_tags"`
	SourceKey   string   `json:"source_key"`
}

type ApproveDocumentRequest struct {
	Allowed bool `json:"allowed"`
}

type DocumentResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Audience    string   `json:"audience"`
	ProductTags []string `json:"product_tags"`
	Allowed     bool     `json:"allowed"`
	SourceKey   string   `json:"source_key"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Items   []*DocumentResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func documentToResponse(d *domain.KnowledgeDocument) *DocumentResponse {
	return &DocumentResponse{
		ID:          d.ID,
		Title:       d.Title,
		Content:     d.Content,
		Category:    d.Category,
		Audience:    d.Audience,
		ProductTags: d.ProductTags,
		Allowed:     d.Allowed,
		SourceKey:   d.SourceKey,
		CreatedAt:   d.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   d.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	doc, err := h.svc.CreateDocument(r.Context(), service.CreateDocumentInput{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Audience:    req.Audience,
		ProductTags: req.ProductTags,
		SourceKey:   req.SourceKey,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, documentToResponse(doc))
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.svc.UpdateDocument(r.Context(), service.UpdateDocumentInput{
		DocumentID:  id,
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Audience:    req.Audience,
		ProductTags: req.ProductTags,
		SourceKey:   req.SourceKey,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

// Approve toggles the retrieval eligibility flag on a document.
func (h *KnowledgeHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req ApproveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.SetAllowed(r.Context(), id, req.Allowed); err != nil {
		api.HandleError(w, err)
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.DeleteDocument(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	input := service.ListDocumentsInput{
		Cursor: r.URL.Query().Get("cursor"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		input.Limit = limit
	}

	out, err := h.svc.ListDocuments(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*DocumentResponse, 0, len(out.Items))
	for _, doc := range out.Items {
		items = append(items, documentToResponse(doc))
	}

	api.Success(w, http.StatusOK, ListDocumentsResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}
