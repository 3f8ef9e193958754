package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/apexfab/roofmate/internal/api/handlers"
	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/routing"
	"github.com/apexfab/roofmate/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) Resolve(text string) *domain.CanonicalSolution {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.CanonicalSolution)
}

func (m *MockMatcher) NextQuestion(sol *domain.CanonicalSolution, state domain.IntakeState) *domain.AskStep {
	args := m.Called(sol, state)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.AskStep)
}

type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, queryText string, opts service.RetrieveOptions) []*domain.RetrievedChunk {
	args := m.Called(ctx, queryText, opts)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.RetrievedChunk)
}

func (m *MockRetriever) BuildContext(chunks []*domain.RetrievedChunk) string {
	args := m.Called(chunks)
	return args.String(0)
}

type MockFolderResolver struct {
	mock.Mock
}

func (m *MockFolderResolver) Resolve(ctx context.Context, p routing.Product) routing.ProbeResult {
	args := m.Called(ctx, p)
	return args.Get(0).(routing.ProbeResult)
}

func (m *MockFolderResolver) Probe(ctx context.Context, prefixes []string) routing.ProbeResult {
	args := m.Called(ctx, prefixes)
	return args.Get(0).(routing.ProbeResult)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) CreateDocument(ctx context.Context, input service.CreateDocumentInput) (*domain.KnowledgeDocument, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeDocument), args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, id string) (*domain.KnowledgeDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeDocument), args.Error(1)
}

func (m *MockDocumentService) UpdateDocument(ctx context.Context, input service.UpdateDocumentInput) (*domain.KnowledgeDocument, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeDocument), args.Error(1)
}

func (m *MockDocumentService) SetAllowed(ctx context.Context, id string, allowed bool) error {
	args := m.Called(ctx, id, allowed)
	return args.Error(0)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListDocumentsOutput), args.Error(1)
}

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

const testReviewerToken = "rm_reviewer_0123456789abcdef"

func setupRouter() (http.Handler, *MockMatcher, *MockRetriever, *MockFolderResolver, *MockDocumentService, *MockFeedbackService) {
	matcher := new(MockMatcher)
	retriever := new(MockRetriever)
	resolver := new(MockFolderResolver)
	docSvc := new(MockDocumentService)
	feedbackSvc := new(MockFeedbackService)

	cfg := RouterConfig{
		ReviewerToken:    testReviewerToken,
		AskHandler:       handlers.NewAskHandler(matcher, retriever, resolver),
		FoldersHandler:   handlers.NewFoldersHandler(resolver),
		KnowledgeHandler: handlers.NewKnowledgeHandler(docSvc),
		FeedbackHandler:  handlers.NewFeedbackHandler(feedbackSvc),
	}

	router := NewRouter(cfg)
	return router, matcher, retriever, resolver, docSvc, feedbackSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_PublicRoutes_NoAuthRequired(t *testing.T) {
	router, matcher, retriever, _, _, feedbackSvc := setupRouter()

	matcher.On("Resolve", mock.Anything).Return(nil)
	retriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).Return([]*domain.RetrievedChunk{})
	retriever.On("BuildContext", mock.Anything).Return(service.NoKnowledgeNotice)
	feedbackSvc.On("RecordFeedback", mock.Anything, mock.Anything).Return(&domain.FeedbackRecord{
		ID:             "fb-1",
		ChunkID:        "chunk-1",
		ConversationID: "conv-1",
		SessionID:      "sess-1",
		Rating:         4,
		Status:         domain.FeedbackStatusNew,
		CreatedAt:      time.Now().UTC(),
	}, nil)

	askReq := httptest.NewRequest(http.MethodPost, "/ask/context", strings.NewReader(`{"query":"snow fence"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, askReq)
	assert.Equal(t, http.StatusOK, w.Code)

	fbReq := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(
		`{"chunk_id":"chunk-1","conversation_id":"conv-1","session_id":"sess-1","rating":4}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, fbReq)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_ReviewerRoutes_RequireToken(t *testing.T) {
	router, _, _, _, _, _ := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/knowledge"},
		{http.MethodPut, "/knowledge/123"},
		{http.MethodPost, "/knowledge/123/approve"},
		{http.MethodDelete, "/knowledge/123"},
		{http.MethodGet, "/feedback"},
		{http.MethodPost, "/feedback/123/review"},
		{http.MethodGet, "/corrections"},
		{http.MethodPost, "/corrections/123/review"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_ReviewerRoutes_WithValidToken(t *testing.T) {
	router, _, _, _, _, feedbackSvc := setupRouter()

	feedbackSvc.On("ListFeedback", mock.Anything, mock.Anything).Return(&service.FeedbackPageResult{
		Items: []*domain.FeedbackRecord{},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/feedback", nil)
	req.Header.Set("Authorization", "Bearer "+testReviewerToken)
	req.Header.Set("X-Reviewer", "reviewer@apexfab.com")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	feedbackSvc.AssertExpectations(t)
}

func TestRouter_GetKnowledge_Public(t *testing.T) {
	router, _, _, _, docSvc, _ := setupRouter()

	docSvc.On("GetDocument", mock.Anything, "doc-1").Return(&domain.KnowledgeDocument{
		ID:        "doc-1",
		Title:     "Guide",
		Content:   "Content",
		Allowed:   true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/knowledge/doc-1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	docSvc.AssertExpectations(t)
}

func TestRouter_FoldersResolve(t *testing.T) {
	router, _, _, resolver, _, _ := setupRouter()

	resolver.On("Resolve", mock.Anything, routing.Product{Name: "snow fence pro"}).Return(routing.ProbeResult{
		Status: routing.ProbeFound,
		Prefix: "solutions/snow-retention/unitized-snow-fence",
		Files:  []routing.ObjectInfo{{Key: "solutions/snow-retention/unitized-snow-fence/manual.pdf"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/folders/resolve?name=snow+fence+pro", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resolver.AssertExpectations(t)
}
