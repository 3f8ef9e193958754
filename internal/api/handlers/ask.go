package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/apexfab/roofmate/internal/api"
	"github.com/apexfab/roofmate/internal/domain"
	"github.com/apexfab/roofmate/internal/routing"
	"github.com/apexfab/roofmate/internal/service"
)

// SolutionMatcher resolves free text to a canonical solution and drives the
// follow-up question sequence.
type SolutionMatcher interface {
	Resolve(text string) *domain.CanonicalSolution
	NextQuestion(sol *domain.CanonicalSolution, state domain.IntakeState) *domain.AskStep
}

// ContextRetriever retrieves approved knowledge and assembles it into a
// bounded context blob.
type ContextRetriever interface {
	Retrieve(ctx context.Context, queryText string, opts service.RetrieveOptions) []*domain.RetrievedChunk
	BuildContext(chunks []*domain.RetrievedChunk) string
}

// FolderProber probes storage for the first candidate prefix holding files.
type FolderProber interface {
	Probe(ctx context.Context, prefixes []string) routing.ProbeResult
}

type AskHandler struct {
	matcher   SolutionMatcher
	retrieval ContextRetriever
	prober    FolderProber
}

// NewAskHandler creates an AskHandler. prober may be nil when storage is not
// configured; folder probing is then skipped.
func NewAskHandler(matcher SolutionMatcher, retrieval ContextRetriever, prober FolderProber) *AskHandler {
	return &AskHandler{
		matcher:   matcher,
		retrieval: retrieval,
		prober:    prober,
	}
}

type IntakeStateRequest struct {
	Securing     string   `json:"securing"`
	Membrane     string   `json:"membrane"`
	AnchorType   string   `json:"anchor_type"`
	MountSurface string   `json:"mount_surface"`
	Variant      string   `json:"variant"`
	DocKinds     []string `json:"doc_kinds"`
}

type AskContextRequest struct {
	Query          string             `json:"query"`
	ConversationID string             `json:"conversation_id"`
	SessionID      string             `json:"session_id"`
	MatchCount     int                `json:"match_count"`
	Category       string             `json:"category"`
	ProductTags    []string           `json:"product_tags"`
	Intake         IntakeStateRequest `json:"intake"`
}

type SolutionResponse struct {
	Key                 string   `json:"key"`
	Securing            string   `json:"securing"`
	AnchorType          string   `json:"anchor_type"`
	Folder              string   `json:"folder"`
	RecommendedDocKinds []string `json:"recommended_doc_kinds"`
}

type AskStepResponse struct {
	Slot   string `json:"slot"`
	Prompt string `json:"prompt"`
}

type RetrievedChunkResponse struct {
	ChunkID       string  `json:"chunk_id"`
	DocumentID    string  `json:"document_id"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Similarity    float32 `json:"similarity"`
	FeedbackScore float32 `json:"feedback_score"`
	Downvotes     int     `json:"downvotes"`
}

type FolderFileResponse struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

type FolderProbeResponse struct {
	Status string               `json:"status"`
	Prefix string               `json:"prefix"`
	Files  []FolderFileResponse `json:"files"`
}

type AskContextResponse struct {
	Solution     *SolutionResponse        `json:"solution"`
	NextQuestion *AskStepResponse         `json:"next_question"`
	Context      string                   `json:"context"`
	Chunks       []RetrievedChunkResponse `json:"chunks"`
	Folder       *FolderProbeResponse     `json:"folder"`
}

func solutionToResponse(sol *domain.CanonicalSolution) *SolutionResponse {
	return &SolutionResponse{
		Key:                 sol.Key,
		Securing:            sol.Securing,
		AnchorType:          string(sol.AnchorType),
		Folder:              sol.Folder(),
		RecommendedDocKinds: sol.RecommendedDocKinds,
	}
}

func chunksToResponse(chunks []*domain.RetrievedChunk) []RetrievedChunkResponse {
	out := make([]RetrievedChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, RetrievedChunkResponse{
			ChunkID:       c.ChunkID,
			DocumentID:    c.DocumentID,
			Title:         c.Title,
			Content:       c.Content,
			Similarity:    c.Similarity,
			FeedbackScore: c.FeedbackScore,
			Downvotes:     c.Downvotes,
		})
	}
	return out
}

func probeStatusString(status routing.ProbeStatus) string {
	switch status {
	case routing.ProbeFound:
		return "found"
	case routing.ProbeEmpty:
		return "empty"
	case routing.ProbeAllFailed:
		return "all_failed"
	default:
		return "unknown"
	}
}

func probeToResponse(result routing.ProbeResult) *FolderProbeResponse {
	files := make([]FolderFileResponse, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, FolderFileResponse{Key: f.Key, Size: f.Size})
	}
	return &FolderProbeResponse{
		Status: probeStatusString(result.Status),
		Prefix: result.Prefix,
		Files:  files,
	}
}

func intakeStateFromRequest(req IntakeStateRequest) domain.IntakeState {
	state := domain.IntakeState{
		Securing:     req.Securing,
		Membrane:     req.Membrane,
		MountSurface: req.MountSurface,
		Variant:      req.Variant,
		DocKinds:     req.DocKinds,
	}
	if req.AnchorType != "" {
		state.AnchorType = domain.AnchorType(req.AnchorType)
	}
	return state
}

// AskContext resolves the query to a solution, retrieves approved knowledge,
// and probes storage for the solution's folder. Retrieval and probing are
// independent: a missing solution does not block retrieval, and retrieval
// failures degrade to the no-knowledge notice.
func (h *AskHandler) AskContext(w http.ResponseWriter, r *http.Request) {
	var req AskContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	resp := AskContextResponse{}

	sol := h.matcher.Resolve(req.Query)
	if sol != nil {
		resp.Solution = solutionToResponse(sol)
		if step := h.matcher.NextQuestion(sol, intakeStateFromRequest(req.Intake)); step != nil {
			resp.NextQuestion = &AskStepResponse{Slot: step.Slot, Prompt: step.Prompt}
		}
	}

	chunks := h.retrieval.Retrieve(r.Context(), req.Query, service.RetrieveOptions{
		MatchCount:  req.MatchCount,
		Category:    req.Category,
		ProductTags: req.ProductTags,
	})
	resp.Chunks = chunksToResponse(chunks)
	resp.Context = h.retrieval.BuildContext(chunks)

	if sol != nil && h.prober != nil {
		result := h.prober.Probe(r.Context(), []string{sol.Folder()})
		resp.Folder = probeToResponse(result)
	}

	api.Success(w, http.StatusOK, resp)
}

type SearchRequest struct {
	Query       string   `json:"query"`
	MatchCount  int      `json:"match_count"`
	Category    string   `json:"category"`
	ProductTags []string `json:"product_tags"`
}

type SearchResponse struct {
	Chunks  []RetrievedChunkResponse `json:"chunks"`
	Context string                   `json:"context"`
}

// Search runs retrieval without solution matching or folder probing.
func (h *AskHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	chunks := h.retrieval.Retrieve(r.Context(), req.Query, service.RetrieveOptions{
		MatchCount:  req.MatchCount,
		Category:    req.Category,
		ProductTags: req.ProductTags,
	})

	api.Success(w, http.StatusOK, SearchResponse{
		Chunks:  chunksToResponse(chunks),
		Context: h.retrieval.BuildContext(chunks),
	})
}
