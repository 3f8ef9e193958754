package handlers

import (
	"context"
	"net/http"

	"github.com/apexfab/roofmate/internal/api"
	"github.com/apexfab/roofmate/internal/routing"
)

// FolderResolver generates candidate prefixes for a product and probes them.
type FolderResolver interface {
	Resolve(ctx context.Context, p routing.Product) routing.ProbeResult
}

type FoldersHandler struct {
	resolver FolderResolver
}

func NewFoldersHandler(resolver FolderResolver) *FoldersHandler {
	return &FoldersHandler{resolver: resolver}
}

type FolderResolveResponse struct {
	Candidates []string             `json:"candidates"`
	Result     *FolderProbeResponse `json:"result"`
}

// Resolve answers GET /folders/resolve?name=&series=&section=. The name
// parameter is required; series and section narrow candidate generation.
func (h *FoldersHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	product := routing.Product{
		Name:    r.URL.Query().Get("name"),
		Series:  r.URL.Query().Get("series"),
		Section: r.URL.Query().Get("section"),
	}

	if product.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	candidates := routing.CandidatePrefixes(product)
	result := h.resolver.Resolve(r.Context(), product)

	api.Success(w, http.StatusOK, FolderResolveResponse{
		Candidates: candidates,
		Result:     probeToResponse(result),
	})
}
