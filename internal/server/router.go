package server

import (
	"net/http"

	"github.com/apexfab/roofmate/internal/api"
	"github.com/apexfab/roofmate/internal/api/handlers"
	"github.com/apexfab/roofmate/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	ReviewerToken    string
	AskHandler       *handlers.AskHandler
	FoldersHandler   *handlers.FoldersHandler
	KnowledgeHandler *handlers.KnowledgeHandler
	FeedbackHandler  *handlers.FeedbackHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/ask/context", cfg.AskHandler.AskContext)
	r.Post("/search", cfg.AskHandler.Search)
	r.Get("/folders/resolve", cfg.FoldersHandler.Resolve)

	r.Post("/feedback", cfg.FeedbackHandler.RecordFeedback)
	r.Post("/corrections", cfg.FeedbackHandler.RecordCorrection)

	r.Get("/knowledge/{id}", cfg.KnowledgeHandler.Get)
	r.Get("/knowledge", cfg.KnowledgeHandler.List)

	// Reviewer-gated: knowledge curation and ledger review.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ReviewerAuth(cfg.ReviewerToken))

		r.Post("/knowledge", cfg.KnowledgeHandler.Create)
		r.Put("/knowledge/{id}", cfg.KnowledgeHandler.Update)
		r.Post("/knowledge/{id}/approve", cfg.KnowledgeHandler.Approve)
		r.Delete("/knowledge/{id}", cfg.KnowledgeHandler.Delete)

		r.Get("/feedback", cfg.FeedbackHandler.ListFeedback)
		r.Post("/feedback/{id}/review", cfg.FeedbackHandler.ReviewFeedback)
		r.Get("/corrections", cfg.FeedbackHandler.ListCorrections)
		r.Post("/corrections/{id}/review", cfg.FeedbackHandler.ReviewCorrection)
	})

	return r
}
