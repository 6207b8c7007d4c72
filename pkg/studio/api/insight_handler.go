package api

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/studio-site/pkg/studio"
)

// InsightHandler serves the search and dashboard statistics endpoints
type InsightHandler struct {
	service studio.Service
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(service studio.Service) *InsightHandler {
	return &InsightHandler{service: service}
}

// Search matches ?q= against project titles and post titles or content
func (h *InsightHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, SearchResponse{
		Projects: mapAll(result.Projects, h.service.MediaURL, newProjectResponse),
		Posts:    mapAll(result.Posts, h.service.MediaURL, newPostResponse),
	})
}

// Stats returns record counts per collection
func (h *InsightHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, stats)
}
