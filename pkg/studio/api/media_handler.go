package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/studio-site/pkg/studio"
)

// MediaHandler streams stored images back to browsers
type MediaHandler struct {
	service studio.Service
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(service studio.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

// ServeMedia writes the object referenced by the wildcard path segment
func (h *MediaHandler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "*")
	if ref == "" {
		writeError(w, r, studio.ErrMediaNotFound)
		return
	}

	rc, meta, err := h.service.OpenMedia(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	if meta.ETag != "" {
		w.Header().Set("ETag", strconv.Quote(meta.ETag))
		if match := r.Header.Get("If-None-Match"); match == strconv.Quote(meta.ETag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	if meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if !meta.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", meta.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Failed to stream media", "ref", ref, "error", err)
	}
}
