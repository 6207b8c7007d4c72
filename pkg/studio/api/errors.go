package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/studio-site/pkg/studio"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	ContactID string `json:"contact_id,omitempty"`
}

// statusFor maps service error kinds to HTTP status codes
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, studio.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, studio.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, studio.ErrNotFound), errors.Is(err, studio.ErrMediaNotFound):
		return http.StatusNotFound
	case errors.Is(err, studio.ErrNotification):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var notifyErr *studio.NotificationError
	if errors.As(err, &notifyErr) {
		resp.ContactID = notifyErr.ContactID.String()
	}

	switch {
	case status == http.StatusInternalServerError:
		httplog.LogEntry(r.Context()).Error("Request failed", "error", err)
		resp.Error = "internal server error"
	case status >= http.StatusInternalServerError:
		httplog.LogEntry(r.Context()).Warn("Request partially failed", "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

// parseID reads the {id} path parameter. On failure it writes a 400 and
// returns false.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, r, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
