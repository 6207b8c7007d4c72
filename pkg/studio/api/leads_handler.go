package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/studio-site/pkg/studio"
)

// maxJSONBody caps the contact and newsletter request bodies
const maxJSONBody = 64 << 10

// LeadsHandler handles contact form submissions and newsletter signups
type LeadsHandler struct {
	service studio.Service
}

// NewLeadsHandler creates a new leads handler
func NewLeadsHandler(service studio.Service) *LeadsHandler {
	return &LeadsHandler{service: service}
}

// SubmitContact stores a contact message and notifies the studio. When the
// message is stored but the notification fails the response is 502 (504 on
// timeout) and still carries the contact id.
func (h *LeadsHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req studio.SubmitContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contact, err := h.service.SubmitContact(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Contact submitted", "contact_id", contact.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, contact)
}

// ListContacts returns all contact messages, newest first
func (h *LeadsHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.ListContacts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if contacts == nil {
		contacts = []*studio.Contact{}
	}
	render.JSON(w, r, contacts)
}

// DeleteContact removes a contact message
func (h *LeadsHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteContact(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, MessageResponse{Message: "Contact deleted"})
}

// Subscribe adds an email address to the newsletter
func (h *LeadsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req studio.SubscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	subscriber, err := h.service.SubscribeNewsletter(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, subscriber)
}

// ListSubscribers returns all newsletter subscribers, newest first
func (h *LeadsHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.service.ListSubscribers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if subscribers == nil {
		subscribers = []*studio.Subscriber{}
	}
	render.JSON(w, r, subscribers)
}

// DeleteSubscriber removes a newsletter subscriber
func (h *LeadsHandler) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteSubscriber(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, MessageResponse{Message: "Subscriber deleted"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, r, err)
			return false
		}
		writeBadRequest(w, r, "invalid JSON body")
		return false
	}
	return true
}
