package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/hodeway/internal/service"
)

// CollaboratorHandler serves /itineraries/{id}/collaborators. Collaborators
// are added by email and removed by user ID.
type CollaboratorHandler struct {
	collaborators *service.CollaboratorService
	logger        *slog.Logger
}

func NewCollaboratorHandler(collaborators *service.CollaboratorService, logger *slog.Logger) *CollaboratorHandler {
	return &CollaboratorHandler{
		collaborators: collaborators,
		logger:        logger,
	}
}

type addCollaboratorRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HTTP: GET /itineraries/{id}/collaborators
func (h *CollaboratorHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	collaborators, err := h.collaborators.List(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, collaborators)
}

// HandleAdd lists a registered user on the itinerary.
//
// HTTP: POST /itineraries/{id}/collaborators
// REQUEST BODY: {"email": "bob@example.com", "role": "editor"}
// RESPONSE:     201, 404 for an unknown email, 409 if already listed
func (h *CollaboratorHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req addCollaboratorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	collaborator, err := h.collaborators.Add(r.Context(), user.ID, chi.URLParam(r, "id"), req.Email, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, collaborator)
}

// HTTP: DELETE /itineraries/{id}/collaborators/{userID}
func (h *CollaboratorHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	if err := h.collaborators.Remove(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
