package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/hodeway/internal/service"
)

// TransportHandler serves /itineraries/{id}/transports.
type TransportHandler struct {
	transports *service.TransportService
	logger     *slog.Logger
}

func NewTransportHandler(transports *service.TransportService, logger *slog.Logger) *TransportHandler {
	return &TransportHandler{
		transports: transports,
		logger:     logger,
	}
}

// transportRequest is the body for create and update. departure and arrival
// are stored as the client sends them, as long as each is a JSON object.
type transportRequest struct {
	Type             string          `json:"type"`
	Provider         string          `json:"provider"`
	BookingReference string          `json:"booking_reference"`
	Departure        json.RawMessage `json:"departure"`
	Arrival          json.RawMessage `json:"arrival"`
	Seats            []string        `json:"seats"`
	Notes            string          `json:"notes"`
}

func (req transportRequest) input() service.TransportInput {
	return service.TransportInput{
		Type:             req.Type,
		Provider:         req.Provider,
		BookingReference: req.BookingReference,
		Departure:        req.Departure,
		Arrival:          req.Arrival,
		Seats:            req.Seats,
		Notes:            req.Notes,
	}
}

// HTTP: GET /itineraries/{id}/transports
func (h *TransportHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	transports, err := h.transports.List(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transports)
}

// HTTP: POST /itineraries/{id}/transports
func (h *TransportHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req transportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	transport, err := h.transports.Create(r.Context(), user.ID, chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transport)
}

func (h *TransportHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	transport, err := h.transports.Get(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "transportID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transport)
}

func (h *TransportHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req transportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	transport, err := h.transports.Update(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "transportID"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transport)
}

func (h *TransportHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	if err := h.transports.Delete(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "transportID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
