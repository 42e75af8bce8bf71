package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/hodeway/internal/service"
)

// DestinationHandler serves /itineraries/{id}/destinations.
type DestinationHandler struct {
	destinations *service.DestinationService
	logger       *slog.Logger
}

func NewDestinationHandler(destinations *service.DestinationService, logger *slog.Logger) *DestinationHandler {
	return &DestinationHandler{
		destinations: destinations,
		logger:       logger,
	}
}

// destinationRequest is the body for create and update.
//
//	{"name": "Porto", "start_date": "2026-07-04", "end_date": "2026-07-06",
//	 "location": {"lat": 41.15, "lng": -8.61}, "images": [], "order_index": 1}
type destinationRequest struct {
	Name       string          `json:"name"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Notes      string          `json:"notes"`
	Images     []string        `json:"images"`
	Location   json.RawMessage `json:"location"`
	OrderIndex int             `json:"order_index"`
}

func (req destinationRequest) input() (service.DestinationInput, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return service.DestinationInput{}, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return service.DestinationInput{}, err
	}
	return service.DestinationInput{
		Name:       req.Name,
		StartDate:  start,
		EndDate:    end,
		Notes:      req.Notes,
		Images:     req.Images,
		Location:   req.Location,
		OrderIndex: req.OrderIndex,
	}, nil
}

// HandleList returns the itinerary's stops ordered by order_index.
//
// HTTP: GET /itineraries/{id}/destinations
func (h *DestinationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	destinations, err := h.destinations.List(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, destinations)
}

// HandleCreate adds a stop.
//
// HTTP: POST /itineraries/{id}/destinations
// RESPONSE: 201 Created with the stored destination
func (h *DestinationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req destinationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, err)
		return
	}

	destination, err := h.destinations.Create(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, destination)
}

// HTTP: GET /itineraries/{id}/destinations/{destinationID}
func (h *DestinationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	destination, err := h.destinations.Get(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "destinationID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, destination)
}

// HTTP: PUT /itineraries/{id}/destinations/{destinationID}
func (h *DestinationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req destinationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, err)
		return
	}

	destination, err := h.destinations.Update(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "destinationID"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, destination)
}

// HTTP: DELETE /itineraries/{id}/destinations/{destinationID}
// RESPONSE: 204 No Content
func (h *DestinationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	if err := h.destinations.Delete(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "destinationID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
