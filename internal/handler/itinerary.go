package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/auth"
	"github.com/sakif/hodeway/internal/service"
)

// ItineraryHandler manages CRUD operations for itineraries.
//
// Every route sits behind RequireAuth, so the acting user always comes from
// the bearer token and never from the request body. A client can't create
// or read an itinerary on someone else's behalf by sending a different
// user_id.
type ItineraryHandler struct {
	itineraries *service.ItineraryService
	logger      *slog.Logger
}

func NewItineraryHandler(itineraries *service.ItineraryService, logger *slog.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		itineraries: itineraries,
		logger:      logger,
	}
}

// itineraryRequest is the body for create and update.
//
// DATES:
// start_date and end_date are calendar dates ("2026-07-01"). A full RFC 3339
// timestamp is also accepted so clients that only speak ISO datetimes work.
type itineraryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (req itineraryRequest) input() (service.ItineraryInput, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return service.ItineraryInput{}, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return service.ItineraryInput{}, err
	}
	return service.ItineraryInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// parseDate returns the zero time for an empty value and lets the service
// report the field as required.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperror.ValidationFailed(field, field+" must be a date like 2006-01-02")
}

// HandleList returns the caller's itineraries, newest first.
//
// HTTP: GET /itineraries?limit=20&offset=0
//
// Bad or missing numbers fall back to the defaults; the service clamps the rest.
func (h *ItineraryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized())
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	itineraries, err := h.itineraries.List(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, itineraries)
}

// HandleCreate saves a new itinerary for the caller.
//
// HTTP: POST /itineraries
// REQUEST BODY: {"title": "Lisbon", "start_date": "2026-07-01", "end_date": "2026-07-08"}
// RESPONSE:     201 Created with the stored itinerary
func (h *ItineraryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized())
		return
	}

	var req itineraryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, err)
		return
	}

	itinerary, err := h.itineraries.Create(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, itinerary)
}

// HandleGet returns one itinerary.
//
// HTTP: GET /itineraries/{id}
//
// URL PARAMETERS:
// chi.URLParam(r, "id") extracts {id} from the matched route pattern.
func (h *ItineraryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized())
		return
	}

	itinerary, err := h.itineraries.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, itinerary)
}

// HandleUpdate replaces an itinerary's title, description and dates.
//
// HTTP: PUT /itineraries/{id}
func (h *ItineraryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized())
		return
	}

	var req itineraryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, err)
		return
	}

	itinerary, err := h.itineraries.Update(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, itinerary)
}

// HandleDelete removes an itinerary.
//
// HTTP: DELETE /itineraries/{id}
// RESPONSE: 204 No Content
func (h *ItineraryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.itineraries.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
