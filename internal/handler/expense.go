package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/hodeway/internal/service"
)

// ExpenseHandler serves /itineraries/{id}/expenses.
type ExpenseHandler struct {
	expenses *service.ExpenseService
	logger   *slog.Logger
}

func NewExpenseHandler(expenses *service.ExpenseService, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenses: expenses,
		logger:   logger,
	}
}

// expenseRequest is the body for create and update. Amounts are integer
// cents so 12.50 EUR is {"amount_cents": 1250, "currency": "EUR"}.
type expenseRequest struct {
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Date          string `json:"date"`
	DestinationID string `json:"destination_id"`
}

func (req expenseRequest) input() (service.ExpenseInput, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return service.ExpenseInput{}, err
	}
	return service.ExpenseInput{
		AmountCents:   req.AmountCents,
		Currency:      req.Currency,
		Category:      req.Category,
		Description:   req.Description,
		Date:          date,
		DestinationID: req.DestinationID,
	}, nil
}

// HandleList returns the itinerary's expenses in date order.
//
// HTTP: GET /itineraries/{id}/expenses
func (h *ExpenseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	expenses, err := h.expenses.List(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, expenses)
}

// HandleCreate records an expense. A destination_id must name a stop on the
// same itinerary.
//
// HTTP: POST /itineraries/{id}/expenses
func (h *ExpenseHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, err)
		return
	}

	expense, err := h.expenses.Create(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	expense, err := h.expenses.Get(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "expenseID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, err)
		return
	}

	expense, err := h.expenses.Update(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "expenseID"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	if err := h.expenses.Delete(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "expenseID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
