package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

const (
	MaxCategoryLength = 50
	// MaxExpenseCents matches a NUMERIC(10,2) amount: 99,999,999.99.
	MaxExpenseCents = 9_999_999_999
)

// ExpenseService records spending on an itinerary.
type ExpenseService struct {
	guard        itineraryGuard
	repo         repository.ExpenseRepository
	destinations repository.DestinationRepository
	logger       *slog.Logger
}

func NewExpenseService(
	itineraries repository.ItineraryRepository,
	expenses repository.ExpenseRepository,
	destinations repository.DestinationRepository,
	logger *slog.Logger,
) *ExpenseService {
	return &ExpenseService{
		guard:        itineraryGuard{itineraries: itineraries, logger: logger},
		repo:         expenses,
		destinations: destinations,
		logger:       logger,
	}
}

// ExpenseInput carries the editable fields. DestinationID is optional.
type ExpenseInput struct {
	AmountCents   int64
	Currency      string
	Category      string
	Description   string
	Date          time.Time
	DestinationID string
}

// normalize checks the fields that don't need the database. Currency codes
// are checked against the ISO 4217 table in golang.org/x/text and stored in
// canonical upper case, so "eur" becomes "EUR".
func (in ExpenseInput) normalize() (ExpenseInput, error) {
	if in.AmountCents <= 0 {
		return in, apperror.ValidationFailed("amount_cents", "amount must be positive")
	}
	if in.AmountCents > MaxExpenseCents {
		return in, apperror.ValidationFailed("amount_cents",
			fmt.Sprintf("amount must be at most %d cents", MaxExpenseCents))
	}

	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(in.Currency)))
	if err != nil {
		return in, apperror.ValidationFailed("currency", "currency must be an ISO 4217 code like EUR")
	}
	in.Currency = unit.String()

	if in.Category, err = cleanText("category", in.Category, MaxCategoryLength, true); err != nil {
		return in, err
	}
	if in.Description, err = cleanText("description", in.Description, MaxDescriptionLength, true); err != nil {
		return in, err
	}
	if in.Date.IsZero() {
		return in, apperror.ValidationFailed("date", "date is required")
	}
	if in.DestinationID, err = cleanText("destination_id", in.DestinationID, MaxNameLength, false); err != nil {
		return in, err
	}
	return in, nil
}

func (in ExpenseInput) applyTo(e *model.Expense) {
	e.AmountCents = in.AmountCents
	e.Currency = in.Currency
	e.Category = in.Category
	e.Description = in.Description
	e.Date = in.Date
	e.DestinationID = in.DestinationID
}

// checkDestination makes sure a referenced destination is a stop on the same
// itinerary.
func (s *ExpenseService) checkDestination(ctx context.Context, itineraryID, destinationID string) error {
	if destinationID == "" {
		return nil
	}
	_, err := s.destinations.Get(ctx, itineraryID, destinationID)
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.ValidationFailed("destination_id", "destination is not part of this itinerary")
	}
	if err != nil {
		return storeError(s.logger, "destination", "get", err)
	}
	return nil
}

func (s *ExpenseService) Create(ctx context.Context, userID, itineraryID string, in ExpenseInput) (*model.Expense, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	itineraryID, err = s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkDestination(ctx, itineraryID, in.DestinationID); err != nil {
		return nil, err
	}

	e := &model.Expense{ItineraryID: itineraryID}
	in.applyTo(e)
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, storeError(s.logger, "expense", "create", err)
	}

	s.logger.Info("expense created",
		slog.String("id", e.ID),
		slog.String("itineraryID", itineraryID),
	)
	return e, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, itineraryID, id string) (*model.Expense, error) {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	if id, err = cleanID("expense", id); err != nil {
		return nil, err
	}

	e, err := s.repo.Get(ctx, itineraryID, id)
	if err != nil {
		return nil, storeError(s.logger, "expense", "get", err)
	}
	return e, nil
}

// List returns the itinerary's expenses in date order.
func (s *ExpenseService) List(ctx context.Context, userID, itineraryID string) ([]model.Expense, error) {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.ListByItinerary(ctx, itineraryID)
	if err != nil {
		return nil, storeError(s.logger, "expense", "list", err)
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	return expenses, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, itineraryID, id string, in ExpenseInput) (*model.Expense, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	e, err := s.Get(ctx, userID, itineraryID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDestination(ctx, e.ItineraryID, in.DestinationID); err != nil {
		return nil, err
	}
	in.applyTo(e)

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, storeError(s.logger, "expense", "update", err)
	}

	s.logger.Info("expense updated", slog.String("id", e.ID))
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, itineraryID, id string) error {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return err
	}
	if id, err = cleanID("expense", id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, itineraryID, id); err != nil {
		return storeError(s.logger, "expense", "delete", err)
	}

	s.logger.Info("expense deleted", slog.String("id", id))
	return nil
}
