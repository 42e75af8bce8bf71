package service

// TRIP DETAILS:
// Destinations, expenses, transports and collaborators hang off a single
// itinerary. Their services all start the same way: resolve the itinerary ID
// from the URL to one the acting user owns. Everything after that is scoped
// by the itinerary ID, so a child ID copied from someone else's trip is just
// as missing as a made-up one.
//
//	/itineraries/{id}/destinations/{destinationID}
//	             └── itineraryGuard.owned ──┘ └── repo scoped by itinerary_id

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/repository"
)

type itineraryGuard struct {
	itineraries repository.ItineraryRepository
	logger      *slog.Logger
}

// owned returns the cleaned itinerary ID if userID owns it, and NotFound for
// missing and foreign itineraries alike.
func (g itineraryGuard) owned(ctx context.Context, userID, itineraryID string) (string, error) {
	id, err := cleanID("itinerary", itineraryID)
	if err != nil {
		return "", err
	}

	itinerary, err := g.itineraries.GetByID(ctx, id)
	if err != nil {
		return "", storeError(g.logger, "itinerary", "get", err)
	}
	if itinerary.UserID != userID {
		return "", apperror.NotFound("itinerary", id)
	}
	return id, nil
}

// storeError passes NotFound and Conflict from a repository through and
// turns anything else into a logged StoreUnavailable.
func storeError(logger *slog.Logger, resource, op string, err error) error {
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrConflict) {
		return err
	}
	logger.Error("store failure",
		slog.String("resource", resource),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %w", apperror.StoreUnavailable(), err)
}
