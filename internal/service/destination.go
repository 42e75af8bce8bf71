package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

const (
	MaxNameLength     = 200
	MaxNotesLength    = 5000
	MaxImages         = 20
	MaxImageURLLength = 2048
)

// DestinationService manages the stops of an itinerary.
type DestinationService struct {
	guard  itineraryGuard
	repo   repository.DestinationRepository
	logger *slog.Logger
}

func NewDestinationService(
	itineraries repository.ItineraryRepository,
	destinations repository.DestinationRepository,
	logger *slog.Logger,
) *DestinationService {
	return &DestinationService{
		guard:  itineraryGuard{itineraries: itineraries, logger: logger},
		repo:   destinations,
		logger: logger,
	}
}

// DestinationInput carries the editable fields. Update replaces all of them.
type DestinationInput struct {
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	Notes      string
	Images     []string
	Location   json.RawMessage
	OrderIndex int
}

func (in DestinationInput) normalize() (DestinationInput, error) {
	var err error
	if in.Name, err = cleanText("name", in.Name, MaxNameLength, true); err != nil {
		return in, err
	}
	if err := checkDateRange(in.StartDate, in.EndDate); err != nil {
		return in, err
	}
	if in.Notes, err = cleanText("notes", in.Notes, MaxNotesLength, false); err != nil {
		return in, err
	}
	if in.Images, err = cleanList("images", in.Images, MaxImages, MaxImageURLLength); err != nil {
		return in, err
	}
	if in.Location, err = cleanJSONObject("location", in.Location); err != nil {
		return in, err
	}
	if in.OrderIndex < 0 {
		return in, apperror.ValidationFailed("order_index", "order_index must not be negative")
	}
	return in, nil
}

func (in DestinationInput) applyTo(d *model.Destination) {
	d.Name = in.Name
	d.StartDate = in.StartDate
	d.EndDate = in.EndDate
	d.Notes = in.Notes
	d.Images = in.Images
	d.Location = in.Location
	d.OrderIndex = in.OrderIndex
}

func (s *DestinationService) Create(ctx context.Context, userID, itineraryID string, in DestinationInput) (*model.Destination, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	itineraryID, err = s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	d := &model.Destination{ItineraryID: itineraryID}
	in.applyTo(d)
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, storeError(s.logger, "destination", "create", err)
	}

	s.logger.Info("destination created",
		slog.String("id", d.ID),
		slog.String("itineraryID", itineraryID),
	)
	return d, nil
}

func (s *DestinationService) Get(ctx context.Context, userID, itineraryID, id string) (*model.Destination, error) {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	if id, err = cleanID("destination", id); err != nil {
		return nil, err
	}

	d, err := s.repo.Get(ctx, itineraryID, id)
	if err != nil {
		return nil, storeError(s.logger, "destination", "get", err)
	}
	return d, nil
}

// List returns every stop of the itinerary in travel order.
func (s *DestinationService) List(ctx context.Context, userID, itineraryID string) ([]model.Destination, error) {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	destinations, err := s.repo.ListByItinerary(ctx, itineraryID)
	if err != nil {
		return nil, storeError(s.logger, "destination", "list", err)
	}
	if destinations == nil {
		destinations = []model.Destination{}
	}
	return destinations, nil
}

func (s *DestinationService) Update(ctx context.Context, userID, itineraryID, id string, in DestinationInput) (*model.Destination, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	d, err := s.Get(ctx, userID, itineraryID, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(d)

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, storeError(s.logger, "destination", "update", err)
	}

	s.logger.Info("destination updated", slog.String("id", d.ID))
	return d, nil
}

// Delete removes a stop. Expenses that pointed at it stay on the itinerary
// with no destination.
func (s *DestinationService) Delete(ctx context.Context, userID, itineraryID, id string) error {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return err
	}
	if id, err = cleanID("destination", id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, itineraryID, id); err != nil {
		return storeError(s.logger, "destination", "delete", err)
	}

	s.logger.Info("destination deleted", slog.String("id", id))
	return nil
}

