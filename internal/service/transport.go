package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

const (
	MaxTransportTypeLength = 50
	MaxProviderLength      = 200
	MaxBookingRefLength    = 100
	MaxSeats               = 50
	MaxSeatLength          = 20
)

// TransportService manages the booked legs of an itinerary.
type TransportService struct {
	guard  itineraryGuard
	repo   repository.TransportRepository
	logger *slog.Logger
}

func NewTransportService(
	itineraries repository.ItineraryRepository,
	transports repository.TransportRepository,
	logger *slog.Logger,
) *TransportService {
	return &TransportService{
		guard:  itineraryGuard{itineraries: itineraries, logger: logger},
		repo:   transports,
		logger: logger,
	}
}

type TransportInput struct {
	Type             string
	Provider         string
	BookingReference string
	Departure        json.RawMessage
	Arrival          json.RawMessage
	Seats            []string
	Notes            string
}

func (in TransportInput) normalize() (TransportInput, error) {
	var err error
	if in.Type, err = cleanText("type", in.Type, MaxTransportTypeLength, true); err != nil {
		return in, err
	}
	if in.Provider, err = cleanText("provider", in.Provider, MaxProviderLength, true); err != nil {
		return in, err
	}
	if in.BookingReference, err = cleanText("booking_reference", in.BookingReference, MaxBookingRefLength, true); err != nil {
		return in, err
	}
	if in.Departure, err = cleanJSONObject("departure", in.Departure); err != nil {
		return in, err
	}
	if in.Arrival, err = cleanJSONObject("arrival", in.Arrival); err != nil {
		return in, err
	}
	if in.Seats, err = cleanList("seats", in.Seats, MaxSeats, MaxSeatLength); err != nil {
		return in, err
	}
	if in.Notes, err = cleanText("notes", in.Notes, MaxNotesLength, false); err != nil {
		return in, err
	}
	return in, nil
}

func (in TransportInput) applyTo(t *model.Transport) {
	t.Type = in.Type
	t.Provider = in.Provider
	t.BookingReference = in.BookingReference
	t.Departure = in.Departure
	t.Arrival = in.Arrival
	t.Seats = in.Seats
	t.Notes = in.Notes
}

func (s *TransportService) Create(ctx context.Context, userID, itineraryID string, in TransportInput) (*model.Transport, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	itineraryID, err = s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	t := &model.Transport{ItineraryID: itineraryID}
	in.applyTo(t)
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, storeError(s.logger, "transport", "create", err)
	}

	s.logger.Info("transport created",
		slog.String("id", t.ID),
		slog.String("itineraryID", itineraryID),
	)
	return t, nil
}

func (s *TransportService) Get(ctx context.Context, userID, itineraryID, id string) (*model.Transport, error) {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	if id, err = cleanID("transport", id); err != nil {
		return nil, err
	}

	t, err := s.repo.Get(ctx, itineraryID, id)
	if err != nil {
		return nil, storeError(s.logger, "transport", "get", err)
	}
	return t, nil
}

func (s *TransportService) List(ctx context.Context, userID, itineraryID string) ([]model.Transport, error) {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	transports, err := s.repo.ListByItinerary(ctx, itineraryID)
	if err != nil {
		return nil, storeError(s.logger, "transport", "list", err)
	}
	if transports == nil {
		transports = []model.Transport{}
	}
	return transports, nil
}

func (s *TransportService) Update(ctx context.Context, userID, itineraryID, id string, in TransportInput) (*model.Transport, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	t, err := s.Get(ctx, userID, itineraryID, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(t)

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, storeError(s.logger, "transport", "update", err)
	}

	s.logger.Info("transport updated", slog.String("id", t.ID))
	return t, nil
}

func (s *TransportService) Delete(ctx context.Context, userID, itineraryID, id string) error {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return err
	}
	if id, err = cleanID("transport", id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, itineraryID, id); err != nil {
		return storeError(s.logger, "transport", "delete", err)
	}

	s.logger.Info("transport deleted", slog.String("id", id))
	return nil
}
