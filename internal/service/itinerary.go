// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
// Code is organised into three layers:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// WHY A SEPARATE SERVICE LAYER?
// Without one, handlers would parse HTTP, validate data, call the database and
// format responses all at once. With it, business rules are tested with plain
// Go function calls (see itinerary_test.go and auth_test.go), and handlers
// only know about status codes, headers and JSON.
//
// DEPENDENCY INJECTION:
// ItineraryService takes a repository.ItineraryRepository (interface), NOT a
// *sqlite.DB or *postgres.Store. server.go picks the backend from DATABASE_URL;
// tests pass an in-memory fake.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	DefaultListLimit     = 20
	MaxListLimit         = 100
)

// ItineraryService handles business logic for itineraries.
//
// OWNERSHIP:
// Every method takes the acting user's ID. An itinerary that belongs to
// someone else is reported as NotFound, never Forbidden, so callers can't
// learn which IDs exist.
type ItineraryService struct {
	repo   repository.ItineraryRepository
	logger *slog.Logger
}

func NewItineraryService(repo repository.ItineraryRepository, logger *slog.Logger) *ItineraryService {
	return &ItineraryService{
		repo:   repo,
		logger: logger,
	}
}

// ItineraryInput carries the user-editable fields for Create and Update.
// Update replaces all of them (PUT semantics).
type ItineraryInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// normalize trims text fields and checks the business rules:
//   - title is required and at most MaxTitleLength characters
//   - text fields are valid UTF-8
//   - both dates are required
//   - the trip can't end before it starts (same-day trips are fine)
func (in ItineraryInput) normalize() (ItineraryInput, error) {
	var err error
	if in.Title, err = cleanText("title", in.Title, MaxTitleLength, true); err != nil {
		return in, err
	}
	if in.Description, err = cleanText("description", in.Description, MaxDescriptionLength, false); err != nil {
		return in, err
	}
	if err := checkDateRange(in.StartDate, in.EndDate); err != nil {
		return in, err
	}
	return in, nil
}

// Create validates and saves a new itinerary owned by userID.
func (s *ItineraryService) Create(ctx context.Context, userID string, in ItineraryInput) (*model.Itinerary, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	itinerary := &model.Itinerary{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}

	if err := s.repo.Create(ctx, itinerary); err != nil {
		s.logger.Error("failed to create itinerary",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", apperror.StoreUnavailable(), err)
	}

	s.logger.Info("itinerary created",
		slog.String("id", itinerary.ID),
		slog.String("userID", userID),
	)

	return itinerary, nil
}

// Get returns one of userID's itineraries.
func (s *ItineraryService) Get(ctx context.Context, userID, id string) (*model.Itinerary, error) {
	id, err := cleanID("itinerary", id)
	if err != nil {
		return nil, err
	}

	itinerary, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.passThrough("get", err)
	}
	if itinerary.UserID != userID {
		return nil, apperror.NotFound("itinerary", id)
	}

	return itinerary, nil
}

// List returns userID's itineraries, newest first.
//
// PAGINATION PARAMETERS:
// - limit: how many items per page (clamped to 1-100, default 20)
// - offset: how many items to skip
//
// The result is never nil, so the handler always encodes a JSON array.
func (s *ItineraryService) List(ctx context.Context, userID string, limit, offset int) ([]model.Itinerary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	itineraries, err := s.repo.ListByUser(ctx, userID, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, s.passThrough("list", err)
	}
	if itineraries == nil {
		itineraries = []model.Itinerary{}
	}

	return itineraries, nil
}

// Update replaces the editable fields of one of userID's itineraries.
//
// STRATEGY: "Fetch then update"
// Fetching first gives a NotFound for missing and foreign IDs alike, and lets
// us return the full record (with its original CreatedAt) to the caller. The
// repository's UPDATE is still scoped by user_id, so a concurrent delete
// surfaces as NotFound as well.
func (s *ItineraryService) Update(ctx context.Context, userID, id string, in ItineraryInput) (*model.Itinerary, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	itinerary, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	itinerary.Title = in.Title
	itinerary.Description = in.Description
	itinerary.StartDate = in.StartDate
	itinerary.EndDate = in.EndDate

	if err := s.repo.Update(ctx, itinerary); err != nil {
		return nil, s.passThrough("update", err)
	}

	s.logger.Info("itinerary updated",
		slog.String("id", itinerary.ID),
		slog.String("userID", userID),
	)

	return itinerary, nil
}

// Delete removes one of userID's itineraries.
func (s *ItineraryService) Delete(ctx context.Context, userID, id string) error {
	id, err := cleanID("itinerary", id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return s.passThrough("delete", err)
	}

	s.logger.Info("itinerary deleted",
		slog.String("id", id),
		slog.String("userID", userID),
	)
	return nil
}

// passThrough returns NotFound from the repository unchanged and turns
// everything else into StoreUnavailable.
func (s *ItineraryService) passThrough(op string, err error) error {
	return storeError(s.logger, "itinerary", op, err)
}
