package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

// CollaboratorService keeps the list of people an owner has added to a trip.
// Only the owner can read or change the list, and being on it grants no
// access to the itinerary.
type CollaboratorService struct {
	guard  itineraryGuard
	repo   repository.CollaboratorRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewCollaboratorService(
	itineraries repository.ItineraryRepository,
	collaborators repository.CollaboratorRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *CollaboratorService {
	return &CollaboratorService{
		guard:  itineraryGuard{itineraries: itineraries, logger: logger},
		repo:   collaborators,
		users:  users,
		logger: logger,
	}
}

// Add lists the account registered under email on the itinerary. An empty
// role means viewer.
func (s *CollaboratorService) Add(ctx context.Context, userID, itineraryID, email, role string) (*model.Collaborator, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = model.RoleViewer
	}
	if role != model.RoleViewer && role != model.RoleEditor {
		return nil, apperror.ValidationFailed("role", "role must be viewer or editor")
	}

	itineraryID, err = s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NotFound("user", email)
	}
	if err != nil {
		return nil, storeError(s.logger, "user", "get", err)
	}
	if user.ID == userID {
		return nil, apperror.ValidationFailed("email", "you already own this itinerary")
	}

	c := &model.Collaborator{
		ItineraryID: itineraryID,
		UserID:      user.ID,
		Role:        role,
	}
	if err := s.repo.Add(ctx, c); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "user is already a collaborator on this itinerary",
				Field:   "email",
			}
		}
		return nil, storeError(s.logger, "collaborator", "add", err)
	}
	c.Email = user.Email

	s.logger.Info("collaborator added",
		slog.String("itineraryID", itineraryID),
		slog.String("userID", user.ID),
		slog.String("role", role),
	)
	return c, nil
}

func (s *CollaboratorService) List(ctx context.Context, userID, itineraryID string) ([]model.Collaborator, error) {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	collaborators, err := s.repo.ListByItinerary(ctx, itineraryID)
	if err != nil {
		return nil, storeError(s.logger, "collaborator", "list", err)
	}
	if collaborators == nil {
		collaborators = []model.Collaborator{}
	}
	return collaborators, nil
}

// Remove takes collaboratorID off the list. Removing someone who isn't
// listed is NotFound.
func (s *CollaboratorService) Remove(ctx context.Context, userID, itineraryID, collaboratorID string) error {
	itineraryID, err := s.guard.owned(ctx, userID, itineraryID)
	if err != nil {
		return err
	}
	if collaboratorID, err = cleanID("collaborator", collaboratorID); err != nil {
		return err
	}

	if err := s.repo.Remove(ctx, itineraryID, collaboratorID); err != nil {
		return storeError(s.logger, "collaborator", "remove", err)
	}

	s.logger.Info("collaborator removed",
		slog.String("itineraryID", itineraryID),
		slog.String("userID", collaboratorID),
	)
	return nil
}
