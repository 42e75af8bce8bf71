// Package repository declares the storage contracts the services depend on.
// Implementations live in the sqlite and postgres sub-packages.
package repository

import (
	"context"

	"github.com/sakif/hodeway/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository is the User Store used by the auth core.
//
// CreateUser must enforce email uniqueness atomically (a UNIQUE index) and
// report a violation as apperror.ErrConflict. The lookups report a missing
// row as apperror.ErrNotFound. Anything else is a storage failure.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// ItineraryRepository persists itineraries. Update and Delete only touch rows
// owned by itinerary.UserID / userID and report apperror.ErrNotFound otherwise.
type ItineraryRepository interface {
	Create(ctx context.Context, itinerary *model.Itinerary) error
	GetByID(ctx context.Context, id string) (*model.Itinerary, error)
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]model.Itinerary, error)
	Update(ctx context.Context, itinerary *model.Itinerary) error
	Delete(ctx context.Context, userID, id string) error
}

// CHILD RECORDS:
// Destinations, expenses, transports and collaborators belong to exactly one
// itinerary. Every read and write is scoped by itineraryID, so a child ID
// from a different itinerary reports apperror.ErrNotFound. Ownership of the
// itinerary itself is the service's job; these repositories never see a
// user ID except as a collaborator.
//
// Deleting an itinerary deletes its children (ON DELETE CASCADE). Deleting a
// destination clears DestinationID on the expenses that pointed at it.

type DestinationRepository interface {
	Create(ctx context.Context, d *model.Destination) error
	Get(ctx context.Context, itineraryID, id string) (*model.Destination, error)
	// ListByItinerary orders by OrderIndex, then creation time.
	ListByItinerary(ctx context.Context, itineraryID string) ([]model.Destination, error)
	Update(ctx context.Context, d *model.Destination) error
	Delete(ctx context.Context, itineraryID, id string) error
}

type ExpenseRepository interface {
	Create(ctx context.Context, e *model.Expense) error
	Get(ctx context.Context, itineraryID, id string) (*model.Expense, error)
	// ListByItinerary orders by expense date, then creation time.
	ListByItinerary(ctx context.Context, itineraryID string) ([]model.Expense, error)
	Update(ctx context.Context, e *model.Expense) error
	Delete(ctx context.Context, itineraryID, id string) error
}

type TransportRepository interface {
	Create(ctx context.Context, t *model.Transport) error
	Get(ctx context.Context, itineraryID, id string) (*model.Transport, error)
	// ListByItinerary orders by creation time.
	ListByItinerary(ctx context.Context, itineraryID string) ([]model.Transport, error)
	Update(ctx context.Context, t *model.Transport) error
	Delete(ctx context.Context, itineraryID, id string) error
}

// CollaboratorRepository reports adding the same user twice as
// apperror.ErrConflict.
type CollaboratorRepository interface {
	Add(ctx context.Context, c *model.Collaborator) error
	// ListByItinerary fills in each collaborator's email, oldest first.
	ListByItinerary(ctx context.Context, itineraryID string) ([]model.Collaborator, error)
	Remove(ctx context.Context, itineraryID, userID string) error
}

// Store is a database backend: every repository plus lifecycle hooks.
type Store interface {
	Users() UserRepository
	Itineraries() ItineraryRepository
	Destinations() DestinationRepository
	Expenses() ExpenseRepository
	Transports() TransportRepository
	Collaborators() CollaboratorRepository
	Ping(ctx context.Context) error
	Close() error
}
