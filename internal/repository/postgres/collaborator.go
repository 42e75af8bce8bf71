package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

var _ repository.CollaboratorRepository = (*CollaboratorRepository)(nil)

type CollaboratorRepository struct {
	pool *pgxpool.Pool
}

// Add inserts a collaborator. The (itinerary_id, user_id) primary key
// rejects a second insert for the same user with SQLSTATE 23505.
func (r *CollaboratorRepository) Add(ctx context.Context, c *model.Collaborator) error {
	c.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO collaborators (itinerary_id, user_id, role, created_at) VALUES ($1, $2, $3, $4)`,
		c.ItineraryID, c.UserID, c.Role, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("collaborator", c.UserID)
		}
		return fmt.Errorf("postgres: adding collaborator: %w", err)
	}
	return nil
}

func (r *CollaboratorRepository) ListByItinerary(ctx context.Context, itineraryID string) ([]model.Collaborator, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.itinerary_id, c.user_id, u.email, c.role, c.created_at
		 FROM collaborators c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.itinerary_id = $1
		 ORDER BY c.created_at, u.email`,
		itineraryID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing collaborators: %w", err)
	}

	collaborators, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Collaborator, error) {
		var c model.Collaborator
		err := row.Scan(&c.ItineraryID, &c.UserID, &c.Email, &c.Role, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scanning collaborators: %w", err)
	}
	if collaborators == nil {
		collaborators = []model.Collaborator{}
	}
	return collaborators, nil
}

func (r *CollaboratorRepository) Remove(ctx context.Context, itineraryID, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM collaborators WHERE itinerary_id = $1 AND user_id = $2`, itineraryID, userID)
	if err != nil {
		return fmt.Errorf("postgres: removing collaborator %s: %w", userID, err)
	}
	return expectOneRow(tag, "collaborator", userID)
}
