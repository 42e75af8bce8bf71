package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

var _ repository.CollaboratorRepository = (*CollaboratorDB)(nil)

// CollaboratorDB is the collaborators table. Its primary key is
// (itinerary_id, user_id), so adding the same user twice is a conflict.
type CollaboratorDB struct {
	conn *sql.DB
}

func (db *CollaboratorDB) Add(ctx context.Context, c *model.Collaborator) error {
	c.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO collaborators (itinerary_id, user_id, role, created_at) VALUES (?, ?, ?, ?)`,
		c.ItineraryID, c.UserID, c.Role, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("collaborator", c.UserID)
		}
		return fmt.Errorf("sqlite: adding collaborator: %w", err)
	}
	return nil
}

func (db *CollaboratorDB) ListByItinerary(ctx context.Context, itineraryID string) ([]model.Collaborator, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.itinerary_id, c.user_id, u.email, c.role, c.created_at
		 FROM collaborators c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.itinerary_id = ?
		 ORDER BY c.created_at, u.email`,
		itineraryID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing collaborators: %w", err)
	}
	defer rows.Close()

	collaborators := []model.Collaborator{}
	for rows.Next() {
		var c model.Collaborator
		if err := rows.Scan(&c.ItineraryID, &c.UserID, &c.Email, &c.Role, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning collaborator row: %w", err)
		}
		collaborators = append(collaborators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating collaborators: %w", err)
	}
	return collaborators, nil
}

func (db *CollaboratorDB) Remove(ctx context.Context, itineraryID, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM collaborators WHERE itinerary_id = ? AND user_id = ?`, itineraryID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: removing collaborator %s: %w", userID, err)
	}
	return expectOneRow(result, "collaborator", userID)
}
