package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` fails to compile if *Y stops implementing X, so a
// missing method shows up here instead of at the call site in server.go.
var _ repository.ItineraryRepository = (*ItineraryDB)(nil)

// ItineraryDB is the itineraries table.
type ItineraryDB struct {
	conn *sql.DB
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Create inserts a new itinerary.
//
// ID GENERATION WITH xid:
// xid IDs are 20 URL-safe characters and sort by creation time, which keeps
// the (user_id, created_at) index and the primary key in roughly the same
// order. Example: "cv37rs3pp9olc6atsptg".
//
// The owner must already exist: user_id is a foreign key, so an unknown
// owner fails the insert.
func (db *ItineraryDB) Create(ctx context.Context, it *model.Itinerary) error {
	it.ID = xid.New().String()

	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO itineraries (id, user_id, title, description, start_date, end_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID,
		it.UserID,
		it.Title,
		it.Description,
		it.StartDate.UTC(),
		it.EndDate.UTC(),
		it.CreatedAt,
		it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating itinerary: %w", err)
	}

	return nil
}

// GetByID retrieves a single itinerary by its ID, whoever owns it.
// The service layer decides whether the caller may see it.
func (db *ItineraryDB) GetByID(ctx context.Context, id string) (*model.Itinerary, error) {
	var it model.Itinerary

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, start_date, end_date, created_at, updated_at
		 FROM itineraries
		 WHERE id = ?`,
		id,
	).Scan(
		&it.ID,
		&it.UserID,
		&it.Title,
		&it.Description,
		&it.StartDate,
		&it.EndDate,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("itinerary", id)
		}
		return nil, fmt.Errorf("sqlite: getting itinerary %s: %w", id, err)
	}

	return &it, nil
}

// ListByUser returns one page of the user's itineraries, newest first.
//
// LIMIT/OFFSET pagination:
// A non-positive limit means the default page size, and the limit is capped
// so a single request can't pull the whole table.
func (db *ItineraryDB) ListByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Itinerary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := max(opts.Offset, 0)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, description, start_date, end_date, created_at, updated_at
		 FROM itineraries
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing itineraries: %w", err)
	}
	// CRITICAL: always close rows when done!
	defer rows.Close()

	itineraries := make([]model.Itinerary, 0, limit)

	for rows.Next() {
		var it model.Itinerary
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.Title, &it.Description,
			&it.StartDate, &it.EndDate, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning itinerary row: %w", err)
		}
		itineraries = append(itineraries, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating itineraries: %w", err)
	}

	return itineraries, nil
}

// Update overwrites the editable fields of an itinerary owned by it.UserID.
//
// Ownership is part of the WHERE clause, so someone else's itinerary looks
// exactly like a missing one: zero rows affected → NotFound.
func (db *ItineraryDB) Update(ctx context.Context, it *model.Itinerary) error {
	it.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE itineraries
		 SET title = ?, description = ?, start_date = ?, end_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		it.Title,
		it.Description,
		it.StartDate.UTC(),
		it.EndDate.UTC(),
		it.UpdatedAt,
		it.ID,
		it.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating itinerary %s: %w", it.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("itinerary", it.ID)
	}

	return nil
}

// Delete removes an itinerary owned by userID. Same pattern as Update.
func (db *ItineraryDB) Delete(ctx context.Context, userID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM itineraries WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting itinerary %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("itinerary", id)
	}

	return nil
}
