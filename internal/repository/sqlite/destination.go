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

var _ repository.DestinationRepository = (*DestinationDB)(nil)

// DestinationDB is the destinations table.
type DestinationDB struct {
	conn *sql.DB
}

const selectDestination = `SELECT id, itinerary_id, name, start_date, end_date, notes, images, location, order_index, created_at
	FROM destinations`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDestination(row rowScanner) (*model.Destination, error) {
	var (
		d        model.Destination
		images   string
		location string
	)
	if err := row.Scan(
		&d.ID, &d.ItineraryID, &d.Name, &d.StartDate, &d.EndDate,
		&d.Notes, &images, &location, &d.OrderIndex, &d.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if d.Images, err = decodeList(images); err != nil {
		return nil, err
	}
	d.Location = []byte(location)
	return &d, nil
}

func (db *DestinationDB) Create(ctx context.Context, d *model.Destination) error {
	images, err := encodeList(d.Images)
	if err != nil {
		return fmt.Errorf("sqlite: creating destination: %w", err)
	}

	d.ID = xid.New().String()
	d.CreatedAt = time.Now().UTC()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO destinations (id, itinerary_id, name, start_date, end_date, notes, images, location, order_index, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ItineraryID, d.Name, d.StartDate.UTC(), d.EndDate.UTC(),
		d.Notes, images, string(d.Location), d.OrderIndex, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating destination: %w", err)
	}
	return nil
}

func (db *DestinationDB) Get(ctx context.Context, itineraryID, id string) (*model.Destination, error) {
	d, err := scanDestination(db.conn.QueryRowContext(ctx,
		selectDestination+` WHERE id = ? AND itinerary_id = ?`, id, itineraryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("destination", id)
		}
		return nil, fmt.Errorf("sqlite: getting destination %s: %w", id, err)
	}
	return d, nil
}

func (db *DestinationDB) ListByItinerary(ctx context.Context, itineraryID string) ([]model.Destination, error) {
	rows, err := db.conn.QueryContext(ctx,
		selectDestination+` WHERE itinerary_id = ? ORDER BY order_index, created_at, id`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing destinations: %w", err)
	}
	defer rows.Close()

	destinations := []model.Destination{}
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning destination row: %w", err)
		}
		destinations = append(destinations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating destinations: %w", err)
	}
	return destinations, nil
}

func (db *DestinationDB) Update(ctx context.Context, d *model.Destination) error {
	images, err := encodeList(d.Images)
	if err != nil {
		return fmt.Errorf("sqlite: updating destination %s: %w", d.ID, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE destinations
		 SET name = ?, start_date = ?, end_date = ?, notes = ?, images = ?, location = ?, order_index = ?
		 WHERE id = ? AND itinerary_id = ?`,
		d.Name, d.StartDate.UTC(), d.EndDate.UTC(), d.Notes, images, string(d.Location), d.OrderIndex,
		d.ID, d.ItineraryID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating destination %s: %w", d.ID, err)
	}
	return expectOneRow(result, "destination", d.ID)
}

func (db *DestinationDB) Delete(ctx context.Context, itineraryID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM destinations WHERE id = ? AND itinerary_id = ?`, id, itineraryID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting destination %s: %w", id, err)
	}
	return expectOneRow(result, "destination", id)
}
