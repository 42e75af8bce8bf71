package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/xid"

	"github.com/sakif/hodeway/internal/apperror"
	"github.com/sakif/hodeway/internal/model"
	"github.com/sakif/hodeway/internal/repository"
)

var _ repository.DestinationRepository = (*DestinationRepository)(nil)

type DestinationRepository struct {
	pool *pgxpool.Pool
}

const selectDestination = `SELECT id, itinerary_id, name, start_date, end_date, notes, images, location, order_index, created_at
			  FROM destinations`

func scanDestination(row pgx.Row) (model.Destination, error) {
	var (
		d        model.Destination
		images   []byte
		location []byte
	)
	if err := row.Scan(
		&d.ID, &d.ItineraryID, &d.Name, &d.StartDate, &d.EndDate,
		&d.Notes, &images, &location, &d.OrderIndex, &d.CreatedAt,
	); err != nil {
		return d, err
	}

	var err error
	d.Images, err = decodeList(images)
	d.Location = location
	return d, err
}

func (r *DestinationRepository) Create(ctx context.Context, d *model.Destination) error {
	images, err := encodeList(d.Images)
	if err != nil {
		return fmt.Errorf("postgres: creating destination: %w", err)
	}

	d.ID = xid.New().String()
	d.CreatedAt = time.Now().UTC()

	_, err = r.pool.Exec(ctx,
		`INSERT INTO destinations (id, itinerary_id, name, start_date, end_date, notes, images, location, order_index, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.ItineraryID, d.Name, d.StartDate.UTC(), d.EndDate.UTC(),
		d.Notes, images, string(d.Location), d.OrderIndex, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating destination: %w", err)
	}
	return nil
}

func (r *DestinationRepository) Get(ctx context.Context, itineraryID, id string) (*model.Destination, error) {
	d, err := scanDestination(r.pool.QueryRow(ctx,
		selectDestination+` WHERE id = $1 AND itinerary_id = $2`, id, itineraryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("destination", id)
		}
		return nil, fmt.Errorf("postgres: getting destination %s: %w", id, err)
	}
	return &d, nil
}

func (r *DestinationRepository) ListByItinerary(ctx context.Context, itineraryID string) ([]model.Destination, error) {
	rows, err := r.pool.Query(ctx,
		selectDestination+` WHERE itinerary_id = $1 ORDER BY order_index, created_at, id`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing destinations: %w", err)
	}

	destinations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Destination, error) {
		return scanDestination(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scanning destinations: %w", err)
	}
	if destinations == nil {
		destinations = []model.Destination{}
	}
	return destinations, nil
}

func (r *DestinationRepository) Update(ctx context.Context, d *model.Destination) error {
	images, err := encodeList(d.Images)
	if err != nil {
		return fmt.Errorf("postgres: updating destination %s: %w", d.ID, err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE destinations
		 SET name = $1, start_date = $2, end_date = $3, notes = $4, images = $5, location = $6, order_index = $7
		 WHERE id = $8 AND itinerary_id = $9`,
		d.Name, d.StartDate.UTC(), d.EndDate.UTC(), d.Notes, images, string(d.Location), d.OrderIndex,
		d.ID, d.ItineraryID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating destination %s: %w", d.ID, err)
	}
	return expectOneRow(tag, "destination", d.ID)
}

func (r *DestinationRepository) Delete(ctx context.Context, itineraryID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM destinations WHERE id = $1 AND itinerary_id = $2`, id, itineraryID)
	if err != nil {
		return fmt.Errorf("postgres: deleting destination %s: %w", id, err)
	}
	return expectOneRow(tag, "destination", id)
}
