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

var _ repository.TransportRepository = (*TransportRepository)(nil)

type TransportRepository struct {
	pool *pgxpool.Pool
}

const selectTransport = `SELECT id, itinerary_id, type, provider, booking_reference, departure, arrival, seats, notes, created_at
			  FROM transports`

func scanTransport(row pgx.Row) (model.Transport, error) {
	var (
		t                  model.Transport
		departure, arrival []byte
		seats              []byte
	)
	if err := row.Scan(
		&t.ID, &t.ItineraryID, &t.Type, &t.Provider, &t.BookingReference,
		&departure, &arrival, &seats, &t.Notes, &t.CreatedAt,
	); err != nil {
		return t, err
	}

	var err error
	t.Seats, err = decodeList(seats)
	t.Departure = departure
	t.Arrival = arrival
	return t, err
}

func (r *TransportRepository) Create(ctx context.Context, t *model.Transport) error {
	seats, err := encodeList(t.Seats)
	if err != nil {
		return fmt.Errorf("postgres: creating transport: %w", err)
	}

	t.ID = xid.New().String()
	t.CreatedAt = time.Now().UTC()

	_, err = r.pool.Exec(ctx,
		`INSERT INTO transports (id, itinerary_id, type, provider, booking_reference, departure, arrival, seats, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.ItineraryID, t.Type, t.Provider, t.BookingReference,
		string(t.Departure), string(t.Arrival), seats, t.Notes, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating transport: %w", err)
	}
	return nil
}

func (r *TransportRepository) Get(ctx context.Context, itineraryID, id string) (*model.Transport, error) {
	t, err := scanTransport(r.pool.QueryRow(ctx,
		selectTransport+` WHERE id = $1 AND itinerary_id = $2`, id, itineraryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("transport", id)
		}
		return nil, fmt.Errorf("postgres: getting transport %s: %w", id, err)
	}
	return &t, nil
}

func (r *TransportRepository) ListByItinerary(ctx context.Context, itineraryID string) ([]model.Transport, error) {
	rows, err := r.pool.Query(ctx,
		selectTransport+` WHERE itinerary_id = $1 ORDER BY created_at, id`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing transports: %w", err)
	}

	transports, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Transport, error) {
		return scanTransport(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scanning transports: %w", err)
	}
	if transports == nil {
		transports = []model.Transport{}
	}
	return transports, nil
}

func (r *TransportRepository) Update(ctx context.Context, t *model.Transport) error {
	seats, err := encodeList(t.Seats)
	if err != nil {
		return fmt.Errorf("postgres: updating transport %s: %w", t.ID, err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE transports
		 SET type = $1, provider = $2, booking_reference = $3, departure = $4, arrival = $5, seats = $6, notes = $7
		 WHERE id = $8 AND itinerary_id = $9`,
		t.Type, t.Provider, t.BookingReference, string(t.Departure), string(t.Arrival), seats, t.Notes,
		t.ID, t.ItineraryID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating transport %s: %w", t.ID, err)
	}
	return expectOneRow(tag, "transport", t.ID)
}

func (r *TransportRepository) Delete(ctx context.Context, itineraryID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transports WHERE id = $1 AND itinerary_id = $2`, id, itineraryID)
	if err != nil {
		return fmt.Errorf("postgres: deleting transport %s: %w", id, err)
	}
	return expectOneRow(tag, "transport", id)
}
