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

var _ repository.TransportRepository = (*TransportDB)(nil)

// TransportDB is the transports table.
type TransportDB struct {
	conn *sql.DB
}

const selectTransport = `SELECT id, itinerary_id, type, provider, booking_reference, departure, arrival, seats, notes, created_at
	FROM transports`

func scanTransport(row rowScanner) (*model.Transport, error) {
	var (
		t                  model.Transport
		departure, arrival string
		seats              string
	)
	if err := row.Scan(
		&t.ID, &t.ItineraryID, &t.Type, &t.Provider, &t.BookingReference,
		&departure, &arrival, &seats, &t.Notes, &t.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if t.Seats, err = decodeList(seats); err != nil {
		return nil, err
	}
	t.Departure = []byte(departure)
	t.Arrival = []byte(arrival)
	return &t, nil
}

func (db *TransportDB) Create(ctx context.Context, t *model.Transport) error {
	seats, err := encodeList(t.Seats)
	if err != nil {
		return fmt.Errorf("sqlite: creating transport: %w", err)
	}

	t.ID = xid.New().String()
	t.CreatedAt = time.Now().UTC()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO transports (id, itinerary_id, type, provider, booking_reference, departure, arrival, seats, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ItineraryID, t.Type, t.Provider, t.BookingReference,
		string(t.Departure), string(t.Arrival), seats, t.Notes, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating transport: %w", err)
	}
	return nil
}

func (db *TransportDB) Get(ctx context.Context, itineraryID, id string) (*model.Transport, error) {
	t, err := scanTransport(db.conn.QueryRowContext(ctx,
		selectTransport+` WHERE id = ? AND itinerary_id = ?`, id, itineraryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("transport", id)
		}
		return nil, fmt.Errorf("sqlite: getting transport %s: %w", id, err)
	}
	return t, nil
}

func (db *TransportDB) ListByItinerary(ctx context.Context, itineraryID string) ([]model.Transport, error) {
	rows, err := db.conn.QueryContext(ctx,
		selectTransport+` WHERE itinerary_id = ? ORDER BY created_at, id`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing transports: %w", err)
	}
	defer rows.Close()

	transports := []model.Transport{}
	for rows.Next() {
		t, err := scanTransport(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning transport row: %w", err)
		}
		transports = append(transports, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating transports: %w", err)
	}
	return transports, nil
}

func (db *TransportDB) Update(ctx context.Context, t *model.Transport) error {
	seats, err := encodeList(t.Seats)
	if err != nil {
		return fmt.Errorf("sqlite: updating transport %s: %w", t.ID, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE transports
		 SET type = ?, provider = ?, booking_reference = ?, departure = ?, arrival = ?, seats = ?, notes = ?
		 WHERE id = ? AND itinerary_id = ?`,
		t.Type, t.Provider, t.BookingReference, string(t.Departure), string(t.Arrival), seats, t.Notes,
		t.ID, t.ItineraryID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating transport %s: %w", t.ID, err)
	}
	return expectOneRow(result, "transport", t.ID)
}

func (db *TransportDB) Delete(ctx context.Context, itineraryID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM transports WHERE id = ? AND itinerary_id = ?`, id, itineraryID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting transport %s: %w", id, err)
	}
	return expectOneRow(result, "transport", id)
}
