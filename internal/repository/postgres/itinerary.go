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

var _ repository.ItineraryRepository = (*ItineraryRepository)(nil)

type ItineraryRepository struct {
	pool *pgxpool.Pool
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

const selectItinerary = `SELECT id, user_id, title, description, start_date, end_date, created_at, updated_at
			  FROM itineraries`

func (r *ItineraryRepository) Create(ctx context.Context, it *model.Itinerary) error {
	it.ID = xid.New().String()
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now

	query := `INSERT INTO itineraries (id, user_id, title, description, start_date, end_date, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		it.ID, it.UserID, it.Title, it.Description,
		it.StartDate.UTC(), it.EndDate.UTC(), it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating itinerary: %w", err)
	}

	return nil
}

func (r *ItineraryRepository) GetByID(ctx context.Context, id string) (*model.Itinerary, error) {
	var it model.Itinerary
	err := r.pool.QueryRow(ctx, selectItinerary+` WHERE id = $1`, id).Scan(
		&it.ID, &it.UserID, &it.Title, &it.Description,
		&it.StartDate, &it.EndDate, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("itinerary", id)
		}
		return nil, fmt.Errorf("postgres: getting itinerary %s: %w", id, err)
	}

	return &it, nil
}

func (r *ItineraryRepository) ListByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Itinerary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset := max(opts.Offset, 0)

	rows, err := r.pool.Query(ctx,
		selectItinerary+` WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing itineraries: %w", err)
	}

	itineraries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Itinerary, error) {
		var it model.Itinerary
		err := row.Scan(
			&it.ID, &it.UserID, &it.Title, &it.Description,
			&it.StartDate, &it.EndDate, &it.CreatedAt, &it.UpdatedAt,
		)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scanning itineraries: %w", err)
	}

	return itineraries, nil
}

func (r *ItineraryRepository) Update(ctx context.Context, it *model.Itinerary) error {
	it.UpdatedAt = time.Now().UTC()

	tag, err := r.pool.Exec(ctx,
		`UPDATE itineraries
		 SET title = $1, description = $2, start_date = $3, end_date = $4, updated_at = $5
		 WHERE id = $6 AND user_id = $7`,
		it.Title, it.Description, it.StartDate.UTC(), it.EndDate.UTC(), it.UpdatedAt,
		it.ID, it.UserID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating itinerary %s: %w", it.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("itinerary", it.ID)
	}

	return nil
}

func (r *ItineraryRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM itineraries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("postgres: deleting itinerary %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("itinerary", id)
	}

	return nil
}
