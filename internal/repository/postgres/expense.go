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

var _ repository.ExpenseRepository = (*ExpenseRepository)(nil)

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

const selectExpense = `SELECT id, itinerary_id, destination_id, amount_cents, currency, category, description, date, created_at
			  FROM expenses`

func scanExpense(row pgx.Row) (model.Expense, error) {
	var (
		e             model.Expense
		destinationID *string
	)
	err := row.Scan(
		&e.ID, &e.ItineraryID, &destinationID, &e.AmountCents, &e.Currency,
		&e.Category, &e.Description, &e.Date, &e.CreatedAt,
	)
	if destinationID != nil {
		e.DestinationID = *destinationID
	}
	return e, err
}

func (r *ExpenseRepository) Create(ctx context.Context, e *model.Expense) error {
	e.ID = xid.New().String()
	e.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO expenses (id, itinerary_id, destination_id, amount_cents, currency, category, description, date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.ItineraryID, nullable(e.DestinationID), e.AmountCents, e.Currency,
		e.Category, e.Description, e.Date.UTC(), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) Get(ctx context.Context, itineraryID, id string) (*model.Expense, error) {
	e, err := scanExpense(r.pool.QueryRow(ctx,
		selectExpense+` WHERE id = $1 AND itinerary_id = $2`, id, itineraryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("expense", id)
		}
		return nil, fmt.Errorf("postgres: getting expense %s: %w", id, err)
	}
	return &e, nil
}

func (r *ExpenseRepository) ListByItinerary(ctx context.Context, itineraryID string) ([]model.Expense, error) {
	rows, err := r.pool.Query(ctx,
		selectExpense+` WHERE itinerary_id = $1 ORDER BY date, created_at, id`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing expenses: %w", err)
	}

	expenses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Expense, error) {
		return scanExpense(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scanning expenses: %w", err)
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	return expenses, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e *model.Expense) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE expenses
		 SET destination_id = $1, amount_cents = $2, currency = $3, category = $4, description = $5, date = $6
		 WHERE id = $7 AND itinerary_id = $8`,
		nullable(e.DestinationID), e.AmountCents, e.Currency, e.Category, e.Description, e.Date.UTC(),
		e.ID, e.ItineraryID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating expense %s: %w", e.ID, err)
	}
	return expectOneRow(tag, "expense", e.ID)
}

func (r *ExpenseRepository) Delete(ctx context.Context, itineraryID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM expenses WHERE id = $1 AND itinerary_id = $2`, id, itineraryID)
	if err != nil {
		return fmt.Errorf("postgres: deleting expense %s: %w", id, err)
	}
	return expectOneRow(tag, "expense", id)
}
