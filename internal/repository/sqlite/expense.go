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

var _ repository.ExpenseRepository = (*ExpenseDB)(nil)

// ExpenseDB is the expenses table. destination_id is nullable and maps to
// an empty DestinationID.
type ExpenseDB struct {
	conn *sql.DB
}

const selectExpense = `SELECT id, itinerary_id, destination_id, amount_cents, currency, category, description, date, created_at
	FROM expenses`

func scanExpense(row rowScanner) (*model.Expense, error) {
	var (
		e             model.Expense
		destinationID sql.NullString
	)
	if err := row.Scan(
		&e.ID, &e.ItineraryID, &destinationID, &e.AmountCents, &e.Currency,
		&e.Category, &e.Description, &e.Date, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.DestinationID = destinationID.String
	return &e, nil
}

func (db *ExpenseDB) Create(ctx context.Context, e *model.Expense) error {
	e.ID = xid.New().String()
	e.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO expenses (id, itinerary_id, destination_id, amount_cents, currency, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ItineraryID, nullString(e.DestinationID), e.AmountCents, e.Currency,
		e.Category, e.Description, e.Date.UTC(), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating expense: %w", err)
	}
	return nil
}

func (db *ExpenseDB) Get(ctx context.Context, itineraryID, id string) (*model.Expense, error) {
	e, err := scanExpense(db.conn.QueryRowContext(ctx,
		selectExpense+` WHERE id = ? AND itinerary_id = ?`, id, itineraryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("expense", id)
		}
		return nil, fmt.Errorf("sqlite: getting expense %s: %w", id, err)
	}
	return e, nil
}

func (db *ExpenseDB) ListByItinerary(ctx context.Context, itineraryID string) ([]model.Expense, error) {
	rows, err := db.conn.QueryContext(ctx,
		selectExpense+` WHERE itinerary_id = ? ORDER BY date, created_at, id`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing expenses: %w", err)
	}
	defer rows.Close()

	expenses := []model.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning expense row: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating expenses: %w", err)
	}
	return expenses, nil
}

func (db *ExpenseDB) Update(ctx context.Context, e *model.Expense) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE expenses
		 SET destination_id = ?, amount_cents = ?, currency = ?, category = ?, description = ?, date = ?
		 WHERE id = ? AND itinerary_id = ?`,
		nullString(e.DestinationID), e.AmountCents, e.Currency, e.Category, e.Description, e.Date.UTC(),
		e.ID, e.ItineraryID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating expense %s: %w", e.ID, err)
	}
	return expectOneRow(result, "expense", e.ID)
}

func (db *ExpenseDB) Delete(ctx context.Context, itineraryID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND itinerary_id = ?`, id, itineraryID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting expense %s: %w", id, err)
	}
	return expectOneRow(result, "expense", id)
}
