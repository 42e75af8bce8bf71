package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sakif/hodeway/internal/apperror"
)

// JSON COLUMNS:
// SQLite has no JSON type, so lists and client-defined objects are stored as
// TEXT holding JSON. A nil list is written as "[]" so every row decodes to a
// non-nil slice and the API always returns an array.

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding list column: %w", err)
	}
	return string(b), nil
}

func decodeList(text string) ([]string, error) {
	items := []string{}
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("decoding list column: %w", err)
	}
	return items, nil
}

// nullString maps "" to SQL NULL for optional foreign keys.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// expectOneRow turns "zero rows affected" into NotFound. Child updates and
// deletes are scoped by itinerary_id, so a row in another itinerary is
// reported exactly like a missing one.
func expectOneRow(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
