package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sakif/hodeway/internal/apperror"
)

// JSONB COLUMNS:
// Lists and client-defined objects go in as JSON text and come back as raw
// bytes; pgx hands JSONB to a *[]byte target without reinterpreting it.

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

func decodeList(raw []byte) ([]string, error) {
	items := []string{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding list column: %w", err)
	}
	return items, nil
}

// nullable maps "" to NULL for optional foreign keys.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// expectOneRow turns "zero rows affected" into NotFound.
func expectOneRow(tag pgconn.CommandTag, resource, id string) error {
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
