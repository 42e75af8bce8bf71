package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/hodeway/internal/apperror"
)

// cleanText trims value and checks it against the shared text rules: valid
// UTF-8 (Postgres rejects anything else outright), at most maxLen characters,
// and non-empty when required.
func cleanText(field, value string, maxLen int, required bool) (string, error) {
	value = strings.TrimSpace(value)

	if !utf8.ValidString(value) {
		return "", apperror.ValidationFailed(field, field+" must be valid UTF-8 text")
	}
	if required && value == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	if utf8.RuneCountInString(value) > maxLen {
		return "", apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be %d characters or less", field, maxLen))
	}
	return value, nil
}

// cleanID trims an ID taken from the URL. IDs are generated by the stores and
// are always ASCII, so a value that isn't valid UTF-8 can't name any record.
func cleanID(resource, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperror.ValidationFailed("id", resource+" ID is required")
	}
	if !utf8.ValidString(id) {
		return "", apperror.NotFound(resource, strings.ToValidUTF8(id, "?"))
	}
	return id, nil
}

// MaxJSONObjectBytes caps client-defined JSON such as a destination's
// location or a transport's departure.
const MaxJSONObjectBytes = 16 << 10

// cleanJSONObject checks raw is a single JSON object and returns it compacted.
func cleanJSONObject(field string, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, apperror.ValidationFailed(field, field+" is required")
	}
	if len(trimmed) > MaxJSONObjectBytes {
		return nil, apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be %d bytes or less", field, MaxJSONObjectBytes))
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, apperror.ValidationFailed(field, field+" must be a JSON object")
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, apperror.ValidationFailed(field, field+" must be a JSON object")
	}
	return buf.Bytes(), nil
}

// cleanList applies cleanText to every item. The result is never nil.
func cleanList(field string, items []string, maxItems, maxLen int) ([]string, error) {
	if len(items) > maxItems {
		return nil, apperror.ValidationFailed(field,
			fmt.Sprintf("%s can have at most %d entries", field, maxItems))
	}
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item, err := cleanText(field, item, maxLen, true)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, item)
	}
	return cleaned, nil
}

// checkDateRange requires both dates and end >= start. Same-day is fine.
func checkDateRange(start, end time.Time) error {
	if start.IsZero() {
		return apperror.ValidationFailed("start_date", "start date is required")
	}
	if end.IsZero() {
		return apperror.ValidationFailed("end_date", "end date is required")
	}
	if end.Before(start) {
		return apperror.ValidationFailed("end_date", "end date must not be before start date")
	}
	return nil
}
