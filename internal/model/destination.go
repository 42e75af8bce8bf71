package model

import (
	"encoding/json"
	"time"
)

// Destination is a stop on an itinerary. Stops are listed by OrderIndex.
//
// Location is free-form JSON supplied by the client (coordinates, address,
// place IDs); the server only checks that it is a JSON object.
type Destination struct {
	ID          string          `json:"id"`
	ItineraryID string          `json:"itinerary_id"`
	Name        string          `json:"name"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Notes       string          `json:"notes"`
	Images      []string        `json:"images"`
	Location    json.RawMessage `json:"location"`
	OrderIndex  int             `json:"order_index"`
	CreatedAt   time.Time       `json:"created_at"`
}
