package model

import (
	"encoding/json"
	"time"
)

// Transport is a booked leg of an itinerary: a flight, train, ferry, car hire.
// Departure and Arrival are client-defined JSON objects (place, time, terminal).
type Transport struct {
	ID               string          `json:"id"`
	ItineraryID      string          `json:"itinerary_id"`
	Type             string          `json:"type"`
	Provider         string          `json:"provider"`
	BookingReference string          `json:"booking_reference"`
	Departure        json.RawMessage `json:"departure"`
	Arrival          json.RawMessage `json:"arrival"`
	Seats            []string        `json:"seats"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
}
