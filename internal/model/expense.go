package model

import "time"

// Expense is money spent on an itinerary, optionally tied to one of its
// destinations.
//
// Amounts are integer minor units (cents for EUR/USD) so sums never pick up
// floating-point error. Currency is an upper-case ISO 4217 code.
type Expense struct {
	ID            string    `json:"id"`
	ItineraryID   string    `json:"itinerary_id"`
	DestinationID string    `json:"destination_id,omitempty"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}
