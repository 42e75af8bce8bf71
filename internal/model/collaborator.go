package model

import "time"

// Collaborator roles.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

// Collaborator is another user listed on an itinerary. The pair
// (ItineraryID, UserID) is unique. Email is read from the users table for
// display and is never written through this type.
type Collaborator struct {
	ItineraryID string    `json:"itinerary_id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
