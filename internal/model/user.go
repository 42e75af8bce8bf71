// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email is the login identifier and the subject of every access token. It is
// unique and compared case-sensitively, exactly as stored.
//
// PasswordHash holds the bcrypt output, never the raw password. The `json:"-"`
// tag keeps it out of every API response.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"` // Optional display name
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
