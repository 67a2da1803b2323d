// Package models holds the persisted entities of the authguard server.
package models

import "time"

// Status is the verification/administrative state of a credential.
type Status string

const (
	StatusInactive    Status = "inactive"
	StatusActive      Status = "active"
	StatusSuspended   Status = "suspended"
	StatusDeactivated Status = "deactivated"
)

// Credential is the stored account record. PasswordHash never leaves the
// server; outward-facing views must be built from the other fields only.
type Credential struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
