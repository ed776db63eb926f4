// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the core identity record. A user is loginable through exactly one
// method at creation time: a local password (PasswordHash set) or an external
// provider (FederatedID set). Account linking may later set both, but the
// constructors below make it impossible to create a record with neither.
type User struct {
	ID           uuid.UUID // Assigned by the store on creation.
	FederatedID  string    // Provider-specific subject id; empty for local-only accounts.
	Username     string    // Display name, non-empty.
	Email        string    // Unique, case-insensitive, trimmed.
	PasswordHash string    // bcrypt hash; empty for federated-only accounts.
	ImageURL     string    // Optional display picture reference.
	CreatedAt    time.Time // Maintained by the store.
	UpdatedAt    time.Time // Maintained by the store.
}

// NewLocalUser builds a password-based account. The caller supplies an
// already-hashed password.
func NewLocalUser(username, email, passwordHash, imageURL string) *User {
	return &User{
		Username:     username,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		ImageURL:     imageURL,
	}
}

// NewFederatedUser builds a provider-backed account with no local password.
func NewFederatedUser(federatedID, username, email, imageURL string) *User {
	return &User{
		FederatedID: federatedID,
		Username:    username,
		Email:       NormalizeEmail(email),
		ImageURL:    imageURL,
	}
}

// IsFederated reports whether the account is linked to an external provider.
func (u *User) IsFederated() bool {
	return u.FederatedID != ""
}

// Sanitized returns a copy safe to hand to callers: the credential hash is
// never part of a response payload.
func (u *User) Sanitized() *User {
	clone := *u
	clone.PasswordHash = ""

	return &clone
}

// NormalizeEmail trims and lowercases an email so uniqueness is
// case-insensitive at the store boundary.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
