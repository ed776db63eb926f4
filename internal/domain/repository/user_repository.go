// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"watchtower/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for user persistence. The application layer handles
// these without depending on database-specific errors.
var (
	// ErrUserNotFound is returned when no record matches the lookup key.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the store's unique constraint on
	// email rejects a write.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateFederatedID is returned when the sparse unique constraint
	// on the federated id rejects a write.
	ErrDuplicateFederatedID = errors.New("federated id already registered")
)

// UserRepository defines the standard operations for user persistence.
// Uniqueness of email and federated id is enforced atomically by the store.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their normalized email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByFederatedID retrieves a single user by their external provider id.
	FindByFederatedID(ctx context.Context, federatedID string) (*entity.User, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error
}
