// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"watchtower/internal/domain/entity"
)

// --- Input DTOs ---

// SignupInput defines the data required to register a new local account.
type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// LoginInput defines the data required for a password login.
type LoginInput struct {
	Email    string
	Password string
}

// FederatedLoginInput carries the provider-issued ID token for a
// federated sign-in.
type FederatedLoginInput struct {
	IDToken string
}

// UpdateProfileInput carries the profile fields to change. Nil means
// "leave unchanged"; at least one field must be set.
type UpdateProfileInput struct {
	Username *string
	Email    *string
	Password *string
	ImageURL *string
}

// --- Output DTOs ---

// SessionOutput returns the issued session token and the account it
// belongs to. User is always sanitized (no credential material).
type SessionOutput struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// AuthUsecase defines the interface for account and session operations.
// This is the contract that the delivery layer depends on.
type AuthUsecase interface {
	// Signup creates a local password account and logs it in.
	Signup(ctx context.Context, input SignupInput) (*SessionOutput, error)

	// Login authenticates a local password account.
	Login(ctx context.Context, input LoginInput) (*SessionOutput, error)

	// FederatedLogin verifies a provider ID token, creating the account on
	// first sign-in, and logs it in.
	FederatedLogin(ctx context.Context, input FederatedLoginInput) (*SessionOutput, error)

	// ResolveIdentity maps a session token to an identity. It never fails:
	// any verification or lookup problem yields the anonymous identity.
	ResolveIdentity(ctx context.Context, token string) entity.Identity

	// UpdateProfile applies partial profile changes to the given account.
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*entity.User, error)
}
