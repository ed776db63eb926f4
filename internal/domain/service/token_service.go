package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Typed verification failures. Callers that resolve identities treat all of
// them identically (silent anonymous downgrade); they exist so tests and
// logs can tell the cases apart.
var (
	// ErrTokenMalformed is returned when the token is not parseable at all.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignatureInvalid is returned when the signature does not verify.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenExpired is returned when the token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// TokenService signs and verifies compact session tokens. Verification is
// self-contained: signature plus embedded expiry, no server-side state, and
// therefore no revocation before expiry.
type TokenService interface {
	// Issue creates a signed token carrying the user id and an expiry ttl
	// from now.
	Issue(userID uuid.UUID, ttl time.Duration) (string, error)

	// Verify checks signature and expiry, returning the embedded claims.
	Verify(token string) (*TokenClaims, error)

	// SessionTTL returns the session lifetime for the given login method.
	// Password logins and federated logins legitimately differ.
	SessionTTL(federated bool) time.Duration
}
