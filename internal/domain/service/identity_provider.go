package service

import "context"

// FederatedIdentity is the verified profile returned by an external identity
// provider after the boundary layer completed the authorization flow.
type FederatedIdentity struct {
	ProviderUserID string // Provider-specific subject id (e.g. Google's 'sub' claim).
	Name           string // Display name supplied by the provider.
	Email          string // Verified email address.
	AvatarURL      string // Profile picture reference, may be empty.
}

// IdentityProvider verifies a provider credential (an ID token for Google
// Sign-In) and yields the external identity, or fails. The core never
// initiates the browser redirect itself.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*FederatedIdentity, error)
}
