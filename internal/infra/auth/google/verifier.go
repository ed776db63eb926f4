// Package google verifies Google Sign-In ID tokens against the configured
// OAuth client id.
package google

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"

	"watchtower/config"
	"watchtower/internal/domain/service"
)

// validateFunc matches idtoken.Validate; swappable in tests.
type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// verifier implements service.IdentityProvider for Google Sign-In.
type verifier struct {
	clientID string
	validate validateFunc
	logger   *slog.Logger
}

// NewVerifier is the constructor for the Google ID-token verifier.
func NewVerifier(cfg *config.Config, logger *slog.Logger) (service.IdentityProvider, error) {
	if cfg.GoogleOAuth == nil || cfg.GoogleOAuth.ClientID == "" {
		return nil, errors.New("google oauth client id must be provided")
	}

	return &verifier{
		clientID: cfg.GoogleOAuth.ClientID,
		validate: idtoken.Validate,
		logger:   logger,
	}, nil
}

// VerifyIDToken validates signature, issuer, audience and expiry through the
// Google library, then checks the email_verified claim before handing the
// profile to the auth service.
func (v *verifier) VerifyIDToken(ctx context.Context, idTokenString string) (*service.FederatedIdentity, error) {
	payload, err := v.validate(ctx, idTokenString, v.clientID)
	if err != nil {
		v.logger.Warn("Google ID token validation failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "invalid ID token")
	}

	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		return nil, errors.New("email not verified by provider")
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	identity := &service.FederatedIdentity{
		ProviderUserID: payload.Subject,
		Name:           name,
		Email:          email,
		AvatarURL:      picture,
	}

	v.logger.Info("Google ID token verified",
		slog.String("providerUserID", identity.ProviderUserID),
		slog.String("email", identity.Email))

	return identity, nil
}
