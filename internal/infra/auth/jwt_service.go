package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"watchtower/config"
	"watchtower/internal/domain/service"
)

const (
	passwordSessionTTL  = 24 * time.Hour
	federatedSessionTTL = 7 * 24 * time.Hour
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret string
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Session == "" {
		return nil, errors.New("session secret must be provided")
	}

	return &jwtService{secret: cfg.SecretKey.Session}, nil
}

// Issue creates a signed HS256 token over {sub, iat, exp}. Verification is
// self-contained: no server-side session state exists, so a token cannot be
// revoked before its expiry.
func (s *jwtService) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}

	return signed, nil
}

// Verify checks the signature and expiry of a token string and extracts the
// embedded claims. Failures map to the typed service errors.
func (s *jwtService) Verify(tokenString string) (*service.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, classifyJWTError(err)
	}
	if !token.Valid {
		return nil, service.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, service.ErrTokenMalformed
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, service.ErrTokenMalformed
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, service.ErrTokenMalformed
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return nil, service.ErrTokenMalformed
	}

	return &service.TokenClaims{
		UserID:    userID,
		ExpiresAt: expiry.Time,
	}, nil
}

// SessionTTL preserves the asymmetry between login methods: password logins
// get one day, federated logins seven.
func (s *jwtService) SessionTTL(federated bool) time.Duration {
	if federated {
		return federatedSessionTTL
	}

	return passwordSessionTTL
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return service.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return service.ErrTokenSignatureInvalid
	default:
		return service.ErrTokenMalformed
	}
}
