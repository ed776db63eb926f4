package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchtower/config"
	"watchtower/internal/domain/service"
)

func newTestJWTService(t *testing.T, secret string) service.TokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Session = secret

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	return svc
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	cfg := &config.Config{}

	_, err := NewJWTService(cfg)

	assert.Error(t, err)
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := newTestJWTService(t, "test-secret")
	userID := uuid.New()

	token, err := svc.Issue(userID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestJWTService_Verify_Expired(t *testing.T) {
	svc := newTestJWTService(t, "test-secret")

	token, err := svc.Issue(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(token)

	assert.True(t, errors.Is(err, service.ErrTokenExpired))
}

func TestJWTService_Verify_Malformed(t *testing.T) {
	svc := newTestJWTService(t, "test-secret")

	_, err := svc.Verify("this-is-not-a-token")

	assert.True(t, errors.Is(err, service.ErrTokenMalformed))
}

func TestJWTService_Verify_WrongSecret(t *testing.T) {
	issuer := newTestJWTService(t, "secret-one")
	verifier := newTestJWTService(t, "secret-two")

	token, err := issuer.Issue(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)

	assert.True(t, errors.Is(err, service.ErrTokenSignatureInvalid))
}

func TestJWTService_SessionTTL(t *testing.T) {
	svc := newTestJWTService(t, "test-secret")

	assert.Equal(t, 24*time.Hour, svc.SessionTTL(false))
	assert.Equal(t, 7*24*time.Hour, svc.SessionTTL(true))
}
