package middleware

import (
	"github.com/labstack/echo/v4"

	deliverycontext "watchtower/internal/delivery/context"
	"watchtower/internal/delivery/http/response"
	"watchtower/internal/domain/entity"
	"watchtower/internal/usecase"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "token"

// IdentityMiddleware resolves the session cookie into an identity on every
// request. Resolution never rejects: a bad or absent cookie just leaves the
// request anonymous, and route guards decide what that means.
type IdentityMiddleware struct {
	auth usecase.AuthUsecase
}

// NewIdentityMiddleware is the constructor for IdentityMiddleware.
func NewIdentityMiddleware(auth usecase.AuthUsecase) *IdentityMiddleware {
	return &IdentityMiddleware{auth: auth}
}

// Resolve attaches the resolved identity to the request context.
func (m *IdentityMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := ""
		if cookie, err := c.Cookie(SessionCookieName); err == nil {
			token = cookie.Value
		}

		identity := m.auth.ResolveIdentity(c.Request().Context(), token)
		c.Set(string(deliverycontext.KeyIdentity), identity)

		return next(c)
	}
}

// RequireAuthenticated rejects anonymous requests with 401.
// It must be used AFTER the Resolve middleware.
func (m *IdentityMiddleware) RequireAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IdentityFromContext(c).IsAuthenticated() {
			return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
		}

		return next(c)
	}
}

// IdentityFromContext returns the identity resolved for this request,
// or the anonymous identity when the middleware did not run.
func IdentityFromContext(c echo.Context) entity.Identity {
	if identity, ok := c.Get(string(deliverycontext.KeyIdentity)).(entity.Identity); ok {
		return identity
	}

	return entity.Anonymous
}
