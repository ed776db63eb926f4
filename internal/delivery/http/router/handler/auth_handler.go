// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"watchtower/internal/delivery/http/middleware"
	"watchtower/internal/delivery/http/response"
	"watchtower/internal/domain/entity"
	"watchtower/internal/usecase"
)

// AuthHandler holds dependencies for account and session handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:     uc,
		logger: logger,
	}
}

type signupRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type federatedLoginRequest struct {
	IDToken string `json:"idToken" form:"id_token"`
}

type updateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
}

// userPayload is the wire shape of an account; credential material never
// appears here.
type userPayload struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Federated bool      `json:"federated"`
}

func toUserPayload(user *entity.User) *userPayload {
	if user == nil {
		return nil
	}

	return &userPayload{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		ImageURL:  user.ImageURL,
		Federated: user.IsFederated(),
	}
}

// Signup handles the local account registration request.
func (h *AuthHandler) Signup(c echo.Context) error {
	var input signupRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signup input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Signup(c.Request().Context(), usecase.SignupInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		ImageURL: input.ImageURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	setSessionCookie(c, output)

	return response.Success(c, http.StatusCreated, toUserPayload(output.User), "Signup successful")
}

// Login handles the password login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var input loginRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}

	output, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	setSessionCookie(c, output)

	return response.Success(c, http.StatusOK, toUserPayload(output.User), "Login successful")
}

// FederatedLogin handles sign-in with a provider-issued ID token.
func (h *AuthHandler) FederatedLogin(c echo.Context) error {
	var input federatedLoginRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid federated login input")
	}
	if input.IDToken == "" {
		// Some sign-in widgets post the token as a form value.
		input.IDToken = c.FormValue("id_token")
	}

	output, err := h.uc.FederatedLogin(c.Request().Context(), usecase.FederatedLoginInput{
		IDToken: input.IDToken,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	setSessionCookie(c, output)

	return response.Success(c, http.StatusOK, toUserPayload(output.User), "Federated login successful")
}

// Logout clears the session cookie. Session tokens are self-contained, so
// there is nothing to revoke server-side.
func (h *AuthHandler) Logout(c echo.Context) error {
	clearSessionCookie(c)

	return response.Success(c, http.StatusOK, map[string]string{"message": "Successfully logged out"}, "Logout successful")
}

// Me returns the identity resolved for this request. It never errors:
// anonymous callers get an explicit anonymous summary.
func (h *AuthHandler) Me(c echo.Context) error {
	identity := middleware.IdentityFromContext(c)

	return response.Success(c, http.StatusOK, map[string]any{
		"authenticated": identity.IsAuthenticated(),
		"user":          toUserPayload(identity.User),
	}, "Identity resolved")
}

// UpdateProfile handles partial profile updates for the addressed account.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}

	identity := middleware.IdentityFromContext(c)
	if !identity.IsAuthenticated() {
		return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
	}
	if identity.User.ID != targetID {
		return response.Forbidden(c, "FORBIDDEN", "Cannot edit another user's profile")
	}

	var input updateProfileRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.UpdateProfile(c.Request().Context(), targetID, usecase.UpdateProfileInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		ImageURL: input.ImageURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserPayload(user), "Profile updated successfully")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

func setSessionCookie(c echo.Context, output *usecase.SessionOutput) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    output.Token,
		Path:     "/",
		Expires:  output.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
