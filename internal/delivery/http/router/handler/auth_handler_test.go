package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deliverycontext "watchtower/internal/delivery/context"
	"watchtower/internal/delivery/http/middleware"
	"watchtower/internal/delivery/http/validator"
	"watchtower/internal/domain/entity"
	domainerrors "watchtower/internal/domain/errors"
	"watchtower/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAuthUsecase delegates to function fields so each test scripts behavior.
type fakeAuthUsecase struct {
	signup         func(ctx context.Context, input usecase.SignupInput) (*usecase.SessionOutput, error)
	login          func(ctx context.Context, input usecase.LoginInput) (*usecase.SessionOutput, error)
	federatedLogin func(ctx context.Context, input usecase.FederatedLoginInput) (*usecase.SessionOutput, error)
	updateProfile  func(ctx context.Context, userID uuid.UUID, input usecase.UpdateProfileInput) (*entity.User, error)
}

func (f *fakeAuthUsecase) Signup(ctx context.Context, input usecase.SignupInput) (*usecase.SessionOutput, error) {
	return f.signup(ctx, input)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, input usecase.LoginInput) (*usecase.SessionOutput, error) {
	return f.login(ctx, input)
}

func (f *fakeAuthUsecase) FederatedLogin(ctx context.Context, input usecase.FederatedLoginInput) (*usecase.SessionOutput, error) {
	return f.federatedLogin(ctx, input)
}

func (f *fakeAuthUsecase) ResolveIdentity(context.Context, string) entity.Identity {
	return entity.Anonymous
}

func (f *fakeAuthUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, input usecase.UpdateProfileInput) (*entity.User, error) {
	return f.updateProfile(ctx, userID, input)
}

func newEchoContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func sessionOutput(user *entity.User) *usecase.SessionOutput {
	return &usecase.SessionOutput{
		Token:     "issued-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		User:      user,
	}
}

func testUser() *entity.User {
	return &entity.User{
		ID:       uuid.New(),
		Username: "tester",
		Email:    "tester@example.com",
	}
}

func TestAuthHandler_Signup_SetsSessionCookie(t *testing.T) {
	user := testUser()
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, input usecase.SignupInput) (*usecase.SessionOutput, error) {
			assert.Equal(t, "tester", input.Username)
			assert.Equal(t, "tester@example.com", input.Email)
			assert.Equal(t, "a password", input.Password)

			return sessionOutput(user), nil
		},
	}
	h := NewAuthHandler(uc, discardLogger())

	c, rec := newEchoContext(t, http.MethodPost, "/auth/signup",
		`{"username":"tester","email":"tester@example.com","password":"a password"}`)

	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	cookie := findCookie(t, rec, middleware.SessionCookieName)
	assert.Equal(t, "issued-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Contains(t, rec.Body.String(), `"tester@example.com"`)
	assert.NotContains(t, rec.Body.String(), "PasswordHash")
}

func TestAuthHandler_Signup_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"short username", `{"username":"ab","email":"ab@example.com","password":"long enough"}`},
		{"short password", `{"username":"tester","email":"tester@example.com","password":"12345"}`},
		{"missing email", `{"username":"tester","password":"long enough"}`},
		{"malformed email", `{"username":"tester","email":"not-an-email","password":"long enough"}`},
		{"malformed image url", `{"username":"tester","email":"tester@example.com","password":"long enough","imageUrl":"not a url"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				signup: func(context.Context, usecase.SignupInput) (*usecase.SessionOutput, error) {
					t.Fatal("invalid input must be rejected before the usecase")

					return nil, nil
				},
			}
			h := NewAuthHandler(uc, discardLogger())

			c, _ := newEchoContext(t, http.MethodPost, "/auth/signup", tc.body)

			err := h.Signup(c)

			require.Error(t, err)
			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode())
			assert.Equal(t, "VALIDATION_FAILED", appErr.ErrorCode())
			assert.NotNil(t, appErr.Details())
		})
	}
}

func TestAuthHandler_Login_SetsSessionCookie(t *testing.T) {
	user := testUser()
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, input usecase.LoginInput) (*usecase.SessionOutput, error) {
			return sessionOutput(user), nil
		},
	}
	h := NewAuthHandler(uc, discardLogger())

	c, rec := newEchoContext(t, http.MethodPost, "/auth/login",
		`{"email":"tester@example.com","password":"a password"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(t, rec, middleware.SessionCookieName)
	assert.Equal(t, "issued-token", cookie.Value)
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	h := NewAuthHandler(&fakeAuthUsecase{}, discardLogger())

	c, rec := newEchoContext(t, http.MethodGet, "/auth/logout", "")

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(t, rec, middleware.SessionCookieName)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestAuthHandler_Me_Anonymous(t *testing.T) {
	h := NewAuthHandler(&fakeAuthUsecase{}, discardLogger())

	c, rec := newEchoContext(t, http.MethodGet, "/me", "")

	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
}

func TestAuthHandler_Me_Authenticated(t *testing.T) {
	user := testUser()
	h := NewAuthHandler(&fakeAuthUsecase{}, discardLogger())

	c, rec := newEchoContext(t, http.MethodGet, "/me", "")
	c.Set(string(deliverycontext.KeyIdentity), entity.Authenticated(user))

	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
	assert.Contains(t, rec.Body.String(), user.ID.String())
}

func TestAuthHandler_UpdateProfile_AnonymousRejected(t *testing.T) {
	h := NewAuthHandler(&fakeAuthUsecase{}, discardLogger())

	c, rec := newEchoContext(t, http.MethodPut, "/users/"+uuid.NewString(),
		`{"username":"renamed"}`)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_UpdateProfile_MismatchedIDForbidden(t *testing.T) {
	user := testUser()
	h := NewAuthHandler(&fakeAuthUsecase{}, discardLogger())

	c, rec := newEchoContext(t, http.MethodPut, "/users/other",
		`{"username":"renamed"}`)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString()) // Not the caller's id.
	c.Set(string(deliverycontext.KeyIdentity), entity.Authenticated(user))

	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthHandler_UpdateProfile_Success(t *testing.T) {
	user := testUser()
	uc := &fakeAuthUsecase{
		updateProfile: func(_ context.Context, userID uuid.UUID, input usecase.UpdateProfileInput) (*entity.User, error) {
			assert.Equal(t, user.ID, userID)
			require.NotNil(t, input.Username)
			assert.Equal(t, "renamed", *input.Username)
			assert.Nil(t, input.Email)

			updated := *user
			updated.Username = "renamed"

			return &updated, nil
		},
	}
	h := NewAuthHandler(uc, discardLogger())

	c, rec := newEchoContext(t, http.MethodPut, "/users/"+user.ID.String(),
		`{"username":"renamed"}`)
	c.SetParamNames("id")
	c.SetParamValues(user.ID.String())
	c.Set(string(deliverycontext.KeyIdentity), entity.Authenticated(user))

	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"renamed"`)
}

func TestAuthHandler_UpdateProfile_RejectsInvalidInput(t *testing.T) {
	user := testUser()

	cases := []struct {
		name string
		body string
	}{
		{"short username", `{"username":"ab"}`},
		{"short password", `{"password":"12345"}`},
		{"malformed email", `{"email":"not-an-email"}`},
		{"malformed image url", `{"imageUrl":"not a url"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				updateProfile: func(context.Context, uuid.UUID, usecase.UpdateProfileInput) (*entity.User, error) {
					t.Fatal("invalid input must be rejected before the usecase")

					return nil, nil
				},
			}
			h := NewAuthHandler(uc, discardLogger())

			c, _ := newEchoContext(t, http.MethodPut, "/users/"+user.ID.String(), tc.body)
			c.SetParamNames("id")
			c.SetParamValues(user.ID.String())
			c.Set(string(deliverycontext.KeyIdentity), entity.Authenticated(user))

			err := h.UpdateProfile(c)

			require.Error(t, err)
			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode())
			assert.Equal(t, "VALIDATION_FAILED", appErr.ErrorCode())
		})
	}
}

func TestAuthHandler_UpdateProfile_InvalidID(t *testing.T) {
	h := NewAuthHandler(&fakeAuthUsecase{}, discardLogger())

	c, rec := newEchoContext(t, http.MethodPut, "/users/not-a-uuid", `{"username":"x"}`)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)

	return nil
}
