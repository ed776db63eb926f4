// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "watchtower/internal/delivery/context"
	"watchtower/internal/domain/entity"
	domainerrors "watchtower/internal/domain/errors"
	"watchtower/internal/domain/repository"
	"watchtower/internal/domain/service"
	"watchtower/internal/usecase"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo         repository.UserRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	identityProvider service.IdentityProvider
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo         repository.UserRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	IdentityProvider service.IdentityProvider
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:         params.UserRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		identityProvider: params.IdentityProvider,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup orchestrates the local account registration process.
func (srv *authService) Signup(ctx context.Context, input usecase.SignupInput) (*usecase.SessionOutput, error) {
	srv.log(ctx).Info("Starting signup", slog.String("email", input.Email))

	if strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, domainerrors.ErrMissingFields.WrapMessage("username, email and password are required")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during signup")
	}

	newUser := entity.NewLocalUser(input.Username, input.Email, hashedPassword, input.ImageURL)

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			srv.log(ctx).Warn("Signup rejected, email already registered", slog.String("email", input.Email))

			return nil, domainerrors.ErrEmailTaken.WrapMessage("signup failed")
		}

		return nil, errors.Wrap(err, "failed to create user during signup")
	}

	srv.log(ctx).Debug("Signup completed", slog.Any("userID", newUser.ID))

	return srv.openSession(ctx, newUser, false)
}

// Login orchestrates the password login process.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.SessionOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed, unknown account", slog.String("email", input.Email))

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	// Federated-only accounts have no password hash; the response is the
	// same generic credential failure so account probing learns nothing.
	if user.PasswordHash == "" || !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed, credential mismatch", slog.String("email", input.Email))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return srv.openSession(ctx, user, false)
}

// FederatedLogin handles login or first-time registration via a provider ID token.
func (srv *authService) FederatedLogin(ctx context.Context, input usecase.FederatedLoginInput) (*usecase.SessionOutput, error) {
	srv.log(ctx).Info("Handling federated login")

	if strings.TrimSpace(input.IDToken) == "" {
		return nil, domainerrors.ErrMissingFields.WrapMessage("id token is required")
	}

	federated, err := srv.identityProvider.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		srv.log(ctx).Warn("Federated login failed, token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrFederationFailed.WrapMessage("failed to verify provider ID token")
	}

	user, err := srv.findOrCreateFederatedUser(ctx, federated)
	if err != nil {
		return nil, err
	}

	return srv.openSession(ctx, user, true)
}

// findOrCreateFederatedUser finds the existing account for the provider
// subject or creates one on first sign-in.
func (srv *authService) findOrCreateFederatedUser(ctx context.Context, federated *service.FederatedIdentity) (*entity.User, error) {
	user, err := srv.userRepo.FindByFederatedID(ctx, federated.ProviderUserID)
	if err == nil {
		srv.log(ctx).Debug("Found existing federated user", slog.Any("userID", user.ID))

		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to find user by federated id")
	}

	srv.log(ctx).Info("Federated user not found, creating new user", slog.String("email", federated.Email))

	newUser := entity.NewFederatedUser(federated.ProviderUserID, federated.Name, federated.Email, federated.AvatarURL)

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		// Lost a first-sign-in race: another request created the same
		// subject between our lookup and insert. Load theirs.
		if errors.Is(err, repository.ErrDuplicateFederatedID) {
			existing, findErr := srv.userRepo.FindByFederatedID(ctx, federated.ProviderUserID)
			if findErr != nil {
				return nil, errors.Wrap(findErr, "failed to load federated user after create race")
			}

			return existing, nil
		}
		if errors.Is(err, repository.ErrDuplicateEmail) {
			srv.log(ctx).Warn("Federated signup rejected, email already registered", slog.String("email", federated.Email))

			return nil, domainerrors.ErrEmailTaken.WrapMessage("federated login failed")
		}

		return nil, errors.Wrap(err, "failed to create federated user")
	}

	return newUser, nil
}

// openSession issues a session token for the user and assembles the output.
func (srv *authService) openSession(ctx context.Context, user *entity.User, federated bool) (*usecase.SessionOutput, error) {
	ttl := srv.tokenService.SessionTTL(federated)

	token, err := srv.tokenService.Issue(user.ID, ttl)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue session token")
	}

	return &usecase.SessionOutput{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
		User:      user.Sanitized(),
	}, nil
}

// ResolveIdentity maps a session token to an identity. Any failure along the
// way is a silent downgrade to anonymous, logged at debug level only.
func (srv *authService) ResolveIdentity(ctx context.Context, token string) entity.Identity {
	if token == "" {
		return entity.Anonymous
	}

	claims, err := srv.tokenService.Verify(token)
	if err != nil {
		srv.log(ctx).Debug("Session token rejected", slog.Any("error", err))

		return entity.Anonymous
	}

	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		srv.log(ctx).Debug("Session user not found", slog.Any("userID", claims.UserID), slog.Any("error", err))

		return entity.Anonymous
	}

	return entity.Authenticated(user)
}

// UpdateProfile applies partial profile changes to the given account.
func (srv *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, input usecase.UpdateProfileInput) (*entity.User, error) {
	srv.log(ctx).Info("Updating profile", slog.Any("userID", userID))

	if input.Username == nil && input.Email == nil && input.Password == nil && input.ImageURL == nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("no recognized profile fields in payload")
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("profile update failed")
		}

		return nil, errors.Wrap(err, "failed to find user for profile update")
	}

	if input.Username != nil {
		if strings.TrimSpace(*input.Username) == "" {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("username must not be empty")
		}
		user.Username = *input.Username
	}
	if input.Email != nil {
		if strings.TrimSpace(*input.Email) == "" {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("email must not be empty")
		}
		user.Email = entity.NormalizeEmail(*input.Email)
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("password must not be empty")
		}
		hashedPassword, hashErr := srv.hasher.Hash(*input.Password)
		if hashErr != nil {
			srv.log(ctx).Error("Failed to hash password during profile update", slog.Any("error", hashErr))

			return nil, errors.Wrap(hashErr, "failed to hash password during profile update")
		}
		user.PasswordHash = hashedPassword
	}
	if input.ImageURL != nil {
		user.ImageURL = *input.ImageURL
	}

	if err := srv.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			srv.log(ctx).Warn("Profile update rejected, email already registered", slog.Any("userID", userID))

			return nil, domainerrors.ErrEmailTaken.WrapMessage("profile update failed")
		}

		return nil, errors.Wrap(err, "failed to update user profile")
	}

	srv.log(ctx).Debug("Profile updated", slog.Any("userID", userID))

	return user.Sanitized(), nil
}
