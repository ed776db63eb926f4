package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"watchtower/internal/domain/entity"
	"watchtower/internal/domain/repository"
	"watchtower/internal/infra/persistence/model"
)

// userRepository implements the repository.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&userM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their normalized email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where("email = ?", entity.NormalizeEmail(email)).
		First(&userM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// FindByFederatedID retrieves a single user by their external provider id.
func (repo *userRepository) FindByFederatedID(ctx context.Context, federatedID string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where("federated_id = ?", federatedID).
		First(&userM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by federated id")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity. Uniqueness of email and federated id is
// enforced atomically by the store's constraints and surfaced as domain
// errors.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		return translateWriteError(err)
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update modifies an existing user entity in the database.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Save(userM).Error; err != nil {
		return translateWriteError(err)
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

func translateWriteError(err error) error {
	if isUniqueConstraintViolation(err) {
		if violatesColumn(err, "federated_id") {
			return repository.ErrDuplicateFederatedID
		}

		return repository.ErrDuplicateEmail
	}

	return errors.Wrap(err, "failed to write user")
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	var federatedID string
	if data.FederatedID != nil {
		federatedID = *data.FederatedID
	}

	return &entity.User{
		ID:           data.ID,
		FederatedID:  federatedID,
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		ImageURL:     data.ImageURL,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
// An empty federated id maps to NULL so the sparse unique index never collides
// on local-only accounts.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	var federatedID *string
	if data.FederatedID != "" {
		federatedID = &data.FederatedID
	}

	return &model.UserModel{
		ID:           data.ID,
		FederatedID:  federatedID,
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		ImageURL:     data.ImageURL,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
