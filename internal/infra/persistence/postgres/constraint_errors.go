package postgres

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Helper functions for PostgreSQL error checking
func isUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "23505") // PostgreSQL unique_violation error code
}

// violatesColumn reports whether a unique violation message names the given
// index column. Used to tell the email constraint apart from the federated
// id constraint.
func violatesColumn(err error, column string) bool {
	return strings.Contains(strings.ToLower(err.Error()), column)
}
