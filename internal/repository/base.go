// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"microblog/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// feedOrder is the total order shared by every post listing: newest first,
// ties broken by id so pagination is stable.
const feedOrder = "posts.timestamp DESC, posts.id DESC"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	// SQLite reports "UNIQUE constraint failed".
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// notFoundOr maps gorm.ErrRecordNotFound to notFound and anything else to an internal error.
func notFoundOr(err error, notFound *models.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return models.NewInternalError(err)
}
