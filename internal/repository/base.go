package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"nourish/internal/database"
	"nourish/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var storeTimeout = 3 * time.Second

// SetStoreTimeout bounds every store access made by the repositories.
func SetStoreTimeout(d time.Duration) {
	if d > 0 {
		storeTimeout = d
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}

func readDB(primary *gorm.DB) *gorm.DB {
	if database.ReadDB != nil {
		return database.ReadDB
	}
	return primary
}

// translateError maps driver and gorm errors onto application errors.
// resource and id describe the row for not-found errors.
func translateError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.NewTransientError(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return models.NewConflictError(resource + " already exists")
		case pgErr.Code == "57P01", strings.HasPrefix(pgErr.Code, "08"):
			return models.NewTransientError(err)
		}
		return models.NewInternalError(err)
	}

	if pgconn.Timeout(err) {
		return models.NewTransientError(err)
	}
	if isUniqueConstraintError(err) {
		return models.NewConflictError(resource + " already exists")
	}
	return models.NewInternalError(err)
}

// isUniqueConstraintError recognises unique violations from drivers that do
// not expose a typed error.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
