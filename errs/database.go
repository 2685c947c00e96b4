package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
)

// Database & Storage Specific Errors
var (
	ErrDeadlock                  = errors.New("database deadlock")
	ErrSerializationFailure      = errors.New("serialization failure")
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrForeignKeyConstraint      = errors.New("foreign key constraint violation")
	ErrInvalidData               = errors.New("invalid data")
	ErrDatabaseTimeout           = errors.New("database timeout")
	ErrMultipleRows              = errors.New("multiple rows returned")
	ErrStorageUpload             = errors.New("storage upload failed")
)

func NewAlreadyExists(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
	}
}

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewMultipleRowsError reports a "get the one row" read that matched more than
// one row.
func NewMultipleRowsError(entity string, n int) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotAcceptable,
		err:        ErrMultipleRows,
		Details:    fmt.Sprintf("expected a single %s, found %d", entity, n),
	}
}

// NewDatabaseError creates a new database error with details about the operation.
// Postgres SQLSTATE codes decide the status class: constraint and data errors
// are client errors, transaction conflicts and lost connections are 503s.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	if cause == nil {
		return &ApiErr{StatusCode: http.StatusInternalServerError, err: ErrDatabaseQuery, Details: details}
	}

	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	if errors.Is(cause, gorm.ErrRecordNotFound) {
		return &ApiErr{
			StatusCode: http.StatusNotFound,
			err:        fmt.Errorf("%s %w", entity, ErrNotFound),
			Details:    details,
			Cause:      cause,
		}
	}

	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled) {
		return &ApiErr{
			StatusCode: http.StatusGatewayTimeout,
			err:        ErrDatabaseTimeout,
			Details:    details,
			Cause:      cause,
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(cause, &pgErr) {
		return fromPgError(pgErr, entity, details, cause)
	}

	errStr := cause.Error()
	switch {
	case strings.Contains(errStr, "duplicate key"):
		return &ApiErr{
			StatusCode: http.StatusConflict,
			err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
			Details:    details,
			Cause:      cause,
		}
	case strings.Contains(errStr, "connection"):
		return &ApiErr{
			StatusCode: http.StatusServiceUnavailable,
			err:        ErrDatabaseConnection,
			Details:    "Unable to connect to database",
			Cause:      cause,
		}
	}

	// Generic database error
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

func fromPgError(pgErr *pgconn.PgError, entity, details string, cause error) *ApiErr {
	switch {
	case pgErr.Code == "23505":
		return &ApiErr{
			StatusCode: http.StatusConflict,
			err:        ErrUniqueConstraintViolation,
			Details:    fmt.Sprintf("Unique constraint violation on %s (%s)", entity, pgErr.ConstraintName),
			Field:      pgErr.ColumnName,
			Cause:      cause,
		}
	case pgErr.Code == "23503":
		return &ApiErr{
			StatusCode: http.StatusBadRequest,
			err:        ErrForeignKeyConstraint,
			Details:    "The referenced resource does not exist or cannot be linked",
			Cause:      cause,
		}
	case pgErr.Code == "40001":
		return &ApiErr{
			StatusCode: http.StatusServiceUnavailable,
			err:        ErrSerializationFailure,
			Details:    details,
			Cause:      cause,
		}
	case pgErr.Code == "40P01":
		return &ApiErr{
			StatusCode: http.StatusServiceUnavailable,
			err:        ErrDeadlock,
			Details:    details,
			Cause:      cause,
		}
	case pgErr.Code == "57014":
		return &ApiErr{
			StatusCode: http.StatusGatewayTimeout,
			err:        ErrDatabaseTimeout,
			Details:    details,
			Cause:      cause,
		}
	case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "53"):
		return &ApiErr{
			StatusCode: http.StatusServiceUnavailable,
			err:        ErrDatabaseConnection,
			Details:    "Unable to connect to database",
			Cause:      cause,
		}
	case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"), strings.HasPrefix(pgErr.Code, "42"):
		return &ApiErr{
			StatusCode: http.StatusBadRequest,
			err:        ErrInvalidData,
			Details:    fmt.Sprintf("%s: %s", details, pgErr.Message),
			Field:      pgErr.ColumnName,
			Cause:      cause,
		}
	}
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

func NewStorageUploadError(bucket, path string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrStorageUpload,
		Details:    fmt.Sprintf("Upload to %s/%s failed", bucket, path),
		Cause:      cause,
		Field:      "file",
	}
}

func IsDeadlockError(err error) bool {
	return errors.Is(err, ErrDeadlock)
}

func IsSerializationFailureError(err error) bool {
	return errors.Is(err, ErrSerializationFailure)
}

func IsUniqueConstraintViolationError(err error) bool {
	return errors.Is(err, ErrUniqueConstraintViolation)
}

func IsDatabaseTimeoutError(err error) bool {
	return errors.Is(err, ErrDatabaseTimeout)
}

func IsMultipleRowsError(err error) bool {
	return errors.Is(err, ErrMultipleRows)
}
