package errs

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
		is     func(error) bool
	}{
		{name: "unique violation", cause: &pgconn.PgError{Code: "23505"}, status: http.StatusConflict, is: IsUniqueConstraintViolationError},
		{name: "deadlock", cause: &pgconn.PgError{Code: "40P01"}, status: http.StatusServiceUnavailable, is: IsDeadlockError},
		{name: "serialization", cause: &pgconn.PgError{Code: "40001"}, status: http.StatusServiceUnavailable, is: IsSerializationFailureError},
		{name: "statement timeout", cause: &pgconn.PgError{Code: "57014"}, status: http.StatusGatewayTimeout, is: IsDatabaseTimeoutError},
		{name: "context deadline", cause: context.DeadlineExceeded, status: http.StatusGatewayTimeout, is: IsDatabaseTimeoutError},
		{name: "record not found", cause: gorm.ErrRecordNotFound, status: http.StatusNotFound, is: IsNotFound},
		{name: "duplicate key text", cause: errors.New("ERROR: duplicate key value"), status: http.StatusConflict, is: IsConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("insert", "blog_posts", tt.cause)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.True(t, tt.is(err))
		})
	}
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(NewAlreadyExists("blog_posts")))
	assert.True(t, IsConflict(NewDatabaseError("insert", "blog_posts", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsConflict(NewNotFound("blog_posts")))

	err := NewConflictError(`slug "a" is already used`, NewAlreadyExists("blog_posts"))
	assert.True(t, IsConflict(err))
	assert.True(t, IsClientError(err))
	assert.Contains(t, err.GetFullError(), "blog_posts already exists")
}

func TestCode(t *testing.T) {
	assert.Equal(t, "409", Code(NewAlreadyExists("x")))
	assert.Equal(t, "", Code(errors.New("plain")))
	assert.False(t, IsClientError(NewRemoteError("resend", http.StatusBadGateway, "down")))
	assert.True(t, IsClientError(NewRemoteError("resend", http.StatusUnprocessableEntity, "bad")))
}
