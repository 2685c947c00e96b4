package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}

func TestBackoffIsLinear(t *testing.T) {
	b := Policy{MaxAttempts: 3, BaseDelay: time.Second}.Backoff()

	d, stop := b.Next()
	assert.False(t, stop)
	assert.Equal(t, time.Second, d)

	d, stop = b.Next()
	assert.False(t, stop)
	assert.Equal(t, 2*time.Second, d)

	_, stop = b.Next()
	assert.True(t, stop)
}

func TestDoSucceedsFirstTime(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), fast, func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientFailures(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), fast, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errs.NewApiErr(503, "unavailable")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), fast, func(context.Context) (int, error) {
		calls++
		return calls, errs.NewApiErr(500, "boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, v)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "500", errs.Code(err))
}

func TestDoStopsOnClientError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fast, func(context.Context) (int, error) {
		calls++
		return 0, errs.NewNotFound("blog_posts")
	})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, 1, calls)
}

func TestDoRecoversPanics(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fast, func(context.Context) (int, error) {
		calls++
		panic("kaboom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
	assert.Equal(t, 3, calls)
}

func TestDoSingleAttemptPolicy(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Policy{MaxAttempts: 1}, func(context.Context) error {
		calls++
		return errors.New("nope")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Run(ctx, Policy{MaxAttempts: 5, BaseDelay: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransactionConflicts(t *testing.T) {
	for _, code := range []string{"40P01", "40001"} {
		calls := 0
		got, err := Do(context.Background(), fast, func(context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", errs.NewDatabaseError("update", "experience", &pgconn.PgError{Code: code})
			}
			return "ok", nil
		})
		require.NoError(t, err, code)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 2, calls, code)
	}
}

func TestDoStopsOnTimeoutAfterDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Run(ctx, Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		cancel()
		return errs.NewDatabaseError("select", "blog_posts", ctx.Err())
	})
	require.Error(t, err)
	assert.True(t, errs.IsDatabaseTimeoutError(err))
	assert.Equal(t, 1, calls)
}

func TestTransientReason(t *testing.T) {
	assert.Equal(t, "deadlock", transientReason(errs.NewDatabaseError("update", "x", &pgconn.PgError{Code: "40P01"})))
	assert.Equal(t, "serialization failure", transientReason(errs.NewDatabaseError("update", "x", &pgconn.PgError{Code: "40001"})))
	assert.Equal(t, "timeout", transientReason(errs.NewDatabaseError("select", "x", context.DeadlineExceeded)))
	assert.Equal(t, "remote failure", transientReason(errors.New("connection reset")))
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(map[string]string{"RETRY_MAX_ATTEMPTS": "5", "RETRY_BASE_DELAY_MS": "250"})
	assert.Equal(t, Policy{MaxAttempts: 5, BaseDelay: 250 * time.Millisecond}, p)

	assert.Equal(t, DefaultPolicy(), PolicyFromConfig(nil))
}
