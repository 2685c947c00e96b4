// Package retry re-runs failing remote operations with a linearly growing
// wait. Client-class failures are returned at once.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/config"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rs/zerolog/log"
	goretry "github.com/sethvargo/go-retry"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Policy bounds a retry loop. The wait before attempt n+1 is BaseDelay*n.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// PolicyFromConfig reads RETRY_MAX_ATTEMPTS and RETRY_BASE_DELAY_MS.
func PolicyFromConfig(c map[string]string) Policy {
	return Policy{
		MaxAttempts: config.GetInt(c, "RETRY_MAX_ATTEMPTS", DefaultMaxAttempts),
		BaseDelay:   config.GetDuration(c, "RETRY_BASE_DELAY_MS", time.Millisecond, DefaultBaseDelay),
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	return p
}

// Backoff returns the wait sequence of p: BaseDelay, 2*BaseDelay, ... for at
// most MaxAttempts-1 waits.
func (p Policy) Backoff() goretry.Backoff {
	p = p.withDefaults()
	attempt := 0
	linear := goretry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return p.BaseDelay * time.Duration(attempt), false
	})
	return goretry.WithMaxRetries(uint64(p.MaxAttempts-1), linear)
}

// Do invokes op until it succeeds, fails with a client-class error, or the
// policy is exhausted. It returns the zero T and the last error on failure.
// A panic inside op counts as a failed attempt. Cancelling ctx aborts the
// wait between attempts.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var (
		result  T
		attempt int
	)

	err := goretry.Do(ctx, p.Backoff(), func(ctx context.Context) error {
		attempt++
		v, err := invoke(ctx, op)
		if err == nil {
			result = v
			return nil
		}
		if errs.IsClientError(err) {
			return err
		}
		// A timeout caused by the caller's own deadline will not succeed again.
		if errs.IsDatabaseTimeoutError(err) && ctx.Err() != nil {
			return err
		}
		log.Debug().Err(err).Int("attempt", attempt).Str("reason", transientReason(err)).Msg("retrying remote operation")
		return goretry.RetryableError(err)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Run is Do for operations without a result.
func Run(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func transientReason(err error) string {
	switch {
	case errs.IsDeadlockError(err):
		return "deadlock"
	case errs.IsSerializationFailureError(err):
		return "serialization failure"
	case errs.IsDatabaseTimeoutError(err):
		return "timeout"
	}
	return "remote failure"
}

func invoke[T any](ctx context.Context, op func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in retried operation: %v", r)
		}
	}()
	return op(ctx)
}
