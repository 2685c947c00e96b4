package api

import (
	"context"
)

type keyType string

const sessionKey keyType = "adminSession"

// ctxWithSession adds the authenticated admin session to the context
func ctxWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// ctxGetSession retrieves the admin session set by the auth middleware
func ctxGetSession(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}
