package auth

import (
	"context"

	"github.com/hackgods/clinic-scheduling/internal/identity"
)

type contextKey string

const callerKey contextKey = "caller"

func WithCaller(ctx context.Context, c identity.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the caller stored by the bearer middleware.
func CallerFrom(ctx context.Context) (identity.Caller, bool) {
	c, ok := ctx.Value(callerKey).(identity.Caller)
	return c, ok
}
