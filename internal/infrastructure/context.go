package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

// EnsureTraceID returns ctx unchanged when it already carries a trace id,
// otherwise a child context with a fresh one.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return WithTraceID(ctx, uuid.NewString())
	}
	return ctx
}
