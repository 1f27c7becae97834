// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services and stores read them without importing
// net/http. Kafka consumers set the call id and time themselves.
//
// Usage in services (read values):
//
//	callID := requestcontext.CallID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithCallID(ctx, "call-1")
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	callIDKey      struct{}
	consumerIDKey  struct{}
	bearerKey      struct{}
	callerKey      struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyCallID      = callIDKey{}
	ContextKeyConsumerID  = consumerIDKey{}
	ContextKeyBearer      = bearerKey{}
	ContextKeyCaller      = callerKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Caller describes who issued the request, taken from unverified token claims.
// It is used for logging only.
type Caller struct {
	NAVident string
	AzpName  string
	Subject  string
}

// -----------------------------------------------------------------------------
// Call metadata
// -----------------------------------------------------------------------------

// CallID retrieves the Nav-Call-Id correlation id from the context.
func CallID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyCallID).(string); ok {
		return id
	}
	return ""
}

// WithCallID injects a correlation id into the context.
func WithCallID(ctx context.Context, callID string) context.Context {
	return context.WithValue(ctx, ContextKeyCallID, callID)
}

// ConsumerID retrieves the Nav-Consumer-Id of the calling application.
func ConsumerID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyConsumerID).(string); ok {
		return id
	}
	return ""
}

// WithConsumerID injects the calling application's id into the context.
func WithConsumerID(ctx context.Context, consumerID string) context.Context {
	return context.WithValue(ctx, ContextKeyConsumerID, consumerID)
}

// -----------------------------------------------------------------------------
// Credentials
// -----------------------------------------------------------------------------

// BearerToken retrieves the raw bearer token forwarded to downstream registries.
func BearerToken(ctx context.Context) string {
	if token, ok := ctx.Value(ContextKeyBearer).(string); ok {
		return token
	}
	return ""
}

// WithBearerToken injects the raw bearer token into the context.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextKeyBearer, token)
}

// CallerFrom retrieves caller claims; the zero value means unknown.
func CallerFrom(ctx context.Context) Caller {
	if c, ok := ctx.Value(ContextKeyCaller).(Caller); ok {
		return c
	}
	return Caller{}
}

// WithCaller injects caller claims into the context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like consumers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Consumers that need one consistent time per message
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
