// Package requesttime pins one "now" per HTTP request so the mottatt stamps
// and invalidations a single lookup writes agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"isdialogmelding/pkg/requestcontext"
)

// Middleware stamps the request context with time.Now.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock stamps the request context with clock(), read once per request.
// A request whose context already carries a time keeps it.
func WithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Value(requestcontext.ContextKeyRequestTime).(time.Time); ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
