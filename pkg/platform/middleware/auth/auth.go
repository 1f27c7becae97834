// Package auth forwards the caller's bearer token to downstream registries.
//
// Tokens are not validated here: the ingress in front of the service verifies
// them, and this service only passes them on (on-behalf-of) and logs who called.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"isdialogmelding/pkg/requestcontext"
)

const bearerPrefix = "Bearer "

// BearerToken returns the token from an "Authorization: Bearer <token>" header, or "".
func BearerToken(r *http.Request) string {
	after, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(after)
}

// ParseCaller reads caller claims without verifying the signature.
func ParseCaller(token string) (requestcontext.Caller, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return requestcontext.Caller{}, err
	}
	caller := requestcontext.Caller{}
	caller.NAVident, _ = claims["NAVident"].(string)
	caller.AzpName, _ = claims["azp_name"].(string)
	caller.Subject, _ = claims.GetSubject()
	return caller, nil
}

// ForwardBearer stores the bearer token and its caller claims in the context.
// Requests without a token pass through; handlers decide whether one is required.
func ForwardBearer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := requestcontext.WithBearerToken(r.Context(), token)
			caller, err := ParseCaller(token)
			if err != nil {
				logger.DebugContext(ctx, "could not read caller claims from token",
					"error", err,
					"call_id", requestcontext.CallID(ctx),
				)
			} else {
				ctx = requestcontext.WithCaller(ctx, caller)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
