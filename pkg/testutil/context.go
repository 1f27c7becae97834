package testutil

import (
	"net/http"

	"isdialogmelding/pkg/requestcontext"
)

// WithBearerToken stores token in the request context the way the auth
// middleware does for a forwarded bearer token.
func WithBearerToken(req *http.Request, token string) *http.Request {
	return req.WithContext(requestcontext.WithBearerToken(req.Context(), token))
}

// WithCallID stores a Nav-Call-Id in the request context.
func WithCallID(req *http.Request, callID string) *http.Request {
	return req.WithContext(requestcontext.WithCallID(req.Context(), callID))
}
