// Package metadata extracts call correlation headers into the request context.
package metadata

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"isdialogmelding/pkg/requestcontext"
)

const (
	HeaderCallID     = "Nav-Call-Id"
	HeaderConsumerID = "Nav-Consumer-Id"
)

// CallMetadata puts Nav-Call-Id and Nav-Consumer-Id on the context and echoes
// the call id back. A missing call id is generated. Mount it first.
func CallMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callID := header(r, HeaderCallID)
		if callID == "" {
			callID = uuid.NewString()
		}
		w.Header().Set(HeaderCallID, callID)

		ctx := requestcontext.WithCallID(r.Context(), callID)
		if consumerID := header(r, HeaderConsumerID); consumerID != "" {
			ctx = requestcontext.WithConsumerID(ctx, consumerID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest returns the originating address for access logs: the
// first X-Forwarded-For hop, then X-Real-IP, then RemoteAddr without its port.
func ClientIPFromRequest(r *http.Request) string {
	if first, _, _ := strings.Cut(header(r, "X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if ip := header(r, "X-Real-IP"); ip != "" {
		return ip
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func header(r *http.Request, name string) string {
	return strings.TrimSpace(r.Header.Get(name))
}
