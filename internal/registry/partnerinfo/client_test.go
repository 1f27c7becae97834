package partnerinfo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isdialogmelding/internal/registry/providers"
	id "isdialogmelding/pkg/domain"
)

func newTestClient(t *testing.T, cache Cache, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(srv.URL, srv.Client(), cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchPartnerID(t *testing.T) {
	t.Run("returns first partner id", func(t *testing.T) {
		var query string
		client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			_, _ = w.Write([]byte(`[{"partnerId": 321}, {"partnerId": 999}]`))
		})

		partnerID, found, err := client.FetchPartnerID(context.Background(), "77", "token", "call-1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, id.PartnerID(321), partnerID)
		assert.Equal(t, "herid=77", query)
	})

	t.Run("empty list is no result", func(t *testing.T) {
		client := newTestClient(t, nil, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		_, found, err := client.FetchPartnerID(context.Background(), "77", "token", "call-1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("server error is outage", func(t *testing.T) {
		client := newTestClient(t, nil, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, found, err := client.FetchPartnerID(context.Background(), "77", "token", "call-1")
		require.Error(t, err)
		assert.False(t, found)
		assert.Equal(t, providers.ErrorProviderOutage, providers.GetCategory(err))
	})
}

func TestFetchPartnerIDUsesCache(t *testing.T) {
	var calls atomic.Int32
	cache := NewInMemoryCache(time.Hour)
	client := newTestClient(t, cache, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[{"partnerId": 321}]`))
	})
	ctx := context.Background()

	for range 3 {
		partnerID, found, err := client.FetchPartnerID(ctx, "77", "token", "call-1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, id.PartnerID(321), partnerID)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPartnerIDDoesNotCacheMisses(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, NewInMemoryCache(time.Hour), func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	})

	for range 2 {
		_, found, err := client.FetchPartnerID(context.Background(), "77", "token", "call-1")
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, int32(2), calls.Load())
}
