package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isdialogmelding/internal/platform/config"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestServe(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	s := New(config.Server{ShutdownTimeout: time.Second}, handler, discard())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(config.Server{Addr: ":0"}, http.NotFoundHandler(), discard())

	assert.Equal(t, defaultShutdownTimeout, s.shutdownTimeout)
	assert.Equal(t, readHeaderTimeout, s.srv.ReadHeaderTimeout)
	assert.Equal(t, ":0", s.srv.Addr)
}

func TestRunListenError(t *testing.T) {
	s := New(config.Server{Addr: "256.0.0.1:bad"}, http.NotFoundHandler(), discard())

	assert.Error(t, s.Run(context.Background()))
}
