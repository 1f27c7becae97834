package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"isdialogmelding/pkg/platform/circuit"
)

const (
	HeaderCallID      = "Nav-Call-Id"
	HeaderConsumerID  = "Nav-Consumer-Id"
	HeaderPersonident = "nav-personident"

	consumerID = "isdialogmelding"

	maxBodyBytes = 1 << 20
)

// Request describes one registry call.
type Request struct {
	URL     string
	Token   string
	CallID  string
	Headers map[string]string
}

// Caller performs registry GETs with shared headers, error categorisation and
// a circuit breaker.
type Caller struct {
	providerID string
	client     *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

func NewCaller(providerID string, client *http.Client, breaker *circuit.Breaker, logger *slog.Logger) *Caller {
	if breaker == nil {
		breaker = circuit.New(providerID)
	}
	return &Caller{providerID: providerID, client: client, breaker: breaker, logger: logger}
}

func (c *Caller) ProviderID() string { return c.providerID }

// Get performs the request and returns status and body. Retryable failures
// count against the circuit breaker; while the circuit is open
// results are discarded and an outage error is returned.
func (c *Caller) Get(ctx context.Context, r Request) (int, []byte, error) {
	status, body, err := c.do(ctx, r)
	if err != nil {
		if !IsRetryable(err) {
			return status, body, err
		}
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "registry circuit opened", "provider", c.providerID)
		}
		return 0, nil, err
	}
	usePrimary, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.logger.InfoContext(ctx, "registry circuit closed", "provider", c.providerID)
	}
	if !usePrimary {
		return 0, nil, NewProviderError(ErrorProviderOutage, c.providerID, "circuit open", nil)
	}
	return status, body, nil
}

func (c *Caller) do(ctx context.Context, r Request) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return 0, nil, NewProviderError(ErrorInternal, c.providerID, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderConsumerID, consumerID)
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	if r.CallID != "" {
		req.Header.Set(HeaderCallID, r.CallID)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return 0, nil, NewProviderError(ErrorTimeout, c.providerID, "request timed out", err)
		}
		return 0, nil, NewProviderError(ErrorProviderOutage, c.providerID, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, NewProviderError(ErrorProviderOutage, c.providerID, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return resp.StatusCode, body, NewProviderError(ErrorAuthentication, c.providerID,
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return resp.StatusCode, body, NewProviderError(ErrorRateLimited, c.providerID, "rate limited", nil)
	case resp.StatusCode >= 500:
		return resp.StatusCode, body, NewProviderError(ErrorProviderOutage, c.providerID,
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	return resp.StatusCode, body, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
