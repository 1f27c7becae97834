// Package fastlege looks up a person's active GP in the national GP registry.
package fastlege

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"isdialogmelding/internal/registry/providers"
	id "isdialogmelding/pkg/domain"
	"isdialogmelding/pkg/platform/circuit"
)

const (
	providerID = "fastlege"
	activePath = "/fastlegerest/api/v2/fastlege/aktiv/personident"
)

// Client calls the GP registry over HTTP.
type Client struct {
	baseURL string
	caller  *providers.Caller
	logger  *slog.Logger
}

// New constructs a Client. timeout bounds every call.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, logger)
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		caller:  providers.NewCaller(providerID, httpClient, circuit.New(providerID), logger),
		logger:  logger,
	}
}

// FetchActive returns the active GP of personident, or nil when the registry
// has none.
func (c *Client) FetchActive(ctx context.Context, personident id.Personident, token, callID string) (*Fastlege, error) {
	status, body, err := c.caller.Get(ctx, providers.Request{
		URL:     c.baseURL + activePath,
		Token:   token,
		CallID:  callID,
		Headers: map[string]string{providers.HeaderPersonident: personident.String()},
	})
	if err != nil {
		return nil, err
	}
	return parseFastlegeResponse(status, body)
}

func parseFastlegeResponse(status int, body []byte) (*Fastlege, error) {
	switch status {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return nil, nil
	default:
		return nil, providers.NewProviderError(providers.ErrorBadData, providerID, "unexpected status "+http.StatusText(status), nil)
	}
	var f Fastlege
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, providerID, "decode response", err)
	}
	return &f, nil
}
