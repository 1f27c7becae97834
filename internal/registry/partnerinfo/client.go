// Package partnerinfo resolves the messaging partnerId of a kontor from its herId.
package partnerinfo

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"isdialogmelding/internal/registry/providers"
	id "isdialogmelding/pkg/domain"
	"isdialogmelding/pkg/platform/circuit"
)

const (
	providerID   = "partnerinfo"
	behandlerAPI = "/api/v2/behandler"
)

type partnerinfoResponse struct {
	PartnerID int `json:"partnerId"`
}

// Client calls the partnerinfo registry, consulting the cache first.
type Client struct {
	baseURL string
	caller  *providers.Caller
	cache   Cache
	logger  *slog.Logger
}

// New constructs a Client. A nil cache disables caching.
func New(baseURL string, timeout time.Duration, cache Cache, logger *slog.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, cache, logger)
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client, cache Cache, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		caller:  providers.NewCaller(providerID, httpClient, circuit.New(providerID), logger),
		cache:   cache,
		logger:  logger,
	}
}

// FetchPartnerID returns the partnerId registered for herID. found is false
// when the registry knows none.
func (c *Client) FetchPartnerID(ctx context.Context, herID id.HerID, token, callID string) (partnerID id.PartnerID, found bool, err error) {
	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, herID)
		if err != nil {
			c.logger.WarnContext(ctx, "partnerinfo cache read failed", "her_id", herID.String(), "error", err)
		} else if ok {
			return cached, true, nil
		}
	}

	status, body, err := c.caller.Get(ctx, providers.Request{
		URL:    c.baseURL + behandlerAPI + "?herid=" + url.QueryEscape(herID.String()),
		Token:  token,
		CallID: callID,
	})
	if err != nil {
		return 0, false, err
	}
	partnerID, found, err = parsePartnerinfoResponse(status, body)
	if err != nil || !found {
		return 0, false, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, herID, partnerID); err != nil {
			c.logger.WarnContext(ctx, "partnerinfo cache write failed", "her_id", herID.String(), "error", err)
		}
	}
	return partnerID, true, nil
}

func parsePartnerinfoResponse(status int, body []byte) (id.PartnerID, bool, error) {
	switch status {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return 0, false, nil
	default:
		return 0, false, providers.NewProviderError(providers.ErrorBadData, providerID, "unexpected status "+http.StatusText(status), nil)
	}
	var entries []partnerinfoResponse
	if err := json.Unmarshal(body, &entries); err != nil {
		return 0, false, providers.NewProviderError(providers.ErrorBadData, providerID, "decode response", err)
	}
	for _, e := range entries {
		if e.PartnerID > 0 {
			return id.PartnerID(e.PartnerID), true, nil
		}
	}
	return 0, false, nil
}
