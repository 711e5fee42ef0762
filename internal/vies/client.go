// Package vies implements a client for a VIES-compatible VAT confirmation
// service. The service is an optional collaborator: callers must treat an
// unavailable service as a degrade signal, never a hard failure.
package vies

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/nordmark-trading/settlement/internal/domain/vat"
)

// Compile-time check that Client satisfies the validator's contract.
var _ vat.ConfirmationService = (*Client)(nil)

// Client calls the check-vat-number endpoint of a VIES-compatible service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL. timeout bounds each
// request end to end; the caller's context can shorten it further.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type checkRequest struct {
	CountryCode string `json:"countryCode"`
	VATNumber   string `json:"vatNumber"`
}

type checkResponse struct {
	Valid   bool   `json:"valid"`
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// CheckVAT confirms a VAT number online. Transport failures, timeouts and
// 5xx answers surface as vat.ErrConfirmationUnavailable so the validator
// can fall back to its offline result. No retry happens here; retry policy
// belongs to the caller.
func (c *Client) CheckVAT(ctx context.Context, country, number string) (*vat.Confirmation, error) {
	if c.baseURL == "" {
		return nil, errors.Wrap(vat.ErrConfirmationUnavailable, "client not configured")
	}

	body, err := json.Marshal(checkRequest{CountryCode: country, VATNumber: number})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check-vat-number", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(vat.ErrConfirmationUnavailable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decoding.
	case resp.StatusCode >= http.StatusInternalServerError,
		resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.Wrapf(vat.ErrConfirmationUnavailable, "status %d", resp.StatusCode)
	default:
		return nil, errors.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}

	return &vat.Confirmation{
		Valid:   result.Valid,
		Name:    result.Name,
		Address: result.Address,
	}, nil
}
