// Package preorder watches externally managed pre-orders until the kitchen
// picks them up or they are closed.
package preorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnexpectedStatus is returned when the status service answers with a
// non-200 response.
var ErrUnexpectedStatus = errors.New("unexpected response from status service")

// StatusChecker fetches the current status of a pre-order.
type StatusChecker interface {
	CheckStatus(ctx context.Context, orderID string) (string, error)
}

// HTTPChecker asks the pre-order service: GET {base}/preorders/{id}/status.
type HTTPChecker struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPChecker creates a checker against baseURL. A nil client gets a
// client with a 10s timeout.
func NewHTTPChecker(baseURL string, client *http.Client) *HTTPChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPChecker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

type statusResponse struct {
	Status string `json:"status"`
}

func (c *HTTPChecker) CheckStatus(ctx context.Context, orderID string) (string, error) {
	u := c.baseURL + "/preorders/" + url.PathEscape(orderID) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}
	if out.Status == "" {
		return "", fmt.Errorf("%w: empty status", ErrUnexpectedStatus)
	}
	return strings.ToUpper(out.Status), nil
}
