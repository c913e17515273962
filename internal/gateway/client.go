// Package gateway implements the HTTP client for the two BrainDrive
// backend collaborators: the identity endpoint and the generic settings
// instances endpoint.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/braindrive/bdkeys/api"
)

const (
	authMePath    = "/api/v1/auth/me"
	instancesPath = "/api/v1/settings/instances"
)

// Client talks to the BrainDrive backend REST API.
type Client struct {
	addr  string // base URL (e.g. "http://localhost:8005")
	token string // bearer token, may be empty for cookie-auth setups
	httpc *http.Client
}

// New creates a gateway client for the given base URL. The token is sent
// as a Bearer credential on every request when non-empty.
func New(addr, token string) *Client {
	return &Client{
		addr:  strings.TrimRight(addr, "/"),
		token: token,
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

// CurrentUser resolves the identity of the authenticated user.
// A response without an id is an error: nothing else in the client can
// proceed without one.
func (c *Client) CurrentUser(ctx context.Context) (api.User, error) {
	var user api.User
	body, err := c.request(ctx, http.MethodGet, authMePath, nil)
	if err != nil {
		return user, err
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return user, fmt.Errorf("parsing user response: %w", err)
	}
	if user.ID == "" {
		return user, fmt.Errorf("user response has no id")
	}
	return user, nil
}

// request sends an HTTP request to the backend and returns the response
// body. Non-2xx responses become an *APIError carrying the extracted
// human-readable detail.
func (c *Client) request(ctx context.Context, method, path string, payload any) ([]byte, error) {
	url := c.addr + path

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		bodyReader = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Detail: extractDetail(body)}
	}

	return body, nil
}
