package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/colonyops/wcap/internal/core/item"
)

// ErrUnauthorized is returned when the server rejects the client's
// token or sync code.
var ErrUnauthorized = fmt.Errorf("sync: unauthorized")

// Client talks to a sync server. A zero token is valid only for
// Connect; all other calls require the token obtained from it.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient creates a client for the given endpoint, e.g.
// "http://localhost:8787". Token may be empty until Connect.
func NewClient(endpoint, token string) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Token returns the bearer token currently in use.
func (c *Client) Token() string {
	return c.token
}

// Connect exchanges a sync code for a bearer token and stores the
// token on the client.
func (c *Client) Connect(ctx context.Context, syncCode string) (string, error) {
	var resp connectResponse
	err := c.do(ctx, http.MethodPost, "/api/connect", connectRequest{SyncCode: syncCode}, &resp)
	if err != nil {
		return "", err
	}

	c.token = resp.Token
	return resp.Token, nil
}

// Pull fetches all remote items for the connected user.
func (c *Client) Pull(ctx context.Context) ([]item.Item, error) {
	var resp itemsResponse
	err := c.do(ctx, http.MethodGet, "/api/sync", nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Push uploads items to the server, overwriting remote copies with the
// same IDs.
func (c *Client) Push(ctx context.Context, items []item.Item) error {
	return c.do(ctx, http.MethodPost, "/api/sync", pushRequest{Items: items}, nil)
}

// Remove deletes a single remote item by ID.
func (c *Client) Remove(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/api/sync", deleteRequest{ItemID: itemID}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sync request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("sync server: %s", apiErr.Error)
		}
		return fmt.Errorf("sync server: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
