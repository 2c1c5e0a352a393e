// Package smartlock is a thin HTTP client for the door lock vendor API.
package smartlock

import (
	"bytes"
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

var ErrNotConfigured = errors.New("smart lock integration is not configured")

type Locks interface {
	QueryLockReachable(ctx context.Context, lockID string) (bool, error)
	Unlock(ctx context.Context, lockID string) error
}

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

type lockState struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Reachable bool   `json:"reachable"`
}

type actionRequest struct {
	Action string `json:"action"`
}

func (c *Client) QueryLockReachable(ctx context.Context, lockID string) (bool, error) {
	resp, err := c.request(ctx, http.MethodGet, lockPath(lockID), nil)
	if err != nil {
		return false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("query lock %s: unexpected status %d: %s", lockID, resp.StatusCode, errorMessage(resp))
	}

	var state lockState
	if err := resp.DecodeJSON(&state); err != nil {
		return false, fmt.Errorf("decode lock state: %w", err)
	}
	return state.Reachable, nil
}

func (c *Client) Unlock(ctx context.Context, lockID string) error {
	resp, err := c.request(ctx, http.MethodPost, lockPath(lockID)+"/actions", actionRequest{Action: "unlock"})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unlock %s: unexpected status %d: %s", lockID, resp.StatusCode, errorMessage(resp))
	}
	return nil
}

func lockPath(lockID string) string {
	return "/locks/" + url.PathEscape(lockID)
}

func (c *Client) request(ctx context.Context, method, path string, body any) (*Response, error) {
	if c.BaseURL == "" {
		return nil, ErrNotConfigured
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Response: resp,
		Body:     respBody,
	}, nil
}

func errorMessage(resp *Response) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := resp.DecodeJSON(&errResp); err != nil {
		return strings.TrimSpace(string(resp.Body))
	}
	if errResp.Message != "" {
		return errResp.Message
	}
	return errResp.Error
}
