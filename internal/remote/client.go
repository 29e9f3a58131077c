// Package remote talks to the GitHub-style JSON-over-HTTPS service
// that hosts snapshot files: repository contents with conditional
// write tokens, single-file gists, recursive tree listing, and
// identity lookup, all gated by a bearer credential.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// CredentialSource provides the bearer token for each request.
type CredentialSource interface {
	Token() string
}

// Client is the shared HTTP core for all remote calls.
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
}

// NewClient creates a Client. An empty baseURL selects the public
// GitHub API endpoint.
func NewClient(baseURL string, creds CredentialSource) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do issues one API request and decodes the JSON response into out
// (ignored when out is nil). Status codes map onto the error taxonomy;
// transport failures come back as NetworkError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token := c.creds.Token()
	if token == "" {
		return ErrNoToken
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, path, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// statusError converts a non-success response into the taxonomy.
func statusError(status int, path string, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Status: status}
	case http.StatusNotFound:
		return &NotFoundError{Path: path}
	case http.StatusConflict:
		return &ConflictError{Path: path}
	}

	message := apiMessage(body)
	// The contents API reports a stale SHA as an unprocessable entity.
	if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(message), "sha") {
		return &ConflictError{Path: path}
	}
	return &APIError{Status: status, Message: message}
}

// apiMessage extracts the service's error message field, falling back
// to the raw body.
func apiMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(body))
}
