// Package client talks to the E-Loan Must REST API. Every call that needs
// authentication takes the caller's credential explicitly.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eloan-must/internal/core/session"
)

const maxBodyBytes = 10 << 20

// Config configures the API client
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api/v1
	BaseURL string

	// HTTPClient is optional; tests pass the httptest client here
	HTTPClient *http.Client

	// Timeout applies when HTTPClient is nil
	Timeout time.Duration

	// Tokens persists the session between runs; defaults to memory
	Tokens TokenStore
}

// Client is the REST API client
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

// New creates a client
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = NewMemoryStore()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

// Tokens returns the client's token store
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// Session restores the stored credential. It returns ErrNoCredential when
// nothing is stored.
func (c *Client) Session() (*session.Credential, error) {
	t, err := c.tokens.Load()
	if err != nil {
		return nil, err
	}
	if t.AccessToken == "" {
		return nil, ErrNoCredential
	}
	return session.FromToken(t.AccessToken, t.RefreshToken)
}

// envelope is the standard response wrapper
type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Errors    []string        `json:"errors,omitempty"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

// call performs one request and decodes the envelope data into T
func call[T any](ctx context.Context, c *Client, method, path string, cred *session.Credential, body any) (T, error) {
	var out T
	env, err := c.do(ctx, method, path, cred, body)
	if err != nil {
		return out, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &APIError{Kind: KindServer, Status: http.StatusOK, Message: msgServer, Err: fmt.Errorf("decode %s %s: %w", method, path, err)}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, cred *session.Credential, body any) (*envelope, error) {
	resp, err := c.send(ctx, method, path, cred, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, env.Message, env.Errors)
	}
	if decodeErr != nil {
		return nil, &APIError{Kind: KindServer, Status: resp.StatusCode, Message: msgServer, Err: fmt.Errorf("decode envelope: %w", decodeErr)}
	}
	if !env.Success {
		return nil, &APIError{Kind: KindValidation, Status: resp.StatusCode, Message: orDefault(env.Message, msgBadRequest), Errors: env.Errors}
	}
	return &env, nil
}

// download streams a non-envelope body such as an export file into w.
// The body is not size-capped; error bodies are.
func (c *Client) download(ctx context.Context, path string, cred *session.Credential, w io.Writer) (int64, error) {
	resp, err := c.send(ctx, http.MethodGet, path, cred, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, err := readBody(resp.Body)
		if err != nil {
			return 0, err
		}
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return 0, statusError(resp.StatusCode, env.Message, env.Errors)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, transportError(err)
	}
	return n, nil
}

// readBody reads at most maxBodyBytes and fails instead of truncating
func readBody(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, transportError(err)
	}
	if len(raw) > maxBodyBytes {
		return nil, transportError(ErrResponseTooLarge)
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, method, path string, cred *session.Credential, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !cred.Empty() {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	return resp, nil
}

// requireCredential rejects calls made without a session
func requireCredential(cred *session.Credential) error {
	if cred.Empty() {
		return ErrNoCredential
	}
	return nil
}

func withQuery(path string, q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}
