// Package remote talks to the host's REST endpoints for record reads and
// sync jobs.
package remote

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

	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/record"
)

// Config configures the REST client.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client implements backend.Client over HTTP.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	log     *zap.Logger
}

var _ backend.Client = (*Client)(nil)

// Response size limits. Error documents are kept whole on backend.Error, so
// they are held to a much smaller cap than record pages.
const (
	maxResponseBytes = 64 << 20
	maxErrorBytes    = 64 << 10
)

// New builds a client for the host at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("remote: base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("remote: base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		token:   cfg.Token,
		client:  httpClient,
		log:     log,
	}, nil
}

type collectionResponse struct {
	Records []json.RawMessage `json:"records"`
}

// GetCollection calls GET /records/{kind}?scope={scopeID}.
func (c *Client) GetCollection(ctx context.Context, kind record.Kind, scopeID string) ([]json.RawMessage, error) {
	path := "/records/" + url.PathEscape(string(kind))
	if scopeID != "" {
		path += "?scope=" + url.QueryEscape(scopeID)
	}
	var resp collectionResponse
	if err := c.do(ctx, "read "+string(kind), http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Records == nil {
		resp.Records = []json.RawMessage{}
	}
	return resp.Records, nil
}

type jobResponse struct {
	Message string              `json:"message"`
	Counts  map[record.Kind]int `json:"counts,omitempty"`
}

// RunSync calls POST /sync/{target}.
func (c *Client) RunSync(ctx context.Context, target record.SyncTarget) (backend.SyncOutcome, error) {
	var resp jobResponse
	op := "sync " + string(target)
	if err := c.do(ctx, op, http.MethodPost, "/sync/"+url.PathEscape(string(target)), struct{}{}, &resp); err != nil {
		return backend.SyncOutcome{}, err
	}
	return backend.SyncOutcome{Target: target, Message: resp.Message, Counts: resp.Counts}, nil
}

// RunCleanup calls POST /cleanup.
func (c *Client) RunCleanup(ctx context.Context) (string, error) {
	var resp jobResponse
	if err := c.do(ctx, "cleanup", http.MethodPost, "/cleanup", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("remote: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return &backend.Error{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	c.log.Debug("remote request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	limit := int64(maxResponseBytes)
	if resp.StatusCode >= 300 {
		limit = maxErrorBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return &backend.Error{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err)}
	}
	oversized := int64(len(data)) > limit
	if resp.StatusCode >= 300 {
		if oversized {
			data = data[:limit]
		}
		return decodeError(op, resp.StatusCode, data)
	}
	if oversized {
		return &backend.Error{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("response exceeds %d bytes", limit)}
	}
	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("remote: decode response: %w", err)
	}
	return nil
}

// decodeError keeps the host's error document as Body when it is a JSON
// object, and the raw bytes as Payload otherwise.
func decodeError(op string, status int, data []byte) *backend.Error {
	be := &backend.Error{Op: op, Status: status}
	trimmed := bytes.TrimSpace(data)
	var body map[string]any
	if len(trimmed) > 0 && json.Unmarshal(trimmed, &body) == nil {
		be.Body = body
		return be
	}
	if len(trimmed) > 0 {
		if json.Valid(trimmed) {
			be.Payload = json.RawMessage(trimmed)
		} else {
			be.Message = string(trimmed)
		}
	}
	return be
}
