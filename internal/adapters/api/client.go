// Package api contains the REST clients for the inventory backend. These are
// plain request/response wrappers: all auth policy lives in the transport.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mvaldes/invctl/internal/domain"
)

const maxResponseBytes = 1 << 20

// Client is the shared HTTP plumbing for every endpoint group.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("api base url is empty")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL: trimmed,
		http:    httpClient,
		log:     logger.With().Str("component", "api").Logger(),
	}, nil
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.statusError(path, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}

func (c *Client) statusError(path string, resp *http.Response) error {
	var parsed errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed)
	message := parsed.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %s: %w", path, message, domain.ErrUnauthenticated)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %s: %w", path, message, domain.ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %s: %w", path, message, domain.ErrNotFound)
	default:
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, message)
	}
}
