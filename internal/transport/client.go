// Package transport provides the authenticated JSON REST client used to
// reach the remote object store. Request signing and per-resource wire
// formats are out of scope; payloads are opaque maps.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/dbsmedya/intersync/internal/config"
	"github.com/dbsmedya/intersync/internal/errs"
	"github.com/dbsmedya/intersync/internal/logger"
)

// Object is one remote object instance as returned by the API.
type Object = map[string]interface{}

// Client is an authenticated REST client for the remote object store.
// Transient failures are retried with exponential backoff; authentication
// and reachability failures are surfaced as critical errors.
type Client struct {
	endpoint   string
	keyID      string
	secretKey  string
	maxRetries int
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a Client from configuration.
func New(cfg config.APIConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewDefault()
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		keyID:      cfg.KeyID,
		secretKey:  cfg.SecretKey,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Endpoint returns the configured API endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ping verifies that the endpoint is reachable and the credentials are
// accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/v1/ping", nil)
	return err
}

// List returns all objects of one resource category.
func (c *Client) List(ctx context.Context, restPath string) ([]Object, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/"+restPath, nil)
	if err != nil {
		return nil, err
	}

	// The store wraps collections in a Results envelope.
	var envelope struct {
		Results []Object `json:"Results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &errs.TransportError{
			Op:  "list " + restPath,
			Err: fmt.Errorf("failed to decode response: %w", err),
		}
	}

	return envelope.Results, nil
}

// Create creates one object and returns the stored representation.
func (c *Client) Create(ctx context.Context, restPath string, obj Object) (Object, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/"+restPath, obj)
	if err != nil {
		return nil, err
	}
	return decodeObject("create "+restPath, body)
}

// Update replaces one object identified by its Moid.
func (c *Client) Update(ctx context.Context, restPath, moid string, obj Object) (Object, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/"+restPath+"/"+url.PathEscape(moid), obj)
	if err != nil {
		return nil, err
	}
	return decodeObject("update "+restPath, body)
}

// Delete removes one object identified by its Moid.
func (c *Client) Delete(ctx context.Context, restPath, moid string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/"+restPath+"/"+url.PathEscape(moid), nil)
	return err
}

// do issues one request with retry for transient failures. Permanent
// failures (auth, client errors) are returned immediately.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	operation := func() ([]byte, error) {
		body, err := c.doOnce(ctx, method, path, payload)
		if err == nil {
			return body, nil
		}

		// Retry only transport-class failures; everything else is permanent.
		var transportErr *errs.TransportError
		if errors.As(err, &transportErr) {
			c.log.Debugw("Retrying request", "method", method, "path", path, "error", err.Error())
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	maxTries := uint(c.maxRetries + 1)
	if maxTries < 1 {
		maxTries = 1
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxTries),
	)
}

// doOnce issues a single request and maps failures onto the error
// taxonomy.
func (c *Client) doOnce(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &errs.ValidationError{Reason: fmt.Sprintf("failed to encode request body: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return nil, &errs.TransportError{Op: method + " " + path, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.keyID+":"+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isTimeout(err) {
			return nil, &errs.TransportError{Op: method + " " + path, Err: err}
		}
		return nil, &errs.ConnectionError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.TransportError{Op: method + " " + path, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &errs.AuthenticationError{
			Err: fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &errs.ValidationError{
			Reason: fmt.Sprintf("%s %s rejected with status %d: %s", method, path, resp.StatusCode, summarize(body)),
		}
	default:
		return nil, &errs.TransportError{
			Op:         method + " " + path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("server error: %s", summarize(body)),
		}
	}
}

// decodeObject parses a single-object response body.
func decodeObject(op string, body []byte) (Object, error) {
	var obj Object
	if len(body) == 0 {
		return Object{}, nil
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, &errs.TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return obj, nil
}

// summarize truncates a response body for error messages.
func summarize(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

// isTimeout reports whether err is a network timeout rather than a
// failure to reach the endpoint at all.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
