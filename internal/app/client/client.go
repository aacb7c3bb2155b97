// internal/app/client/client.go

// Package client is a typed HTTP client for the course and upload
// endpoints. It is what the curriculum editor and learnhubctl submit
// through.
package client

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

	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"golang.org/x/oauth2"
)

var (
	// ErrServer marks 5xx responses and bodies the client could not decode.
	// Callers should show a generic failure and must not retry silently.
	ErrServer = errors.New("server error")
	// ErrTransport marks requests that never produced an HTTP response.
	ErrTransport = errors.New("transport error")
)

// APIError is a non-2xx response. Message is the server's text, verbatim.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrServer) match 5xx responses.
func (e *APIError) Unwrap() error {
	if e.Status >= 500 {
		return ErrServer
	}
	return nil
}

// Config configures a Client.
type Config struct {
	BaseURL string
	// Token is sent as a bearer token. Blank means anonymous.
	Token string
	// TokenSource overrides Token when set.
	TokenSource oauth2.TokenSource
	Timeout     time.Duration
	// HTTPClient is used as the base transport (tests pass httptest's).
	HTTPClient *http.Client
}

// Client talks to one learnhub server.
type Client struct {
	base string
	hc   *http.Client
}

// New builds a Client. The bearer token, if any, is attached by an oauth2
// transport.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("client: base URL required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("client: bad base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		cp := *cfg.HTTPClient
		hc = &cp
	}

	ts := cfg.TokenSource
	if ts == nil && cfg.Token != "" {
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	}
	if ts != nil {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		hc = oauth2.NewClient(ctx, ts)
	}
	hc.Timeout = cfg.Timeout

	return &Client{base: base, hc: hc}, nil
}

// doJSON sends in (if non-nil) as JSON and decodes a 2xx body into out.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: malformed response: %w", ErrServer, err)
	}
	return nil
}

// decodeError turns an error response into *APIError. Bodies that are not
// the JSON envelope keep the status text as the message.
func decodeError(status int, raw []byte) error {
	e := &APIError{Status: status}
	var body httpjson.ErrorBody
	if json.Unmarshal(raw, &body) == nil {
		e.Message = body.Message
		if e.Message == "" {
			e.Message = body.Error
		}
		e.Fields = body.Fields
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
