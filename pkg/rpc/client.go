// Package rpc provides a client for the SAP-style RPC endpoint that serves
// station data. Every call is a JSON POST of {FUNC, DATA} authenticated with a
// static basic-auth pair.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"
)

const (
	FuncStationMap      = "ZFM_CHXD_GMAP"
	FuncStationLocation = "ZFM_CHXD_LOCATION"

	ReturnTypeError = "E"
	ReturnTypeAbort = "A"

	DefaultTimeout = 30 * time.Second
)

// ErrTransport is wrapped by every network, HTTP status or envelope decoding failure.
var ErrTransport = errors.New("rpc transport error")

// ReturnError is an error reported by upstream through E_RETURN.
type ReturnError struct {
	Func    string
	Type    string
	Message string
}

func (e *ReturnError) Error() string {
	return fmt.Sprintf("%s returned %s: %s", e.Func, e.Type, e.Message)
}

// Client calls the RPC endpoint.
type Client struct {
	endpoint   string
	user       string
	password   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for endpoint using the given credential pair.
func NewClient(endpoint, user, password string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		user:     user,
		password: password,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call invokes fn with data and decodes T_DATA into out. out may be nil when
// the caller only cares about E_RETURN. A missing or non-array T_DATA leaves
// out untouched.
func (c *Client) Call(ctx context.Context, fn string, data, out any) error {
	body, err := json.Marshal(Request{Func: fn, Data: data})
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: error calling %s: %w", ErrTransport, fn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: unexpected status code: %d", ErrTransport, fn, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: error reading response body: %w", ErrTransport, err)
	}

	var envelope Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: error unmarshaling JSON: %w", ErrTransport, err)
	}

	if ret := envelope.Response.EReturn; ret != nil && (ret.Type == ReturnTypeError || ret.Type == ReturnTypeAbort) {
		return &ReturnError{Func: fn, Type: ret.Type, Message: ret.Message}
	}

	if out == nil || !isArray(envelope.Response.TData) {
		return nil
	}
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("rpc: out must be a non-nil pointer, got %T", out)
	}
	// decode into a fresh value so a malformed table never leaves partial rows in out
	fresh := reflect.New(target.Elem().Type())
	if err := json.Unmarshal(envelope.Response.TData, fresh.Interface()); err != nil {
		return nil
	}
	target.Elem().Set(fresh.Elem())

	return nil
}

// Stations fetches the station table for q.
func (c *Client) Stations(ctx context.Context, q StationQuery) ([]StationRecord, error) {
	var records []StationRecord
	if err := c.Call(ctx, FuncStationMap, q, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
