// Package published reads gallery records from a spreadsheet that has been
// published to the web as CSV.
package published

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"swingtube/internal/core"
	ports "swingtube/internal/sheets"
)

// maxBodyBytes bounds the CSV document read from the feed.
const maxBodyBytes = 8 << 20

var (
	// ErrStatus is returned when the feed answers with a non-2xx status.
	ErrStatus = errors.New("unexpected feed status")
	// ErrTooLarge is returned when the feed body exceeds maxBodyBytes.
	ErrTooLarge = errors.New("feed body too large")
)

type Client struct {
	url  string
	http *http.Client
}

// Ensure interface conformance
var _ ports.RecordReader = (*Client)(nil)

// New returns a client for the published CSV at url. timeout bounds the
// whole request; zero leaves it to the transport.
func New(url string, timeout time.Duration) *Client {
	hc := newHTTPClientWithPooling()
	hc.Timeout = timeout
	return NewWithHTTPClient(url, hc)
}

// NewWithHTTPClient is like New but uses the given client as is.
func NewWithHTTPClient(url string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{url: url, http: hc}
}

// URL returns the feed location.
func (c *Client) URL() string { return c.url }

// ReadRecords fetches the feed once and parses it. Transport failures,
// non-2xx answers and truncated bodies are all reported as errors; the
// caller does not need to tell them apart.
func (c *Client) ReadRecords(ctx context.Context) ([]core.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBodyBytes)
	}
	return ports.ParseCSV(string(body)), nil
}

// newHTTPClientWithPooling creates an HTTP client tuned for repeated
// fetches of the same Google-hosted document.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{Transport: transport}
}
