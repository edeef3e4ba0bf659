package ecp

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/rokuctl/internal/logging"
)

const (
	// DefaultPort is the TCP port Roku devices serve ECP on
	DefaultPort = 8060

	// DefaultTimeout bounds every ECP request, including reading the body
	DefaultTimeout = 5 * time.Second
)

// Client issues ECP requests against Roku devices.
// The target host is supplied per call; the client keeps no per-device state.
type Client struct {
	// Port is the device ECP port (default: 8060)
	Port int

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a new ECP client with the default port and timeout
func NewClient() *Client {
	return &Client{
		Port:       DefaultPort,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// Fetch performs a GET against path on host and returns the raw body.
// Any status other than 200 yields an ErrTypeHTTP error.
func (c *Client) Fetch(ctx context.Context, host, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, host, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(host, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(host, "failed to read response body", err)
	}
	return body, nil
}

// Command performs a POST against path on host, discarding the response body.
// It returns the status code, which is always 200 when err is nil.
func (c *Client) Command(ctx context.Context, host, path string) (int, error) {
	resp, err := c.do(ctx, http.MethodPost, host, path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, NewHTTPError(host, resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// do builds the request URL, sends a single request and logs the outcome.
func (c *Client) do(ctx context.Context, method, host, path string) (*http.Response, error) {
	endpoint, err := c.URL(host, path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, NewInvalidAddressError(host, err)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logging.Debug("ECP request failed",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, NewNetworkError(strings.TrimSpace(host), method+" request failed", err)
	}

	logging.LogRequest(method, endpoint, resp.StatusCode, time.Since(start))
	return resp, nil
}

// URL returns the absolute ECP URL for path on host.
// path must already be escaped; see KeypressPath and friends.
func (c *Client) URL(host, path string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", NewInvalidAddressError(host, nil)
	}

	port := c.Port
	if port == 0 {
		port = DefaultPort
	}

	raw := "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + path
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", NewInvalidAddressError(host, err)
	}
	return raw, nil
}

// KeypressPath returns the command path that presses and releases key
func KeypressPath(key string) string {
	return "/keypress/" + url.PathEscape(key)
}

// KeydownPath returns the command path that holds key down
func KeydownPath(key string) string {
	return "/keydown/" + url.PathEscape(key)
}

// KeyupPath returns the command path that releases a held key
func KeyupPath(key string) string {
	return "/keyup/" + url.PathEscape(key)
}

// LiteralPath returns the keypress path that types a single character
func LiteralPath(ch rune) string {
	return "/keypress/Lit_" + url.PathEscape(string(ch))
}

// LaunchPath returns the command path that launches the app with the given id
func LaunchPath(appID string) string {
	return "/launch/" + url.PathEscape(appID)
}
