// Package httpclient provides the proxy-aware HTTP client used by the
// embed fallback probe.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/proxy"
)

// Client is a configurable HTTP client
type Client struct {
	client    *http.Client
	transport *http.Transport
	userAgent string
	logger    zerolog.Logger
}

// Config represents HTTP client configuration
type Config struct {
	Timeout   time.Duration
	ProxyURL  string
	UserAgent string
}

// New creates a new HTTP client with the given configuration
func New(cfg Config, logger zerolog.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: 10,
	}

	if cfg.ProxyURL != "" {
		if proxyURL, err := url.Parse(cfg.ProxyURL); err == nil {
			switch proxyURL.Scheme {
			case "http", "https":
				transport.Proxy = http.ProxyURL(proxyURL)
			case "socks5":
				if dialer, err := proxy.FromURL(proxyURL, proxy.Direct); err == nil {
					transport.DialContext = dialer.(proxy.ContextDialer).DialContext
				}
			}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		client:    &http.Client{Transport: transport, Timeout: timeout},
		transport: transport,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Get performs a GET request with custom headers
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	c.logger.Debug().Str("url", rawURL).Msg("Making HTTP request")
	return c.client.Do(req)
}

// GetJSON performs a GET request and decodes the JSON body into v
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, v interface{}) error {
	resp, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

// BuildURL builds a URL with query parameters
func BuildURL(baseURL string, params map[string]string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	q := u.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Close releases idle connections
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}
