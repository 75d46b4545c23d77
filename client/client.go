// Package client implements the SenAI backend HTTP client: GET, POST, and
// PUT with API-key header injection, per-verb timeouts, status-to-error
// mapping, and bounded retries around every call.
//
// The failure contract is string-shaped: every method returns either the
// response body or an "Error:"-prefixed sentinel. Details of each failure
// go to the errorhandler log, not to the caller.
package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tranvanmanh9325/SenAI/errorhandler"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

const (
	userAgent = "SenAI-Client/1.0"

	readTimeout = 30 * time.Second
	// POST and PUT can trigger long backend work (an LLM call), so write
	// verbs get double the read timeout.
	writeTimeout = 60 * time.Second

	maxRetries = 3
)

// Client talks to one SenAI backend. Safe for concurrent use; base URL and
// API key may be swapped at runtime and take effect on the next request.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	apiKey  string

	readClient  *http.Client
	writeClient *http.Client

	errors *errorhandler.Handler
	logger *zap.Logger

	retryDelay time.Duration
}

// New creates a client for the backend at baseURL. An empty baseURL
// selects DefaultBaseURL; a bare host gets an http scheme. A nil handler
// or logger disables the respective reporting path.
func New(baseURL, apiKey string, handler *errorhandler.Handler, logger *zap.Logger) *Client {
	if handler == nil {
		handler = errorhandler.NewNop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &http.Transport{
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	return &Client{
		baseURL:     normalizeBaseURL(baseURL),
		apiKey:      apiKey,
		readClient:  &http.Client{Timeout: readTimeout, Transport: transport},
		writeClient: &http.Client{Timeout: writeTimeout, Transport: transport},
		errors:      handler,
		logger:      logger.With(zap.String("component", "client")),
		retryDelay:  time.Second,
	}
}

func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "/")
	if raw == "" {
		return DefaultBaseURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	return raw
}

// SetBaseURL swaps the backend address. In-flight requests keep the URL
// they started with.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = normalizeBaseURL(baseURL)
	c.mu.Unlock()
}

// BaseURL returns the current backend address.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetAPIKey swaps the API key sent in the X-API-Key header.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

// APIKey returns the current API key.
func (c *Client) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// snapshot reads both mutable fields under one lock so a request never
// mixes an old URL with a new key.
func (c *Client) snapshot() (baseURL, apiKey string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL, c.apiKey
}

// Get performs a retried GET against the given endpoint path.
func (c *Client) Get(endpoint string) string {
	baseURL, apiKey := c.snapshot()
	requestURL := baseURL + endpoint
	return c.errors.RetryOperationWithResult(func() string {
		return c.do(http.MethodGet, requestURL, "", apiKey, c.readClient)
	}, maxRetries, c.retryDelay, "GET request failed for "+requestURL)
}

// Post performs a retried POST with a JSON body.
func (c *Client) Post(endpoint, body string) string {
	baseURL, apiKey := c.snapshot()
	requestURL := baseURL + endpoint
	return c.errors.RetryOperationWithResult(func() string {
		return c.do(http.MethodPost, requestURL, body, apiKey, c.writeClient)
	}, maxRetries, c.retryDelay, "POST request failed for "+requestURL)
}

// Put performs a retried PUT with an optional JSON body.
func (c *Client) Put(endpoint, body string) string {
	baseURL, apiKey := c.snapshot()
	requestURL := baseURL + endpoint
	return c.errors.RetryOperationWithResult(func() string {
		return c.do(http.MethodPut, requestURL, body, apiKey, c.writeClient)
	}, maxRetries, c.retryDelay, "PUT request failed for "+requestURL)
}

// do performs one HTTP attempt. Failures come back as sentinel strings so
// the retry layer can decide eligibility from the message; they never
// escape as Go errors.
func (c *Client) do(method, requestURL, body, apiKey string, hc *http.Client) string {
	if _, err := url.ParseRequestURI(requestURL); err != nil {
		c.errors.LogError(errorhandler.ErrorInfo{
			Category:         errorhandler.CategoryNetwork,
			Severity:         errorhandler.SeverityError,
			Message:          fmt.Sprintf("Failed to parse URL for %s: %s", method, requestURL),
			Context:          "client.do",
			TechnicalDetails: err.Error(),
		})
		return "Error: Failed to parse URL"
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, requestURL, reader)
	if err != nil {
		c.errors.LogError(errorhandler.ErrorInfo{
			Category:         errorhandler.CategoryNetwork,
			Severity:         errorhandler.SeverityError,
			Message:          fmt.Sprintf("Failed to open %s request for %s", method, requestURL),
			Context:          "client.do",
			TechnicalDetails: err.Error(),
		})
		return "Error: Failed to open request"
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return c.transportFailure(method, requestURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.errors.Log(errorhandler.CategoryNetwork, errorhandler.SeverityError,
			fmt.Sprintf("HTTP error %d for %s %s", resp.StatusCode, method, requestURL), "client.do")
		return fmt.Sprintf("Error: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.errors.LogError(errorhandler.ErrorInfo{
			Category:         errorhandler.CategoryNetwork,
			Severity:         errorhandler.SeverityError,
			Message:          fmt.Sprintf("Failed to read response body for %s %s", method, requestURL),
			Context:          "client.do",
			TechnicalDetails: err.Error(),
		})
		return "Error: Failed to read response"
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("url", requestURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_length", len(data)))

	return string(data)
}

// transportFailure maps a transport error to its sentinel string and logs
// it with the platform error number when one is attached. Timeouts carry a
// marker in the sentinel so the retry layer classifies them as such.
func (c *Client) transportFailure(method, requestURL string, err error) string {
	info := errorhandler.ErrorInfo{
		Category:         errorhandler.CategoryNetwork,
		Severity:         errorhandler.SeverityError,
		Context:          "client.do",
		TechnicalDetails: err.Error(),
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		info.SystemErrorCode = uint32(errno)
	}

	result := "Error: Failed to send request"
	var netErr net.Error
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		info.Message = fmt.Sprintf("Request timeout for %s %s", method, requestURL)
		result = "Error: Failed to send request (timeout)"
	case errors.Is(err, syscall.ECONNREFUSED), errors.As(err, &dnsErr):
		info.Message = fmt.Sprintf("Failed to connect for %s %s", method, requestURL)
		result = "Error: Failed to connect"
	default:
		info.Message = fmt.Sprintf("Failed to send %s request for %s", method, requestURL)
	}
	c.errors.LogError(info)
	return result
}
