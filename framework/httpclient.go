package framework

import (
	"net"
	"net/http"
	"time"
)

// ClientConfig holds configuration options for the HTTP client used to reach the service
// under test.
type ClientConfig struct {
	// Timeout specifies a time limit for each request, including reading the body.
	Timeout time.Duration

	// ResponseHeaderTimeout is how long to wait for response headers after writing the request.
	ResponseHeaderTimeout time.Duration

	// DialTimeout is the maximum amount of time a dial will wait for a connect to complete.
	DialTimeout time.Duration

	// TLSHandshakeTimeout specifies the maximum amount of time to wait for a TLS handshake.
	TLSHandshakeTimeout time.Duration

	// IdleConnTimeout is how long an idle keep-alive connection stays open.
	IdleConnTimeout time.Duration

	MaxIdleConnsPerHost int
}

// DefaultClientConfig returns the settings used when nothing is configured. The test suite
// makes one request at a time, so the idle pool is small.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:               30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DialTimeout:           10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   2,
	}
}

// NewHTTPClient creates an HTTP client with the provided configuration. Zero-valued fields
// fall back to DefaultClientConfig.
func NewHTTPClient(config ClientConfig) *http.Client {
	defaults := DefaultClientConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.ResponseHeaderTimeout <= 0 {
		config.ResponseHeaderTimeout = defaults.ResponseHeaderTimeout
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = defaults.DialTimeout
	}
	if config.TLSHandshakeTimeout <= 0 {
		config.TLSHandshakeTimeout = defaults.TLSHandshakeTimeout
	}
	if config.IdleConnTimeout <= 0 {
		config.IdleConnTimeout = defaults.IdleConnTimeout
	}
	if config.MaxIdleConnsPerHost <= 0 {
		config.MaxIdleConnsPerHost = defaults.MaxIdleConnsPerHost
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}
}
