package framework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultStartupTimeout = time.Second * 10
	startupRetryInterval  = time.Millisecond * 100
	maxLoggedBodyLength   = 2000
)

// HarnessParams describes the service under test and how to talk to it.
type HarnessParams struct {
	// BaseURL is the root URL of the service; request paths are appended to it.
	BaseURL string

	// RunID identifies this test run. It is sent as the prefix of every X-Request-Id header.
	RunID string

	// StatusPath is requested at startup to verify that the service is reachable.
	StatusPath string

	// StartupTimeout bounds the reachability check.
	StartupTimeout time.Duration

	// RequestsPerSecond throttles outgoing requests. Zero means unlimited.
	RequestsPerSecond float64

	Client ClientConfig

	// HTTPClient, if set, is used instead of building one from Client.
	HTTPClient *http.Client
}

// TestHarness sends requests to the service under test. It holds no per-test state, so a
// single instance is shared by the whole test run.
type TestHarness struct {
	baseURL      string
	runID        string
	client       *http.Client
	limiter      *rate.Limiter
	logger       Logger
	requestCount int64
}

// NewTestHarness creates a TestHarness and verifies that the service is responding by
// querying its status path until it gets an HTTP response or the startup timeout elapses.
func NewTestHarness(
	ctx context.Context,
	params HarnessParams,
	debugLogger Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if params.BaseURL == "" {
		return nil, errors.New("service base URL was not specified")
	}
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}
	client := params.HTTPClient
	if client == nil {
		client = NewHTTPClient(params.Client)
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if params.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(params.RequestsPerSecond), 1)
	}

	h := &TestHarness{
		baseURL: strings.TrimSuffix(params.BaseURL, "/"),
		runID:   params.RunID,
		client:  client,
		limiter: limiter,
		logger:  debugLogger,
	}

	timeout := params.StartupTimeout
	if timeout <= 0 {
		timeout = defaultStartupTimeout
	}
	if err := h.awaitService(ctx, params.StatusPath, timeout, startupOutput); err != nil {
		return nil, err
	}
	return h, nil
}

// BaseURL returns the service base URL, without a trailing slash.
func (h *TestHarness) BaseURL() string {
	return h.baseURL
}

// RunID returns the identifier of this test run.
func (h *TestHarness) RunID() string {
	return h.runID
}

func (h *TestHarness) awaitService(ctx context.Context, path string, timeout time.Duration, output io.Writer) error {
	url := h.URL(path)
	fmt.Fprintf(output, "Connecting to service at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		status, err := h.probe(ctx, url)
		if err == nil && status < 500 {
			fmt.Fprintln(output)
			h.logger.Printf("Service at %s responded with status %d", url, status)
			return nil
		}
		if err == nil {
			err = fmt.Errorf("status code %d", status)
		}
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("service did not respond at %s; result of last query was: %w", url, err)
		}
		select {
		case <-ctx.Done():
		case <-time.After(startupRetryInterval):
		}
	}
}

func (h *TestHarness) probe(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

// URL returns the absolute URL for a path relative to the service base URL.
func (h *TestHarness) URL(path string) string {
	if path == "" {
		return h.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return h.baseURL + path
}

// Do sends a request to the service and reads the whole response.
//
// If body is non-nil it is marshaled to JSON, unless it is already a []byte or
// json.RawMessage, in which case it is sent as-is. A non-nil error means no HTTP response
// was received; any status code, including 4xx and 5xx, is returned as a Response.
func (h *TestHarness) Do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	logger Logger,
) (*Response, error) {
	if logger == nil {
		logger = h.logger
	}

	var data []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		data = b
	case json.RawMessage:
		data = b
	default:
		var err error
		if data, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("%s %s: cannot encode request body: %w", method, path, err)
		}
	}

	var reader io.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.URL(path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := h.nextRequestID()
	req.Header.Set("X-Request-Id", requestID)

	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if data != nil {
		logger.Printf(">> %s %s [%s] %s", method, path, requestID, truncateForLog(data))
	} else {
		logger.Printf(">> %s %s [%s]", method, path, requestID)
	}
	started := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		logger.Printf("<< %s %s failed: %s", method, path, err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: error reading response body: %w", method, path, err)
	}
	logger.Printf("<< %s %s %d (%s) %s", method, path, resp.StatusCode,
		time.Since(started).Round(time.Millisecond), truncateForLog(respData))

	return &Response{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respData,
	}, nil
}

func (h *TestHarness) nextRequestID() string {
	n := atomic.AddInt64(&h.requestCount, 1)
	if h.runID == "" {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s-%d", h.runID, n)
}

func truncateForLog(data []byte) string {
	if len(data) <= maxLoggedBodyLength {
		return string(data)
	}
	return fmt.Sprintf("%s... (%d bytes)", data[:maxLoggedBodyLength], len(data))
}
