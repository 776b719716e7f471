// Package config loads the settings for a contract test run from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvBaseURL               = "CONTACTS_API_URL"
	EnvMaxContacts           = "CONTACTS_MAX"
	EnvPollTimeout           = "CONTACTS_POLL_TIMEOUT"
	EnvPollInterval          = "CONTACTS_POLL_INTERVAL"
	EnvStartupTimeout        = "CONTACTS_STARTUP_TIMEOUT"
	EnvRateLimit             = "CONTACTS_RATE_LIMIT"
	EnvHTTPTimeout           = "HTTP_TIMEOUT"
	EnvResponseHeaderTimeout = "HTTP_RESPONSE_HEADER_TIMEOUT"
)

// Defaults applied when a variable is unset or empty.
const (
	DefaultMaxContacts           = 30
	DefaultPollTimeout           = 10 * time.Second
	DefaultPollInterval          = 200 * time.Millisecond
	DefaultStartupTimeout        = 10 * time.Second
	DefaultHTTPTimeout           = 30 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
)

// Config holds the settings for a test run.
type Config struct {
	// BaseURL is the root URL of the contact service, e.g. "https://host/".
	BaseURL string

	// MaxContacts is the cap the service is expected to enforce.
	MaxContacts int

	PollTimeout    time.Duration
	PollInterval   time.Duration
	StartupTimeout time.Duration

	// RequestsPerSecond throttles requests to the service; zero means unlimited.
	RequestsPerSecond float64

	HTTPTimeout           time.Duration
	ResponseHeaderTimeout time.Duration
}

// Load reads an optional dotenv file and then the process environment. Variables that are
// already set in the environment take precedence over the file. A missing file is not an
// error; pass an empty path to skip it.
//
// BaseURL may be empty after Load if neither source set it; callers that accept it from
// elsewhere (such as a command-line flag) should call Validate after filling it in.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		BaseURL: strings.TrimSpace(os.Getenv(EnvBaseURL)),
	}
	var err error
	if cfg.MaxContacts, err = getEnvInt(EnvMaxContacts, DefaultMaxContacts); err != nil {
		return nil, err
	}
	if cfg.PollTimeout, err = getEnvDuration(EnvPollTimeout, DefaultPollTimeout); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = getEnvDuration(EnvPollInterval, DefaultPollInterval); err != nil {
		return nil, err
	}
	if cfg.StartupTimeout, err = getEnvDuration(EnvStartupTimeout, DefaultStartupTimeout); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond, err = getEnvFloat(EnvRateLimit, 0); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getEnvDuration(EnvHTTPTimeout, DefaultHTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.ResponseHeaderTimeout, err = getEnvDuration(EnvResponseHeaderTimeout, DefaultResponseHeaderTimeout); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable for a test run.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("service URL is required (set %s or use -url)", EnvBaseURL)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid service URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid service URL %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid service URL %q: missing host", c.BaseURL)
	}
	if c.MaxContacts < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", EnvMaxContacts, c.MaxContacts)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%s must not be negative", EnvRateLimit)
	}
	return nil
}

// getEnvDuration accepts either plain integers (interpreted as seconds) or Go duration
// strings such as "500ms" or "1m30s".
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("%s must not be negative, got %q", key, val)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, val)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %q", key, val)
	}
	return d, nil
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q", key, val)
	}
	return n, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %q", key, val)
	}
	return f, nil
}
