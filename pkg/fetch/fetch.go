// Package fetch retrieves remote and local assets. HTTP requests are retried
// with exponential backoff when the failure looks transient.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxSize caps a single download.
const DefaultMaxSize = 64 << 20

// Getter retrieves the bytes behind a location.
type Getter interface {
	Get(ctx context.Context, location string) ([]byte, error)
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the delay before the second attempt.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between attempts.
	MaxDelay time.Duration

	// BackoffMultiplier multiplies the delay after each attempt.
	BackoffMultiplier float64

	// Jitter randomizes each delay by up to this fraction in either
	// direction. Zero gives exact delays.
	Jitter float64
}

// DefaultRetryConfig returns the defaults used for font downloads.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       4,
		InitialDelay:      250 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.2,
	}
}

// backOff returns the delay policy for one Get. The context stops the
// policy as soon as it is done.
func (cfg RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0
	b.RandomizationFactor = cfg.Jitter
	if cfg.InitialDelay > 0 {
		b.InitialInterval = cfg.InitialDelay
	}
	if cfg.MaxDelay > 0 {
		b.MaxInterval = cfg.MaxDelay
	}
	if cfg.BackoffMultiplier >= 1 {
		b.Multiplier = cfg.BackoffMultiplier
	}
	retries := uint64(max(cfg.MaxAttempts, 1) - 1)
	return backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)
}

// StatusError is returned for an unsuccessful HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return e.StatusCode >= 500
}

// Options configures a Client.
type Options struct {
	// HTTP is the underlying client. Default: a client without a global timeout.
	HTTP *http.Client

	// Timeout bounds each attempt. Default: 30s.
	Timeout time.Duration

	// MaxSize caps the response body. Default: DefaultMaxSize.
	MaxSize int64

	Retry  RetryConfig
	Logger *slog.Logger

	// UserAgent is sent with every HTTP request.
	UserAgent string
}

// Client is a Getter for http(s) URLs, file:// URLs and plain paths.
type Client struct {
	opts Options
	// timer paces the waits between attempts; nil uses a real timer.
	timer backoff.Timer
}

// New returns a Client with defaults applied to opts.
func New(opts Options) *Client {
	if opts.HTTP == nil {
		opts.HTTP = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultRetryConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{opts: opts}
}

// Get returns the content at location. Remote locations are retried on
// transient failures; local files are read once.
func (c *Client) Get(ctx context.Context, location string) ([]byte, error) {
	if path, ok := localPath(location); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("fetch: read %s: %w", path, err)
		}
		return data, nil
	}

	attempts := 0
	op := func() ([]byte, error) {
		attempts++
		data, err := c.get(ctx, location)
		if err != nil && (ctx.Err() != nil || !IsTemporary(err)) {
			return nil, backoff.Permanent(err)
		}
		return data, err
	}
	notify := func(err error, wait time.Duration) {
		c.opts.Logger.Debug("fetch: transient failure", "url", location, "attempt", attempts, "retry-in", wait, "err", err)
	}

	data, err := backoff.RetryNotifyWithTimerAndData(op, c.opts.Retry.backOff(ctx), notify, c.timer)
	if err != nil && ctx.Err() == nil && IsTemporary(err) {
		return nil, fmt.Errorf("fetch: all %d attempts failed: %w", attempts, err)
	}
	return data, err
}

func (c *Client) get(ctx context.Context, location string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w", location, err)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.opts.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w", location, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: location, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: read body: %w", location, err)
	}
	if int64(len(data)) > c.opts.MaxSize {
		return nil, fmt.Errorf("fetch: %s: body exceeds %d bytes", location, c.opts.MaxSize)
	}
	return data, nil
}

// IsTemporary reports whether err is worth retrying: network failures,
// per-attempt timeouts and 408/425/429/5xx responses.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}

// localPath reports whether location names a file rather than a remote URL.
func localPath(location string) (string, bool) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || (len(u.Scheme) == 1 && filepath.VolumeName(location) != "") {
		return location, true
	}
	if strings.EqualFold(u.Scheme, "file") {
		return filepath.FromSlash(u.Path), true
	}
	return "", false
}

// IsRemote reports whether location is fetched over the network rather
// than read from disk.
func IsRemote(location string) bool {
	_, local := localPath(location)
	return !local
}
