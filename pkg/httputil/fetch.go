package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single request made by [NewClient].
	DefaultTimeout = 10 * time.Second

	// MaxBodySize caps the size of a fetched document.
	MaxBodySize = 8 << 20
)

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors,
	// unexpected status codes).
	ErrNetwork = errors.New("network error")

	// ErrTooLarge is returned when a body exceeds [MaxBodySize].
	ErrTooLarge = errors.New("response body too large")
)

// NewClient creates an HTTP client with [DefaultTimeout].
func NewClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// IsURL reports whether source names an http or https document rather than
// a local file.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch performs a GET request and returns the response body. A nil client
// uses [NewClient].
func Fetch(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if client == nil {
		client = NewClient()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		var re *RetryableError
		if errors.As(err, &re) {
			re.After = retryAfter(resp.Header.Get("Retry-After"))
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	if len(body) > MaxBodySize {
		return nil, ErrTooLarge
	}
	return body, nil
}

// FetchWithRetry wraps [Fetch] in [RetryWithBackoff].
func FetchWithRetry(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		body, err = Fetch(ctx, client, rawURL)
		return err
	})
	return body, err
}

// PathOf returns the path component of rawURL, used to pick a decoder from
// the file extension.
func PathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.TrimSuffix(u.Path, "/")
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// retryAfter parses the delay-seconds form of a Retry-After header. HTTP
// dates and malformed values yield zero.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
