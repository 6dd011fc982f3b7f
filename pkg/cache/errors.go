package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/blockflow/pkg/httputil"
)

// Sentinel errors for caching operations.
var (
	// ErrNetwork is returned when a remote backend cannot be reached.
	ErrNetwork = errors.New("network error")

	// ErrCacheMiss is returned by helpers that require a hit.
	ErrCacheMiss = errors.New("cache miss")
)

// retryAttempts bounds how often a remote backend call is tried.
const retryAttempts = 3

// retryDelay is the first backoff interval of RetryWithBackoff.
var retryDelay = time.Second

// Retryable marks err as transient. A nil error stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &httputil.RetryableError{Err: err}
}

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool {
	var re *httputil.RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff runs fn with exponential backoff, retrying only errors
// marked with [Retryable].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return httputil.Retry(ctx, retryAttempts, retryDelay, fn)
}
