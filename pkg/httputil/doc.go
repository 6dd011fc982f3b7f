// Package httputil fetches remote tree and script documents.
//
// # Overview
//
// The CLI and the pipeline accept an http:// or https:// URL wherever they
// accept a tree file. This package provides the plumbing for that:
//
//   - [Fetch]: a bounded GET that maps HTTP status codes to errors
//   - [Retry]: automatic retry with exponential backoff
//
// # Retry
//
// [Fetch] marks transient failures as [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// [Retry] re-runs such failures with a doubling delay; any other error is
// returned immediately:
//
//	var body []byte
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    var err error
//	    body, err = httputil.Fetch(ctx, client, url)
//	    return err
//	})
//
// Fetched documents are not cached here. The pipeline caches the scene and
// the rendered artifacts keyed by the document's content instead.
package httputil
