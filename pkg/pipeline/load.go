package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/httputil"
	blockio "github.com/matzehuels/blockflow/pkg/io"
	"github.com/matzehuels/blockflow/pkg/observability"
)

// Load returns the input tree of opts. A script supplies its own starting
// tree, which may be nil when the script builds the tree from scratch. A
// Source that is an http or https URL is fetched with retries.
func Load(ctx context.Context, opts Options) (*block.Tree, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	source := opts.sourceName()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	t, err := load(ctx, opts)
	hooks.OnLoadComplete(ctx, source, t.Size(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("loaded tree", "source", source, "blocks", t.Size())
	return t, nil
}

func load(ctx context.Context, opts Options) (*block.Tree, error) {
	switch {
	case opts.Tree != nil:
		return opts.Tree, nil
	case opts.Script != nil:
		return opts.Script.Tree, nil
	case httputil.IsURL(opts.Source):
		return fetchTree(ctx, opts.Source)
	default:
		return blockio.ImportTree(opts.Source)
	}
}

func fetchTree(ctx context.Context, rawURL string) (*block.Tree, error) {
	body, err := httputil.FetchWithRetry(ctx, nil, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return blockio.ReadTree(bytes.NewReader(body), blockio.FormatFromPath(httputil.PathOf(rawURL)))
}
