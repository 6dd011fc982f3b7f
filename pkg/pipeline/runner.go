package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/cache"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/interaction"
	"github.com/matzehuels/blockflow/pkg/layout"
	"github.com/matzehuels/blockflow/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the HTTP host and the MCP tools share it to avoid duplicating
// caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the lifetime of cached scenes and artifacts. Zero keeps
	// cache.TTLLayout and cache.TTLArtifact.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Instrument(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	tree, err := Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	if result.TreeHash, err = treeHash(tree, opts.Anchor); err != nil {
		return nil, err
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	sc, final, outcomes, layoutHit, err := r.LayoutWithCacheInfo(ctx, tree, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Tree = final
	result.Scene = sc
	result.Outcomes = outcomes
	result.Stats.BlockCount = len(sc.Blocks)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"blocks", len(sc.Blocks),
		"orientation", opts.Layout.Orientation,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, sc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo lays tree out with caching and reports whether the
// scene came from the cache. Script runs bypass the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, tree *block.Tree, opts Options) (layout.Scene, *block.Tree, []interaction.Outcome, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Scene{}, nil, nil, false, err
	}

	if opts.Script != nil {
		sc, final, outcomes, err := ComputeScene(ctx, tree, opts)
		return sc, final, outcomes, false, err
	}

	hash, err := treeHash(tree, opts.Anchor)
	if err != nil {
		return layout.Scene{}, nil, nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Scene
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, tree, nil, true, nil
			}
			// fall through and recompute on a corrupt entry
		}
	}

	sc, final, _, err := ComputeScene(ctx, tree, opts)
	if err != nil {
		return layout.Scene{}, nil, nil, false, err
	}

	if data, err := json.Marshal(sc); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout))
	}
	return sc, final, nil, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, tree *block.Tree, opts Options) (layout.Scene, error) {
	sc, _, _, _, err := r.LayoutWithCacheInfo(ctx, tree, opts)
	return sc, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every requested artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, sc layout.Scene, opts Options) (map[render.Format][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	sceneHash, err := cache.HashJSON(sc)
	if err != nil {
		return nil, false, fmt.Errorf("hash scene for cache key: %w", err)
	}

	artifacts := make(map[render.Format][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, sc, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact))
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, sc layout.Scene, opts Options) (map[render.Format][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, sc, opts)
	return artifacts, err
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// treeHash identifies a layout input. The anchor is part of it because it
// moves every block of the scene.
func treeHash(t *block.Tree, anchor *geom.Point) (string, error) {
	h, err := cache.HashJSON(struct {
		Tree   *block.Tree `json:"tree"`
		Anchor *geom.Point `json:"anchor"`
	}{t, anchor})
	if err != nil {
		return "", fmt.Errorf("hash tree: %w", err)
	}
	return h, nil
}
