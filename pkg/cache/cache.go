// Package cache stores rendered artifacts and computed layouts.
//
// Rendering a large tree through Graphviz or rsvg-convert is slow compared
// to laying it out, so the headless pipeline keys every artifact on a hash
// of its inputs and consults a [Cache] first.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared cache for the HTTP host
//   - [NullCache]: caching disabled
//
// [Instrument] wraps any backend so hits, misses and writes reach the
// registered observability hooks.
//
// # Keys
//
// A [Keyer] derives keys from content hashes and render options. Keys are
// namespaced ("layout:", "artifact:") and [ScopedKeyer] adds a further prefix
// for callers that share one backend.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLLayout is the lifetime of a cached scene.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is the lifetime of a cached SVG, DOT, PDF or PNG artifact.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies the scene computed for a tree under a layout config.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies one rendered artifact of a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout parameters that change a scene.
type LayoutKeyOpts struct {
	Orientation string  `json:"orientation"`
	NodeWidth   float64 `json:"node_width"`
	NodeHeight  float64 `json:"node_height"`
	MarginX     float64 `json:"margin_x"`
	MarginY     float64 `json:"margin_y"`
	Zoom        float64 `json:"zoom"`
}

// ArtifactKeyOpts are the render parameters that change an artifact.
type ArtifactKeyOpts struct {
	Format    string   `json:"format"`
	LabelKey  string   `json:"label_key,omitempty"`
	Highlight []string `json:"highlight,omitempty"`
	Scale     float64  `json:"scale,omitempty"`
}

// DefaultKeyer hashes the options together with the input hash.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}
