// Package pipeline runs block trees through load → layout → render without
// an interactive host.
//
// The CLI, the HTTP host and the MCP tools all need the same steps: read a
// tree (or replay an event script), lay it out with the same engine the
// interactive canvas uses, and turn the resulting scene into artifacts.
// Centralizing them here keeps the outputs identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a nested or flat tree file, or take a tree or script from
//     the options
//  2. Layout: import the tree into a headless [interaction.Interaction],
//     replay the script if there is one, and capture the [layout.Scene]
//  3. Render: produce SVG, DOT, JSON, PDF or PNG artifacts from the scene
//
// Layouts and artifacts are cached by content hash; a script run is never
// cached because its outcomes matter as much as its scene.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "tree.yaml",
//	    Formats: []render.Format{render.FormatSVG, render.FormatDOT},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[render.FormatSVG]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/cache"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/interaction"
	"github.com/matzehuels/blockflow/pkg/layout"
	"github.com/matzehuels/blockflow/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultLabelKey is the payload key used for block labels.
	DefaultLabelKey = "label"

	// DefaultPNGScale renders PNGs at twice the scene resolution.
	DefaultPNGScale = 2.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one of Tree, Script or Source supplies the input,
	// checked in that order.
	Source  string              `json:"source,omitempty"`
	Tree    *block.Tree         `json:"tree,omitempty"`
	Script  *interaction.Script `json:"script,omitempty"`
	Refresh bool                `json:"refresh,omitempty"`

	// Layout options
	Layout layout.Config `json:"layout"`
	Anchor *geom.Point   `json:"anchor,omitempty"`

	// Render options
	Formats   []render.Format `json:"formats,omitempty"`
	LabelKey  string          `json:"label_key,omitempty"`
	Highlight []string        `json:"highlight,omitempty"`
	Scale     float64         `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the final tree: the loaded one, or the one a script produced.
	Tree *block.Tree

	// TreeHash is the content hash of the loaded tree.
	TreeHash string

	// Scene is the laid-out tree.
	Scene layout.Scene

	// Outcomes holds the pointer-up outcomes of a script run.
	Outcomes []interaction.Outcome

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[render.Format][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BlockCount int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that an input is present.
func (o *Options) ValidateForLoad() error {
	if o.Tree == nil && o.Script == nil && o.Source == "" {
		return errors.InvalidArgument("a source file, tree or script is required")
	}
	o.setLogger()
	return nil
}

// ValidateForLayout applies layout defaults and validates the config.
func (o *Options) ValidateForLayout() error {
	o.Layout.SetDefaults()
	o.setLogger()
	return o.Layout.Validate()
}

// ValidateForRender applies render defaults and validates formats and scale.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []render.Format{render.FormatSVG}
	}
	if o.LabelKey == "" {
		o.LabelKey = DefaultLabelKey
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	o.setLogger()
	for _, f := range o.Formats {
		if !f.Valid() {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, dot, json, pdf, png)", f)
		}
	}
	if o.Scale < 0 {
		return errors.InvalidArgument("scale must be positive, got %v", o.Scale)
	}
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// InteractionConfig returns the headless interaction settings for a run.
func (o *Options) InteractionConfig() interaction.Config {
	cfg := interaction.Config{Layout: o.Layout, RootAnchor: o.Anchor}
	cfg.SetDefaults()
	return cfg
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Orientation: string(o.Layout.Orientation),
		NodeWidth:   o.Layout.NodeWidth,
		NodeHeight:  o.Layout.NodeHeight,
		MarginX:     o.Layout.MarginX,
		MarginY:     o.Layout.MarginY,
		Zoom:        o.Layout.Zoom,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(f render.Format) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:    string(f),
		LabelKey:  o.LabelKey,
		Highlight: o.Highlight,
	}
	if f == render.FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

// sourceName identifies the input in logs and hooks.
func (o *Options) sourceName() string {
	switch {
	case o.Tree != nil:
		return "tree"
	case o.Script != nil:
		return "script"
	default:
		return o.Source
	}
}
