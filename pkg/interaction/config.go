package interaction

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/bridge"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/layout"
)

// Defaults for the interaction settings.
const (
	DefaultHandleClass    = "blockflow-handle"
	DefaultCopyKey        = "alt"
	DefaultHighlightColor = "#217ce8"
	DefaultCanvasWidth    = 1280.0
	DefaultCanvasHeight   = 720.0
	DefaultAttrPrefix     = "data-blockflow-"
)

// Config configures an Interaction.
type Config struct {
	Layout layout.Config

	// HandleClass selects which registered handles start a new-node drag.
	HandleClass string
	// CopyKey is the modifier that turns a subtree move into a copy.
	CopyKey string
	// HighlightColor is the armed-border colour passed on to surfaces.
	HighlightColor string

	// Canvas is the canvas rectangle in screen coordinates.
	Canvas geom.Rect
	// RootAnchor is where a programmatically created or imported root is
	// placed. Nil selects (100, 0.3*canvas height).
	RootAnchor *geom.Point
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	c := Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	c.Layout.SetDefaults()
	if c.HandleClass == "" {
		c.HandleClass = DefaultHandleClass
	}
	if c.CopyKey == "" {
		c.CopyKey = DefaultCopyKey
	}
	if c.HighlightColor == "" {
		c.HighlightColor = DefaultHighlightColor
	}
	if c.Canvas.Width == 0 {
		c.Canvas.Width = DefaultCanvasWidth
	}
	if c.Canvas.Height == 0 {
		c.Canvas.Height = DefaultCanvasHeight
	}
}

// Anchor returns the root anchor in canvas coordinates.
func (c Config) Anchor() geom.Point {
	if c.RootAnchor != nil {
		return *c.RootAnchor
	}
	return geom.Point{X: 100, Y: 0.3 * c.Canvas.Height}
}

// Option configures the collaborators of an Interaction.
type Option func(*options)

type options struct {
	renderer bridge.Renderer
	bridge   []bridge.Option
	ids      block.IDGenerator
	clone    block.CloneFunc
	logger   *log.Logger
}

// WithRenderer sets the host renderer. The default is [bridge.Static].
func WithRenderer(r bridge.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// WithSurface sets the drawing collaborator.
func WithSurface(s bridge.Surface) Option {
	return func(o *options) { o.bridge = append(o.bridge, bridge.WithSurface(s)) }
}

// WithHooks sets the host hooks.
func WithHooks(h bridge.Hooks) Option {
	return func(o *options) { o.bridge = append(o.bridge, bridge.WithHooks(h)) }
}

// WithIDGenerator sets the per-instance id source. The default generates
// UUIDs.
func WithIDGenerator(g block.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithCloner sets the payload copy function used for subtree copies and
// handle payloads. The default is [block.DeepClone].
func WithCloner(fn block.CloneFunc) Option {
	return func(o *options) { o.clone = fn }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
		o.bridge = append(o.bridge, bridge.WithLogger(l))
	}
}
