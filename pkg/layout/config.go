package layout

import (
	"math"

	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
)

// Orientation selects which canvas axis carries tree depth.
type Orientation string

const (
	// TopDown puts the root at the top and grows children downward, one
	// nodeHeight+marginY per level. Connectors leave the parent's bottom
	// center and enter the child's top center. It is the default.
	TopDown Orientation = "top-down"
	// LeftRight puts the root on the left and grows children to the right,
	// one nodeWidth+marginX per level. Connectors are elbows from the
	// parent's right center to the child's left center, turning half a
	// margin past the parent.
	LeftRight Orientation = "left-right"
)

// Default sizes in canvas pixels.
const (
	DefaultNodeWidth  = 320.0
	DefaultNodeHeight = 80.0
	DefaultMarginX    = 50.0
	DefaultMarginY    = 20.0
	DefaultZoom       = 1.0
)

// Config holds node extents, margins and zoom.
type Config struct {
	NodeWidth   float64     `json:"node_width" yaml:"node_width" koanf:"node_width"`
	NodeHeight  float64     `json:"node_height" yaml:"node_height" koanf:"node_height"`
	MarginX     float64     `json:"margin_x" yaml:"margin_x" koanf:"margin_x"`
	MarginY     float64     `json:"margin_y" yaml:"margin_y" koanf:"margin_y"`
	Zoom        float64     `json:"zoom" yaml:"zoom" koanf:"zoom"`
	Orientation Orientation `json:"orientation" yaml:"orientation" koanf:"orientation"`
}

// DefaultConfig returns the default 320x80 node with 50/20 margins at zoom 1.
func DefaultConfig() Config {
	c := Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.NodeWidth == 0 {
		c.NodeWidth = DefaultNodeWidth
	}
	if c.NodeHeight == 0 {
		c.NodeHeight = DefaultNodeHeight
	}
	if c.MarginX == 0 {
		c.MarginX = DefaultMarginX
	}
	if c.MarginY == 0 {
		c.MarginY = DefaultMarginY
	}
	if c.Zoom == 0 {
		c.Zoom = DefaultZoom
	}
	if c.Orientation == "" {
		c.Orientation = TopDown
	}
}

// Validate checks that sizes and zoom are positive and finite.
func (c Config) Validate() error {
	if !positive(c.NodeWidth) || !positive(c.NodeHeight) {
		return errors.InvalidArgument("node size must be positive, got %gx%g", c.NodeWidth, c.NodeHeight)
	}
	if c.MarginX < 0 || c.MarginY < 0 || math.IsNaN(c.MarginX) || math.IsNaN(c.MarginY) {
		return errors.InvalidArgument("margins must not be negative, got %g/%g", c.MarginX, c.MarginY)
	}
	if err := ValidateZoom(c.Zoom); err != nil {
		return err
	}
	switch c.Orientation {
	case TopDown, LeftRight:
		return nil
	default:
		return errors.InvalidArgument("unknown orientation %q", c.Orientation)
	}
}

// ValidateZoom rejects zero, negative and non-finite zoom factors.
func ValidateZoom(z float64) error {
	if !positive(z) {
		return errors.InvalidArgument("zoom must be positive, got %g", z)
	}
	return nil
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

// NodeSize returns the zoomed node extent.
func (c Config) NodeSize() geom.Size {
	return geom.Size{Width: c.NodeWidth * c.Zoom, Height: c.NodeHeight * c.Zoom}
}

// depthStep is the distance between consecutive tree levels.
func (c Config) depthStep() float64 {
	if c.Orientation == LeftRight {
		return (c.NodeWidth + c.MarginX) * c.Zoom
	}
	return (c.NodeHeight + c.MarginY) * c.Zoom
}

// breadthStep is the distance between adjacent sibling slots.
func (c Config) breadthStep() float64 {
	if c.Orientation == LeftRight {
		return (c.NodeHeight + c.MarginY) * c.Zoom
	}
	return (c.NodeWidth + c.MarginX) * c.Zoom
}
