package layout

import (
	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
)

// Engine computes block positions. It is immutable; [Engine.WithZoom]
// returns a new engine.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg (after filling defaults) and returns an engine.
func NewEngine(cfg Config) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// WithZoom returns a copy of e using zoom z.
func (e *Engine) WithZoom(z float64) (*Engine, error) {
	if err := ValidateZoom(z); err != nil {
		return nil, err
	}
	cfg := e.cfg
	cfg.Zoom = z
	return &Engine{cfg: cfg}, nil
}

// Offsets returns the position of every block relative to the root's
// top-left corner. It returns nil for an empty store.
func (e *Engine) Offsets(s *block.Store) (map[string]geom.Point, error) {
	if s.IsEmpty() {
		return nil, nil
	}
	t, err := s.Tree()
	if err != nil {
		return nil, err
	}

	var build func(n *block.Tree, parent *tidyNode) *tidyNode
	build = func(n *block.Tree, parent *tidyNode) *tidyNode {
		tn := newTidyNode(n.ID, parent)
		for _, c := range n.Children {
			build(c, tn)
		}
		return tn
	}
	root := build(t, nil)
	tidy(root)

	breadth, depth := e.cfg.breadthStep(), e.cfg.depthStep()
	out := make(map[string]geom.Point, s.Len())
	var collect func(n *tidyNode)
	collect = func(n *tidyNode) {
		b, d := n.x*breadth, float64(n.depth)*depth
		if e.cfg.Orientation == LeftRight {
			out[n.id] = geom.Point{X: d, Y: b}
		} else {
			out[n.id] = geom.Point{X: b, Y: d}
		}
		for _, c := range n.children {
			collect(c)
		}
	}
	collect(root)
	return out, nil
}

// Layout writes Position and Size for every block, keeping the root where
// it is, and returns the connectors for the new positions. An empty store
// yields no connectors.
func (e *Engine) Layout(s *block.Store) ([]Connector, error) {
	offsets, err := e.Offsets(s)
	if err != nil {
		return nil, err
	}
	if len(offsets) == 0 {
		return nil, nil
	}
	root, ok := s.Root()
	if !ok {
		return nil, errors.InvalidState("store has no root")
	}
	anchor := root.Position
	for _, b := range s.Blocks() {
		b.Position = anchor.Add(offsets[b.ID])
		b.Size = e.SizeOf(b)
	}
	return e.Connectors(s), nil
}

// SizeOf returns the on-canvas size of b: its measured size when the
// renderer reported one, the configured node size otherwise, zoom applied.
func (e *Engine) SizeOf(b *block.Block) geom.Size {
	if !b.Measured.IsZero() {
		return b.Measured.Scale(e.cfg.Zoom)
	}
	return e.cfg.NodeSize()
}

// Translate moves every block by d without recomputing the layout and
// returns the connectors for the moved positions.
func (e *Engine) Translate(s *block.Store, d geom.Point) []Connector {
	for _, b := range s.Blocks() {
		b.Position = b.Position.Add(d)
	}
	return e.Connectors(s)
}
