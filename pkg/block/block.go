package block

import "github.com/matzehuels/blockflow/pkg/geom"

// NoParent is the ParentID of the root block.
const NoParent = ""

// Data is the opaque payload the host attaches to a block.
// The core never interprets it beyond passing it to host callbacks.
type Data map[string]any

// RenderHandle is the host's reference to a block's mounted visual.
// It is exclusively owned by its block and released when the block is destroyed.
type RenderHandle interface {
	// Place moves the visual to an absolute canvas rectangle.
	Place(r geom.Rect)
	// Release unmounts the visual.
	Release() error
}

// Sizer is implemented by handles that can report the natural (unzoomed)
// size of their visual after mount.
type Sizer interface {
	Size() geom.Size
}

// Scaler is implemented by handles whose visual follows the canvas zoom.
type Scaler interface {
	Scale(zoom float64)
}

// Block is one node of the managed tree.
type Block struct {
	ID       string
	ParentID string
	Data     Data

	// Position is the absolute top-left corner on the canvas.
	Position geom.Point
	// Size is the current on-canvas extent (zoom applied).
	Size geom.Size
	// Measured is the natural size reported by the renderer, zero when the
	// configured node size applies.
	Measured geom.Size

	Handle RenderHandle
}

// IsRoot reports whether b has no parent.
func (b *Block) IsRoot() bool { return b.ParentID == NoParent }

// Rect returns the block's canvas rectangle.
func (b *Block) Rect() geom.Rect { return geom.RectAt(b.Position, b.Size) }

// clone returns a shallow copy of b. Data and Handle are shared.
func (b *Block) clone() *Block {
	c := *b
	return &c
}
