package layout

import (
	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/geom"
)

// Placed is a positioned block in a [Scene].
type Placed struct {
	ID       string     `json:"id" yaml:"id"`
	ParentID string     `json:"parentId" yaml:"parentId"`
	Data     block.Data `json:"data" yaml:"data"`
	Rect     geom.Rect  `json:"rect" yaml:"rect"`
}

// Scene is a serializable snapshot of a laid-out store, consumed by the
// renderers and the outer hosts.
type Scene struct {
	Blocks     []Placed    `json:"blocks" yaml:"blocks"`
	Connectors []Connector `json:"connectors" yaml:"connectors"`
	Zoom       float64     `json:"zoom" yaml:"zoom"`
	Bounds     geom.Rect   `json:"bounds" yaml:"bounds"`
}

// NewScene captures the current geometry of s.
func NewScene(s *block.Store, connectors []Connector, zoom float64) Scene {
	blocks := s.Blocks()
	sc := Scene{
		Blocks:     make([]Placed, len(blocks)),
		Connectors: connectors,
		Zoom:       zoom,
	}
	rects := make([]geom.Rect, len(blocks))
	for i, b := range blocks {
		rects[i] = b.Rect()
		sc.Blocks[i] = Placed{ID: b.ID, ParentID: b.ParentID, Data: b.Data, Rect: rects[i]}
	}
	sc.Bounds = geom.Bounds(rects...)
	if sc.Connectors == nil {
		sc.Connectors = []Connector{}
	}
	return sc
}

// Find returns the placed block with the given id.
func (sc Scene) Find(id string) (Placed, bool) {
	for _, p := range sc.Blocks {
		if p.ID == id {
			return p, true
		}
	}
	return Placed{}, false
}
