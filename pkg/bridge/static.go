package bridge

import (
	"context"
	"sync"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/geom"
)

// Static renders placeholder handles. With a zero Size the handles report no
// natural size and layout uses the configured node size.
type Static struct {
	Size geom.Size
}

// Render returns a new [StaticHandle].
func (s Static) Render(ctx context.Context, nc NodeContext) (block.RenderHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &StaticHandle{ID: nc.ID, natural: s.Size, zoom: 1}, nil
}

// StaticHandle tracks where its block was last placed.
type StaticHandle struct {
	ID string

	mu       sync.Mutex
	rect     geom.Rect
	natural  geom.Size
	zoom     float64
	released bool
}

func (h *StaticHandle) Place(r geom.Rect) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rect = r
}

func (h *StaticHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
	return nil
}

// Size reports the natural size given to [Static].
func (h *StaticHandle) Size() geom.Size { return h.natural }

func (h *StaticHandle) Scale(zoom float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.zoom = zoom
}

// Rect returns the last placed rectangle.
func (h *StaticHandle) Rect() geom.Rect {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rect
}

// Zoom returns the last zoom factor.
func (h *StaticHandle) Zoom() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.zoom
}

// Released reports whether the handle has been released.
func (h *StaticHandle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}
