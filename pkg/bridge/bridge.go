package bridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/observability"
)

// NodeContext is what the renderer learns about a block it has to mount.
type NodeContext struct {
	ID     string
	Data   block.Data
	IsRoot bool
}

// Renderer mounts the visual of one block. Render may block for as long as
// mounting takes; it must honor ctx cancellation.
type Renderer interface {
	Render(ctx context.Context, nc NodeContext) (block.RenderHandle, error)
}

// RendererFunc adapts a function to [Renderer].
type RendererFunc func(ctx context.Context, nc NodeContext) (block.RenderHandle, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, nc NodeContext) (block.RenderHandle, error) {
	return f(ctx, nc)
}

// Hooks are the host notifications. Every field is optional.
type Hooks struct {
	// ShouldUpdate approves a structural mutation. after is the tree the
	// mutation would produce, before the current one (nil when empty).
	// Returning false declines the mutation without error.
	ShouldUpdate func(after, before *block.Tree) bool
	// OnRemove is called once per removed block, before its handle is released.
	OnRemove func(data block.Data) error
	// OnUpdate is called after every committed mutation.
	OnUpdate func() error
	// OnZoom is called once per block after the zoom changed.
	OnZoom func(data block.Data) error
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithHooks sets the host notifications.
func WithHooks(h Hooks) Option {
	return func(b *Bridge) { b.hooks = h }
}

// WithSurface sets the drawing collaborator. A nil surface keeps [NopSurface].
func WithSurface(s Surface) Option {
	return func(b *Bridge) {
		if s != nil {
			b.surface = s
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// Bridge wraps a renderer, a surface and the host hooks, turning every host
// failure into a HOST_HOOK error.
type Bridge struct {
	renderer Renderer
	surface  Surface
	hooks    Hooks
	logger   *log.Logger
}

// New creates a bridge. A nil renderer is replaced with [Static] using
// zero-size handles, so layout falls back to the configured node size.
func New(r Renderer, opts ...Option) *Bridge {
	if r == nil {
		r = Static{}
	}
	b := &Bridge{
		renderer: r,
		surface:  NopSurface{},
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Surface returns the drawing collaborator.
func (b *Bridge) Surface() Surface { return b.surface }

// =============================================================================
// Rendering
// =============================================================================

// Render mounts a single block and returns its handle.
func (b *Bridge) Render(ctx context.Context, nc NodeContext) (h block.RenderHandle, err error) {
	defer recoverHook("render", &err)
	h, err = b.renderer.Render(ctx, nc)
	if err != nil {
		return nil, errors.HostHook(err, "render")
	}
	if h == nil {
		h = nopHandle{}
	}
	return h, nil
}

// RenderBatch mounts blocks concurrently. On success every block has its
// Handle set and, when the handle reports one, its Measured size. On failure
// no block is touched and every handle that did mount is released.
func (b *Bridge) RenderBatch(ctx context.Context, blocks []*block.Block) error {
	if len(blocks) == 0 {
		return nil
	}
	start := time.Now()
	handles := make([]block.RenderHandle, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	for i, blk := range blocks {
		nc := NodeContext{ID: blk.ID, Data: blk.Data, IsRoot: blk.IsRoot()}
		g.Go(func() error {
			h, err := b.Render(gctx, nc)
			if err != nil {
				return err
			}
			handles[i] = h
			return nil
		})
	}
	err := g.Wait()
	observability.Interaction().OnRenderBatch(ctx, len(blocks), time.Since(start), err)

	if err != nil {
		for _, h := range handles {
			if h != nil {
				_ = safeRelease(h)
			}
		}
		b.logger.Debug("render batch failed", "size", len(blocks), "error", err)
		return err
	}

	for i, blk := range blocks {
		blk.Handle = handles[i]
		if s, ok := handles[i].(block.Sizer); ok {
			blk.Measured = s.Size()
		}
	}
	b.logger.Debug("render batch", "size", len(blocks), "duration", time.Since(start))
	return nil
}

// Place moves every mounted visual to its block's current rectangle.
func (b *Bridge) Place(blocks []*block.Block) {
	for _, blk := range blocks {
		if blk.Handle != nil {
			blk.Handle.Place(blk.Rect())
		}
	}
}

// Scale forwards the zoom to every handle that follows it.
func (b *Bridge) Scale(blocks []*block.Block, zoom float64) {
	for _, blk := range blocks {
		if s, ok := blk.Handle.(block.Scaler); ok {
			s.Scale(zoom)
		}
	}
}

// Release unmounts the visuals of blocks and clears their handles. Every
// handle is released even if some fail; the failures are joined.
func (b *Bridge) Release(blocks []*block.Block) error {
	var errs []error
	for _, blk := range blocks {
		if blk.Handle == nil {
			continue
		}
		if err := safeRelease(blk.Handle); err != nil {
			errs = append(errs, errors.HostHook(err, "release"))
		}
		blk.Handle = nil
	}
	return stderrors.Join(errs...)
}

// =============================================================================
// Hooks
// =============================================================================

// ShouldUpdate asks the host to approve a mutation. A missing hook approves.
func (b *Bridge) ShouldUpdate(after, before *block.Tree) (ok bool, err error) {
	if b.hooks.ShouldUpdate == nil {
		return true, nil
	}
	defer recoverHook("shouldUpdate", &err)
	return b.hooks.ShouldUpdate(after, before), nil
}

// NotifyRemove calls OnRemove for every block in order and stops at the
// first failure.
func (b *Bridge) NotifyRemove(blocks []*block.Block) error {
	if b.hooks.OnRemove == nil {
		return nil
	}
	for _, blk := range blocks {
		if err := b.call("onRemove", func() error { return b.hooks.OnRemove(blk.Data) }); err != nil {
			return err
		}
	}
	return nil
}

// NotifyUpdate calls OnUpdate.
func (b *Bridge) NotifyUpdate() error {
	if b.hooks.OnUpdate == nil {
		return nil
	}
	return b.call("onUpdate", b.hooks.OnUpdate)
}

// NotifyZoom calls OnZoom for every block in order and stops at the first
// failure.
func (b *Bridge) NotifyZoom(blocks []*block.Block) error {
	if b.hooks.OnZoom == nil {
		return nil
	}
	for _, blk := range blocks {
		if err := b.call("onZoom", func() error { return b.hooks.OnZoom(blk.Data) }); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bridge) call(hook string, fn func() error) (err error) {
	defer recoverHook(hook, &err)
	if err := fn(); err != nil {
		return errors.HostHook(err, hook)
	}
	return nil
}

// recoverHook converts a panic in a host callback into a HOST_HOOK error.
func recoverHook(hook string, err *error) {
	if r := recover(); r != nil {
		*err = errors.HostHook(fmt.Errorf("panic: %v", r), hook)
	}
}

func safeRelease(h block.RenderHandle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Release()
}

type nopHandle struct{}

func (nopHandle) Place(geom.Rect) {}
func (nopHandle) Release() error  { return nil }
