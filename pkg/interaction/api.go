package interaction

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
)

// =============================================================================
// Mutations
// =============================================================================

func addRoot(data block.Data, at geom.Point) mutation {
	return func(s *block.Store) ([]*block.Block, error) {
		b, err := s.AddRoot(data)
		if err != nil {
			return nil, err
		}
		b.Position = at
		return []*block.Block{b}, nil
	}
}

func addChild(parentID string, data block.Data) mutation {
	return func(s *block.Store) ([]*block.Block, error) {
		b, err := s.AddChild(parentID, data)
		if err != nil {
			return nil, err
		}
		return []*block.Block{b}, nil
	}
}

func moveTo(id, parentID string) mutation {
	return func(s *block.Store) ([]*block.Block, error) {
		return nil, s.SetParent(id, parentID)
	}
}

func copyTo(id, parentID string) mutation {
	return func(s *block.Store) ([]*block.Block, error) {
		if _, ok := s.Get(parentID); !ok {
			return nil, errors.NotFound("parent block %q not found", parentID)
		}
		if s.Contains(id, parentID) {
			return nil, errors.InvalidArgument("cannot copy %q into its own subtree", id)
		}
		copies, err := s.CopySubtree(id)
		if err != nil {
			return nil, err
		}
		copies[0].ParentID = parentID
		if err := s.Append(copies...); err != nil {
			return nil, err
		}
		return copies, nil
	}
}

// =============================================================================
// Programmatic API
// =============================================================================

// AddRoot creates the root block at the configured root anchor. It fails
// with INVALID_STATE when the store is not empty.
func (i *Interaction) AddRoot(ctx context.Context, data block.Data) (Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return Outcome{Op: OpAddRoot}, err
	}
	return i.commit(ctx, OpAddRoot, "", addRoot(data, i.cfg.Anchor()))
}

// AddChild creates a child of parentID.
func (i *Interaction) AddChild(ctx context.Context, parentID string, data block.Data) (Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return Outcome{Op: OpAddChild}, err
	}
	return i.commit(ctx, OpAddChild, parentID, addChild(parentID, data))
}

// Reparent moves the subtree rooted at id under parentID by relinking id
// alone. Attaching a block to itself or a descendant fails with
// INVALID_ARGUMENT.
func (i *Interaction) Reparent(ctx context.Context, id, parentID string) (Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return Outcome{Op: OpMove}, err
	}
	return i.commit(ctx, OpMove, parentID, moveTo(id, parentID))
}

// CopyTo copies the subtree rooted at id under parentID. The original is
// left untouched.
func (i *Interaction) CopyTo(ctx context.Context, id, parentID string) (Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return Outcome{Op: OpCopy}, err
	}
	return i.commit(ctx, OpCopy, parentID, copyTo(id, parentID))
}

// RemoveNode removes a single block and relinks its children to its parent.
// Removing a root with one child promotes the child to root in place.
func (i *Interaction) RemoveNode(ctx context.Context, id string) (Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return Outcome{Op: OpRemoveNode}, err
	}
	return i.commitRemoval(ctx, OpRemoveNode, id, func(s *block.Store) ([]*block.Block, error) {
		b, err := s.RemoveNode(id)
		if err != nil {
			return nil, err
		}
		if b.IsRoot() {
			if r, ok := s.Root(); ok {
				r.Position = b.Position
			}
		}
		return []*block.Block{b}, nil
	})
}

// RemoveSubtree removes id and all of its descendants. An unknown id is a
// no-op.
func (i *Interaction) RemoveSubtree(ctx context.Context, id string) (Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return Outcome{Op: OpRemoveSubtree}, err
	}
	return i.commitRemoval(ctx, OpRemoveSubtree, id, func(s *block.Store) ([]*block.Block, error) {
		return s.RemoveSubtree(id), nil
	})
}

// Import replaces the whole tree. Nodes without an id get a fresh one. The
// root is placed at anchor, or at the configured root anchor when anchor is
// nil. Every block renders in one concurrent batch before the old blocks
// are released.
func (i *Interaction) Import(ctx context.Context, t *block.Tree, anchor *geom.Point) (Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := Outcome{Op: OpImport}
	if err := i.checkAlive(); err != nil {
		return out, err
	}
	if t == nil {
		return out, errors.InvalidArgument("cannot import a nil tree")
	}

	blocks, err := block.FromTree(t, i.ids)
	if err != nil {
		return out, err
	}
	for _, b := range blocks {
		if b.Data, err = i.clone(b.Data); err != nil {
			return out, errors.Wrap(errors.ErrCodeHostHook, err, "clone payload of %q", b.ID)
		}
	}
	cand := i.newStore()
	if err := cand.Load(blocks); err != nil {
		return out, err
	}

	before, err := i.store.Tree()
	if err != nil {
		return out, err
	}
	after, err := cand.Tree()
	if err != nil {
		return out, err
	}
	ok, err := i.bridge.ShouldUpdate(after, before)
	if err != nil {
		return out, err
	}
	if !ok {
		out.Declined = true
		return out, nil
	}
	if err := i.bridge.RenderBatch(ctx, cand.Blocks()); err != nil {
		return out, err
	}

	i.cancelGesture()
	releaseErr := i.bridge.Release(i.store.Blocks())
	i.store = cand
	root, _ := cand.Root()
	if anchor != nil {
		root.Position = *anchor
	} else {
		root.Position = i.cfg.Anchor()
	}
	i.relayout()

	out.Committed = true
	for _, b := range blocks {
		out.Created = append(out.Created, b.ID)
	}
	i.logger.Debug("tree imported", "blocks", len(blocks))
	return out, stderrors.Join(releaseErr, i.bridge.NotifyUpdate())
}

// Zoom returns the current zoom factor.
func (i *Interaction) Zoom() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.engine.Config().Zoom
}

// SetZoom changes the zoom factor, scales every visual, calls OnZoom for
// every block and lays the tree out again. z must be positive. A failing
// OnZoom hook restores the previous zoom.
func (i *Interaction) SetZoom(ctx context.Context, z float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return err
	}
	engine, err := i.engine.WithZoom(z)
	if err != nil {
		return err
	}

	prev := i.engine
	blocks := i.store.Blocks()
	i.engine = engine
	i.bridge.Scale(blocks, z)
	if err := i.bridge.NotifyZoom(blocks); err != nil {
		i.engine = prev
		i.bridge.Scale(blocks, prev.Config().Zoom)
		return err
	}
	i.relayout()
	i.logger.Debug("zoom changed", "zoom", z)
	return nil
}

// Pan translates every block by (dx, dy) without a full layout.
func (i *Interaction) Pan(dx, dy float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return err
	}
	i.panBy(geom.Point{X: dx, Y: dy})
	return nil
}

// Clear releases every visual and empties the store. OnRemove is not
// called, and the validation hook is not consulted.
func (i *Interaction) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return err
	}
	return i.clear()
}

// Destroy clears the interaction and detaches it from its host. Every later
// call fails with INVALID_STATE.
func (i *Interaction) Destroy() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return err
	}
	err := i.clear()
	i.handles = nil
	i.destroyed = true
	return err
}

func (i *Interaction) clear() error {
	i.cancelGesture()
	err := i.bridge.Release(i.store.Reset())
	i.connectors = nil
	i.bridge.Surface().DrawConnectors(nil)
	return err
}
