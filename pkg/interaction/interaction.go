package interaction

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/bridge"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/layout"
	"github.com/matzehuels/blockflow/pkg/observability"
)

// Interaction owns one block tree on one canvas. All methods are safe for
// concurrent use; structural mutations are serialized in call order.
type Interaction struct {
	mu sync.Mutex

	cfg    Config
	ids    block.IDGenerator
	clone  block.CloneFunc
	store  *block.Store
	engine *layout.Engine
	bridge *bridge.Bridge
	logger *log.Logger

	handles    []Handle
	connectors []layout.Connector

	state     State
	drag      *drag
	panOrigin geom.Point
	copyHeld  bool
	destroyed bool
}

// New creates an interaction with an empty store.
func New(cfg Config, opts ...Option) (*Interaction, error) {
	cfg.SetDefaults()
	engine, err := layout.NewEngine(cfg.Layout)
	if err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = block.UUIDGenerator{}
	}
	if o.clone == nil {
		o.clone = block.DeepClone
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	i := &Interaction{
		cfg:    cfg,
		ids:    o.ids,
		clone:  o.clone,
		engine: engine,
		bridge: bridge.New(o.renderer, o.bridge...),
		logger: o.logger,
	}
	i.store = i.newStore()
	return i, nil
}

func (i *Interaction) newStore() *block.Store {
	return block.NewStore(block.WithIDGenerator(i.ids), block.WithCloner(i.clone))
}

// =============================================================================
// Queries
// =============================================================================

// Config returns the configuration with the current zoom applied.
func (i *Interaction) Config() Config {
	i.mu.Lock()
	defer i.mu.Unlock()
	cfg := i.cfg
	cfg.Layout = i.engine.Config()
	return cfg
}

// State returns the current gesture state.
func (i *Interaction) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// CopyHeld reports whether the copy modifier is held.
func (i *Interaction) CopyHeld() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.copyHeld
}

// Len returns the number of blocks.
func (i *Interaction) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.store.Len()
}

// Block returns a copy of the block with id. The copy carries no handle.
func (i *Interaction) Block(id string) (block.Block, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	b, ok := i.store.Get(id)
	if !ok {
		return block.Block{}, false
	}
	out := *b
	out.Handle = nil
	return out, true
}

// Blocks returns copies of all blocks in store order, without handles.
func (i *Interaction) Blocks() []block.Block {
	i.mu.Lock()
	defer i.mu.Unlock()
	blocks := i.store.Blocks()
	out := make([]block.Block, len(blocks))
	for n, b := range blocks {
		out[n] = *b
		out[n].Handle = nil
	}
	return out
}

// Connectors returns the connectors of the last layout or pan.
func (i *Interaction) Connectors() []layout.Connector {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]layout.Connector(nil), i.connectors...)
}

// Scene returns a serializable snapshot of the laid-out tree.
func (i *Interaction) Scene() layout.Scene {
	i.mu.Lock()
	defer i.mu.Unlock()
	return layout.NewScene(i.store, append([]layout.Connector(nil), i.connectors...), i.engine.Config().Zoom)
}

// Export returns the nested form of the tree with copied payloads, or nil
// when the store is empty.
func (i *Interaction) Export() (*block.Tree, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	t, err := i.store.Tree()
	if err != nil || t == nil {
		return t, err
	}
	var cloneErr error
	t.Walk(func(n *block.Tree, _ int) bool {
		if cloneErr != nil {
			return false
		}
		n.Data, cloneErr = i.clone(n.Data)
		return true
	})
	if cloneErr != nil {
		return nil, errors.Wrap(errors.ErrCodeHostHook, cloneErr, "clone payload")
	}
	return t, nil
}

// ExportFlat returns the flat record form of the tree with copied payloads.
func (i *Interaction) ExportFlat() ([]block.Record, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	records := i.store.Records()
	for n := range records {
		data, err := i.clone(records[n].Data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeHostHook, err, "clone payload of %q", records[n].ID)
		}
		records[n].Data = data
	}
	return records, nil
}

// =============================================================================
// Commit machinery
// =============================================================================

// mutation applies a structural change to a candidate store. It returns the
// blocks that need rendering.
type mutation func(s *block.Store) (created []*block.Block, err error)

// commit runs mutate against a copy of the store and swaps the copy in when
// the host approves and every new block rendered. Callers hold i.mu.
func (i *Interaction) commit(ctx context.Context, op Op, target string, mutate mutation) (Outcome, error) {
	start := time.Now()
	out := Outcome{Op: op, Target: target}

	before, err := i.store.Tree()
	if err != nil {
		return out, err
	}
	cand := i.store.Clone()
	created, err := mutate(cand)
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
		i.logger.Debug("mutation declined", "op", op, "target", target)
		observability.Interaction().OnDecline(ctx, string(op))
		out.Declined = true
		return out, nil
	}

	if err := i.bridge.RenderBatch(ctx, created); err != nil {
		observability.Interaction().OnCommit(ctx, string(op), i.store.Len(), time.Since(start), err)
		return out, err
	}

	i.store = cand
	i.relayout()
	out.Committed = true
	for _, b := range created {
		out.Created = append(out.Created, b.ID)
	}
	i.logger.Debug("mutation committed", "op", op, "target", target, "created", len(created), "blocks", i.store.Len())

	err = i.bridge.NotifyUpdate()
	observability.Interaction().OnCommit(ctx, string(op), i.store.Len(), time.Since(start), err)
	return out, err
}

// removal is a mutation that drops blocks instead of creating them.
type removal func(s *block.Store) (removed []*block.Block, err error)

// commitRemoval runs remove against a copy of the store. OnRemove fires for
// every removed block before the swap; a failing hook aborts with the store
// untouched. Callers hold i.mu.
func (i *Interaction) commitRemoval(ctx context.Context, op Op, target string, remove removal) (Outcome, error) {
	start := time.Now()
	out := Outcome{Op: op, Target: target}

	before, err := i.store.Tree()
	if err != nil {
		return out, err
	}
	cand := i.store.Clone()
	removed, err := remove(cand)
	if err != nil || len(removed) == 0 {
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
		i.logger.Debug("removal declined", "op", op, "target", target)
		observability.Interaction().OnDecline(ctx, string(op))
		out.Declined = true
		return out, nil
	}

	if err := i.bridge.NotifyRemove(removed); err != nil {
		observability.Interaction().OnCommit(ctx, string(op), i.store.Len(), time.Since(start), err)
		return out, err
	}

	i.store = cand
	releaseErr := i.bridge.Release(removed)
	i.relayout()
	out.Committed = true
	for _, b := range removed {
		out.Removed = append(out.Removed, b.ID)
	}
	i.logger.Debug("removal committed", "op", op, "target", target, "removed", len(removed), "blocks", i.store.Len())

	err = stderrors.Join(releaseErr, i.bridge.NotifyUpdate())
	observability.Interaction().OnCommit(ctx, string(op), i.store.Len(), time.Since(start), err)
	return out, err
}

// relayout recomputes positions, moves every visual and redraws the
// connectors. Callers hold i.mu.
func (i *Interaction) relayout() {
	conns, err := i.engine.Layout(i.store)
	if err != nil {
		// the store is validated on every commit, so this means a bug
		i.logger.Error("layout failed", "error", err)
		return
	}
	i.connectors = conns
	i.bridge.Place(i.store.Blocks())
	i.bridge.Surface().DrawConnectors(conns)
}

func (i *Interaction) checkAlive() error {
	if i.destroyed {
		return errors.InvalidState("interaction has been destroyed")
	}
	return nil
}

// toCanvas converts a screen point to canvas coordinates.
func (i *Interaction) toCanvas(x, y float64) geom.Point {
	return geom.Point{X: x, Y: y}.Sub(i.cfg.Canvas.Origin())
}
