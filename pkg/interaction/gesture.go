package interaction

import (
	"context"
	"strings"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/bridge"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/layout"
)

// drag is the state of an active new-node or subtree drag.
type drag struct {
	kind   bridge.ProxyKind
	source string
	data   block.Data

	offset geom.Point // pointer minus rect origin
	origin geom.Rect  // rect at pointer-down
	rect   geom.Rect  // current rect, canvas coordinates

	excluded   map[string]bool
	blocks     []layout.Placed
	connectors []layout.Connector

	target string // armed attach target
}

func (d *drag) proxy(copyHeld bool) bridge.Proxy {
	delta := d.rect.Origin().Sub(d.origin.Origin())
	p := bridge.Proxy{
		Kind:   d.kind,
		Source: d.source,
		Data:   d.data,
		Rect:   d.rect,
		Offset: d.offset,
		Copy:   copyHeld && d.kind == bridge.ProxySubtree,
	}
	for _, b := range d.blocks {
		b.Rect = b.Rect.Translate(delta)
		p.Blocks = append(p.Blocks, b)
	}
	for _, c := range d.connectors {
		p.Connectors = append(p.Connectors, c.Translate(delta))
	}
	return p
}

// PointerDown starts a gesture depending on what is under the pointer: a
// handle starts a new-node drag, a block a subtree drag, anything else a
// canvas pan. It is ignored while another gesture is active.
func (i *Interaction) PointerDown(ctx context.Context, ev PointerEvent) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return err
	}
	if i.state != Idle {
		i.logger.Debug("pointer down ignored", "state", i.state)
		return nil
	}

	p := i.toCanvas(ev.X, ev.Y)
	target, err := i.resolve(ev)
	if err != nil {
		return err
	}

	switch target.Kind {
	case TargetHandle:
		h, _ := i.draggable(target.ID)
		i.startNewNode(h, p)
	case TargetBlock:
		i.startSubtree(target.ID, p)
	default:
		i.state = PanningCanvas
		i.panOrigin = p
	}
	i.logger.Debug("gesture started", "state", i.state, "target", target)
	return nil
}

// PointerMove moves the drag proxy and re-arms the attach target, or pans
// the canvas.
func (i *Interaction) PointerMove(ctx context.Context, ev PointerEvent) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return err
	}

	p := i.toCanvas(ev.X, ev.Y)
	switch i.state {
	case PanningCanvas:
		i.panBy(p.Sub(i.panOrigin))
		i.panOrigin = p
	case DraggingNewNode, DraggingExistingSubtree:
		i.follow(p)
		i.bridge.Surface().MoveProxy(i.drag.proxy(i.copyHeld))
	}
	return nil
}

// PointerUp ends the active gesture. Drags commit against the target armed
// at the release position; a drag without a target is discarded.
func (i *Interaction) PointerUp(ctx context.Context, ev PointerEvent) (Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkAlive(); err != nil {
		return Outcome{Op: OpNone}, err
	}

	p := i.toCanvas(ev.X, ev.Y)
	switch i.state {
	case PanningCanvas:
		i.panBy(p.Sub(i.panOrigin))
		i.state = Idle
		return Outcome{Op: OpPan}, nil
	case DraggingNewNode, DraggingExistingSubtree:
		i.follow(p)
		d := i.drag
		i.cancelGesture()
		if d.kind == bridge.ProxyNewNode {
			return i.dropNewNode(ctx, d)
		}
		return i.dropSubtree(ctx, d)
	default:
		return Outcome{Op: OpNone}, nil
	}
}

// KeyDown tracks the copy modifier. Other keys are ignored.
func (i *Interaction) KeyDown(key string) {
	i.setCopy(key, true)
}

// KeyUp releases the copy modifier. Other keys are ignored.
func (i *Interaction) KeyUp(key string) {
	i.setCopy(key, false)
}

func (i *Interaction) setCopy(key string, held bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !strings.EqualFold(key, i.cfg.CopyKey) || i.copyHeld == held {
		return
	}
	i.copyHeld = held
	if i.state == DraggingExistingSubtree {
		i.bridge.Surface().MoveProxy(i.drag.proxy(held))
	}
}

// =============================================================================
// Gesture helpers (callers hold i.mu)
// =============================================================================

func (i *Interaction) resolve(ev PointerEvent) (Target, error) {
	switch ev.Target.Kind {
	case TargetHandle:
		if _, ok := i.draggable(ev.Target.ID); !ok {
			return Target{}, errors.NotFound("no draggable handle %q", ev.Target.ID)
		}
		return ev.Target, nil
	case TargetBlock:
		if _, ok := i.store.Get(ev.Target.ID); !ok {
			return Target{}, errors.NotFound("block %q not found", ev.Target.ID)
		}
		return ev.Target, nil
	case TargetCanvas:
		return ev.Target, nil
	}

	screen := geom.Point{X: ev.X, Y: ev.Y}
	for _, h := range i.handles {
		if h.HasClass(i.cfg.HandleClass) && h.Rect.Contains(screen) {
			return Target{Kind: TargetHandle, ID: h.ID}, nil
		}
	}
	p := i.toCanvas(ev.X, ev.Y)
	for _, b := range i.store.Blocks() {
		if b.Rect().Contains(p) {
			return Target{Kind: TargetBlock, ID: b.ID}, nil
		}
	}
	return Target{Kind: TargetCanvas}, nil
}

func (i *Interaction) startNewNode(h Handle, p geom.Point) {
	rect := h.Rect.Translate(geom.Point{}.Sub(i.cfg.Canvas.Origin()))
	if rect.Size().IsZero() {
		rect = geom.RectAt(rect.Origin(), i.engine.Config().NodeSize())
	}
	i.drag = &drag{
		kind:   bridge.ProxyNewNode,
		source: h.ID,
		data:   h.Data,
		offset: p.Sub(rect.Origin()),
		origin: rect,
		rect:   rect,
	}
	i.state = DraggingNewNode
	i.bridge.Surface().ShowProxy(i.drag.proxy(false))
}

func (i *Interaction) startSubtree(id string, p geom.Point) {
	root, _ := i.store.Get(id)
	sub := i.store.GetSubtree(id)
	excluded := make(map[string]bool, len(sub))
	placed := make([]layout.Placed, len(sub))
	for n, b := range sub {
		excluded[b.ID] = true
		placed[n] = layout.Placed{ID: b.ID, ParentID: b.ParentID, Data: b.Data, Rect: b.Rect()}
	}
	rect := root.Rect()
	i.drag = &drag{
		kind:       bridge.ProxySubtree,
		source:     id,
		offset:     p.Sub(rect.Origin()),
		origin:     rect,
		rect:       rect,
		excluded:   excluded,
		blocks:     placed,
		connectors: layout.ConnectorsWithin(i.connectors, excluded),
	}
	i.state = DraggingExistingSubtree
	i.bridge.Surface().ShowProxy(i.drag.proxy(i.copyHeld))
}

// follow moves the drag rect under the pointer and re-arms the target.
func (i *Interaction) follow(p geom.Point) {
	d := i.drag
	d.rect = geom.RectAt(p.Sub(d.offset), d.rect.Size())
	target := i.hitTest(d.rect, d.excluded)
	if target == d.target {
		return
	}
	d.target = target
	if target == "" {
		i.bridge.Surface().Disarm()
	} else {
		i.bridge.Surface().Arm(target)
	}
}

// hitTest returns the first block in store order overlapping r.
func (i *Interaction) hitTest(r geom.Rect, excluded map[string]bool) string {
	for _, b := range i.store.Blocks() {
		if excluded[b.ID] {
			continue
		}
		if geom.Overlaps(b.Rect(), r) {
			return b.ID
		}
	}
	return ""
}

// cancelGesture drops any active gesture and its visuals.
func (i *Interaction) cancelGesture() {
	if i.drag != nil {
		i.bridge.Surface().RemoveProxy()
		if i.drag.target != "" {
			i.bridge.Surface().Disarm()
		}
	}
	i.drag = nil
	i.state = Idle
}

func (i *Interaction) panBy(delta geom.Point) {
	if delta == (geom.Point{}) {
		return
	}
	i.connectors = i.engine.Translate(i.store, delta)
	i.bridge.Place(i.store.Blocks())
	i.bridge.Surface().DrawConnectors(i.connectors)
}

func (i *Interaction) dropNewNode(ctx context.Context, d *drag) (Outcome, error) {
	if !i.store.IsEmpty() && d.target == "" {
		i.logger.Debug("new node dropped without target", "handle", d.source)
		return Outcome{Op: OpNone}, nil
	}
	data, err := i.clone(d.data)
	if err != nil {
		return Outcome{Op: OpNone}, errors.Wrap(errors.ErrCodeHostHook, err, "clone payload of handle %q", d.source)
	}
	if i.store.IsEmpty() {
		return i.commit(ctx, OpAddRoot, "", addRoot(data, d.rect.Origin()))
	}
	return i.commit(ctx, OpAddChild, d.target, addChild(d.target, data))
}

func (i *Interaction) dropSubtree(ctx context.Context, d *drag) (Outcome, error) {
	if d.target == "" {
		i.logger.Debug("subtree dropped without target", "block", d.source)
		return Outcome{Op: OpNone}, nil
	}
	if i.copyHeld {
		return i.commit(ctx, OpCopy, d.target, copyTo(d.source, d.target))
	}
	return i.commit(ctx, OpMove, d.target, moveTo(d.source, d.target))
}
