package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/matzehuels/blockflow/pkg/block"
	bferrors "github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
)

// trackingRenderer hands out StaticHandles and remembers them.
type trackingRenderer struct {
	mu      sync.Mutex
	handles []*StaticHandle
	fail    string
	size    geom.Size
}

func (r *trackingRenderer) Render(_ context.Context, nc NodeContext) (block.RenderHandle, error) {
	if nc.ID == r.fail {
		return nil, errors.New("mount failed")
	}
	h := &StaticHandle{ID: nc.ID, natural: r.size, zoom: 1}
	r.mu.Lock()
	r.handles = append(r.handles, h)
	r.mu.Unlock()
	return h, nil
}

func testBlocks() []*block.Block {
	return []*block.Block{
		{ID: "b1", Data: block.Data{"v": 1}},
		{ID: "b2", ParentID: "b1", Data: block.Data{"v": 2}},
		{ID: "b3", ParentID: "b1", Data: block.Data{"v": 3}},
	}
}

func TestRenderBatch(t *testing.T) {
	r := &trackingRenderer{size: geom.Size{Width: 100, Height: 40}}
	b := New(r)
	blocks := testBlocks()

	if err := b.RenderBatch(context.Background(), blocks); err != nil {
		t.Fatalf("RenderBatch: %v", err)
	}
	if len(r.handles) != 3 {
		t.Fatalf("rendered %d blocks, want 3", len(r.handles))
	}
	for _, blk := range blocks {
		if blk.Handle == nil {
			t.Errorf("%s has no handle", blk.ID)
		}
		if blk.Measured != (geom.Size{Width: 100, Height: 40}) {
			t.Errorf("%s measured = %v", blk.ID, blk.Measured)
		}
	}
}

func TestRenderBatchFailureReleasesMounted(t *testing.T) {
	r := &trackingRenderer{fail: "b2"}
	b := New(r)
	blocks := testBlocks()

	err := b.RenderBatch(context.Background(), blocks)
	if !bferrors.Is(err, bferrors.ErrCodeHostHook) {
		t.Fatalf("RenderBatch error = %v, want HOST_HOOK", err)
	}
	for _, blk := range blocks {
		if blk.Handle != nil {
			t.Errorf("%s got a handle from a failed batch", blk.ID)
		}
	}
	for _, h := range r.handles {
		if !h.Released() {
			t.Errorf("handle %s was mounted but not released", h.ID)
		}
	}
}

func TestRenderRecoversPanic(t *testing.T) {
	b := New(RendererFunc(func(context.Context, NodeContext) (block.RenderHandle, error) {
		panic("renderer exploded")
	}))
	_, err := b.Render(context.Background(), NodeContext{ID: "x"})
	if !bferrors.Is(err, bferrors.ErrCodeHostHook) {
		t.Errorf("Render error = %v, want HOST_HOOK", err)
	}
}

func TestRenderNilHandle(t *testing.T) {
	b := New(RendererFunc(func(context.Context, NodeContext) (block.RenderHandle, error) {
		return nil, nil
	}))
	h, err := b.Render(context.Background(), NodeContext{ID: "x"})
	if err != nil || h == nil {
		t.Errorf("Render() = %v, %v; want placeholder handle", h, err)
	}
}

func TestShouldUpdate(t *testing.T) {
	tests := []struct {
		name    string
		hook    func(after, before *block.Tree) bool
		want    bool
		wantErr bool
	}{
		{"missing hook approves", nil, true, false},
		{"accept", func(_, _ *block.Tree) bool { return true }, true, false},
		{"decline", func(_, _ *block.Tree) bool { return false }, false, false},
		{"panic", func(_, _ *block.Tree) bool { panic("no") }, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(nil, WithHooks(Hooks{ShouldUpdate: tt.hook}))
			got, err := b.ShouldUpdate(&block.Tree{ID: "a"}, nil)
			if got != tt.want {
				t.Errorf("ShouldUpdate() = %v, want %v", got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("ShouldUpdate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNotifyRemoveStopsAtFirstFailure(t *testing.T) {
	var seen []any
	b := New(nil, WithHooks(Hooks{
		OnRemove: func(d block.Data) error {
			seen = append(seen, d["v"])
			if d["v"] == 2 {
				return errors.New("still in use")
			}
			return nil
		},
	}))

	err := b.NotifyRemove(testBlocks())
	if !bferrors.Is(err, bferrors.ErrCodeHostHook) {
		t.Fatalf("NotifyRemove error = %v, want HOST_HOOK", err)
	}
	if len(seen) != 2 {
		t.Errorf("OnRemove called for %v, want the first two blocks", seen)
	}
}

func TestNotifyZoomAndUpdate(t *testing.T) {
	var zoomed, updates int
	b := New(nil, WithHooks(Hooks{
		OnZoom:   func(block.Data) error { zoomed++; return nil },
		OnUpdate: func() error { updates++; return nil },
	}))
	if err := b.NotifyZoom(testBlocks()); err != nil {
		t.Fatal(err)
	}
	if err := b.NotifyUpdate(); err != nil {
		t.Fatal(err)
	}
	if zoomed != 3 || updates != 1 {
		t.Errorf("zoomed=%d updates=%d, want 3 and 1", zoomed, updates)
	}

	// no hooks configured
	plain := New(nil)
	if err := plain.NotifyZoom(testBlocks()); err != nil {
		t.Errorf("NotifyZoom without hook: %v", err)
	}
	if err := plain.NotifyUpdate(); err != nil {
		t.Errorf("NotifyUpdate without hook: %v", err)
	}
}

type failingHandle struct{ StaticHandle }

func (*failingHandle) Release() error { return errors.New("busy") }

func TestReleaseJoinsErrors(t *testing.T) {
	ok := &StaticHandle{ID: "ok"}
	blocks := []*block.Block{
		{ID: "a", Handle: &failingHandle{}},
		{ID: "b", Handle: ok},
		{ID: "c"},
	}
	err := New(nil).Release(blocks)
	if !bferrors.Is(err, bferrors.ErrCodeHostHook) {
		t.Errorf("Release error = %v, want HOST_HOOK", err)
	}
	if !ok.Released() {
		t.Error("later handle not released after an earlier failure")
	}
	for _, blk := range blocks {
		if blk.Handle != nil {
			t.Errorf("%s still holds a handle", blk.ID)
		}
	}
}

func TestPlaceAndScale(t *testing.T) {
	h := &StaticHandle{ID: "a", zoom: 1}
	blocks := []*block.Block{{ID: "a", Position: geom.Point{X: 5, Y: 6}, Size: geom.Size{Width: 10, Height: 20}, Handle: h}}
	b := New(nil)
	b.Place(blocks)
	b.Scale(blocks, 2)
	if h.Rect() != (geom.Rect{Left: 5, Top: 6, Width: 10, Height: 20}) {
		t.Errorf("placed at %v", h.Rect())
	}
	if h.Zoom() != 2 {
		t.Errorf("zoom = %v", h.Zoom())
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.ShowProxy(Proxy{Kind: ProxySubtree, Source: "b2"})
	r.Arm("b3")
	r.Arm("b4")
	r.Disarm()
	r.RemoveProxy()

	if _, ok := r.Proxy(); ok {
		t.Error("proxy still visible")
	}
	if r.Armed() != "" {
		t.Errorf("armed = %q", r.Armed())
	}
	want := []string{"show subtree", "arm b3", "arm b4", "disarm", "remove"}
	got := r.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}
