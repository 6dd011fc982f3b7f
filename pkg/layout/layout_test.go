package layout

import (
	"math"
	"sort"
	"testing"

	"github.com/matzehuels/blockflow/pkg/block"
	bferrors "github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
)

type builder struct {
	t   *testing.T
	s   *block.Store
	ids map[string]string
}

func newBuilder(t *testing.T) *builder {
	return &builder{t: t, s: block.NewStore(block.WithIDGenerator(block.NewSequence("n"))), ids: map[string]string{}}
}

func (b *builder) add(name, parent string) *builder {
	b.t.Helper()
	var blk *block.Block
	var err error
	if parent == "" {
		blk, err = b.s.AddRoot(block.Data{"name": name})
	} else {
		blk, err = b.s.AddChild(b.ids[parent], block.Data{"name": name})
	}
	if err != nil {
		b.t.Fatalf("add %s: %v", name, err)
	}
	b.ids[name] = blk.ID
	return b
}

func (b *builder) pos(name string) geom.Point {
	blk, ok := b.s.Get(b.ids[name])
	if !ok {
		b.t.Fatalf("no block %s", name)
	}
	return blk.Position
}

func mustEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestLayoutSingleChildBelowRoot(t *testing.T) {
	b := newBuilder(t).add("R", "").add("A", "R")
	root, _ := b.s.Get(b.ids["R"])
	root.Position = geom.Point{X: 100, Y: 200}

	if _, err := mustEngine(t, DefaultConfig()).Layout(b.s); err != nil {
		t.Fatalf("Layout: %v", err)
	}

	if got := b.pos("R"); got != (geom.Point{X: 100, Y: 200}) {
		t.Errorf("root moved to %v", got)
	}
	if got := b.pos("A"); got != (geom.Point{X: 100, Y: 300}) {
		t.Errorf("child at %v, want {100 300}", got)
	}
	if got := root.Size; got != (geom.Size{Width: 320, Height: 80}) {
		t.Errorf("root size = %v", got)
	}
}

func TestLayoutSiblingSpacing(t *testing.T) {
	b := newBuilder(t).add("R", "").add("A", "R").add("B", "R").add("C", "R")
	e := mustEngine(t, DefaultConfig())

	if _, err := e.Layout(b.s); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want := map[string]geom.Point{
		"A": {X: -370, Y: 100},
		"B": {X: 0, Y: 100},
		"C": {X: 370, Y: 100},
	}
	for name, p := range want {
		if got := b.pos(name); got != p {
			t.Errorf("%s at %v, want %v", name, got, p)
		}
	}

	if _, err := b.s.RemoveNode(b.ids["A"]); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if _, err := e.Layout(b.s); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	gap := b.pos("C").X - b.pos("B").X
	if gap != 370 {
		t.Errorf("sibling gap after removal = %v, want 370", gap)
	}
	if mid := (b.pos("B").X + b.pos("C").X) / 2; mid != 0 {
		t.Errorf("children not centered under root: midpoint %v", mid)
	}
}

func TestLayoutCousinSeparation(t *testing.T) {
	b := newBuilder(t).
		add("R", "").
		add("A", "R").add("A1", "A").add("A2", "A").
		add("B", "R")

	if _, err := mustEngine(t, DefaultConfig()).Layout(b.s); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want := map[string]float64{"R": 0, "A": -185, "A1": -370, "A2": 0, "B": 185}
	for name, x := range want {
		if got := b.pos(name).X; got != x {
			t.Errorf("%s x = %v, want %v", name, got, x)
		}
	}
}

func TestLayoutNoOverlapAndCentered(t *testing.T) {
	b := newBuilder(t).
		add("R", "").
		add("A", "R").add("A1", "A").add("A2", "A").add("A3", "A").
		add("B", "R").
		add("C", "R").add("C1", "C").add("C11", "C1").add("C12", "C1").add("C13", "C1").
		add("D", "R").add("D1", "D")
	e := mustEngine(t, DefaultConfig())
	if _, err := e.Layout(b.s); err != nil {
		t.Fatalf("Layout: %v", err)
	}

	byLevel := map[float64][]float64{}
	for _, blk := range b.s.Blocks() {
		byLevel[blk.Position.Y] = append(byLevel[blk.Position.Y], blk.Position.X)
	}
	for y, xs := range byLevel {
		sort.Float64s(xs)
		for i := 1; i < len(xs); i++ {
			if xs[i]-xs[i-1] < 370-1e-9 {
				t.Errorf("level %v: nodes %v and %v closer than one slot", y, xs[i-1], xs[i])
			}
		}
	}

	for _, blk := range b.s.Blocks() {
		kids := b.s.Children(blk.ID)
		if len(kids) == 0 {
			continue
		}
		mid := (kids[0].Position.X + kids[len(kids)-1].Position.X) / 2
		if math.Abs(mid-blk.Position.X) > 1e-9 {
			t.Errorf("%v not centered over children: %v vs %v", blk.Data["name"], blk.Position.X, mid)
		}
	}
}

func TestLayoutDeterministic(t *testing.T) {
	build := func() *builder {
		return newBuilder(t).add("R", "").add("A", "R").add("A1", "A").add("B", "R").add("B1", "B").add("B2", "B")
	}
	e := mustEngine(t, DefaultConfig())

	first := build()
	second := build()
	if _, err := e.Layout(first.s); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Layout(second.s); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Layout(second.s); err != nil {
		t.Fatal(err)
	}
	for name := range first.ids {
		if first.pos(name) != second.pos(name) {
			t.Errorf("%s: %v vs %v", name, first.pos(name), second.pos(name))
		}
	}
}

func TestLayoutLeftRight(t *testing.T) {
	b := newBuilder(t).add("R", "").add("A", "R").add("B", "R")
	root, _ := b.s.Get(b.ids["R"])
	root.Position = geom.Point{X: 100, Y: 50}

	cfg := DefaultConfig()
	cfg.Orientation = LeftRight
	conns, err := mustEngine(t, cfg).Layout(b.s)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	if got := b.pos("A"); got != (geom.Point{X: 470, Y: 0}) {
		t.Errorf("A at %v, want {470 0}", got)
	}
	if got := b.pos("B"); got != (geom.Point{X: 470, Y: 100}) {
		t.Errorf("B at %v, want {470 100}", got)
	}

	if len(conns) != 2 {
		t.Fatalf("got %d connectors, want 2", len(conns))
	}
	// out of the root's right-center, half the margin across, down to B's center, into B
	if got, want := conns[1].Path(), "M420,90 H445 V140 H470"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestDefaultOrientation(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Orientation != TopDown {
		t.Errorf("default orientation = %q, want %q", cfg.Orientation, TopDown)
	}

	// a zero orientation behaves like the default
	b := newBuilder(t).add("R", "").add("A", "R")
	cfg.Orientation = ""
	if _, err := mustEngine(t, cfg).Layout(b.s); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if r, a := b.pos("R"), b.pos("A"); a.X != r.X || a.Y-r.Y != DefaultNodeHeight+DefaultMarginY {
		t.Errorf("child at %v, root at %v", a, r)
	}
}

func TestLayoutTopDownConnector(t *testing.T) {
	b := newBuilder(t).add("R", "").add("A", "R")
	conns, err := mustEngine(t, DefaultConfig()).Layout(b.s)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(conns) != 1 {
		t.Fatalf("got %d connectors", len(conns))
	}
	c := conns[0]
	if c.ParentID != b.ids["R"] || c.ChildID != b.ids["A"] {
		t.Errorf("connector %s -> %s", c.ParentID, c.ChildID)
	}
	if got, want := c.Path(), "M160,80 V90 V100"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLayoutZoom(t *testing.T) {
	b := newBuilder(t).add("R", "").add("A", "R")
	e, err := mustEngine(t, DefaultConfig()).WithZoom(0.5)
	if err != nil {
		t.Fatalf("WithZoom: %v", err)
	}
	if _, err := e.Layout(b.s); err != nil {
		t.Fatal(err)
	}
	if got := b.pos("A"); got != (geom.Point{X: 0, Y: 50}) {
		t.Errorf("A at %v, want {0 50}", got)
	}
	a, _ := b.s.Get(b.ids["A"])
	if a.Size != (geom.Size{Width: 160, Height: 40}) {
		t.Errorf("A size = %v", a.Size)
	}

	for _, z := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := e.WithZoom(z); !bferrors.Is(err, bferrors.ErrCodeInvalidArgument) {
			t.Errorf("WithZoom(%v) error = %v, want INVALID_ARGUMENT", z, err)
		}
	}
}

func TestLayoutMeasuredSize(t *testing.T) {
	b := newBuilder(t).add("R", "")
	root, _ := b.s.Get(b.ids["R"])
	root.Measured = geom.Size{Width: 200, Height: 60}

	e, _ := mustEngine(t, DefaultConfig()).WithZoom(2)
	if _, err := e.Layout(b.s); err != nil {
		t.Fatal(err)
	}
	if root.Size != (geom.Size{Width: 400, Height: 120}) {
		t.Errorf("measured size = %v", root.Size)
	}
}

func TestLayoutEmptyAndTranslate(t *testing.T) {
	e := mustEngine(t, DefaultConfig())
	conns, err := e.Layout(block.NewStore())
	if err != nil || conns != nil {
		t.Errorf("empty Layout() = %v, %v", conns, err)
	}

	b := newBuilder(t).add("R", "").add("A", "R")
	if _, err := e.Layout(b.s); err != nil {
		t.Fatal(err)
	}
	before := b.pos("A")
	moved := e.Translate(b.s, geom.Point{X: 10, Y: -5})
	if got := b.pos("A"); got != before.Add(geom.Point{X: 10, Y: -5}) {
		t.Errorf("A after Translate = %v", got)
	}
	if got := b.pos("R"); got != (geom.Point{X: 10, Y: -5}) {
		t.Errorf("root after Translate = %v", got)
	}
	if moved[0].Points[0] != (geom.Point{X: 170, Y: 75}) {
		t.Errorf("connector start after Translate = %v", moved[0].Points[0])
	}

	// a later layout keeps the panned root anchor
	if _, err := e.Layout(b.s); err != nil {
		t.Fatal(err)
	}
	if got := b.pos("R"); got != (geom.Point{X: 10, Y: -5}) {
		t.Errorf("root after re-layout = %v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative width", func(c *Config) { c.NodeWidth = -1 }, true},
		{"negative margin", func(c *Config) { c.MarginX = -1 }, true},
		{"negative zoom", func(c *Config) { c.Zoom = -2 }, true},
		{"bad orientation", func(c *Config) { c.Orientation = "diagonal" }, true},
		{"left-right", func(c *Config) { c.Orientation = LeftRight }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !bferrors.Is(err, bferrors.ErrCodeInvalidArgument) {
				t.Errorf("error code = %v, want INVALID_ARGUMENT", bferrors.GetCode(err))
			}
		})
	}
}

func TestConnectorsWithin(t *testing.T) {
	cs := []Connector{
		{ParentID: "a", ChildID: "b"},
		{ParentID: "b", ChildID: "c"},
		{ParentID: "x", ChildID: "a"},
	}
	got := ConnectorsWithin(cs, map[string]bool{"a": true, "b": true, "c": true})
	if len(got) != 2 {
		t.Errorf("ConnectorsWithin() = %v", got)
	}
}
