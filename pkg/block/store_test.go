package block

import (
	"errors"
	"testing"

	bferrors "github.com/matzehuels/blockflow/pkg/errors"
)

// newTestStore builds R -> (A -> (A1, A2), B, C) with sequential ids.
func newTestStore(t *testing.T) (*Store, map[string]string) {
	t.Helper()
	s := NewStore(WithIDGenerator(NewSequence("b")))
	ids := map[string]string{}

	add := func(name, parent string) {
		var b *Block
		var err error
		if parent == "" {
			b, err = s.AddRoot(Data{"name": name})
		} else {
			b, err = s.AddChild(ids[parent], Data{"name": name})
		}
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		ids[name] = b.ID
	}
	add("R", "")
	add("A", "R")
	add("B", "R")
	add("C", "R")
	add("A1", "A")
	add("A2", "A")
	return s, ids
}

func names(blocks []*Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Data["name"].(string)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddRootAndChild(t *testing.T) {
	s := NewStore()

	root, err := s.AddRoot(Data{"v": 1})
	if err != nil {
		t.Fatalf("AddRoot: %v", err)
	}
	if s.Len() != 1 || root.ParentID != NoParent || !root.IsRoot() {
		t.Fatalf("after AddRoot: len=%d parent=%q", s.Len(), root.ParentID)
	}

	child, err := s.AddChild(root.ID, Data{"v": 2})
	if err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	if s.Len() != 2 || child.ParentID != root.ID {
		t.Fatalf("after AddChild: len=%d parent=%q, want %q", s.Len(), child.ParentID, root.ID)
	}

	if _, err := s.AddRoot(Data{}); !bferrors.Is(err, bferrors.ErrCodeInvalidState) {
		t.Errorf("second AddRoot error = %v, want INVALID_STATE", err)
	}
	if _, err := s.AddChild("missing", Data{}); !bferrors.Is(err, bferrors.ErrCodeNotFound) {
		t.Errorf("AddChild(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestGetSubtree(t *testing.T) {
	s, ids := newTestStore(t)

	tests := []struct {
		name string
		root string
		want []string
	}{
		{"whole tree", ids["R"], []string{"R", "A", "A1", "A2", "B", "C"}},
		{"inner node", ids["A"], []string{"A", "A1", "A2"}},
		{"leaf", ids["C"], []string{"C"}},
		{"missing", "nope", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names(s.GetSubtree(tt.root)); !equalStrings(got, tt.want) {
				t.Errorf("GetSubtree() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoveNodeReparentsChildren(t *testing.T) {
	s, ids := newTestStore(t)

	before := map[string]string{}
	for _, b := range s.Blocks() {
		before[b.ID] = b.ParentID
	}

	removed, err := s.RemoveNode(ids["A"])
	if err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if removed.ID != ids["A"] {
		t.Errorf("removed %q, want %q", removed.ID, ids["A"])
	}
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}

	for _, b := range s.Blocks() {
		want := before[b.ID]
		if want == ids["A"] {
			want = ids["R"]
		}
		if b.ParentID != want {
			t.Errorf("%s parent = %q, want %q", b.Data["name"], b.ParentID, want)
		}
	}
}

func TestRemoveNodeErrors(t *testing.T) {
	s, ids := newTestStore(t)

	if _, err := s.RemoveNode("missing"); !bferrors.Is(err, bferrors.ErrCodeNotFound) {
		t.Errorf("RemoveNode(missing) error = %v, want NOT_FOUND", err)
	}
	if _, err := s.RemoveNode(ids["R"]); !bferrors.Is(err, bferrors.ErrCodeInvalidState) {
		t.Errorf("RemoveNode(root with 3 children) error = %v, want INVALID_STATE", err)
	}
	if s.Len() != 6 {
		t.Errorf("failed removals changed the store: Len() = %d", s.Len())
	}
}

func TestRemoveNodePromotesOnlyChild(t *testing.T) {
	s := NewStore(WithIDGenerator(NewSequence("b")))
	root, _ := s.AddRoot(Data{"name": "R"})
	child, _ := s.AddChild(root.ID, Data{"name": "A"})

	if _, err := s.RemoveNode(root.ID); err != nil {
		t.Fatalf("RemoveNode(root): %v", err)
	}
	got, ok := s.Root()
	if !ok || got.ID != child.ID {
		t.Fatalf("Root() = %v, want %q", got, child.ID)
	}
}

func TestRemoveSubtree(t *testing.T) {
	s, ids := newTestStore(t)

	want := len(s.GetSubtree(ids["A"]))
	removed := s.RemoveSubtree(ids["A"])
	if len(removed) != want {
		t.Errorf("removed %d blocks, want %d", len(removed), want)
	}
	if got := names(s.Blocks()); !equalStrings(got, []string{"R", "B", "C"}) {
		t.Errorf("remaining = %v", got)
	}

	if got := s.RemoveSubtree("missing"); len(got) != 0 {
		t.Errorf("RemoveSubtree(missing) = %v, want empty", got)
	}
	if s.Len() != 3 {
		t.Errorf("no-op removal changed the store: Len() = %d", s.Len())
	}
}

func TestSetParent(t *testing.T) {
	s, ids := newTestStore(t)

	if err := s.SetParent(ids["A"], ids["C"]); err != nil {
		t.Fatalf("SetParent: %v", err)
	}
	a, _ := s.Get(ids["A"])
	if a.ParentID != ids["C"] {
		t.Errorf("A parent = %q, want %q", a.ParentID, ids["C"])
	}
	a1, _ := s.Get(ids["A1"])
	if a1.ParentID != ids["A"] {
		t.Errorf("A1 parent changed to %q", a1.ParentID)
	}

	tests := []struct {
		name   string
		id     string
		parent string
		code   bferrors.Code
	}{
		{"onto itself", ids["A"], ids["A"], bferrors.ErrCodeInvalidArgument},
		{"onto descendant", ids["A"], ids["A2"], bferrors.ErrCodeInvalidArgument},
		{"root onto child", ids["R"], ids["B"], bferrors.ErrCodeInvalidArgument},
		{"missing block", "nope", ids["B"], bferrors.ErrCodeNotFound},
		{"missing parent", ids["B"], "nope", bferrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.SetParent(tt.id, tt.parent); !bferrors.Is(err, tt.code) {
				t.Errorf("SetParent() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCopySubtree(t *testing.T) {
	s, ids := newTestStore(t)
	a, _ := s.Get(ids["A"])
	a.Data["nested"] = map[string]any{"k": []any{"x"}}

	copies, err := s.CopySubtree(ids["A"])
	if err != nil {
		t.Fatalf("CopySubtree: %v", err)
	}
	if len(copies) != 3 {
		t.Fatalf("copied %d blocks, want 3", len(copies))
	}

	existing := map[string]bool{}
	for _, b := range s.Blocks() {
		existing[b.ID] = true
	}
	copied := map[string]bool{}
	for _, c := range copies {
		if existing[c.ID] {
			t.Errorf("copy id %q collides with an existing block", c.ID)
		}
		copied[c.ID] = true
	}

	if copies[0].ParentID != ids["R"] {
		t.Errorf("copied root parent = %q, want original parent %q", copies[0].ParentID, ids["R"])
	}
	for _, c := range copies[1:] {
		if c.ParentID != copies[0].ID {
			t.Errorf("copied child %s parent = %q, want %q", c.Data["name"], c.ParentID, copies[0].ID)
		}
	}
	if got := names(copies); !equalStrings(got, []string{"A", "A1", "A2"}) {
		t.Errorf("copy order = %v", got)
	}

	copies[0].Data["name"] = "changed"
	copies[0].Data["nested"].(map[string]any)["k"] = "mutated"
	if a.Data["name"] != "A" {
		t.Errorf("original payload changed: %v", a.Data["name"])
	}
	if _, ok := a.Data["nested"].(map[string]any)["k"].([]any); !ok {
		t.Errorf("original nested payload changed: %v", a.Data["nested"])
	}

	if _, err := s.CopySubtree("missing"); !bferrors.Is(err, bferrors.ErrCodeNotFound) {
		t.Errorf("CopySubtree(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestCopySubtreeCloneFailure(t *testing.T) {
	boom := errors.New("boom")
	s := NewStore(WithCloner(func(Data) (Data, error) { return nil, boom }))
	root, _ := s.AddRoot(Data{})

	_, err := s.CopySubtree(root.ID)
	if !errors.Is(err, boom) || !bferrors.Is(err, bferrors.ErrCodeHostHook) {
		t.Errorf("CopySubtree() error = %v, want wrapped HOST_HOOK", err)
	}
}

func TestAppend(t *testing.T) {
	s, ids := newTestStore(t)

	copies, _ := s.CopySubtree(ids["A"])
	copies[0].ParentID = ids["C"]
	if err := s.Append(copies...); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if s.Len() != 9 {
		t.Errorf("Len() = %d, want 9", s.Len())
	}

	tests := []struct {
		name  string
		block *Block
		code  bferrors.Code
	}{
		{"duplicate id", &Block{ID: ids["B"], ParentID: ids["R"]}, bferrors.ErrCodeInvalidState},
		{"second root", &Block{ID: "new", ParentID: NoParent}, bferrors.ErrCodeInvalidState},
		{"dangling parent", &Block{ID: "new", ParentID: "nope"}, bferrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Append(tt.block); !bferrors.Is(err, tt.code) {
				t.Errorf("Append() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s, ids := newTestStore(t)
	c := s.Clone()

	if err := c.SetParent(ids["B"], ids["C"]); err != nil {
		t.Fatalf("SetParent on clone: %v", err)
	}
	c.RemoveSubtree(ids["A"])

	b, _ := s.Get(ids["B"])
	if b.ParentID != ids["R"] {
		t.Errorf("original B parent = %q, want %q", b.ParentID, ids["R"])
	}
	if s.Len() != 6 {
		t.Errorf("original Len() = %d, want 6", s.Len())
	}
}

func TestNewIDSkipsTaken(t *testing.T) {
	calls := 0
	gen := IDFunc(func() string {
		calls++
		if calls < 3 {
			return "dup"
		}
		return "fresh"
	})
	s := NewStore(WithIDGenerator(gen))
	if err := s.Append(&Block{ID: "dup"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	id, err := s.NewID(nil)
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if id != "fresh" {
		t.Errorf("NewID() = %q, want fresh", id)
	}

	stuck := NewStore(WithIDGenerator(IDFunc(func() string { return "" })))
	if _, err := stuck.NewID(nil); !bferrors.Is(err, bferrors.ErrCodeInvalidState) {
		t.Errorf("exhausted NewID() error = %v, want INVALID_STATE", err)
	}
}

func TestUUIDGeneratorUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := UUIDGenerator{}.NewID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
