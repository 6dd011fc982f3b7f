package block

import (
	"testing"

	bferrors "github.com/matzehuels/blockflow/pkg/errors"
)

func sampleTree() *Tree {
	return &Tree{
		ID:   "r",
		Data: Data{"label": "root"},
		Children: []*Tree{
			{ID: "a", Data: Data{"label": "a"}, Children: []*Tree{
				{ID: "a1", Data: Data{"label": "a1"}, Children: []*Tree{}},
			}},
			{ID: "b", Data: Data{"label": "b", "tags": []any{"x", "y"}}, Children: []*Tree{}},
		},
	}
}

func TestTreeRoundTrip(t *testing.T) {
	tree := sampleTree()

	blocks, err := FromTree(tree, NewSequence("gen"))
	if err != nil {
		t.Fatalf("FromTree: %v", err)
	}
	if len(blocks) != 4 {
		t.Fatalf("FromTree produced %d blocks, want 4", len(blocks))
	}
	if blocks[0].ParentID != NoParent {
		t.Errorf("root parent = %q, want none", blocks[0].ParentID)
	}
	if blocks[2].ID != "a1" || blocks[2].ParentID != "a" {
		t.Errorf("pre-order position 2 = %s (parent %s), want a1 (parent a)", blocks[2].ID, blocks[2].ParentID)
	}

	back, err := ToTree(blocks)
	if err != nil {
		t.Fatalf("ToTree: %v", err)
	}
	if !Equal(tree, back) {
		t.Errorf("round trip mismatch")
	}

	records := ToRecords(blocks)
	fromRecords, err := FromRecords(records)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	again, _ := ToTree(fromRecords)
	if !Equal(tree, again) {
		t.Errorf("flat round trip mismatch")
	}
}

func TestFromTreeAssignsMissingIDs(t *testing.T) {
	tree := &Tree{Data: Data{}, Children: []*Tree{{Data: Data{}}}}

	blocks, err := FromTree(tree, NewSequence("n"))
	if err != nil {
		t.Fatalf("FromTree: %v", err)
	}
	if blocks[0].ID != "n1" || blocks[1].ID != "n2" || blocks[1].ParentID != "n1" {
		t.Errorf("ids = %s/%s parent %s", blocks[0].ID, blocks[1].ID, blocks[1].ParentID)
	}
}

func TestFromTreeErrors(t *testing.T) {
	dup := &Tree{ID: "x", Children: []*Tree{{ID: "x"}}}
	if _, err := FromTree(dup, nil); !bferrors.Is(err, bferrors.ErrCodeInvalidState) {
		t.Errorf("duplicate ids error = %v, want INVALID_STATE", err)
	}

	blocks, err := FromTree(nil, nil)
	if err != nil || blocks != nil {
		t.Errorf("FromTree(nil) = %v, %v", blocks, err)
	}
}

func TestToTreeErrors(t *testing.T) {
	tests := []struct {
		name   string
		blocks []*Block
	}{
		{"no blocks", nil},
		{"two roots", []*Block{{ID: "a"}, {ID: "b"}}},
		{"cycle", []*Block{{ID: "r"}, {ID: "a", ParentID: "b"}, {ID: "b", ParentID: "a"}}},
		{"duplicate", []*Block{{ID: "r"}, {ID: "r"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToTree(tt.blocks); !bferrors.Is(err, bferrors.ErrCodeInvalidState) {
				t.Errorf("ToTree() error = %v, want INVALID_STATE", err)
			}
		})
	}
}

func TestToTreeSubset(t *testing.T) {
	s, ids := newTestStore(t)

	sub, err := ToTree(s.GetSubtree(ids["A"]))
	if err != nil {
		t.Fatalf("ToTree(subtree): %v", err)
	}
	if sub.ID != ids["A"] || len(sub.Children) != 2 {
		t.Errorf("subtree root = %s with %d children", sub.ID, len(sub.Children))
	}
}

func TestTreeFind(t *testing.T) {
	tree := sampleTree()

	if n, ok := tree.Find("a1"); !ok || n.Data["label"] != "a1" {
		t.Errorf("Find(a1) = %v, %v", n, ok)
	}
	if _, ok := tree.Find("zzz"); ok {
		t.Error("Find(zzz) should miss")
	}
	if got := tree.Size(); got != 4 {
		t.Errorf("Size() = %d, want 4", got)
	}
}

func TestStoreLoadNormalizesRoot(t *testing.T) {
	s := NewStore()
	err := s.Load([]*Block{{ID: "a", ParentID: "gone"}, {ID: "b", ParentID: "a"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	root, ok := s.Root()
	if !ok || root.ID != "a" {
		t.Fatalf("Root() = %v", root)
	}

	if err := s.Load([]*Block{{ID: "a"}, {ID: "b"}}); !bferrors.Is(err, bferrors.ErrCodeInvalidState) {
		t.Errorf("Load(two roots) error = %v, want INVALID_STATE", err)
	}
}
