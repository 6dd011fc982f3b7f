package block

import (
	"reflect"

	"github.com/matzehuels/blockflow/pkg/errors"
)

// Tree is the nested import/export shape. The root is implied by the
// absence of a parent reference.
type Tree struct {
	ID       string  `json:"id" yaml:"id"`
	Data     Data    `json:"data" yaml:"data"`
	Children []*Tree `json:"children" yaml:"children"`
}

// Size returns the number of nodes in t.
func (t *Tree) Size() int {
	if t == nil {
		return 0
	}
	n := 1
	for _, c := range t.Children {
		n += c.Size()
	}
	return n
}

// Walk visits t in pre-order. Returning false from fn skips the node's
// children.
func (t *Tree) Walk(fn func(node *Tree, depth int) bool) {
	var walk func(n *Tree, depth int)
	walk = func(n *Tree, depth int) {
		if n == nil || !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(t, 0)
}

// Find returns the node with the given id.
func (t *Tree) Find(id string) (*Tree, bool) {
	var found *Tree
	t.Walk(func(n *Tree, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Equal reports whether a and b have the same ids, payloads and child order.
func Equal(a, b *Tree) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || len(a.Children) != len(b.Children) {
		return false
	}
	if !reflect.DeepEqual(a.Data, b.Data) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// ToTree builds the nested form of blocks. A block whose parent is NoParent
// or is not among blocks becomes the root; exactly one such block must
// exist, every block must be reachable from it, and ids must be unique.
// Children keep the order of blocks. Payloads are shared, not copied.
func ToTree(blocks []*Block) (*Tree, error) {
	nodes := make(map[string]*Tree, len(blocks))
	for _, b := range blocks {
		if _, dup := nodes[b.ID]; dup {
			return nil, errors.InvalidState("duplicate block id %q", b.ID)
		}
		nodes[b.ID] = &Tree{ID: b.ID, Data: b.Data, Children: []*Tree{}}
	}

	var root *Tree
	roots := 0
	for _, b := range blocks {
		parent, ok := nodes[b.ParentID]
		if b.IsRoot() || !ok {
			roots++
			root = nodes[b.ID]
			continue
		}
		parent.Children = append(parent.Children, nodes[b.ID])
	}

	switch {
	case roots == 0:
		return nil, errors.InvalidState("no root among %d blocks", len(blocks))
	case roots > 1:
		return nil, errors.InvalidState("found %d roots, want exactly one", roots)
	}
	if n := root.Size(); n != len(blocks) {
		return nil, errors.InvalidState("%d blocks unreachable from root (parent cycle)", len(blocks)-n)
	}
	return root, nil
}

// FromTree flattens t in pre-order. The root gets ParentID NoParent; nodes
// without an id receive one from ids. Geometry is left unset.
func FromTree(t *Tree, ids IDGenerator) ([]*Block, error) {
	if t == nil {
		return nil, nil
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}

	seen := make(map[string]bool)
	var out []*Block
	var walk func(n *Tree, parentID string) error
	walk = func(n *Tree, parentID string) error {
		if n == nil {
			return errors.InvalidState("nil child under %q", parentID)
		}
		id := n.ID
		if id == "" {
			id = ids.NewID()
		}
		if seen[id] {
			return errors.InvalidState("duplicate block id %q", id)
		}
		seen[id] = true
		out = append(out, &Block{ID: id, ParentID: parentID, Data: n.Data})
		for _, c := range n.Children {
			if err := walk(c, id); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(t, NoParent); err != nil {
		return nil, err
	}
	return out, nil
}
