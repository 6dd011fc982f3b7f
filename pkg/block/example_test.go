package block_test

import (
	"fmt"

	"github.com/matzehuels/blockflow/pkg/block"
)

func ExampleStore() {
	s := block.NewStore(block.WithIDGenerator(block.NewSequence("b")))

	root, _ := s.AddRoot(block.Data{"label": "start"})
	a, _ := s.AddChild(root.ID, block.Data{"label": "check"})
	_, _ = s.AddChild(a.ID, block.Data{"label": "send"})

	// Removing "check" relinks "send" to the root.
	_, _ = s.RemoveNode(a.ID)

	for _, b := range s.Blocks() {
		fmt.Printf("%s parent=%q %v\n", b.ID, b.ParentID, b.Data["label"])
	}
	// Output:
	// b1 parent="" start
	// b3 parent="b1" send
}

func ExampleStore_CopySubtree() {
	s := block.NewStore(block.WithIDGenerator(block.NewSequence("b")))
	root, _ := s.AddRoot(block.Data{"label": "root"})
	a, _ := s.AddChild(root.ID, block.Data{"label": "a"})
	_, _ = s.AddChild(a.ID, block.Data{"label": "a1"})
	b, _ := s.AddChild(root.ID, block.Data{"label": "b"})

	copies, _ := s.CopySubtree(a.ID)
	copies[0].ParentID = b.ID
	_ = s.Append(copies...)

	tree, _ := s.Tree()
	tree.Walk(func(n *block.Tree, depth int) bool {
		fmt.Printf("%*s%s (%s)\n", depth*2, "", n.Data["label"], n.ID)
		return true
	})
	// Output:
	// root (b1)
	//   a (b2)
	//     a1 (b3)
	//   b (b4)
	//     a (b5)
	//       a1 (b6)
}
