package layout

// tidyNode carries the per-node state of the Buchheim walk.
type tidyNode struct {
	id       string
	parent   *tidyNode
	children []*tidyNode
	index    int // position among siblings
	depth    int

	prelim float64
	mod    float64
	change float64
	shift  float64
	thread *tidyNode
	// ancestor points at the greatest distinct ancestor candidate.
	ancestor *tidyNode
	// defaultAncestor is shared by the children of this node while they are walked.
	defaultAncestor *tidyNode

	x float64 // final breadth position in slot units
}

func nextLeft(v *tidyNode) *tidyNode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *tidyNode) *tidyNode {
	if n := len(v.children); n > 0 {
		return v.children[n-1]
	}
	return v.thread
}

// separation is one slot between siblings and two between cousins.
func separation(a, b *tidyNode) float64 {
	if a.parent == b.parent {
		return 1
	}
	return 2
}

func moveSubtree(wm, wp *tidyNode, shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *tidyNode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, ancestor *tidyNode) *tidyNode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}

func apportion(v, w, ancestor *tidyNode) *tidyNode {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim := w
	vom := v.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v
		shift := vim.prelim + sim - vip.prelim - sip + separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}

	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}

// firstWalk computes preliminary positions bottom-up.
func firstWalk(v *tidyNode) {
	for _, c := range v.children {
		firstWalk(c)
	}

	var w *tidyNode
	if v.parent != nil && v.index > 0 {
		w = v.parent.children[v.index-1]
	}

	if n := len(v.children); n > 0 {
		executeShifts(v)
		mid := (v.children[0].prelim + v.children[n-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + separation(v, w)
			v.mod = v.prelim - mid
		} else {
			v.prelim = mid
		}
	} else if w != nil {
		v.prelim = w.prelim + separation(v, w)
	}

	if v.parent != nil {
		def := v.parent.defaultAncestor
		if def == nil {
			def = v.parent.children[0]
		}
		v.parent.defaultAncestor = apportion(v, w, def)
	}
}

// secondWalk accumulates modifiers top-down into final positions.
func secondWalk(v *tidyNode, parentMod float64) {
	v.x = v.prelim + parentMod
	v.mod += parentMod
	for _, c := range v.children {
		secondWalk(c, v.mod)
	}
}

// tidy lays out the tree rooted at root. The root ends at x = 0.
func tidy(root *tidyNode) {
	firstWalk(root)
	secondWalk(root, -root.prelim)
}

// newTidyNode links a node into its parent's child list.
func newTidyNode(id string, parent *tidyNode) *tidyNode {
	n := &tidyNode{id: id, parent: parent}
	n.ancestor = n
	if parent != nil {
		n.index = len(parent.children)
		n.depth = parent.depth + 1
		parent.children = append(parent.children, n)
	}
	return n
}
