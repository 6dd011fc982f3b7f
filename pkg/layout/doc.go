// Package layout places the blocks of a [block.Store] with a tidy-tree
// algorithm and computes the connectors drawn between parents and children.
//
// # Algorithm
//
// [Engine.Layout] runs the Walker tidy-tree algorithm in its linear-time
// form (Buchheim, Jünger and Leipert). Siblings are one slot apart, cousins
// two; each parent is centered over its children and subtrees never
// overlap. Every node occupies a fixed slot:
//
//	depth axis:   (NodeHeight + MarginY) * Zoom
//	breadth axis: (NodeWidth  + MarginX) * Zoom
//
// for the default [TopDown] orientation. [LeftRight] swaps the axes and the
// extents, drawing the tree left to right with connectors leaving the
// parent's right edge.
//
// # Root Anchor
//
// Offsets are relative to the root, and the engine adds the root's current
// Position to each of them. Re-layout after a structural edit therefore never
// moves the root, only its descendants. A canvas pan is a plain translation
// of every position ([Engine.Translate]); it needs no recompute.
//
// # Connectors
//
// Each parent/child pair yields an orthogonal elbow [Connector]: out of the
// parent, half-way across the gap, over to the child's level, into the
// child. [Connector.Path] renders it as SVG path data.
package layout
