// Package nodelink renders block trees as Graphviz node-link diagrams.
//
// # Overview
//
// Where the [svg] sink reproduces the tidy-tree geometry exactly, this
// package hands the tree to Graphviz and lets dot choose the placement. It
// is useful for sharing a tree outside the canvas and for DOT tooling.
//
// # Usage
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{LabelKey: "name"})
//	out, err := nodelink.RenderSVG(ctx, dot)
//
// [FromScene] accepts a laid-out scene instead of a nested tree, and
// [RenderPDF] and [RenderPNG] convert through rsvg-convert.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
//
// [svg]: github.com/matzehuels/blockflow/pkg/render/svg
package nodelink
