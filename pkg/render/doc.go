// Package render turns laid-out block trees into artifacts.
//
// # Overview
//
// A [layout.Scene] is the hand-off point between the interaction core and
// every renderer: it carries the positioned blocks, the elbow connectors and
// the zoom factor. Two sinks consume it:
//
//   - [svg]: a direct SVG drawing of the scene, coordinates preserved
//   - [nodelink]: Graphviz DOT source of the tree, rendered in-process
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	out := svg.RenderSVG(scene)
//	pdf, err := render.ToPDF(ctx, out)
//	png, err := render.ToPNG(ctx, out, 2.0) // 2x scale
//
// [layout.Scene]: github.com/matzehuels/blockflow/pkg/layout#Scene
// [svg]: github.com/matzehuels/blockflow/pkg/render/svg
// [nodelink]: github.com/matzehuels/blockflow/pkg/render/nodelink
package render
