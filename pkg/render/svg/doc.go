// Package svg draws a laid-out [layout.Scene] as a standalone SVG document.
//
// Block rectangles, connector paths and labels are written in scene
// coordinates; the viewBox is the scene bounds grown by a padding, so the
// output matches what an interactive host shows at the same zoom.
//
//	out := svg.RenderSVG(scene,
//	    svg.WithLabelKey("name"),
//	    svg.WithHighlight("b3"),
//	)
//
// Labels are taken from a payload key (default "label") and fall back to the
// block id. Highlighted blocks get the armed border colour.
//
// [layout.Scene]: github.com/matzehuels/blockflow/pkg/layout#Scene
package svg
