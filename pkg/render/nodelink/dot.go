package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/layout"
	"github.com/matzehuels/blockflow/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// LabelKey selects the payload key shown as the node label.
	// Nodes without it are labelled with their id.
	LabelKey string

	// Detailed appends every payload entry to the label.
	Detailed bool

	// Orientation picks the rank direction: top-down (TB) or left-right (LR).
	Orientation layout.Orientation

	// Highlight lists node ids drawn with the highlight colour.
	Highlight []string

	// HighlightColor defaults to #217ce8.
	HighlightColor string
}

// ToDOT converts a block tree to Graphviz DOT format. Nodes and edges are
// written in pre-order, so the output is stable for a given tree. A nil tree
// yields an empty digraph.
func ToDOT(t *block.Tree, opts Options) string {
	color := opts.HighlightColor
	if color == "" {
		color = "#217ce8"
	}
	hl := make(map[string]bool, len(opts.Highlight))
	for _, id := range opts.Highlight {
		hl[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(opts.Orientation))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	t.Walk(func(n *block.Tree, _ int) bool {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts))}
		if hl[n.ID] {
			attrs = append(attrs, fmt.Sprintf("color=%q", color), "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
		for _, c := range n.Children {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", n.ID, c.ID))
		}
		return true
	})

	if len(edges) > 0 {
		buf.WriteString("\n")
		for _, e := range edges {
			buf.WriteString(e)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// FromScene builds DOT for a laid-out scene, preserving its parent links.
func FromScene(sc layout.Scene, opts Options) (string, error) {
	if len(sc.Blocks) == 0 {
		return ToDOT(nil, opts), nil
	}
	blocks := make([]*block.Block, len(sc.Blocks))
	for i, p := range sc.Blocks {
		blocks[i] = &block.Block{ID: p.ID, ParentID: p.ParentID, Data: p.Data}
	}
	t, err := block.ToTree(blocks)
	if err != nil {
		return "", err
	}
	return ToDOT(t, opts), nil
}

func rankdir(o layout.Orientation) string {
	if o == layout.LeftRight {
		return "LR"
	}
	return "TB"
}

func fmtLabel(n *block.Tree, opts Options) string {
	label := n.ID
	if opts.LabelKey != "" {
		if v, ok := n.Data[opts.LabelKey]; ok && v != nil {
			label = fmt.Sprint(v)
		}
	}
	if !opts.Detailed || len(n.Data) == 0 {
		return label
	}

	parts := make([]string, 0, len(n.Data))
	for _, k := range slices.Sorted(maps.Keys(n.Data)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Data[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height equal the viewBox, so the diagram scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
