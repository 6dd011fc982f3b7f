package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/blockflow/pkg/layout"
)

const (
	DefaultLabelKey       = "label"
	DefaultHighlightColor = "#217ce8"
	DefaultPadding        = 20.0
)

const (
	fontHeightRatio = 0.4
	fontCharWidth   = 0.6
	fontSizeMin     = 8.0
	fontSizeMax     = 18.0
)

const interactionCSS = `
    .block { transition: stroke-width 0.2s ease; }
    .block:hover { stroke-width: 3; }
    .connector { pointer-events: none; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labelKey    string
	color       string
	padding     float64
	highlighted map[string]bool
	interactive bool
}

// WithLabelKey selects the payload key used for block labels.
func WithLabelKey(key string) SVGOption { return func(r *svgRenderer) { r.labelKey = key } }

// WithHighlightColor sets the border colour of highlighted blocks.
func WithHighlightColor(c string) SVGOption { return func(r *svgRenderer) { r.color = c } }

// WithPadding sets the margin around the scene bounds.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = max(0, p) } }

// WithHighlight marks blocks to draw with the highlight border.
func WithHighlight(ids ...string) SVGOption {
	return func(r *svgRenderer) {
		for _, id := range ids {
			r.highlighted[id] = true
		}
	}
}

// WithInteraction embeds hover styling for browser viewing.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// RenderSVG draws sc. Connectors are drawn first so blocks cover their ends.
func RenderSVG(sc layout.Scene, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	b := sc.Bounds
	x, y := b.Left-r.padding, b.Top-r.padding
	w, h := b.Width+2*r.padding, b.Height+2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		x, y, w, h, w, h)

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
	}

	for _, c := range sc.Connectors {
		r.renderConnector(&buf, c)
	}
	for _, p := range sc.Blocks {
		r.renderBlock(&buf, p)
	}
	for _, p := range sc.Blocks {
		r.renderText(&buf, p)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		labelKey:    DefaultLabelKey,
		color:       DefaultHighlightColor,
		padding:     DefaultPadding,
		highlighted: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r *svgRenderer) renderConnector(buf *bytes.Buffer, c layout.Connector) {
	d := c.Path()
	if d == "" {
		return
	}
	fmt.Fprintf(buf, `  <path class="connector" data-parent="%s" data-child="%s" d="%s" fill="none" stroke="#888888" stroke-width="1.5"/>`+"\n",
		escape(c.ParentID), escape(c.ChildID), d)
}

func (r *svgRenderer) renderBlock(buf *bytes.Buffer, p layout.Placed) {
	stroke, width := "#333333", 1.0
	if r.highlighted[p.ID] {
		stroke, width = r.color, 2.5
	}
	fmt.Fprintf(buf, `  <rect id="block-%s" class="block" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="white" stroke="%s" stroke-width="%.1f"/>`+"\n",
		escape(p.ID), p.Rect.Left, p.Rect.Top, p.Rect.Width, p.Rect.Height, escape(stroke), width)
}

func (r *svgRenderer) renderText(buf *bytes.Buffer, p layout.Placed) {
	label := r.label(p)
	c := p.Rect.Center()
	fmt.Fprintf(buf, `  <text class="block-text" data-block="%s" x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="%.1f">%s</text>`+"\n",
		escape(p.ID), c.X, c.Y, fontSize(p.Rect.Width, p.Rect.Height, len([]rune(label))), escape(label))
}

func (r *svgRenderer) label(p layout.Placed) string {
	v, ok := p.Data[r.labelKey]
	if !ok || v == nil {
		return p.ID
	}
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return p.ID
		}
		return s
	}
	return fmt.Sprint(v)
}

func fontSize(w, h float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := h * fontHeightRatio
	byWidth := w / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
