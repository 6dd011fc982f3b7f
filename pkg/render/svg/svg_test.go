package svg

import (
	"strings"
	"testing"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/layout"
)

func twoBlockScene() layout.Scene {
	root := geom.Rect{Left: 0, Top: 0, Width: 160, Height: 80}
	child := geom.Rect{Left: 0, Top: 100, Width: 160, Height: 80}
	return layout.Scene{
		Blocks: []layout.Placed{
			{ID: "r", Data: block.Data{"label": "root"}, Rect: root},
			{ID: "c", ParentID: "r", Data: block.Data{"label": "a<b", "name": "child"}, Rect: child},
		},
		Connectors: []layout.Connector{{
			ParentID: "r", ChildID: "c",
			Points: []geom.Point{{X: 80, Y: 80}, {X: 80, Y: 90}, {X: 80, Y: 100}},
		}},
		Zoom:   1,
		Bounds: geom.Bounds(root, child),
	}
}

func TestRenderSVGDocument(t *testing.T) {
	out := string(RenderSVG(twoBlockScene()))

	for _, want := range []string{
		`viewBox="-20.0 -20.0 200.0 220.0" width="200" height="220"`,
		`<rect id="block-r" class="block" x="0.0" y="0.0" width="160.0" height="80.0"`,
		`<rect id="block-c" class="block" x="0.0" y="100.0" width="160.0" height="80.0"`,
		`d="M80,80 V90 V100"`,
		`font-size="18.0">root</text>`,
		`>a&lt;b</text>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("document not closed")
	}
	if strings.Contains(out, "<style>") {
		t.Error("style emitted without WithInteraction")
	}
}

func TestRenderSVGDrawOrder(t *testing.T) {
	out := string(RenderSVG(twoBlockScene()))
	path := strings.Index(out, "<path")
	rect := strings.Index(out, "<rect")
	text := strings.Index(out, "<text")
	if !(path < rect && rect < text) {
		t.Errorf("expected connectors, then blocks, then labels; got path=%d rect=%d text=%d", path, rect, text)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []SVGOption
		want []string
		not  []string
	}{
		{
			name: "label key",
			opts: []SVGOption{WithLabelKey("name")},
			want: []string{">child</text>", ">r</text>"},
		},
		{
			name: "highlight",
			opts: []SVGOption{WithHighlight("c")},
			want: []string{`stroke="#217ce8" stroke-width="2.5"`},
		},
		{
			name: "highlight colour",
			opts: []SVGOption{WithHighlight("r"), WithHighlightColor("#ff0000")},
			want: []string{`stroke="#ff0000"`},
			not:  []string{"#217ce8"},
		},
		{
			name: "padding",
			opts: []SVGOption{WithPadding(0)},
			want: []string{`viewBox="0.0 0.0 160.0 180.0"`},
		},
		{
			name: "interaction",
			opts: []SVGOption{WithInteraction()},
			want: []string{"<style>", ".block:hover"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(RenderSVG(twoBlockScene(), tt.opts...))
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %q", w)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(out, n) {
					t.Errorf("unexpected %q", n)
				}
			}
		})
	}
}

func TestRenderSVGEmptyScene(t *testing.T) {
	out := string(RenderSVG(layout.Scene{}))
	if !strings.Contains(out, `viewBox="-20.0 -20.0 40.0 40.0"`) {
		t.Errorf("unexpected empty document:\n%s", out)
	}
	if strings.Contains(out, "<rect") {
		t.Error("empty scene should draw no blocks")
	}
}

func TestFontSizeClamped(t *testing.T) {
	if got := fontSize(10, 10, 40); got != fontSizeMin {
		t.Errorf("fontSize small box = %v, want %v", got, fontSizeMin)
	}
	if got := fontSize(1000, 1000, 1); got != fontSizeMax {
		t.Errorf("fontSize large box = %v, want %v", got, fontSizeMax)
	}
}
