package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	blockio "github.com/matzehuels/blockflow/pkg/io"
	"github.com/matzehuels/blockflow/pkg/layout"
	"github.com/matzehuels/blockflow/pkg/observability"
	"github.com/matzehuels/blockflow/pkg/render"
	"github.com/matzehuels/blockflow/pkg/render/nodelink"
	"github.com/matzehuels/blockflow/pkg/render/svg"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, sc layout.Scene, opts Options) (map[render.Format][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	names := formatNames(opts.Formats)
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, names)
	start := time.Now()

	artifacts, err := renderScene(ctx, sc, opts)
	hooks.OnRenderComplete(ctx, names, time.Since(start), err)
	return artifacts, err
}

func renderScene(ctx context.Context, sc layout.Scene, opts Options) (map[render.Format][]byte, error) {
	artifacts := make(map[render.Format][]byte, len(opts.Formats))

	var svgDoc []byte
	drawSVG := func() []byte {
		if svgDoc == nil {
			svgDoc = svg.RenderSVG(sc, buildSVGOptions(opts)...)
		}
		return svgDoc
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case render.FormatSVG:
			data = drawSVG()
		case render.FormatDOT:
			var dot string
			dot, err = nodelink.FromScene(sc, nodelink.Options{
				LabelKey:    opts.LabelKey,
				Orientation: opts.Layout.Orientation,
				Highlight:   opts.Highlight,
			})
			data = []byte(dot)
		case render.FormatJSON:
			var buf bytes.Buffer
			err = blockio.WriteScene(&buf, sc, blockio.FormatJSON)
			data = buf.Bytes()
		case render.FormatPDF:
			data, err = render.ToPDF(ctx, drawSVG())
		case render.FormatPNG:
			data, err = render.ToPNG(ctx, drawSVG(), opts.Scale)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions maps pipeline options onto the SVG sink.
func buildSVGOptions(opts Options) []svg.SVGOption {
	out := []svg.SVGOption{svg.WithLabelKey(opts.LabelKey)}
	if len(opts.Highlight) > 0 {
		out = append(out, svg.WithHighlight(opts.Highlight...))
	}
	return out
}

func formatNames(fs []render.Format) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}
