package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/httputil"
	"github.com/matzehuels/blockflow/pkg/pipeline"
	"github.com/matzehuels/blockflow/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file (single format) or base path (multiple)
	formats   string   // comma-separated: svg, dot, json, pdf, png
	highlight []string // block ids to outline
	labelKey  string   // payload field shown as the block label
	scale     float64  // PNG scale factor
	noCache   bool
	refresh   bool
	watch     bool
	layout    layoutFlags
}

// renderCommand creates the render command for generating artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [tree.json|tree.yaml|URL]",
		Short: "Render a block tree to SVG, DOT, JSON, PDF or PNG",
		Long: `Render a block tree to SVG, DOT, JSON, PDF or PNG.

SVG and JSON are produced directly from the laid-out scene, DOT and its SVG
through Graphviz. PDF and PNG need rsvg-convert on the PATH.

The tree may be an http(s) URL; outputs are then named after the last path
segment. With --watch the tree file is re-rendered every time it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := render.ParseFormats(opts.formats)
			if err != nil {
				return err
			}
			if opts.watch {
				if httputil.IsURL(args[0]) {
					return fmt.Errorf("--watch needs a local file, got %s", args[0])
				}
				return c.watchRender(cmd.Context(), args[0], formats, &opts)
			}
			return c.runRender(cmd.Context(), args[0], formats, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), dot, json, pdf, png (comma-separated)")
	cmd.Flags().StringSliceVar(&opts.highlight, "highlight", nil, "block ids to outline")
	cmd.Flags().StringVar(&opts.labelKey, "label-key", pipeline.DefaultLabelKey, "payload field used as the block label")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultPNGScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render whenever the tree file changes")
	opts.layout.register(cmd)

	return cmd
}

// runRender runs the pipeline once and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, formats []render.Format, opts *renderOpts) error {
	popts, err := c.pipelineOptions()
	if err != nil {
		return err
	}
	popts.Source = input
	popts.Formats = formats
	popts.Highlight = opts.highlight
	popts.LabelKey = opts.labelKey
	popts.Scale = opts.scale
	popts.Refresh = opts.refresh
	opts.layout.apply(&popts.Layout)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(input)+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths := outputPaths(opts.output, input, formats)
	for _, f := range formats {
		if err := os.WriteFile(paths[f], result.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[f], err)
		}
	}
	prog.done("Rendered " + input)

	printSuccess("Render complete")
	for _, f := range formats {
		printFile(paths[f])
	}
	printStats(result.Stats.BlockCount, len(result.Scene.Connectors), result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// watchRender renders once, then again after every change to input, until
// ctx is cancelled. Render failures are reported and watching continues.
func (c *CLI) watchRender(ctx context.Context, input string, formats []render.Format, opts *renderOpts) error {
	if err := c.runRender(ctx, input, formats, opts); err != nil {
		printError("%v", err)
	}
	printInfo("Watching %s (ctrl+c to stop)", input)
	return watchFile(ctx, input, watchDebounce, c.Logger, func() {
		if err := c.runRender(ctx, input, formats, opts); err != nil {
			printError("%v", err)
		}
	})
}

// outputPaths maps each format to a file. A single format writes to output
// when given; otherwise files are named <base>.<format>, where base is output
// without a known format extension, or the input without its extension.
// JSON scenes get a .scene.json suffix so they never replace a JSON input.
func outputPaths(output, input string, formats []render.Format) map[render.Format]string {
	paths := make(map[render.Format]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		if f == render.FormatJSON {
			paths[f] = base + ".scene.json"
			continue
		}
		paths[f] = base + "." + string(f)
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
func basePath(output, input string) string {
	if output == "" {
		return inputBase(input)
	}
	ext := filepath.Ext(output)
	if slices.Contains(render.Formats, render.Format(strings.TrimPrefix(ext, "."))) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// inputBase strips the extension from a tree path. URLs are reduced to
// their last path segment so outputs land in the working directory; a
// segment that is not a safe relative name becomes "tree".
func inputBase(input string) string {
	if httputil.IsURL(input) {
		input = filepath.Base(httputil.PathOf(input))
		if input == "/" || input == "." || errors.ValidatePath(input) != nil {
			input = "tree"
		}
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}
