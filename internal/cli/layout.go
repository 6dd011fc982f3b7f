package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	blockio "github.com/matzehuels/blockflow/pkg/io"
	"github.com/matzehuels/blockflow/pkg/layout"
	"github.com/matzehuels/blockflow/pkg/pipeline"
)

// layoutFlags holds the layout overrides shared by layout, render and replay.
type layoutFlags struct {
	orientation string
	zoom        float64
	nodeWidth   float64
	nodeHeight  float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.orientation, "orientation", "", "layout orientation: top-down (default), left-right")
	cmd.Flags().Float64Var(&f.zoom, "zoom", 0, "zoom factor (default from config)")
	cmd.Flags().Float64Var(&f.nodeWidth, "node-width", 0, "node width in pixels (default from config)")
	cmd.Flags().Float64Var(&f.nodeHeight, "node-height", 0, "node height in pixels (default from config)")
}

func (f *layoutFlags) apply(cfg *layout.Config) {
	if f.orientation != "" {
		cfg.Orientation = layout.Orientation(f.orientation)
	}
	if f.zoom != 0 {
		cfg.Zoom = f.zoom
	}
	if f.nodeWidth != 0 {
		cfg.NodeWidth = f.nodeWidth
	}
	if f.nodeHeight != 0 {
		cfg.NodeHeight = f.nodeHeight
	}
}

// layoutCommand creates the layout command for computing block positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		format  string
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json|tree.yaml|URL]",
		Short: "Compute block positions and connectors for a tree",
		Long: `Compute block positions and connectors for a tree.

The layout command reads a nested or flat tree file, lays it out with the same
tidy-tree engine the interactive hosts use, and writes the resulting scene
(blocks with rectangles, connector paths, bounds) as JSON or YAML.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, format, noCache, flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.scene.json)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output encoding: json (default), yaml")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runLayout loads the tree, computes the scene, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output, format string, noCache bool, flags layoutFlags) error {
	enc, err := blockio.ParseFormat(format)
	if err != nil {
		return err
	}

	opts, err := c.pipelineOptions()
	if err != nil {
		return err
	}
	opts.Source = input
	flags.apply(&opts.Layout)

	tree, err := pipeline.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load tree %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	sc, _, _, cacheHit, err := runner.LayoutWithCacheInfo(ctx, tree, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = inputBase(input) + ".scene." + string(enc)
	}
	if err := writeScene(sc, outputPath, enc); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(sc.Blocks), len(sc.Connectors), cacheHit)
	printNewline()
	printNextStep("Render", "blockflow render "+input)

	return nil
}

func writeScene(sc layout.Scene, path string, f blockio.Format) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := blockio.WriteScene(out, sc, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
