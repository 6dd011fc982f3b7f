package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockflow/pkg/interaction"
	blockio "github.com/matzehuels/blockflow/pkg/io"
	"github.com/matzehuels/blockflow/pkg/render"
)

// replayCommand creates the replay command for running event scripts.
func (c *CLI) replayCommand() *cobra.Command {
	var (
		svgOut  string
		treeOut string
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "replay [script.json|script.yaml]",
		Short: "Replay recorded pointer and key events against a canvas",
		Long: `Replay recorded pointer and key events against a canvas.

A script holds an optional starting tree, palette handles and a list of
pointerdown, pointermove, pointerup, keydown and keyup events. Every event is
fed to a headless canvas in order, and the outcome of each drop is printed.

Example script:

  tree: {id: root, data: {label: Start}}
  handles:
    - id: step
      classes: [blockflow-handle]
      rect: {left: 900, top: 10, width: 120, height: 40}
      data: {label: Step}
  events:
    - {type: pointerdown, x: 910, y: 20}
    - {type: pointermove, x: 200, y: 230}
    - {type: pointerup, x: 200, y: 230}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd.Context(), args[0], svgOut, treeOut, flags)
		},
	}

	cmd.Flags().StringVarP(&svgOut, "output", "o", "", "write the final canvas as SVG")
	cmd.Flags().StringVar(&treeOut, "tree-out", "", "write the final tree (json or yaml by extension)")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runReplay(ctx context.Context, input, svgOut, treeOut string, flags layoutFlags) error {
	script, err := blockio.ImportScript(input)
	if err != nil {
		return err
	}

	opts, err := c.pipelineOptions()
	if err != nil {
		return err
	}
	opts.Script = &script
	opts.Formats = []render.Format{render.FormatSVG}
	flags.apply(&opts.Layout)

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	printSuccess("Replayed %d events", len(script.Events))
	for n, out := range result.Outcomes {
		printOutcomeLine(n+1, formatOutcome(out), out.Committed, out.Declined)
	}
	printStats(result.Stats.BlockCount, len(result.Scene.Connectors), false)

	if svgOut != "" {
		if err := os.WriteFile(svgOut, result.Artifacts[render.FormatSVG], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", svgOut, err)
		}
		printFile(svgOut)
	}
	if treeOut != "" {
		if result.Tree == nil {
			printWarning("Canvas is empty, no tree written")
			return nil
		}
		if err := blockio.ExportTree(result.Tree, treeOut); err != nil {
			return err
		}
		printFile(treeOut)
	}
	return nil
}

// formatOutcome renders one drop outcome as a short line.
func formatOutcome(out interaction.Outcome) string {
	var b strings.Builder
	b.WriteString(string(out.Op))
	switch {
	case out.Declined:
		b.WriteString(" declined")
	case out.Committed:
		b.WriteString(" committed")
	}
	if out.Target != "" {
		b.WriteString(" → " + out.Target)
	}
	if len(out.Created) > 0 {
		b.WriteString(" created " + strings.Join(out.Created, ","))
	}
	if len(out.Removed) > 0 {
		b.WriteString(" removed " + strings.Join(out.Removed, ","))
	}
	return b.String()
}
