package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockflow/internal/tui"
	"github.com/matzehuels/blockflow/pkg/bridge"
	"github.com/matzehuels/blockflow/pkg/interaction"
)

// tuiCommand creates the tui command for the terminal canvas.
func (c *CLI) tuiCommand() *cobra.Command {
	var (
		tree     string
		palette  []string
		labelKey string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit a block tree in the terminal with the mouse",
		Long: `Edit a block tree in the terminal with the mouse.

Drag a palette entry from the top row onto the canvas to create the root, or
onto a block to attach a child. Drag a block onto another block to move its
subtree; hold alt (or press c) to copy instead.

Keys: +/- zoom, arrows or hjkl pan, x clear, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), tree, palette, labelKey)
		},
	}

	cmd.Flags().StringVar(&tree, "tree", "", "tree file or URL to load at startup")
	cmd.Flags().StringSliceVar(&palette, "palette", nil, "palette entries (default: step,decision,note)")
	cmd.Flags().StringVar(&labelKey, "label-key", "label", "payload field shown inside blocks")

	return cmd
}

func (c *CLI) runTUI(ctx context.Context, tree string, palette []string, labelKey string) error {
	// the alternate screen owns the terminal; keep log lines out of it
	level := c.Logger.GetLevel()
	c.Logger = log.NewWithOptions(io.Discard, log.Options{Level: level})

	surface := bridge.NewRecorder()
	in, err := c.newInteraction(interaction.WithSurface(surface))
	if err != nil {
		return err
	}
	defer in.Destroy()

	if err := importTreeFile(ctx, in, tree); err != nil {
		return err
	}

	m, err := tui.New(in, surface, tui.Options{Palette: palette, LabelKey: labelKey})
	if err != nil {
		return err
	}
	return tui.Run(ctx, m)
}
