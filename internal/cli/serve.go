package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockflow/internal/server"
	"github.com/matzehuels/blockflow/pkg/interaction"
	"github.com/matzehuels/blockflow/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP host.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		tree     string
		allowAll bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a canvas over HTTP and WebSocket",
		Long: `Serve a canvas over HTTP and WebSocket.

The REST API under /api edits the tree and replays pointer events; /ws streams
the laid-out scene to every connected client after each change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, tree, allowAll)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&tree, "tree", "", "tree file or URL to load at startup")
	cmd.Flags().BoolVar(&allowAll, "cors-all", false, "allow requests from any origin")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, tree string, allowAll bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	in, err := c.newInteraction()
	if err != nil {
		return err
	}
	defer in.Destroy()

	if err := importTreeFile(ctx, in, tree); err != nil {
		return err
	}

	srv := server.New(server.Config{
		Addr:           addr,
		CORSOrigins:    cfg.Server.CORSOrigins,
		AllowAll:       allowAll,
		HighlightColor: cfg.Interaction.HighlightColor,
	}, in, c.Logger)

	printInfo("Serving on %s", StyleLink.Render("http://"+addr))
	return srv.Start(ctx)
}

// importTreeFile loads a tree file or URL into in. An empty path is a no-op.
func importTreeFile(ctx context.Context, in *interaction.Interaction, path string) error {
	if path == "" {
		return nil
	}
	t, err := pipeline.Load(ctx, pipeline.Options{Source: path})
	if err != nil {
		return err
	}
	if _, err := in.Import(ctx, t, nil); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	return nil
}
