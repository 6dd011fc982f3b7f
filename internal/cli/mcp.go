package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/matzehuels/blockflow/internal/mcp"
	"github.com/matzehuels/blockflow/pkg/store"
)

// mcpCommand creates the mcp command that serves the canvas as MCP tools.
func (c *CLI) mcpCommand() *cobra.Command {
	var (
		tree    string
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the canvas as Model Context Protocol tools over stdio",
		Long: `Serve the canvas as Model Context Protocol tools over stdio.

Register the command with an MCP client, for example:

  {"mcpServers": {"blockflow": {"command": "blockflow", "args": ["mcp"]}}}

Stdout carries the protocol, so logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMCP(cmd.Context(), tree, noStore)
		},
	}

	cmd.Flags().StringVar(&tree, "tree", "", "tree file or URL to load at startup")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable the snapshot tools")

	return cmd
}

func (c *CLI) runMCP(ctx context.Context, tree string, noStore bool) error {
	c.Logger.SetOutput(os.Stderr)

	in, err := c.newInteraction()
	if err != nil {
		return err
	}
	defer in.Destroy()

	if err := importTreeFile(ctx, in, tree); err != nil {
		return err
	}

	var st store.Store
	if !noStore {
		cfg, err := c.config()
		if err != nil {
			return err
		}
		if st, err = store.Open(ctx, cfg.Store); err != nil {
			return err
		}
		defer st.Close()
	}

	c.Logger.Debug("serving MCP over stdio")
	return mcpserver.NewServer(in, st).Serve()
}
