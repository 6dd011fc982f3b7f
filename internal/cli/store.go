package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	blockio "github.com/matzehuels/blockflow/pkg/io"
	"github.com/matzehuels/blockflow/pkg/store"
)

// storeCommand creates the store command with subcommands for snapshots.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage saved snapshots",
		Long: `Manage saved snapshots.

The backend is selected in the config file ([store] driver = file, sqlite or
mongo). The default is a directory of JSON files under ~/.local/share/blockflow.`,
	}

	cmd.AddCommand(c.storeSaveCommand())
	cmd.AddCommand(c.storeLoadCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

func (c *CLI) storeSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <tree-file>",
		Short: "Save a tree file as a named snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				in, err := c.newInteraction()
				if err != nil {
					return err
				}
				defer in.Destroy()

				if err := importTreeFile(cmd.Context(), in, args[1]); err != nil {
					return err
				}
				snap, err := store.Capture(in, args[0])
				if err != nil {
					return err
				}
				if err := st.Save(cmd.Context(), snap); err != nil {
					return err
				}
				printSuccess("Saved %s (%d blocks)", StyleHighlight.Render(args[0]), in.Len())
				return nil
			})
		},
	}
}

func (c *CLI) storeLoadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Write a snapshot's tree to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				snap, err := st.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output == "" {
					return blockio.WriteTree(cmd.OutOrStdout(), snap.Tree, blockio.FormatJSON)
				}
				if err := blockio.ExportTree(snap.Tree, output); err != nil {
					return err
				}
				printSuccess("Loaded %s", StyleHighlight.Render(args[0]))
				printFile(output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout as JSON)")

	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				infos, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					printInfo("No snapshots saved")
					return nil
				}
				fmt.Fprintln(stdout, StyleTitle.Render("Snapshots"))
				for _, info := range infos {
					printKeyValue(info.Name, fmt.Sprintf("%d blocks · %s", info.Blocks, info.UpdatedAt.Format("2006-01-02 15:04")))
				}
				return nil
			})
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}
}

// withStore opens the configured backend for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
