package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgrid/pkg/gridio"
	"github.com/matzehuels/cardgrid/pkg/store"
)

// storeCommand creates the store command group for managing named layouts.
func (c *CLI) storeCommand() *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the named-layout store",
	}
	flags.registerPersistent(cmd)

	cmd.AddCommand(c.storeListCommand(&flags))
	cmd.AddCommand(c.storeSaveCommand(&flags))
	cmd.AddCommand(c.storeLoadCommand(&flags))
	cmd.AddCommand(c.storeDeleteCommand(&flags))

	return cmd
}

// openStore builds the selected backend, rejecting "none" which only makes
// sense for serve.
func (c *CLI) openStore(cmd *cobra.Command, flags *storeFlags) (store.Store, error) {
	if flags.backend == "none" {
		return nil, fmt.Errorf("store commands need a backend (file, memory, redis, or mongo)")
	}
	return c.newStore(cmd, flags)
}

func (c *CLI) storeListCommand(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No stored layouts")
				return nil
			}
			for _, name := range names {
				printDetail("%s", name)
			}
			return nil
		},
	}
}

func (c *CLI) storeSaveCommand(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "save [name] [file]",
		Short: "Store a layout file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]

			items, err := gridio.ReadLayoutFile(path)
			if err != nil {
				return err
			}

			st, err := c.openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Set(cmd.Context(), name, items); err != nil {
				return err
			}
			printSuccess("Saved %s (%d cards)", name, len(items))
			return nil
		},
	}
}

func (c *CLI) storeLoadCommand(flags *storeFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "load [name]",
		Short: "Write a stored layout to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			st, err := c.openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer st.Close()

			items, err := st.Get(cmd.Context(), name)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = name + ".json"
			}
			if err := gridio.WriteLayoutFile(items, path); err != nil {
				return err
			}
			printSuccess("Loaded %s", name)
			printFile(path)
			printDetail("%s", describeLayout(items))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <name>.json)")
	return cmd
}

func (c *CLI) storeDeleteCommand(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
