package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContext(opts, func(c *cmdContext) error {
				snap, ok := c.Store.Get(args[0])
				if !ok {
					return fmt.Errorf("transaction '%s' not found", args[0])
				}
				return writeJSON(cmd.OutOrStdout(), snap)
			})
		},
	}
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContext(opts, func(c *cmdContext) error {
				if _, ok := c.Store.Get(args[0]); !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "No transaction '%s'\n", args[0])
					return nil
				}
				if err := c.Store.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}
