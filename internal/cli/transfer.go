package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"restui/internal/store"
)

func newImportCommand(opts *RootOptions) *cobra.Command {
	var appendMode bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from an exported JSON file",
		Long: `Import replaces the saved history with the transactions in <file>.
With --append the transactions are added to the existing history instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			snaps, err := store.DecodeCollection(data)
			if err != nil {
				return err
			}

			return withContext(opts, func(c *cmdContext) error {
				write := c.Store.Replace
				if appendMode {
					write = c.Store.AppendAll
				}
				if err := write(snaps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transaction(s)\n", len(snaps))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&appendMode, "append", false, "append instead of replacing the history")
	return cmd
}

func newExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export saved transactions as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContext(opts, func(c *cmdContext) error {
				snaps := c.Store.List()
				if len(args) == 0 {
					return writeJSON(cmd.OutOrStdout(), snaps)
				}

				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", args[0], err)
				}
				defer f.Close()
				if err := writeJSON(f, snaps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transaction(s) to %s\n", len(snaps), args[0])
				return nil
			})
		},
	}
}
