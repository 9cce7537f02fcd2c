package cli

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"restui/internal/transaction"
)

func newPathsCommand(opts *RootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "paths <id>",
		Short: "Show the recorded path of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContext(opts, func(c *cmdContext) error {
				snap, ok := c.Store.Get(args[0])
				if !ok {
					return fmt.Errorf("transaction '%s' not found", args[0])
				}

				rows := transaction.ReconstructPathsWith(&snap, func(edgeID, nodeID string) {
					c.Log.Debug("Edge endpoint not in selection", "edgeId", edgeID, "nodeId", nodeID)
				})
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), rows)
				}

				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.SetHeader([]string{"#", "Source", "Target", "Method", "Path", "Status", "Timestamp"})
				table.SetAutoWrapText(false)
				for i, r := range rows {
					table.Append([]string{strconv.Itoa(i + 1), r.Source, r.Target, r.Method, r.Path, r.Status, r.Timestamp})
				}
				table.Render()
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON")
	return cmd
}
