package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newListCommand(opts *RootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContext(opts, func(c *cmdContext) error {
				snaps := c.Store.List()
				out := cmd.OutOrStdout()

				if asJSON {
					return writeJSON(out, snaps)
				}
				if len(snaps) == 0 {
					fmt.Fprintln(out, "No saved transactions")
					return nil
				}

				yellow := color.New(color.FgYellow)
				for _, s := range snaps {
					yellow.Fprintf(out, "%-8s ", shortID(s.ID))
					fmt.Fprintf(out, "%-6s %s ", s.Request.Method, s.Request.Path)
					statusColor(s.Status).Fprint(out, s.Status)
					if s.Timestamp != "" {
						fmt.Fprintf(out, " %s", s.Timestamp)
					}
					fmt.Fprintln(out)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
