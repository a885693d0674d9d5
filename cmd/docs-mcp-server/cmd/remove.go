package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

func newRemoveCmd(global *globalOptions) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "remove <library>",
		Short: "Delete every passage of one library version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), global)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.docs.RemoveVersion(cmd.Context(), args[0], version)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d passages from %s [%s].\n",
				n, args[0], displayVersion(version))
			return err
		},
	}

	cmd.Flags().StringVar(&version, "version", domain.Unversioned, "Version to remove (empty for unversioned)")
	return cmd
}
