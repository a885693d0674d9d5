package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionsCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "versions <library>",
		Short: "List known versions of a library, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), global)
			if err != nil {
				return err
			}
			defer a.Close()

			versions, err := a.docs.ListVersions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "No versions recorded for %s.\n", args[0])
				return err
			}
			for _, v := range versions {
				mark := "indexed"
				if !v.Indexed {
					mark = "not indexed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", displayVersion(v.Version), mark)
			}
			return nil
		},
	}
}
