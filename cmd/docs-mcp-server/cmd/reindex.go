package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReindexCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Drop and recreate the passage index",
		Long: `Drop the passage index and create it again with the configured
dimensions and HNSW parameters. Stored passages are kept; Redis indexes
them again in the background.

Run this after changing index.hnsw_m or index.hnsw_ef_construction.
Changing the embedding model or dimensions requires indexing the
passages again instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), global)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.docs.RebuildIndex(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Passage index rebuilt.")
			return err
		},
	}
}
