package main

import (
	"github.com/spf13/cobra"

	"github.com/0xcro3dile/voices-of-independence/internal/adapters/catalog"
	"github.com/0xcro3dile/voices-of-independence/internal/adapters/terminal"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
)

func documentsCMD(cfgPath *string) *cobra.Command {
	var query string
	var limit int
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "List or search the historical document catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.NewEmbedded()
			if err != nil {
				return err
			}
			defer store.Close()

			r := terminal.NewRenderer(cmd.OutOrStdout())
			if query == "" {
				r.Documents(entities.GroupByCategory(store.Documents()))
				return nil
			}

			hits, err := store.Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}
			r.SearchHits(query, hits)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "free-text search over titles, authors and excerpts")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum search hits")
	return cmd
}
