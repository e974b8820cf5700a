package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/booklens/booklens-server/internal/search"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the book search index from the database",
	Long:  "Rebuild the book search index from the database. Stop the server first; the index directory is locked while it runs.",
	Args:  cobra.NoArgs,
	RunE:  runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := newContext()
	defer cancel()

	idx, err := search.NewSearchIndex(search.Options{
		Path:   a.cfg.Storage.SearchIndexPath(),
		Logger: a.log.Logger,
	})
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer idx.Close()

	books, err := a.store.ListAllBooks(ctx)
	if err != nil {
		return err
	}

	if err := idx.Rebuild(ctx, books); err != nil {
		return err
	}

	count, err := idx.DocumentCount()
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d books\n", count)
	return nil
}
