package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/awano27/fin-news-site/internal/item"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		count, size, err := e.store.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Store: %s (%s)\n", e.store.Path(), e.cfg.Store.Driver)
		fmt.Fprintf(w, "Items: %s\n", humanize.Comma(int64(count)))
		fmt.Fprintf(w, "Size: %s\n", humanize.Bytes(uint64(size)))

		byCategory := map[item.Category]int{}
		for _, it := range e.store.Load(cmd.Context()) {
			byCategory[it.Category]++
		}
		for _, c := range item.AllCategories() {
			fmt.Fprintf(w, "  %-8s %s\n", c, humanize.Comma(int64(byCategory[c])))
		}
		return nil
	},
}
