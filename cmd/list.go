package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/awano27/fin-news-site/internal/classify"
	"github.com/awano27/fin-news-site/internal/config"
	"github.com/awano27/fin-news-site/internal/item"
	"github.com/awano27/fin-news-site/internal/query"
)

var (
	listSince    string
	listCategory string
	listType     string
	listIssuer   string
	listSearch   string
	listSort     string
	listNoDedupe bool
	listLimit    int
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the filtered, sorted view of the collection",
	Example: `  fin-news list --type idx --since 6h
  fin-news list --category company --issuer withIssuer --sort title_asc
  fin-news list --since all --no-dedupe -q 日銀 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		st, err := listState(e.cfg)
		if err != nil {
			return err
		}
		entries := query.View(e.store.Load(cmd.Context()), st, time.Now())
		if listLimit > 0 && len(entries) > listLimit {
			entries = entries[:listLimit]
		}

		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		printEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

func init() {
	f := listCmd.Flags()
	f.StringVar(&listSince, "since", "", "recency window (e.g. 6h, 3d, all)")
	f.StringVar(&listCategory, "category", query.All, "market, company, sns or all")
	f.StringVar(&listType, "type", query.All, "type or alias (idx, disc, fx, ...)")
	f.StringVar(&listIssuer, "issuer", query.All, "withIssuer, noIssuer or all")
	f.StringVarP(&listSearch, "query", "q", "", "substring search over title, summary, source, tags and tickers")
	f.StringVar(&listSort, "sort", string(query.DateDesc), "date_desc, date_asc, title_asc or title_desc")
	f.BoolVar(&listNoDedupe, "no-dedupe", false, "keep duplicate items")
	f.IntVar(&listLimit, "limit", 0, "print at most this many items")
	f.BoolVar(&listJSON, "json", false, "print entries as JSON")
}

func listState(cfg *config.Config) (query.State, error) {
	st, err := initialState(cfg, listSince)
	if err != nil {
		return query.State{}, err
	}
	typ, err := classify.ResolveType(listType)
	if err != nil {
		return query.State{}, err
	}
	st = st.
		WithCategory(listCategory).
		WithType(typ).
		WithIssuer(listIssuer).
		WithSearch(listSearch).
		WithSort(query.ParseSort(listSort))
	if listNoDedupe {
		st = st.ToggleDedupe()
	}
	return st, nil
}

func printEntries(w io.Writer, entries []query.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No items match.")
		return
	}
	for _, e := range entries {
		when := "--/-- --:--"
		if e.Item.PublishedAt != nil {
			when = e.Item.PublishedAt.In(item.Zone).Format("01/02 15:04")
		}
		fmt.Fprintf(w, "%s  %d  %-8s %-12s %s\n", when, e.Score, e.Item.Category, e.Item.Type, e.Item.Title)
		fmt.Fprintf(w, "                   %s  %s\n", e.Item.Source, e.Item.URL)
	}
}
