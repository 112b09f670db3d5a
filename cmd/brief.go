package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/awano27/fin-news-site/internal/briefing"
	"github.com/awano27/fin-news-site/internal/classify"
	"github.com/awano27/fin-news-site/internal/query"
)

var (
	briefSince string
	briefSize  int
	briefFocus string
	briefJSON  bool
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Print the top items of the window by importance",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		st, err := initialState(e.cfg, briefSince)
		if err != nil {
			return err
		}
		focus, err := classify.ResolveType(briefFocus)
		if err != nil {
			return err
		}
		if focus == query.All {
			focus = ""
		}
		size := briefSize
		if size <= 0 {
			size = e.cfg.GetBriefSize()
		}

		b := briefing.Generate(e.store.Load(cmd.Context()), briefing.Options{
			Window: st.Window,
			Size:   size,
			Focus:  focus,
		}, time.Now())

		if briefJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(b)
		}
		printBriefing(cmd.OutOrStdout(), b)
		return nil
	},
}

func init() {
	briefCmd.Flags().StringVar(&briefSince, "since", "", "recency window (e.g. 6h, 3d)")
	briefCmd.Flags().IntVar(&briefSize, "size", 0, "number of items (default brief_size)")
	briefCmd.Flags().StringVar(&briefFocus, "focus", "", "restrict to one type or alias")
	briefCmd.Flags().BoolVar(&briefJSON, "json", false, "print the briefing as JSON")
}

func printBriefing(w io.Writer, b *briefing.Briefing) {
	fmt.Fprintf(w, "%s  %s\n", b.Greeting, b.DateLabel)
	fmt.Fprintf(w, "%d item(s) scanned, %d selected", b.Scanned, b.Selected)
	if b.Focus != "" {
		fmt.Fprintf(w, " (focus: %s)", b.Focus)
	}
	fmt.Fprintln(w)
	if b.ActiveSources != "" {
		fmt.Fprintf(w, "Sources: %s\n", b.ActiveSources)
	}
	if len(b.Themes) > 0 {
		fmt.Fprintln(w, "Themes:")
		for _, t := range b.Themes {
			fmt.Fprintf(w, "  ・%s\n", t)
		}
	}
	for _, c := range b.Cards {
		fmt.Fprintf(w, "\n%d. [%d] %s\n", c.Index, c.Entry.Score, c.Entry.Item.Title)
		fmt.Fprintf(w, "   %s · %s · %d min\n", c.Entry.Item.Source, c.Entry.Item.Type, c.ReadingTime)
		if c.Excerpt != "" {
			fmt.Fprintf(w, "   %s\n", c.Excerpt)
		}
		fmt.Fprintf(w, "   %s\n", c.Entry.Item.URL)
	}
}
