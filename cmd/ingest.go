package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/awano27/fin-news-site/internal/ingest"
)

var flagClean bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch every enabled source and merge new items into the store",
	Long: `Run each enabled source in order, normalize and classify what it returns, and
append the items whose URL is new to the collection.

With --clean, placeholder items (unknown titles, [TEST]/[DUMMY] titles, placeholder
hosts) are also removed from the stored collection and the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if cmd.Flags().Changed("clean") {
			e.ingest.SetCleanMode(flagClean)
		}

		res, err := e.ingest.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&flagClean, "clean", false, "strip placeholder items (overrides clean_mode)")
}

func printResult(w io.Writer, res ingest.Result) {
	fmt.Fprintf(w, "Fetched %d record(s), accepted %d", res.Fetched, res.Accepted)
	if res.Enriched > 0 {
		fmt.Fprintf(w, ", enriched %d", res.Enriched)
	}
	if res.Stale > 0 {
		fmt.Fprintf(w, ", %d older than the cutoff", res.Stale)
	}
	fmt.Fprintln(w, ".")
	if res.Removed > 0 {
		fmt.Fprintf(w, "Removed %d placeholder item(s).\n", res.Removed)
	}
	if res.Added == 0 {
		fmt.Fprintf(w, "No new items. The collection has %d item(s).\n", res.Total)
	} else {
		fmt.Fprintf(w, "Added %d new item(s). The collection has %d item(s).\n", res.Added, res.Total)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  [warn] %s: %s\n", f.Source, f.Error)
	}
}
