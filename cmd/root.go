package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/awano27/fin-news-site/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagVerbose bool

	flagSince   string
	flagRefresh bool
	flagBrief   bool
)

var rootCmd = &cobra.Command{
	Use:   "fin-news",
	Short: "Financial news, disclosures and market posts in one terminal view",
	Long: `fin-news aggregates market news, company disclosures and market-related posts
into one deduplicated collection you can filter, search, sort and rank by importance.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().StringVar(&flagSince, "since", "", "initial recency window (e.g. 6h, 3d, all)")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "run an ingest before launching")
	rootCmd.Flags().BoolVar(&flagBrief, "brief", false, "open the briefing first")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
}

var flagCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "fin-news %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return nil
		}
		res, err := update.Check(cmd.Context(), &http.Client{}, update.ReleasesURL, version)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Fprintln(w, "Up to date.")
			return nil
		}
		fmt.Fprintf(w, "Update available: v%s %s\n", res.LatestVersion, res.URL)
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
