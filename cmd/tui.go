package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/awano27/fin-news-site/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := initialState(e.cfg, flagSince)
	if err != nil {
		return err
	}

	if flagRefresh {
		fmt.Fprintln(cmd.ErrOrStderr(), "Fetching sources...")
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		res, err := e.ingest.Run(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		for _, f := range res.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "  [warn] %s: %s\n", f.Source, f.Error)
		}
	}

	return tui.Run(tui.RunOpts{
		Store:      e.store,
		Ingest:     e.ingest,
		State:      st,
		BriefSize:  e.cfg.GetBriefSize(),
		Summarizer: e.summarizer,
		Brief:      flagBrief,
	})
}
