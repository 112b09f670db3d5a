package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awano27/fin-news-site/internal/item"
	"github.com/awano27/fin-news-site/internal/scheduler"
	"github.com/awano27/fin-news-site/internal/server"
)

var (
	flagListen     string
	flagNoSchedule bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the collection over HTTP and ingest on the configured schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		addr := e.cfg.Listen
		if flagListen != "" {
			addr = flagListen
		}
		if addr == "" {
			addr = "127.0.0.1:8080"
		}

		ctx := cmd.Context()

		if !flagNoSchedule && e.cfg.Schedule != "" {
			sched := scheduler.New(e.ingest, item.Zone, e.log)
			if err := sched.Schedule(e.cfg.Schedule); err != nil {
				return err
			}
			sched.Start(ctx)
			defer sched.Stop()
			e.log.Info().Str("schedule", e.cfg.Schedule).Time("next", sched.Next()).Msg("ingest scheduled")
		}

		srv := server.New(e.store, e.ingest, server.Options{
			Window:    e.cfg.RecencyDuration(),
			BriefSize: e.cfg.GetBriefSize(),
		}, e.log)
		if err := srv.Run(ctx, addr); err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&flagNoSchedule, "no-schedule", false, "do not run scheduled ingests")
}
