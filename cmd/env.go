package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/awano27/fin-news-site/internal/ai"
	"github.com/awano27/fin-news-site/internal/config"
	"github.com/awano27/fin-news-site/internal/enrich"
	"github.com/awano27/fin-news-site/internal/feed"
	"github.com/awano27/fin-news-site/internal/ingest"
	"github.com/awano27/fin-news-site/internal/query"
	"github.com/awano27/fin-news-site/internal/store"
)

// env is everything a command needs, built from the config file.
type env struct {
	cfg        *config.Config
	log        zerolog.Logger
	store      *store.Store
	ingest     *ingest.Service
	summarizer ai.Summarizer
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func loadEnv() (*env, error) {
	log := newLogger(flagVerbose)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := store.Open(cfg.Store.Driver, cfg.StorePath(), log)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	e := &env{cfg: cfg, log: log, store: st}

	if cfg.AIEnabled() {
		s, err := ai.New(cfg.AI, cfg.AIKey())
		if err != nil {
			log.Warn().Err(err).Msg("AI summarizer disabled")
		} else {
			e.summarizer = s
		}
	}

	client := &http.Client{Timeout: 30 * time.Second}
	e.ingest = ingest.New(st, feed.New(client), ingest.OptionsFromConfig(cfg), log)
	if cfg.Enrich.Readability {
		e.ingest.WithEnricher(enrich.New(cfg.EnrichTimeout(), e.summarizer, log))
	}
	return e, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// parseSince reads a window flag. "all" disables the window.
func parseSince(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return 0, nil
	}
	d := config.ParseDuration(s, -1)
	if d < 0 {
		return 0, fmt.Errorf("invalid window %q (use e.g. 6h, 3d or all)", s)
	}
	return d, nil
}

// initialState is the query state commands start from: the configured
// recency as the window, everything else at its default.
func initialState(cfg *config.Config, since string) (query.State, error) {
	st := query.Default().WithWindow(cfg.RecencyDuration())
	if since != "" {
		d, err := parseSince(since)
		if err != nil {
			return query.State{}, fmt.Errorf("invalid --since value: %w", err)
		}
		st = st.WithWindow(d)
	}
	return st, nil
}
