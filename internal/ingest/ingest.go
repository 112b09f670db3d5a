// Package ingest drives one collection run: fetch every source in turn,
// filter and normalize the records, and merge them into the store.
package ingest

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/awano27/fin-news-site/internal/classify"
	"github.com/awano27/fin-news-site/internal/config"
	"github.com/awano27/fin-news-site/internal/item"
	"github.com/awano27/fin-news-site/internal/store"
)

// ErrRunInProgress is returned when a run is requested while another one
// is still going.
var ErrRunInProgress = errors.New("ingest run already in progress")

// Fetcher fetches the raw records of one source.
type Fetcher interface {
	Fetch(ctx context.Context, source config.Source) ([]item.Raw, error)
}

// Enricher fills missing summaries in place before normalization.
type Enricher interface {
	Enrich(ctx context.Context, raws []item.Raw) int
}

// Options are the per-run knobs.
type Options struct {
	Sources          []config.Source
	PerSourceLimit   int
	ItemLimit        int
	Recency          time.Duration
	CleanMode        bool
	PlaceholderHosts []string
}

// OptionsFromConfig takes the enabled sources and limits from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Sources:          cfg.EnabledSources(),
		PerSourceLimit:   cfg.PerSourceLimit,
		ItemLimit:        cfg.ItemLimit,
		Recency:          cfg.RecencyDuration(),
		CleanMode:        cfg.CleanMode,
		PlaceholderHosts: cfg.PlaceholderHosts,
	}
}

// SourceError records a failed source.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Result summarizes one run.
type Result struct {
	Fetched   int           `json:"fetched"`
	Accepted  int           `json:"accepted"`
	Enriched  int           `json:"enriched"`
	Stale     int           `json:"stale"`
	Batch     int           `json:"batch"`
	Removed   int           `json:"removed"`
	Added     int           `json:"added"`
	Total     int           `json:"total"`
	Failures  []SourceError `json:"failures,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// State is a snapshot of the service for status displays.
type State struct {
	Running         bool      `json:"running"`
	StartedAt       time.Time `json:"startedAt"`
	LastCompletedAt time.Time `json:"lastCompletedAt"`
	LastError       string    `json:"lastError,omitempty"`
	LastResult      *Result   `json:"lastResult,omitempty"`
}

// Service serializes runs against one store. Every writer of the collection
// goes through Run.
type Service struct {
	store    *store.Store
	fetcher  Fetcher
	enricher Enricher
	opts     Options
	log      zerolog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State
}

func New(st *store.Store, fetcher Fetcher, opts Options, log zerolog.Logger) *Service {
	return &Service{
		store:   st,
		fetcher: fetcher,
		opts:    opts,
		log:     log.With().Str("component", "ingest").Logger(),
		now:     time.Now,
	}
}

// WithEnricher enables pre-normalization enrichment.
func (s *Service) WithEnricher(e Enricher) *Service {
	s.enricher = e
	return s
}

// SetCleanMode toggles the placeholder sweep for later runs.
func (s *Service) SetCleanMode(on bool) {
	s.mu.Lock()
	s.opts.CleanMode = on
	s.mu.Unlock()
}

// Snapshot returns the current run state.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run performs one ingest. It returns ErrRunInProgress without doing
// anything if another run holds the store.
func (s *Service) Run(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.state.Running {
		s.mu.Unlock()
		return Result{}, ErrRunInProgress
	}
	start := s.now()
	s.state.Running = true
	s.state.StartedAt = start
	opts := s.opts
	s.mu.Unlock()

	res, err := s.run(ctx, opts, start)
	res.StartedAt = start
	res.Duration = time.Since(start)

	s.mu.Lock()
	s.state.Running = false
	s.state.LastCompletedAt = s.now()
	s.state.LastError = ""
	if err != nil {
		s.state.LastError = err.Error()
	} else {
		r := res
		s.state.LastResult = &r
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Dur("took", res.Duration).Msg("ingest failed")
		return res, err
	}
	s.log.Info().
		Int("fetched", res.Fetched).
		Int("accepted", res.Accepted).
		Int("added", res.Added).
		Int("removed", res.Removed).
		Int("total", res.Total).
		Int("failed_sources", len(res.Failures)).
		Dur("took", res.Duration.Round(time.Millisecond)).
		Msg("ingest finished")
	return res, nil
}

type accepted struct {
	prefix string
	raw    item.Raw
}

func (s *Service) run(ctx context.Context, opts Options, now time.Time) (Result, error) {
	var res Result

	var pool []accepted
	for i, src := range opts.Sources {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		raws, err := s.fetcher.Fetch(ctx, src)
		if err != nil {
			res.Failures = append(res.Failures, SourceError{Source: src.Name, Error: err.Error()})
			s.log.Warn().Err(err).Str("source", src.Name).Msg("source failed, skipping")
			continue
		}
		if limit := sourceLimit(src, opts.PerSourceLimit); limit > 0 && len(raws) > limit {
			raws = raws[:limit]
		}
		res.Fetched += len(raws)
		n := 0
		for _, r := range raws {
			if item.Accept(r) {
				pool = append(pool, accepted{prefix: src.IDPrefix(), raw: r})
				n++
			}
		}
		s.log.Debug().Str("source", src.Name).Int("records", len(raws)).Int("accepted", n).
			Msgf("source done (%d/%d)", i+1, len(opts.Sources))
	}
	res.Accepted = len(pool)

	if s.enricher != nil && len(pool) > 0 {
		raws := make([]item.Raw, len(pool))
		for i, a := range pool {
			raws[i] = a.raw
		}
		res.Enriched = s.enricher.Enrich(ctx, raws)
	}

	cutoff := now.Add(-opts.Recency)
	batch := make([]store.Pending, 0, len(pool))
	for _, a := range pool {
		it := classify.Classify(item.Normalize(a.raw))
		if opts.Recency > 0 && it.PublishedAt != nil && it.PublishedAt.Before(cutoff) {
			res.Stale++
			continue
		}
		batch = append(batch, store.Pending{Prefix: a.prefix, Item: it})
	}
	if opts.ItemLimit > 0 && len(batch) > opts.ItemLimit {
		batch = batch[:opts.ItemLimit]
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	existing := s.store.Load(ctx)
	if opts.CleanMode {
		var removed, dropped int
		existing, removed = stripPlaceholders(existing, opts.PlaceholderHosts)
		batch, dropped = stripPendingPlaceholders(batch, opts.PlaceholderHosts)
		res.Removed = removed
		if removed+dropped > 0 {
			s.log.Info().Int("removed", removed).Int("dropped", dropped).Msg("clean mode stripped placeholder entries")
		}
	}
	res.Batch = len(batch)

	merged, err := s.store.MergeInto(ctx, existing, batch, res.Removed > 0)
	if err != nil {
		return res, err
	}
	res.Added = merged.Added
	res.Total = merged.Total
	return res, nil
}

func sourceLimit(src config.Source, global int) int {
	if src.Limit > 0 {
		return src.Limit
	}
	return global
}

// IsPlaceholder reports whether it looks like test or dummy content: the
// unknown-title placeholder, a [TEST] or [DUMMY] title, or a url on one of
// hosts (subdomains included).
func IsPlaceholder(it item.Item, hosts []string) bool {
	title := strings.TrimSpace(it.Title)
	if title == item.UnknownTitle {
		return true
	}
	upper := strings.ToUpper(title)
	if strings.HasPrefix(upper, "[TEST]") || strings.HasPrefix(upper, "[DUMMY]") {
		return true
	}
	u, err := url.Parse(it.URL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && (host == h || strings.HasSuffix(host, "."+h)) {
			return true
		}
	}
	return false
}

func stripPlaceholders(items []item.Item, hosts []string) ([]item.Item, int) {
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		if !IsPlaceholder(it, hosts) {
			out = append(out, it)
		}
	}
	return out, len(items) - len(out)
}

func stripPendingPlaceholders(batch []store.Pending, hosts []string) ([]store.Pending, int) {
	out := make([]store.Pending, 0, len(batch))
	for _, p := range batch {
		if !IsPlaceholder(p.Item, hosts) {
			out = append(out, p)
		}
	}
	return out, len(batch) - len(out)
}
