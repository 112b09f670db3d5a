// Package scheduler runs the ingest on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/awano27/fin-news-site/internal/ingest"
)

// Runner performs one ingest.
type Runner interface {
	Run(ctx context.Context) (ingest.Result, error)
}

// Scheduler triggers a Runner on a cron spec.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	log     zerolog.Logger
	mu      sync.Mutex
	entryID cron.EntryID
	started bool
	ctx     context.Context
}

// New creates a scheduler evaluating specs in loc.
func New(runner Runner, loc *time.Location, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		log:    log,
		ctx:    context.Background(),
	}
}

// Validate reports whether spec is a schedule the scheduler accepts.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Schedule replaces the current job with one running on spec. Standard
// five-field specs and descriptors such as "@every 15m" are accepted.
func (s *Scheduler) Schedule(spec string) error {
	if err := Validate(spec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}

	entryID, err := s.cron.AddFunc(spec, s.tick)
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	s.entryID = entryID
	return nil
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	res, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, ingest.ErrRunInProgress):
		s.log.Info().Msg("scheduled ingest skipped, a run is in progress")
	case err != nil:
		s.log.Error().Err(err).Msg("scheduled ingest failed")
	default:
		s.log.Info().Int("added", res.Added).Int("total", res.Total).Msg("scheduled ingest done")
	}
}

// Next returns the next activation time, or the zero time when nothing is
// scheduled or the scheduler is stopped.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Start begins the scheduler. Runs receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.ctx = ctx
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
}

// cronLogger routes cron's own logging into zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
