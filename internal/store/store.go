package store

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/awano27/fin-news-site/internal/item"
)

// Backend persists the whole collection. Read returns the items in stored
// order; Write replaces everything.
type Backend interface {
	Read(ctx context.Context) ([]item.Item, error)
	Write(ctx context.Context, items []item.Item) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Store is the single-writer persisted collection. Callers serialize merges.
type Store struct {
	backend Backend
	path    string
	log     zerolog.Logger
}

// Open opens the collection at path with the named driver.
func Open(driver, path string, log zerolog.Logger) (*Store, error) {
	var (
		b   Backend
		err error
	)
	switch driver {
	case "", DriverJSON:
		b, err = OpenFile(path)
	case DriverSQLite:
		b, err = OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q (valid: json, sqlite)", driver)
	}
	if err != nil {
		return nil, err
	}
	return New(b, path, log), nil
}

// New wraps an already opened backend.
func New(b Backend, path string, log zerolog.Logger) *Store {
	return &Store{backend: b, path: path, log: log.With().Str("component", "store").Logger()}
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// Path is the on-disk location of the collection.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted collection. An unreadable or corrupt store is
// logged and treated as empty.
func (s *Store) Load(ctx context.Context) []item.Item {
	items, err := s.backend.Read(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("store unreadable, treating as empty")
		return []item.Item{}
	}
	if items == nil {
		items = []item.Item{}
	}
	return items
}

// MergeResult reports the outcome of a merge.
type MergeResult struct {
	Added int
	Total int
	Items []item.Item
}

// Merge loads the collection, appends new items and rewrites it. Nothing is
// written when the batch adds no items.
func (s *Store) Merge(ctx context.Context, batch []Pending) (MergeResult, error) {
	existing := s.Load(ctx)
	return s.MergeInto(ctx, existing, batch, false)
}

// MergeInto merges batch into an already loaded collection. With force set
// the collection is written even when nothing is added, which clean mode
// uses after stripping entries.
func (s *Store) MergeInto(ctx context.Context, existing []item.Item, batch []Pending, force bool) (MergeResult, error) {
	merged, added := Merge(existing, batch)
	res := MergeResult{Added: added, Total: len(merged), Items: merged}
	if added == 0 && !force {
		s.log.Info().Int("total", len(existing)).Msg("merge: no new items, store left untouched")
		return res, nil
	}
	if err := s.backend.Write(ctx, merged); err != nil {
		return MergeResult{}, fmt.Errorf("writing collection: %w", err)
	}
	s.log.Info().Int("added", added).Int("total", len(merged)).Msg("merge: collection rewritten")
	return res, nil
}

// Stats returns the item count and on-disk size of the collection.
func (s *Store) Stats(ctx context.Context) (int, int64, error) {
	items, err := s.backend.Read(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("reading collection: %w", err)
	}
	fi, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return len(items), 0, nil
		}
		return 0, 0, err
	}
	return len(items), fi.Size(), nil
}
