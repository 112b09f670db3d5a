package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/awano27/fin-news-site/internal/item"
)

// SQLiteBackend keeps the collection in one table ordered by position.
type SQLiteBackend struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func OpenSQLite(dbPath string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	s := &SQLiteBackend{writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	s.readDB = readDB
	return s, nil
}

func (s *SQLiteBackend) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			position     INTEGER PRIMARY KEY,
			id           TEXT NOT NULL UNIQUE,
			category     TEXT NOT NULL,
			title        TEXT NOT NULL,
			summary      TEXT NOT NULL DEFAULT '',
			source       TEXT NOT NULL DEFAULT '',
			url          TEXT NOT NULL,
			published_at DATETIME,
			tags         TEXT NOT NULL DEFAULT '[]',
			locale       TEXT NOT NULL,
			verified     INTEGER NOT NULL DEFAULT 1,
			thumbnail    TEXT NOT NULL DEFAULT '',
			type         TEXT NOT NULL DEFAULT '',
			tickers      TEXT NOT NULL DEFAULT '[]',
			issuer       TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_items_url ON items(url);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Write replaces every row in one transaction.
func (s *SQLiteBackend) Write(ctx context.Context, items []item.Item) error {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (position, id, category, title, summary, source, url, published_at,
			tags, locale, verified, thumbnail, type, tickers, issuer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, it := range items {
		tags, _ := json.Marshal(nonNil(it.Tags))
		tickers, _ := json.Marshal(nonNil(it.Tickers))
		var published sql.NullTime
		if it.PublishedAt != nil {
			published = sql.NullTime{Time: *it.PublishedAt, Valid: true}
		}
		_, err := stmt.ExecContext(ctx, i, it.ID, string(it.Category), it.Title, it.Summary, it.Source, it.URL,
			published, string(tags), it.Locale, it.Verified, it.Thumbnail, it.Type, string(tickers), string(it.Issuer))
		if err != nil {
			return fmt.Errorf("inserting item %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteBackend) Read(ctx context.Context) ([]item.Item, error) {
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT id, category, title, summary, source, url, published_at,
			tags, locale, verified, thumbnail, type, tickers, issuer
		FROM items ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	items := []item.Item{}
	for rows.Next() {
		var (
			it            item.Item
			category      string
			issuer        string
			published     sql.NullTime
			tags, tickers string
		)
		if err := rows.Scan(&it.ID, &category, &it.Title, &it.Summary, &it.Source, &it.URL, &published,
			&tags, &it.Locale, &it.Verified, &it.Thumbnail, &it.Type, &tickers, &issuer); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		it.Category = item.Category(category)
		it.Issuer = item.Issuer(issuer)
		if published.Valid {
			t := published.Time
			it.PublishedAt = &t
		}
		if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags of %s: %w", it.ID, err)
		}
		if err := json.Unmarshal([]byte(tickers), &it.Tickers); err != nil {
			return nil, fmt.Errorf("decoding tickers of %s: %w", it.ID, err)
		}
		if len(it.Tickers) == 0 {
			it.Tickers = nil
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
