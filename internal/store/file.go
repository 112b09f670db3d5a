package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/awano27/fin-news-site/internal/item"
)

// FileBackend keeps the collection as one JSON array.
type FileBackend struct {
	path string
}

func OpenFile(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &FileBackend{path: path}, nil
}

func (f *FileBackend) Read(ctx context.Context) ([]item.Item, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []item.Item{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	var items []item.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	return items, nil
}

// Write replaces the file atomically via a temp file in the same directory.
func (f *FileBackend) Write(ctx context.Context, items []item.Item) error {
	if items == nil {
		items = []item.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".items-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }
