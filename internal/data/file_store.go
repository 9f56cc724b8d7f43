package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"frontoffice/internal/logger"
)

// FileStore keeps every collection in one JSON document on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file and its directory are
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Get(ctx context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		logger.LogWarn("Data file %s not found, starting with an empty snapshot", f.path)
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}

	snap := &Snapshot{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("decoding data file %s: %w", f.path, err)
		}
	}
	snap.normalize()
	return snap, nil
}

func (f *FileStore) Set(ctx context.Context, key string, raw json.RawMessage) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, key)
	}
	encoded, err := canonical(key, raw)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Keys this build does not know about are carried over untouched.
	doc := map[string]json.RawMessage{}
	existing, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading data file: %w", err)
	case len(existing) > 0:
		if err := json.Unmarshal(existing, &doc); err != nil {
			return fmt.Errorf("decoding data file %s: %w", f.path, err)
		}
	}
	doc[key] = encoded

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding data file: %w", err)
	}
	return writeFileAtomic(f.path, out)
}

func (f *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(filepath.Dir(f.path))
	if err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(f.path))
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing data file: %w", err)
	}
	return nil
}
