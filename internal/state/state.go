// Package state holds the in-memory snapshot the server works from. Every
// mutation is a command that updates memory and then persists the collections it
// touched.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"frontoffice/internal/data"
	"frontoffice/internal/inventory"
	"frontoffice/internal/logger"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
)

// State guards the current snapshot. Readers get copies; writers hold the lock
// through persistence so collection writes are not interleaved.
type State struct {
	mu      sync.RWMutex
	snap    *data.Snapshot
	store   data.Store
	catalog *inventory.Catalog
}

// New loads the snapshot from store.
func New(ctx context.Context, store data.Store) (*State, error) {
	s := &State{store: store, catalog: inventory.NewCatalog()}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces memory with what the store holds.
func (s *State) Reload(ctx context.Context) error {
	snap, err := s.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.catalog.Load(snap.Inventory)

	logger.LogInfo("Loaded snapshot: %d inventory items, %d deals, %d players, %d users",
		len(snap.Inventory), len(snap.Deals), len(snap.Players), len(snap.Users))
	return nil
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() *data.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Catalog is the inventory price list, kept in step with the inventory
// collection.
func (s *State) Catalog() *inventory.Catalog {
	return s.catalog
}

// Store exposes the persistence backend for backups and health checks.
func (s *State) Store() data.Store {
	return s.store
}

// Replace swaps a whole collection, the raw set-by-key operation. Memory keeps
// the old collection when the store refuses the write.
func (s *State) Replace(ctx context.Context, key string, raw json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.Clone()
	if err := next.SetRaw(key, raw); err != nil {
		if errors.Is(err, data.ErrUnknownCollection) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	prev := s.snap
	s.snap = next
	if err := s.persist(ctx, key); err != nil {
		s.snap = prev
		s.catalog.Load(prev.Inventory)
		return err
	}
	return nil
}

// persist writes each key, continuing past failures so every collection gets a
// chance. The first error is returned.
func (s *State) persist(ctx context.Context, keys ...string) error {
	var firstErr error
	seen := map[string]bool{}
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true

		if key == data.KeyInventory {
			s.catalog.Load(s.snap.Inventory)
		}

		raw, err := s.snap.Raw(key)
		if err == nil {
			err = s.store.Set(ctx, key, raw)
		}
		if err != nil {
			logger.LogError("Failed to persist %s: %v", key, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("persisting %s: %w", key, err)
			}
		}
	}
	return firstErr
}
