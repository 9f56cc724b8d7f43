package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"frontoffice/internal/data"
)

// kind describes one id-keyed collection for the generic commands below.
type kind[T any] struct {
	key   string
	label string
	items func(*data.Snapshot) *[]T
	id    func(*T) *string
}

// hook runs under the write lock before a change is stored. prior is nil on
// create. It may edit other collections and returns the extra keys it touched.
type hook[T any] func(snap *data.Snapshot, prior, next *T) ([]string, error)

func get[T any](s *State, k kind[T], id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := *k.items(s.snap)
	if i := indexOf(items, k, id); i >= 0 {
		return items[i], nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %s", ErrNotFound, k.label, id)
}

func list[T any](s *State, k kind[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T{}, *k.items(s.snap)...)
}

func indexOf[T any](items []T, k kind[T], id string) int {
	for i := range items {
		if *k.id(&items[i]) == id {
			return i
		}
	}
	return -1
}

func create[T any](ctx context.Context, s *State, k kind[T], item T, before hook[T]) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := k.items(s.snap)
	id := k.id(&item)
	*id = strings.TrimSpace(*id)
	if *id == "" {
		*id = uuid.NewString()
	} else if indexOf(*items, k, *id) >= 0 {
		return item, fmt.Errorf("%w: %s %s already exists", ErrConflict, k.label, *id)
	}

	keys := []string{k.key}
	if before != nil {
		extra, err := before(s.snap, nil, &item)
		if err != nil {
			return item, err
		}
		keys = append(keys, extra...)
	}

	*items = append(*items, item)
	return item, s.persist(ctx, keys...)
}

// update applies patch to a copy of the stored record. The id cannot change.
func update[T any](ctx context.Context, s *State, k kind[T], id string, patch func(*T) error, before hook[T]) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := k.items(s.snap)
	i := indexOf(*items, k, id)
	if i < 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, k.label, id)
	}

	prior := (*items)[i]
	next := prior
	if err := patch(&next); err != nil {
		return prior, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	*k.id(&next) = id

	keys := []string{k.key}
	if before != nil {
		extra, err := before(s.snap, &prior, &next)
		if err != nil {
			return prior, err
		}
		keys = append(keys, extra...)
	}

	(*items)[i] = next
	return next, s.persist(ctx, keys...)
}

// remove deletes a record. after runs once the record is gone and returns any
// extra keys it touched.
func remove[T any](ctx context.Context, s *State, k kind[T], id string, after func(snap *data.Snapshot, removed T) []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := k.items(s.snap)
	i := indexOf(*items, k, id)
	if i < 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, k.label, id)
	}

	removed := (*items)[i]
	*items = append((*items)[:i:i], (*items)[i+1:]...)

	keys := []string{k.key}
	if after != nil {
		keys = append(keys, after(s.snap, removed)...)
	}
	return s.persist(ctx, keys...)
}

func requireField(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, name)
	}
	return nil
}
