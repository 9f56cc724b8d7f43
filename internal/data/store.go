package data

import (
	"context"
	"encoding/json"
	"fmt"

	"frontoffice/internal/logger"
)

// Store is the key-based persistence boundary. Get returns every collection;
// Set replaces one collection wholesale.
type Store interface {
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, key string, raw json.RawMessage) error
	Ping(ctx context.Context) error
	Close() error
}

// Copy writes every collection of from into to. It backs the -import flag used
// to move a JSON file into a database.
func Copy(ctx context.Context, from, to Store) error {
	snap, err := from.Get(ctx)
	if err != nil {
		return fmt.Errorf("reading source store: %w", err)
	}

	for _, key := range Keys {
		raw, err := snap.Raw(key)
		if err != nil {
			return err
		}
		if err := to.Set(ctx, key, raw); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
		logger.LogInfo("Imported collection %s", key)
	}
	return nil
}

// canonical decodes raw into the typed collection for key and re-encodes it.
// Unknown fields are dropped.
func canonical(key string, raw json.RawMessage) (json.RawMessage, error) {
	scratch := NewSnapshot()
	if err := scratch.SetRaw(key, raw); err != nil {
		return nil, err
	}
	return scratch.Raw(key)
}
