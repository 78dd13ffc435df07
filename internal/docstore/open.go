package docstore

import (
	"context"
	"fmt"

	"github.com/Annany2002/nebula-docstore/config"
)

// Open builds the configured backend and checks that whatever is already
// persisted can be decoded. A corrupt snapshot is returned as an error,
// never silently replaced by an empty one.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.StoreDriver {
	case config.StoreDriverJSON:
		backend, err = OpenFile(cfg.StorePath())
	case config.StoreDriverSQLite, "":
		backend, err = OpenSQLite(cfg.StorePath())
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}

	store := New(backend)
	if err := store.Verify(ctx); err != nil {
		backend.Close()
		return nil, err
	}
	customLog.Printf("Storage: Document store ready (%s).", cfg.StoreDriver)
	return store, nil
}
