package font

import (
	"context"
	"log/slog"

	"github.com/pamburus/termframe/pkg/fetch"
)

// Store is the content-addressed storage the loader caches binaries in.
type Store interface {
	// Fetch returns the verified bytes key was linked to.
	Fetch(key string) ([]byte, bool)
	Put(data []byte) (string, error)
	Link(key, hash string) error
}

// Loader retrieves font binaries, consulting the store before the network.
// Concurrent loads of the same URL may both fetch; the first stored blob
// wins and both callers get identical bytes.
type Loader struct {
	getter fetch.Getter
	store  Store
	logger *slog.Logger
}

// NewLoader returns a loader. store may be nil to disable caching.
func NewLoader(getter fetch.Getter, store Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{getter: getter, store: store, logger: logger}
}

// Load returns the bytes at location. Remote locations are cached by URL;
// local files are always read fresh.
func (l *Loader) Load(ctx context.Context, location string) ([]byte, error) {
	cacheable := l.store != nil && fetch.IsRemote(location)
	if cacheable {
		if data, ok := l.store.Fetch(location); ok {
			l.logger.Debug("font: cache hit", "url", location, "bytes", len(data))
			return data, nil
		}
	}

	data, err := l.getter.Get(ctx, location)
	if err != nil {
		return nil, err
	}

	if cacheable {
		hash, err := l.store.Put(data)
		if err == nil {
			err = l.store.Link(location, hash)
		}
		if err != nil {
			l.logger.Warn("font: cache write failed", "url", location, "err", err)
		}
	}
	return data, nil
}
