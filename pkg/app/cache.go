package app

import (
	"fmt"
	"io"

	"github.com/pamburus/termframe/pkg/cache"
)

// ClearCache empties the font cache in dir and reports what was removed.
func ClearCache(w io.Writer, dir string) error {
	s, err := cache.NewStore(cache.StoreConfig{Dir: dir})
	if err != nil {
		return err
	}
	entries, size := s.Stats().Entries, s.Size()
	if err := s.Clear(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "removed %d cache entries (%d bytes) from %s\n", entries, size, s.Dir())
	return err
}
