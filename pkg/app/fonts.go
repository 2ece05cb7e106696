package app

import (
	"context"

	"github.com/pamburus/termframe/pkg/cache"
	"github.com/pamburus/termframe/pkg/fetch"
	"github.com/pamburus/termframe/pkg/font"
	"github.com/pamburus/termframe/pkg/grid"
)

const userAgent = "termframe"

// fonts resolves metrics and, when configured, embeddable faces for the
// characters present in g.
func (j *job) fonts(ctx context.Context, g *grid.Grid) (*font.Set, error) {
	getter := j.opts.Getter
	if getter == nil {
		getter = fetch.New(fetch.Options{Logger: j.log, UserAgent: userAgent})
	}

	store := j.store()
	var fs font.Store
	if store != nil {
		fs = store
	}
	pipeline := font.NewPipeline(font.NewLoader(getter, fs, j.log), font.PipelineOptions{Logger: j.log})
	svg := j.cfg.Rendering.SVG
	set, err := pipeline.Resolve(ctx, font.Request{
		Families: j.cfg.Font.Family,
		Catalog:  j.cfg.Fonts,
		Embed:    svg.EmbedFonts,
		Subset:   svg.SubsetFonts,
		Chars:    g.Chars(),
	})
	if err != nil {
		return nil, err
	}
	j.log.Debug("fonts resolved", "metrics", set.MetricsFamily, "faces", len(set.Faces), "warnings", len(set.Warnings))
	if store != nil {
		st := store.Stats()
		j.log.Debug("font cache", "dir", store.Dir(), "hits", st.Hits, "misses", st.Misses, "corrupted", st.Corrupted, "entries", st.Entries, "bytes", st.Size)
	}
	return set, nil
}

// store opens the font cache. A cache that cannot be opened only costs
// downloads, so the failure is logged and fonts are fetched uncached.
func (j *job) store() *cache.Store {
	dir := j.cfg.CacheDirOrDefault()
	s, err := cache.NewStore(cache.StoreConfig{Dir: dir})
	if err != nil {
		j.log.Warn("font cache unavailable", "dir", dir, "err", err)
		return nil
	}
	return s
}
