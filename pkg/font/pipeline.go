package font

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Request describes the fonts a render needs.
type Request struct {
	Families Families
	Catalog  Catalog
	Embed    bool
	Subset   bool
	// Chars is the set of characters present in the rendered grid.
	Chars []rune
}

// Face is one embeddable font file.
type Face struct {
	Family  string
	Variant Variant
	// WeightRange is set for variable fonts and replaces Variant.Weight in
	// the generated CSS.
	WeightRange *Axis
	Format      Format
	Data        []byte
	Subsetted   bool
}

// Set is the outcome of resolving a Request.
type Set struct {
	// Metrics drive the cell geometry. MetricsFamily is empty when no font
	// could be parsed and FallbackMetrics were used.
	Metrics       Metrics
	MetricsFamily string

	// Faces are ordered by the request's family list, then by catalog file
	// order.
	Faces []Face

	// Warnings are the per-font failures that degraded the result.
	Warnings []error
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	// Workers bounds concurrent family tasks. Default: runtime.NumCPU().
	Workers int
	Logger  *slog.Logger
}

// Pipeline resolves font requests into metrics and embeddable faces.
type Pipeline struct {
	loader  *Loader
	workers int
	logger  *slog.Logger
	subset  func(data []byte, chars []rune) ([]byte, error)
}

// NewPipeline returns a pipeline that loads binaries through loader.
func NewPipeline(loader *Loader, opts PipelineOptions) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pipeline{loader: loader, workers: opts.Workers, logger: opts.Logger, subset: Subset}
}

// familyResult is the fan-in record of one family task.
type familyResult struct {
	metrics  *Metrics
	faces    []Face
	warnings []error
	usable   bool
}

// Resolve computes metrics and, when requested, the embedded faces.
// Per-font failures are logged and recorded in Set.Warnings. The only
// failure that aborts is ErrNoUsableFont: embedding was requested, some
// family has catalog entries, and not one file of them could be used.
func (p *Pipeline) Resolve(ctx context.Context, req Request) (*Set, error) {
	entries := p.entries(req)
	if !req.Embed {
		return p.metricsOnly(ctx, entries)
	}

	results := make([]familyResult, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, e := range entries {
		g.Go(func() error {
			r, err := p.processFamily(gctx, e, req)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &Set{Metrics: FallbackMetrics()}
	usable := false
	for i, r := range results {
		set.Faces = append(set.Faces, r.faces...)
		set.Warnings = append(set.Warnings, r.warnings...)
		usable = usable || r.usable
		if r.metrics != nil && set.MetricsFamily == "" {
			set.Metrics = *r.metrics
			set.MetricsFamily = entries[i].Family
		}
	}
	if len(entries) > 0 && !usable {
		return set, ErrNoUsableFont
	}
	if len(entries) > 0 && set.MetricsFamily == "" {
		p.logger.Warn("font: no metrics available, using fallback", "families", strings.Join(req.Families, ", "))
	}
	return set, nil
}

// entries returns the catalog entry of every requested family that has
// one, in family order, without duplicates.
func (p *Pipeline) entries(req Request) []CatalogEntry {
	var out []CatalogEntry
	seen := map[string]bool{}
	for _, family := range req.Families {
		e, ok := req.Catalog.Lookup(family)
		key := strings.ToLower(e.Family)
		if !ok || len(e.Files) == 0 || seen[key] {
			continue
		}
		seen[key] = true
		e.Family = family
		out = append(out, e)
	}
	return out
}

// metricsOnly retrieves the regular file of the first family that yields
// metrics.
func (p *Pipeline) metricsOnly(ctx context.Context, entries []CatalogEntry) (*Set, error) {
	set := &Set{Metrics: FallbackMetrics()}
	for _, e := range entries {
		data, err := p.loader.Load(ctx, e.Files[0])
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			set.Warnings = append(set.Warnings, p.warn(&FetchError{Family: e.Family, URL: e.Files[0], Err: err}))
			continue
		}
		info, err := Parse(data)
		if err != nil {
			set.Warnings = append(set.Warnings, p.warn(withSource(err, e.Files[0])))
			continue
		}
		set.Metrics = info.Metrics
		set.MetricsFamily = e.Family
		return set, nil
	}
	return set, nil
}

// processFamily loads, parses and optionally subsets every file of one
// catalog entry. Only context cancellation is returned as an error.
func (p *Pipeline) processFamily(ctx context.Context, e CatalogEntry, req Request) (familyResult, error) {
	var r familyResult
	for i, url := range e.Files {
		data, err := p.loader.Load(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return r, ctx.Err()
			}
			r.warnings = append(r.warnings, p.warn(&FetchError{Family: e.Family, URL: url, Err: err}))
			continue
		}

		format := DetectFormat(data)
		if format == FormatUnknown {
			r.warnings = append(r.warnings, p.warn(&ParseError{Source: url, Err: errUnknownFormat}))
			continue
		}

		info, err := Parse(data)
		if err != nil {
			// Still embeddable; the browser can read what we cannot.
			r.warnings = append(r.warnings, p.warn(withSource(err, url)))
		} else if r.metrics == nil {
			m := info.Metrics
			r.metrics = &m
		}

		face := Face{Family: e.Family, Variant: variantFor(i, info), Format: format, Data: data}
		if info != nil && info.WeightAxis != nil {
			face.WeightRange = info.WeightAxis
		}

		if req.Subset {
			sub, err := p.subset(data, req.Chars)
			if err != nil {
				r.warnings = append(r.warnings, p.warn(withSource(err, url)))
			} else {
				face.Data, face.Format, face.Subsetted = sub, FormatTTF, true
			}
		}

		r.faces = append(r.faces, face)
		r.usable = true
	}
	return r, nil
}

func (p *Pipeline) warn(err error) error {
	attrs := []any{"err", err}
	var fe *FetchError
	if errors.As(err, &fe) {
		attrs = append(attrs, "family", fe.Family, "url", fe.URL)
	}
	p.logger.Warn("font: degraded", attrs...)
	return err
}

// withSource records where a parse or subset error came from.
func withSource(err error, source string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Source == "" {
		pe.Source = source
	}
	var se *SubsetError
	if errors.As(err, &se) && se.Source == "" {
		se.Source = source
	}
	return err
}
