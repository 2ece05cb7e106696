// Package style turns cell attributes and color references into concrete
// paint values against a theme's colors for one mode.
package style

import (
	"fmt"

	"github.com/pamburus/termframe/pkg/color"
	"github.com/pamburus/termframe/pkg/grid"
	"github.com/pamburus/termframe/pkg/theme"
)

// DefaultFaintOpacity is applied to faint text when not configured.
const DefaultFaintOpacity = 0.5

// Options controls attribute mapping.
type Options struct {
	BoldIsBright bool
	FaintOpacity float64
	Weights      Weights
}

// DefaultOptions returns the defaults used when nothing is configured.
func DefaultOptions() Options {
	return Options{FaintOpacity: DefaultFaintOpacity, Weights: DefaultWeights()}
}

// Validate checks ranges.
func (o Options) Validate() error {
	if o.FaintOpacity < 0 || o.FaintOpacity > 1 {
		return fmt.Errorf("style: faint opacity %v out of range 0..1", o.FaintOpacity)
	}
	return o.Weights.Validate()
}

// Paint is the resolved appearance of one cell.
type Paint struct {
	FG color.RGBA
	BG color.RGBA
	// FGIndex and BGIndex hold the basic palette index (0..15) a color came
	// from, or -1.
	FGIndex int
	BGIndex int
	// Opacity applies to the glyph only.
	Opacity   float64
	Weight    Weight
	Italic    bool
	Underline grid.Underline
	// UnderlineColor is nil when the underline follows the text color.
	UnderlineColor *color.RGBA
	Strike         bool
}

// Resolver resolves cells against one set of theme colors.
type Resolver struct {
	colors theme.Colors
	fg, bg color.RGBA
	opts   Options
}

// NewResolver returns a resolver for colors. Zero weights in opts are
// replaced by their defaults.
func NewResolver(colors theme.Colors, opts Options) *Resolver {
	def := DefaultWeights()
	if opts.Weights.Normal == 0 {
		opts.Weights.Normal = def.Normal
	}
	if opts.Weights.Bold == 0 {
		opts.Weights.Bold = def.Bold
	}
	if opts.Weights.Faint == 0 {
		opts.Weights.Faint = def.Faint
	}
	return &Resolver{colors: colors, fg: colors.Foreground, bg: colors.Background, opts: opts}
}

// WithDefaults returns a copy of r whose default foreground and background
// are replaced by the given references when non-nil, as a program may do
// through OSC 10/11.
func (r *Resolver) WithDefaults(fg, bg *grid.Color) *Resolver {
	out := *r
	if fg != nil {
		out.fg, _ = r.lookup(*fg, r.fg)
	}
	if bg != nil {
		out.bg, _ = r.lookup(*bg, r.bg)
	}
	return &out
}

// Foreground returns the default foreground.
func (r *Resolver) Foreground() color.RGBA { return r.fg }

// Background returns the default background.
func (r *Resolver) Background() color.RGBA { return r.bg }

// Colors returns the theme colors the resolver was built with.
func (r *Resolver) Colors() theme.Colors { return r.colors }

// PaletteColor returns palette entry i with the standard fallback.
func (r *Resolver) PaletteColor(i uint8) color.RGBA {
	return r.colors.Resolve(i)
}

// lookup resolves a reference, reporting the basic palette index it came
// from or -1.
func (r *Resolver) lookup(c grid.Color, def color.RGBA) (color.RGBA, int) {
	switch c.Kind {
	case grid.ColorIndexed:
		idx := -1
		if c.Index < 16 {
			idx = int(c.Index)
		}
		return r.colors.Resolve(c.Index), idx
	case grid.ColorRGB:
		return color.Opaque(c.R, c.G, c.B), -1
	default:
		return def, -1
	}
}

// Resolve computes the paint of a cell.
func (r *Resolver) Resolve(c grid.Cell) Paint {
	a := c.Attrs
	fgRef := c.FG
	fgDefault := r.fg
	if a.Bold && r.opts.BoldIsBright {
		switch {
		case fgRef.Kind == grid.ColorIndexed && fgRef.Index < 8:
			fgRef = grid.Indexed(fgRef.Index + 8)
		case fgRef.IsDefault() && r.colors.BrightForeground != nil:
			fgDefault = *r.colors.BrightForeground
		}
	}

	fg, fgIdx := r.lookup(fgRef, fgDefault)
	bg, bgIdx := r.lookup(c.BG, r.bg)
	if a.Reverse {
		fg, bg = bg, fg
		fgIdx, bgIdx = bgIdx, fgIdx
	}

	p := Paint{
		FG:        fg,
		BG:        bg,
		FGIndex:   fgIdx,
		BGIndex:   bgIdx,
		Opacity:   fg.Opacity(),
		Weight:    r.opts.Weights.Normal,
		Italic:    a.Italic,
		Underline: a.Underline,
		Strike:    a.Strike,
	}
	if a.Faint {
		p.Opacity *= r.opts.FaintOpacity
	}
	switch {
	case a.Bold:
		p.Weight = r.opts.Weights.Bold
	case a.Faint:
		p.Weight = r.opts.Weights.Faint
	}
	if a.Underline != grid.UnderlineNone && !c.UnderlineColor.IsDefault() {
		uc, _ := r.lookup(c.UnderlineColor, fg)
		p.UnderlineColor = &uc
	}
	return p
}

// IsBlank reports whether a cell contributes nothing visible: no glyph (or a
// space) on the default background.
func (r *Resolver) IsBlank(c grid.Cell) bool {
	if c.HasGlyph() {
		return false
	}
	return r.Resolve(c).BG.SameRGB(r.bg)
}
