package grid

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pamburus/termframe/pkg/dimension"
)

// Generous capture size used for axes without an upper bound.
const (
	DefaultAutoCols = 240
	DefaultAutoRows = 1000
)

// Capturer runs the virtual terminal at the requested size and returns the
// resulting screen.
type Capturer interface {
	Capture(ctx context.Context, cols, rows int) (*Grid, error)
}

// CapturerFunc adapts a function to the Capturer interface.
type CapturerFunc func(ctx context.Context, cols, rows int) (*Grid, error)

// Capture calls f.
func (f CapturerFunc) Capture(ctx context.Context, cols, rows int) (*Grid, error) {
	return f(ctx, cols, rows)
}

// Options configures Normalize.
type Options struct {
	Width  dimension.Spec
	Height dimension.Spec

	// IsBlank decides which cells are trimmed as empty. Defaults to
	// DefaultBlank.
	IsBlank func(Cell) bool

	Logger *slog.Logger
}

// Normalize resolves the final terminal size and returns the grid captured
// at that size. Fixed axes resolve immediately; automatic axes capture once
// at the largest permissible size, trim to the content, fit into the spec
// and capture again only if the resolved size differs from the first one.
// Capture errors are returned unchanged.
func Normalize(ctx context.Context, c Capturer, opts Options) (*Grid, error) {
	if err := opts.Width.Validate(); err != nil {
		return nil, fmt.Errorf("grid: width: %w", err)
	}
	if err := opts.Height.Validate(); err != nil {
		return nil, fmt.Errorf("grid: height: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	cols := opts.Width.CaptureSize(DefaultAutoCols)
	rows := opts.Height.CaptureSize(DefaultAutoRows)

	log.Debug("capturing", "cols", cols, "rows", rows)
	g, err := c.Capture(ctx, cols, rows)
	if err != nil {
		return nil, err
	}
	if opts.Width.IsFixed() && opts.Height.IsFixed() {
		return g, nil
	}

	usedCols, usedRows := g.Bounds(opts.IsBlank)
	finalCols := opts.Width.Fit(usedCols)
	finalRows := opts.Height.Fit(usedRows)
	log.Debug("resolved size",
		"content_cols", usedCols, "content_rows", usedRows,
		"cols", finalCols, "rows", finalRows)

	if finalCols == g.Cols() && finalRows == g.Rows() {
		return g, nil
	}

	log.Debug("recapturing", "cols", finalCols, "rows", finalRows)
	return c.Capture(ctx, finalCols, finalRows)
}
