package render

import (
	"fmt"

	"github.com/pamburus/termframe/pkg/font"
	"github.com/pamburus/termframe/pkg/style"
	"github.com/pamburus/termframe/pkg/winstyle"
)

// Padding is the space between the window edge and the terminal text, in em.
type Padding struct {
	Horizontal float64
	Vertical   float64
}

// Options controls the document layout.
type Options struct {
	Families font.Families
	// FontSize is the terminal font size in px.
	FontSize float64
	Metrics  font.Metrics
	// NormalWeight is the weight of unstyled text, written once in the
	// stylesheet instead of on every span.
	NormalWeight style.Weight

	LineHeight float64
	Padding    Padding
	// Precision is the number of decimal digits of emitted numbers.
	Precision int
	// Stroke widens every background rect on each side to hide seams
	// between adjacent cells.
	Stroke float64
	// VarPalette writes the basic 16 colors once as CSS custom properties.
	VarPalette bool

	// Window is nil when no chrome is drawn.
	Window *winstyle.Resolved
	Title  string

	// FontFaces holds @font-face rules placed in the stylesheet.
	FontFaces string
}

// DefaultOptions returns options for a 12px font with fallback metrics and
// no window.
func DefaultOptions() Options {
	return Options{
		Families:     font.Families{"monospace"},
		FontSize:     12,
		Metrics:      font.FallbackMetrics(),
		NormalWeight: style.WeightNormal,
		LineHeight:   1.2,
		Padding:      Padding{Horizontal: 1, Vertical: 1},
		Precision:    3,
		Stroke:       0.2,
	}
}

// Validate checks that the options describe a drawable layout.
func (o Options) Validate() error {
	switch {
	case o.FontSize <= 0:
		return fmt.Errorf("render: font size must be positive, got %v", o.FontSize)
	case o.LineHeight <= 0:
		return fmt.Errorf("render: line height must be positive, got %v", o.LineHeight)
	case o.Metrics.Width <= 0:
		return fmt.Errorf("render: font width must be positive, got %v", o.Metrics.Width)
	case o.Padding.Horizontal < 0 || o.Padding.Vertical < 0:
		return fmt.Errorf("render: negative padding")
	case o.Precision < 0 || o.Precision > 8:
		return fmt.Errorf("render: precision %d out of range 0..8", o.Precision)
	case o.Stroke < 0:
		return fmt.Errorf("render: negative stroke %v", o.Stroke)
	}
	return nil
}
