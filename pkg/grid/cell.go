// Package grid holds the captured terminal screen as a fixed-size matrix of
// cells and implements the auto-sizing that decides how large the virtual
// terminal should be.
package grid

import "fmt"

// ColorKind is the tag of a Color reference.
type ColorKind uint8

const (
	// ColorDefault refers to the theme's default foreground or background.
	ColorDefault ColorKind = iota
	// ColorIndexed refers to one of the 256 palette entries.
	ColorIndexed
	// ColorRGB is a literal 24-bit color.
	ColorRGB
)

// Color is an unresolved color reference. Resolution to concrete RGB happens
// at render time so one grid can be rendered against either theme mode.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// DefaultColor returns the reference to the theme default.
func DefaultColor() Color { return Color{} }

// Indexed returns a palette reference.
func Indexed(i uint8) Color { return Color{Kind: ColorIndexed, Index: i} }

// RGB returns a truecolor reference.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// IsDefault reports whether c refers to the theme default.
func (c Color) IsDefault() bool { return c.Kind == ColorDefault }

// String formats the reference for debugging.
func (c Color) String() string {
	switch c.Kind {
	case ColorIndexed:
		return fmt.Sprintf("idx(%d)", c.Index)
	case ColorRGB:
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	default:
		return "default"
	}
}

// Underline is the underline variant of a cell.
type Underline uint8

const (
	UnderlineNone Underline = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
	UnderlineDotted
	UnderlineDashed
)

// Attrs is the set of rendition attributes of a cell.
type Attrs struct {
	Bold      bool
	Faint     bool
	Italic    bool
	Underline Underline
	Strike    bool
	Reverse   bool
	// Wide marks the first column of a double-width glyph.
	Wide bool
}

// Cell is one terminal column position. Rune is 0 when the position holds
// no glyph of its own, as for the second column of a wide glyph.
type Cell struct {
	Rune           rune
	FG             Color
	BG             Color
	UnderlineColor Color
	Attrs          Attrs
}

// HasGlyph reports whether the cell shows a visible character.
func (c Cell) HasGlyph() bool {
	return c.Rune != 0 && c.Rune != ' '
}

// SamePaint reports whether two cells share colors and attributes, ignoring
// the glyph and the wide flag.
func (c Cell) SamePaint(o Cell) bool {
	a, b := c.Attrs, o.Attrs
	a.Wide, b.Wide = false, false
	return c.FG == o.FG && c.BG == o.BG && c.UnderlineColor == o.UnderlineColor && a == b
}
