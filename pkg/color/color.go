// Package color is the concrete RGBA color shared by themes, window styles
// and the renderer.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is an 8-bit per channel color. A zero alpha is never produced by
// Parse for opaque inputs; use Opaque to build colors in code.
type RGBA struct {
	R, G, B, A uint8
}

// Opaque returns a fully opaque color.
func Opaque(r, g, b uint8) RGBA {
	return RGBA{R: r, G: g, B: b, A: 0xff}
}

// Parse accepts "#rgb", "#rrggbb" and "#rrggbbaa" (the leading '#' is
// optional).
func Parse(s string) (RGBA, error) {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "#") {
		text = "#" + text
	}

	alpha := uint8(0xff)
	if len(text) == 9 {
		a, err := strconv.ParseUint(text[7:], 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("color: invalid alpha in %q", s)
		}
		alpha = uint8(a)
		text = text[:7]
	}

	c, err := colorful.Hex(text)
	if err != nil {
		return RGBA{}, fmt.Errorf("color: invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// MustParse is like Parse but panics on error. It is meant for built-in
// tables.
func MustParse(s string) RGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns "#rrggbb", dropping alpha.
func (c RGBA) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// String returns "#rrggbb" for opaque colors and "#rrggbbaa" otherwise.
func (c RGBA) String() string {
	if c.A == 0xff {
		return c.Hex()
	}
	return fmt.Sprintf("%s%02x", c.Hex(), c.A)
}

// Opacity returns alpha in [0, 1].
func (c RGBA) Opacity() float64 {
	return math.Round(float64(c.A)/255*1000) / 1000
}

// IsOpaque reports whether alpha is at its maximum.
func (c RGBA) IsOpaque() bool {
	return c.A == 0xff
}

// SameRGB reports whether two colors share their color channels.
func (c RGBA) SameRGB(o RGBA) bool {
	return c.R == o.R && c.G == o.G && c.B == o.B
}

// XParseColor formats the color as an X11 "rgb:rrrr/gggg/bbbb" string, the
// form terminals use in OSC 10/11 replies.
func (c RGBA) XParseColor() string {
	return fmt.Sprintf("rgb:%02x%02x/%02x%02x/%02x%02x", c.R, c.R, c.G, c.G, c.B, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c RGBA) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *RGBA) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
