package font

import (
	"encoding/binary"
	"errors"
	"fmt"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var errUnknownFormat = errors.New("unrecognized font format")

// Metrics are font dimensions relative to the em size.
type Metrics struct {
	// Width is the advance of the digit zero, the cell width of a
	// monospaced font.
	Width     float64
	Ascender  float64
	Descender float64 // negative, below the baseline
	LineGap   float64
}

// FallbackMetrics are used when no configured font can be parsed. They
// match a typical monospaced font closely enough for the browser-side
// fallback to line up.
func FallbackMetrics() Metrics {
	return Metrics{Width: 0.6, Ascender: 1.02, Descender: -0.3}
}

// Axis is the range of a variation axis.
type Axis struct {
	Min, Max float64
}

// Info is what the pipeline learns from one font binary.
type Info struct {
	Format  Format
	Family  string
	Metrics Metrics

	// Weight is the OS/2 weight class, 0 when the table is absent.
	Weight int
	Bold   bool
	Italic bool

	// WeightAxis is set for variable fonts with a wght axis.
	WeightAxis    *Axis
	HasItalicAxis bool

	font *sfnt.Font
}

// HasRune reports whether the font maps r to a glyph.
func (i *Info) HasRune(r rune) bool {
	if i.font == nil {
		return false
	}
	var b sfnt.Buffer
	g, err := i.font.GlyphIndex(&b, r)
	return err == nil && g != 0
}

// Parse reads metrics and style information from a TTF, OTF, WOFF or
// WOFF2 binary.
func Parse(data []byte) (*Info, error) {
	format := DetectFormat(data)
	raw, err := unwrap(data, format)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	f, err := parseSFNT(raw)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	info := &Info{Format: format, font: f}
	var b sfnt.Buffer

	upem := float64(f.UnitsPerEm())
	if upem <= 0 {
		return nil, &ParseError{Err: errors.New("zero units per em")}
	}
	ppem := fixed.Int26_6(f.UnitsPerEm()) << 6
	toEm := func(v fixed.Int26_6) float64 { return float64(v) / 64 / upem }

	m, err := f.Metrics(&b, ppem, xfont.HintingNone)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("metrics: %w", err)}
	}
	info.Metrics.Ascender = toEm(m.Ascent)
	info.Metrics.Descender = -toEm(m.Descent)
	info.Metrics.LineGap = toEm(m.Height - m.Ascent - m.Descent)

	info.Metrics.Width = 1
	if g, err := f.GlyphIndex(&b, '0'); err == nil && g != 0 {
		if adv, err := f.GlyphAdvance(&b, g, ppem, xfont.HintingNone); err == nil {
			info.Metrics.Width = toEm(adv)
		}
	}

	for _, id := range []sfnt.NameID{sfnt.NameIDTypographicFamily, sfnt.NameIDFamily} {
		if name, err := f.Name(&b, id); err == nil && name != "" {
			info.Family = name
			break
		}
	}

	if ts, err := readTables(raw); err == nil {
		readStyle(info, ts)
	}
	return info, nil
}

// unwrap returns the sfnt binary inside a font file of the given format.
func unwrap(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatWOFF:
		return DecodeWOFF(data)
	case FormatWOFF2:
		return DecodeWOFF2(data)
	case FormatUnknown:
		return nil, errUnknownFormat
	default:
		return data, nil
	}
}

func parseSFNT(raw []byte) (*sfnt.Font, error) {
	if string(raw[:4]) != "ttcf" {
		return sfnt.Parse(raw)
	}
	c, err := sfnt.ParseCollection(raw)
	if err != nil {
		return nil, err
	}
	return c.Font(0)
}

// readStyle fills the fields sfnt does not expose: OS/2 weight class, head
// macStyle and fvar axes.
func readStyle(info *Info, ts *tableSet) {
	if os2 := ts.get("OS/2"); len(os2) >= 6 {
		info.Weight = int(binary.BigEndian.Uint16(os2[4:]))
	}
	if head := ts.get("head"); len(head) >= 46 {
		macStyle := binary.BigEndian.Uint16(head[44:])
		info.Bold = macStyle&1 != 0
		info.Italic = macStyle&2 != 0
	}

	fvar := ts.get("fvar")
	if len(fvar) < 16 {
		return
	}
	axesOffset := int(binary.BigEndian.Uint16(fvar[4:]))
	count := int(binary.BigEndian.Uint16(fvar[8:]))
	size := int(binary.BigEndian.Uint16(fvar[10:]))
	if size < 20 {
		return
	}
	for i := range count {
		off := axesOffset + i*size
		if off+20 > len(fvar) {
			return
		}
		rec := fvar[off:]
		switch string(rec[:4]) {
		case "wght":
			info.WeightAxis = &Axis{Min: fixed1616(rec[4:]), Max: fixed1616(rec[12:])}
		case "ital":
			info.HasItalicAxis = true
		}
	}
}

func fixed1616(b []byte) float64 {
	return float64(int32(binary.BigEndian.Uint32(b))) / 65536
}
