package font

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/image/font/sfnt"
)

// Composite glyph component flags.
const (
	compArgsAreWords  = 0x0001
	compHaveScale     = 0x0008
	compMoreComponent = 0x0020
	compHaveXYScale   = 0x0040
	compHaveTwoByTwo  = 0x0080
)

var (
	errNotTrueType = errors.New("only TrueType outlines can be subset")
	errNoGlyf      = errors.New("missing glyf, loca, head or maxp table")
)

// Subset rebuilds a TrueType font (TTF, WOFF or WOFF2 input) so that it
// keeps only the outlines reachable from chars: glyph 0, every glyph the
// cmap maps a character to, and the components of composite glyphs. Glyph ids are
// preserved, so cmap, hmtx and layout tables stay valid; dropped glyphs
// become empty. The result is always an uncompressed TTF.
func Subset(data []byte, chars []rune) ([]byte, error) {
	format := DetectFormat(data)
	if format == FormatOTF {
		return nil, &SubsetError{Err: errNotTrueType}
	}
	raw, err := unwrap(data, format)
	if err != nil {
		return nil, &SubsetError{Err: err}
	}

	out, err := subsetSFNT(raw, chars)
	if err != nil {
		return nil, &SubsetError{Err: err}
	}
	return out, nil
}

func subsetSFNT(raw []byte, chars []rune) ([]byte, error) {
	ts, err := readTables(raw)
	if err != nil {
		return nil, err
	}
	if ts.has("CFF ") || ts.has("CFF2") {
		return nil, errNotTrueType
	}
	glyf, loca, head, maxp := ts.get("glyf"), ts.get("loca"), ts.get("head"), ts.get("maxp")
	if glyf == nil || loca == nil || len(head) < 54 || len(maxp) < 6 {
		return nil, errNoGlyf
	}

	numGlyphs := int(binary.BigEndian.Uint16(maxp[4:]))
	offsets, err := readLoca(loca, numGlyphs, binary.BigEndian.Uint16(head[50:]) != 0)
	if err != nil {
		return nil, err
	}

	f, err := sfnt.Parse(raw)
	if err != nil {
		return nil, err
	}

	keep := map[int]bool{0: true}
	queue := []int{0}
	var b sfnt.Buffer
	for _, r := range chars {
		g, err := f.GlyphIndex(&b, r)
		if err != nil || g == 0 || int(g) >= numGlyphs || keep[int(g)] {
			continue
		}
		keep[int(g)] = true
		queue = append(queue, int(g))
	}

	// Pull in composite components.
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		comps, err := components(glyphData(glyf, offsets, g))
		if err != nil {
			return nil, fmt.Errorf("glyph %d: %w", g, err)
		}
		for _, c := range comps {
			if c < numGlyphs && !keep[c] {
				keep[c] = true
				queue = append(queue, c)
			}
		}
	}

	newGlyf := make([]byte, 0, len(glyf))
	newLoca := make([]byte, 4*(numGlyphs+1))
	for g := range numGlyphs {
		binary.BigEndian.PutUint32(newLoca[4*g:], uint32(len(newGlyf)))
		if keep[g] {
			newGlyf = append(newGlyf, glyphData(glyf, offsets, g)...)
			for len(newGlyf)%4 != 0 {
				newGlyf = append(newGlyf, 0)
			}
		}
	}
	binary.BigEndian.PutUint32(newLoca[4*numGlyphs:], uint32(len(newGlyf)))

	newHead := slices.Clone(head)
	binary.BigEndian.PutUint16(newHead[50:], 1) // long loca offsets

	ts.set("glyf", newGlyf)
	ts.set("loca", newLoca)
	ts.set("head", newHead)
	// A signature no longer matches the rebuilt binary.
	ts.remove("DSIG")

	return ts.encode(), nil
}

// readLoca returns numGlyphs+1 glyph offsets into glyf.
func readLoca(loca []byte, numGlyphs int, long bool) ([]uint32, error) {
	offsets := make([]uint32, numGlyphs+1)
	if long {
		if len(loca) < 4*(numGlyphs+1) {
			return nil, fmt.Errorf("loca: %w", errTruncated)
		}
		for i := range offsets {
			offsets[i] = binary.BigEndian.Uint32(loca[4*i:])
		}
	} else {
		if len(loca) < 2*(numGlyphs+1) {
			return nil, fmt.Errorf("loca: %w", errTruncated)
		}
		for i := range offsets {
			offsets[i] = uint32(binary.BigEndian.Uint16(loca[2*i:])) * 2
		}
	}
	return offsets, nil
}

func glyphData(glyf []byte, offsets []uint32, g int) []byte {
	start, end := offsets[g], offsets[g+1]
	if start >= end || int(end) > len(glyf) {
		return nil
	}
	return glyf[start:end]
}

// components lists the glyph ids a composite glyph refers to. Simple and
// empty glyphs have none.
func components(data []byte) ([]int, error) {
	if len(data) < 10 || int16(binary.BigEndian.Uint16(data)) >= 0 {
		return nil, nil
	}
	var out []int
	p := 10
	for {
		if p+4 > len(data) {
			return nil, errTruncated
		}
		flags := binary.BigEndian.Uint16(data[p:])
		out = append(out, int(binary.BigEndian.Uint16(data[p+2:])))
		p += 4
		if flags&compArgsAreWords != 0 {
			p += 4
		} else {
			p += 2
		}
		switch {
		case flags&compHaveScale != 0:
			p += 2
		case flags&compHaveXYScale != 0:
			p += 4
		case flags&compHaveTwoByTwo != 0:
			p += 8
		}
		if flags&compMoreComponent == 0 {
			return out, nil
		}
	}
}
