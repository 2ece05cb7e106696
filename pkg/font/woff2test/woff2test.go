// Package woff2test builds WOFF 2.0 files from TrueType fonts so that
// decoding can be tested without network fixtures.
package woff2test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/andybalholm/brotli"
)

var knownTags = []string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca", "prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS", "GSUB", "EBSC", "JSTF", "MATH",
}

// Options select the table transforms applied by Encode.
type Options struct {
	// Glyf stores glyf and loca in the transformed form.
	Glyf bool
	// Hmtx drops every left side bearing from hmtx; the decoder rebuilds
	// them from glyph xMin values.
	Hmtx bool
}

type table struct {
	tag         string
	data        []byte // as stored in the stream
	origLength  int
	transformed bool
}

// Encode wraps a single TrueType font into a WOFF2 file.
func Encode(ttf []byte, opts Options) ([]byte, error) {
	if len(ttf) < 12 {
		return nil, errors.New("woff2test: short font")
	}
	flavor := binary.BigEndian.Uint32(ttf)
	n := int(binary.BigEndian.Uint16(ttf[4:]))
	raw := map[string][]byte{}
	var tags []string
	for i := range n {
		rec := ttf[12+16*i:]
		off := binary.BigEndian.Uint32(rec[8:])
		length := binary.BigEndian.Uint32(rec[12:])
		tag := string(rec[:4])
		raw[tag] = ttf[off : off+length]
		tags = append(tags, tag)
	}
	// glyf must precede loca.
	sort.Strings(tags)

	var tables []table
	for _, tag := range tags {
		t := table{tag: tag, data: raw[tag], origLength: len(raw[tag])}
		switch {
		case tag == "glyf" && opts.Glyf:
			data, err := transformGlyf(raw)
			if err != nil {
				return nil, err
			}
			t.data, t.transformed = data, true
		case tag == "loca" && opts.Glyf:
			t.data, t.transformed = nil, true
		case tag == "hmtx" && opts.Hmtx:
			data, err := transformHmtx(raw)
			if err != nil {
				return nil, err
			}
			t.data, t.transformed = data, true
		}
		tables = append(tables, t)
	}

	var dir, stream []byte
	for _, t := range tables {
		dir = appendFlags(dir, t)
		dir = appendBase128(dir, uint32(t.origLength))
		if t.transformed {
			dir = appendBase128(dir, uint32(len(t.data)))
		}
		stream = append(stream, t.data...)
	}

	var comp bytes.Buffer
	w := brotli.NewWriter(&comp)
	if _, err := w.Write(stream); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	header := make([]byte, 48)
	copy(header, "wOF2")
	binary.BigEndian.PutUint32(header[4:], flavor)
	binary.BigEndian.PutUint32(header[8:], uint32(48+len(dir)+comp.Len()))
	binary.BigEndian.PutUint16(header[12:], uint16(len(tables)))
	binary.BigEndian.PutUint32(header[16:], uint32(len(ttf)))
	binary.BigEndian.PutUint32(header[20:], uint32(comp.Len()))
	binary.BigEndian.PutUint16(header[24:], 1)

	out := append(header, dir...)
	return append(out, comp.Bytes()...), nil
}

func appendFlags(dir []byte, t table) []byte {
	var version byte
	switch t.tag {
	case "glyf", "loca":
		if !t.transformed {
			version = 3
		}
	case "hmtx":
		if t.transformed {
			version = 1
		}
	}
	for i, known := range knownTags {
		if known == t.tag {
			return append(dir, version<<6|byte(i))
		}
	}
	dir = append(dir, version<<6|0x3f)
	return append(dir, t.tag...)
}

func appendBase128(b []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			break
		}
	}
	for j := i; j < len(tmp)-1; j++ {
		tmp[j] |= 0x80
	}
	return append(b, tmp[i:]...)
}

func append255(b []byte, v int) []byte {
	switch {
	case v < 253:
		return append(b, byte(v))
	case v < 506:
		return append(b, 255, byte(v-253))
	case v < 762:
		return append(b, 254, byte(v-506))
	default:
		return binary.BigEndian.AppendUint16(append(b, 253), uint16(v))
	}
}

// glyphs splits glyf by loca.
func glyphs(raw map[string][]byte) ([][]byte, int, error) {
	head, maxp, loca, glyf := raw["head"], raw["maxp"], raw["loca"], raw["glyf"]
	if len(head) < 54 || len(maxp) < 6 {
		return nil, 0, errors.New("woff2test: missing head or maxp")
	}
	indexFormat := int(binary.BigEndian.Uint16(head[50:]))
	numGlyphs := int(binary.BigEndian.Uint16(maxp[4:]))
	offset := func(i int) int {
		if indexFormat == 0 {
			return 2 * int(binary.BigEndian.Uint16(loca[2*i:]))
		}
		return int(binary.BigEndian.Uint32(loca[4*i:]))
	}
	out := make([][]byte, numGlyphs)
	for g := range numGlyphs {
		start, end := offset(g), offset(g+1)
		if start < end {
			out[g] = glyf[start:end]
		}
	}
	return out, indexFormat, nil
}

func transformGlyf(raw map[string][]byte) ([]byte, error) {
	gs, indexFormat, err := glyphs(raw)
	if err != nil {
		return nil, err
	}
	var nContours, nPoints, flags, glyph, composite, bboxes, instr []byte
	bitmap := make([]byte, 4*((len(gs)+31)/32))

	for g, d := range gs {
		if len(d) == 0 {
			nContours = binary.BigEndian.AppendUint16(nContours, 0)
			continue
		}
		nc := int(int16(binary.BigEndian.Uint16(d)))
		nContours = binary.BigEndian.AppendUint16(nContours, uint16(int16(nc)))
		if nc < 0 {
			bitmap[g>>3] |= 0x80 >> (g & 7)
			bboxes = append(bboxes, d[2:10]...)
			end, haveInstr := compositeEnd(d)
			composite = append(composite, d[10:end]...)
			if haveInstr {
				n := int(binary.BigEndian.Uint16(d[end:]))
				glyph = append255(glyph, n)
				instr = append(instr, d[end+2:end+2+n]...)
			}
			continue
		}

		s, err := parseSimple(d, nc)
		if err != nil {
			return nil, fmt.Errorf("woff2test: glyph %d: %w", g, err)
		}
		prev := 0
		for _, e := range s.endPts {
			nPoints = append255(nPoints, e+1-prev)
			prev = e + 1
		}
		x, y := 0, 0
		for i := range s.xs {
			f, data := encodeTriplet(s.xs[i]-x, s.ys[i]-y, s.on[i])
			x, y = s.xs[i], s.ys[i]
			flags = append(flags, f)
			glyph = append(glyph, data...)
		}
		glyph = append255(glyph, len(s.instr))
		instr = append(instr, s.instr...)
		if !bytes.Equal(s.bbox(), d[2:10]) {
			bitmap[g>>3] |= 0x80 >> (g & 7)
			bboxes = append(bboxes, d[2:10]...)
		}
	}

	bbox := append(bitmap, bboxes...)
	out := make([]byte, 8)
	binary.BigEndian.PutUint16(out[4:], uint16(len(gs)))
	binary.BigEndian.PutUint16(out[6:], uint16(indexFormat))
	streams := [][]byte{nContours, nPoints, flags, glyph, composite, bbox, instr}
	for _, s := range streams {
		out = binary.BigEndian.AppendUint32(out, uint32(len(s)))
	}
	for _, s := range streams {
		out = append(out, s...)
	}
	return out, nil
}

// compositeEnd returns the offset just past the last component record.
func compositeEnd(d []byte) (int, bool) {
	p := 10
	var haveInstr bool
	for {
		flags := binary.BigEndian.Uint16(d[p:])
		p += 4
		if flags&0x0001 != 0 {
			p += 4
		} else {
			p += 2
		}
		switch {
		case flags&0x0008 != 0:
			p += 2
		case flags&0x0040 != 0:
			p += 4
		case flags&0x0080 != 0:
			p += 8
		}
		haveInstr = haveInstr || flags&0x0100 != 0
		if flags&0x0020 == 0 {
			return p, haveInstr
		}
	}
}

type simple struct {
	endPts []int
	instr  []byte
	xs, ys []int
	on     []bool
}

func (s *simple) bbox() []byte {
	if len(s.xs) == 0 {
		return make([]byte, 8)
	}
	xMin, yMin, xMax, yMax := s.xs[0], s.ys[0], s.xs[0], s.ys[0]
	for i := range s.xs {
		xMin, xMax = min(xMin, s.xs[i]), max(xMax, s.xs[i])
		yMin, yMax = min(yMin, s.ys[i]), max(yMax, s.ys[i])
	}
	out := make([]byte, 0, 8)
	for _, v := range []int{xMin, yMin, xMax, yMax} {
		out = binary.BigEndian.AppendUint16(out, uint16(int16(v)))
	}
	return out
}

func parseSimple(d []byte, nc int) (*simple, error) {
	s := &simple{}
	p := 10
	for range nc {
		s.endPts = append(s.endPts, int(binary.BigEndian.Uint16(d[p:])))
		p += 2
	}
	n := s.endPts[nc-1] + 1
	il := int(binary.BigEndian.Uint16(d[p:]))
	s.instr = d[p+2 : p+2+il]
	p += 2 + il

	var fl []byte
	for len(fl) < n {
		f := d[p]
		p++
		fl = append(fl, f)
		if f&0x08 != 0 {
			for range d[p] {
				fl = append(fl, f)
			}
			p++
		}
	}
	if len(fl) != n {
		return nil, errors.New("flag repeat overruns the point count")
	}

	coord := func(short, same byte) []int {
		out := make([]int, n)
		v := 0
		for i, f := range fl {
			switch {
			case f&short != 0:
				delta := int(d[p])
				p++
				if f&same == 0 {
					delta = -delta
				}
				v += delta
			case f&same == 0:
				v += int(int16(binary.BigEndian.Uint16(d[p:])))
				p += 2
			}
			out[i] = v
		}
		return out
	}
	s.xs = coord(0x02, 0x10)
	s.ys = coord(0x04, 0x20)
	for _, f := range fl {
		s.on = append(s.on, f&0x01 != 0)
	}
	return s, nil
}

// encodeTriplet uses the one byte forms for axis aligned moves and the
// four byte form otherwise.
func encodeTriplet(dx, dy int, on bool) (byte, []byte) {
	var flag byte
	if !on {
		flag = 0x80
	}
	ax, ay := abs(dx), abs(dy)
	switch {
	case dx == 0 && ay < 1280:
		flag |= byte(ay>>8) << 1
		if dy >= 0 {
			flag |= 1
		}
		return flag, []byte{byte(ay)}
	case dy == 0 && ax < 1280:
		flag |= 10 + byte(ax>>8)<<1
		if dx >= 0 {
			flag |= 1
		}
		return flag, []byte{byte(ax)}
	default:
		flag |= 124
		if dx >= 0 {
			flag |= 1
		}
		if dy >= 0 {
			flag |= 2
		}
		return flag, []byte{byte(ax >> 8), byte(ax), byte(ay >> 8), byte(ay)}
	}
}

func transformHmtx(raw map[string][]byte) ([]byte, error) {
	hhea, hmtx := raw["hhea"], raw["hmtx"]
	if len(hhea) < 36 {
		return nil, errors.New("woff2test: missing hhea")
	}
	numH := int(binary.BigEndian.Uint16(hhea[34:]))
	out := []byte{0x03}
	for i := range numH {
		out = append(out, hmtx[4*i:4*i+2]...)
	}
	return out, nil
}

// ExpectedHmtx is the hmtx table Encode with Hmtx set decodes to: the
// original advances with every left side bearing replaced by the glyph
// xMin, or zero for empty glyphs.
func ExpectedHmtx(ttf []byte) ([]byte, error) {
	raw := map[string][]byte{}
	n := int(binary.BigEndian.Uint16(ttf[4:]))
	for i := range n {
		rec := ttf[12+16*i:]
		off := binary.BigEndian.Uint32(rec[8:])
		length := binary.BigEndian.Uint32(rec[12:])
		raw[string(rec[:4])] = ttf[off : off+length]
	}
	gs, _, err := glyphs(raw)
	if err != nil {
		return nil, err
	}
	numH := int(binary.BigEndian.Uint16(raw["hhea"][34:]))
	var out []byte
	for g, d := range gs {
		if g < numH {
			out = append(out, raw["hmtx"][4*g:4*g+2]...)
		}
		var xMin uint16
		if len(d) >= 10 {
			xMin = binary.BigEndian.Uint16(d[2:])
		}
		out = binary.BigEndian.AppendUint16(out, xMin)
	}
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
