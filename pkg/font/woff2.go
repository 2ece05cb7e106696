package font

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

const woff2HeaderSize = 48

// woff2KnownTags are the table tags a directory entry can refer to by
// index instead of spelling out.
var woff2KnownTags = [63]string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca", "prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS", "GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL", "SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar", "fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar", "mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat", "Gloc", "Feat", "Sill",
}

// Simple glyph point flags.
const (
	glyphOnCurve  = 0x01
	glyphXShort   = 0x02
	glyphYShort   = 0x04
	glyphXSame    = 0x10
	glyphYSame    = 0x20
	glyphOverlap  = 0x40
	compHaveInstr = 0x0100
)

var errWOFF2Collection = errors.New("woff2: font collections are not supported")

type woff2Entry struct {
	tag         string
	origLength  uint32
	length      uint32 // bytes in the decompressed stream
	transformed bool
}

// DecodeWOFF2 unwraps a WOFF 2.0 file into the sfnt binary it carries,
// undoing the glyf, loca and hmtx transforms.
func DecodeWOFF2(data []byte) ([]byte, error) {
	ts, err := decodeWOFF2Tables(data)
	if err != nil {
		return nil, err
	}
	return ts.encode(), nil
}

func decodeWOFF2Tables(data []byte) (*tableSet, error) {
	if DetectFormat(data) != FormatWOFF2 {
		return nil, fmt.Errorf("woff2: bad signature")
	}
	if len(data) < woff2HeaderSize {
		return nil, fmt.Errorf("woff2: %w", errTruncated)
	}
	flavor := binary.BigEndian.Uint32(data[4:])
	if flavor == 0x74746366 { // ttcf
		return nil, errWOFF2Collection
	}
	n := int(binary.BigEndian.Uint16(data[12:]))
	compressedSize := binary.BigEndian.Uint32(data[20:])

	r := &byteReader{b: data, p: woff2HeaderSize}
	entries := make([]woff2Entry, 0, n)
	var total uint64
	for range n {
		e, err := readWOFF2Entry(r)
		if err != nil {
			return nil, err
		}
		total += uint64(e.length)
		entries = append(entries, e)
	}
	if uint64(r.p)+uint64(compressedSize) > uint64(len(data)) {
		return nil, fmt.Errorf("woff2: compressed stream: %w", errTruncated)
	}

	stream, err := io.ReadAll(io.LimitReader(brotli.NewReader(bytes.NewReader(data[r.p:r.p+int(compressedSize)])), int64(total)+1))
	if err != nil {
		return nil, fmt.Errorf("woff2: brotli: %w", err)
	}
	if uint64(len(stream)) != total {
		return nil, fmt.Errorf("woff2: decompressed %d bytes, directory expects %d", len(stream), total)
	}

	ts := &tableSet{flavor: flavor, tables: make([]table, 0, n)}
	var hmtx []byte
	off := uint32(0)
	for _, e := range entries {
		raw := stream[off : off+e.length]
		off += e.length
		switch {
		case !e.transformed:
			ts.tables = append(ts.tables, table{tag: e.tag, data: raw})
		case e.tag == "glyf":
			glyf, loca, err := reconstructGlyf(raw)
			if err != nil {
				return nil, fmt.Errorf("woff2: glyf: %w", err)
			}
			ts.set("glyf", glyf)
			ts.set("loca", loca)
		case e.tag == "loca":
			// Rebuilt together with glyf.
		case e.tag == "hmtx":
			hmtx = raw
		}
	}

	if hmtx != nil {
		out, err := reconstructHmtx(ts, hmtx)
		if err != nil {
			return nil, fmt.Errorf("woff2: hmtx: %w", err)
		}
		ts.set("hmtx", out)
	}
	return ts, nil
}

func readWOFF2Entry(r *byteReader) (woff2Entry, error) {
	flags := r.u8()
	var e woff2Entry
	if idx := flags & 0x3f; idx == 0x3f {
		var tag [4]byte
		copy(tag[:], r.take(4))
		e.tag = string(tag[:])
	} else {
		e.tag = woff2KnownTags[idx]
	}
	version := flags >> 6
	e.origLength = r.base128()

	switch e.tag {
	case "glyf", "loca":
		e.transformed = version == 0
		if version == 1 || version == 2 {
			return e, fmt.Errorf("woff2: table %q: unknown transform %d", e.tag, version)
		}
	case "hmtx":
		e.transformed = version == 1
		if version > 1 {
			return e, fmt.Errorf("woff2: table %q: unknown transform %d", e.tag, version)
		}
	default:
		if version != 0 {
			return e, fmt.Errorf("woff2: table %q: unknown transform %d", e.tag, version)
		}
	}

	e.length = e.origLength
	if e.transformed {
		e.length = r.base128()
	}
	if e.tag == "loca" && e.transformed && e.length != 0 {
		return e, fmt.Errorf("woff2: transformed loca carries %d bytes", e.length)
	}
	if r.err != nil {
		return e, fmt.Errorf("woff2: table directory: %w", r.err)
	}
	return e, nil
}

// reconstructGlyf rebuilds the glyf and loca tables from the transformed
// glyf stream.
func reconstructGlyf(data []byte) (glyf, loca []byte, err error) {
	h := &byteReader{b: data}
	h.u16() // reserved
	options := h.u16()
	numGlyphs := int(h.u16())
	indexFormat := h.u16()
	var sizes [7]uint32
	for i := range sizes {
		sizes[i] = h.u32()
	}
	if h.err != nil {
		return nil, nil, h.err
	}

	var streams [7]*byteReader
	for i, size := range sizes {
		streams[i] = &byteReader{b: h.take(int(size))}
	}
	var overlap []byte
	if options&1 != 0 {
		overlap = h.take((numGlyphs + 7) / 8)
	}
	if h.err != nil {
		return nil, nil, h.err
	}
	nContours, nPoints, flagStream, glyphStream, compStream, bboxStream, instrStream :=
		streams[0], streams[1], streams[2], streams[3], streams[4], streams[5], streams[6]

	bboxBitmap := bboxStream.take(4 * ((numGlyphs + 31) / 32))
	hasBBox := func(g int) bool { return bboxBitmap[g>>3]&(0x80>>(g&7)) != 0 }
	if bboxStream.err != nil {
		return nil, nil, bboxStream.err
	}

	offsets := make([]uint32, numGlyphs+1)
	for g := range numGlyphs {
		offsets[g] = uint32(len(glyf))
		nc := int16(nContours.u16())
		var out []byte
		switch {
		case nc == 0:
			if hasBBox(g) {
				return nil, nil, fmt.Errorf("glyph %d: empty glyph with a bounding box", g)
			}
		case nc < 0:
			if !hasBBox(g) {
				return nil, nil, fmt.Errorf("glyph %d: composite glyph without a bounding box", g)
			}
			out = composite(nc, bboxStream.take(8), compStream, glyphStream, instrStream)
		default:
			var bbox []byte
			if hasBBox(g) {
				bbox = bboxStream.take(8)
			}
			ov := overlap != nil && overlap[g>>3]&(0x80>>(g&7)) != 0
			out, err = simpleGlyph(int(nc), bbox, ov, nPoints, flagStream, glyphStream, instrStream)
			if err != nil {
				return nil, nil, fmt.Errorf("glyph %d: %w", g, err)
			}
		}
		for _, s := range streams {
			if s.err != nil {
				return nil, nil, fmt.Errorf("glyph %d: %w", g, s.err)
			}
		}
		glyf = append(glyf, out...)
		for len(glyf)%4 != 0 {
			glyf = append(glyf, 0)
		}
	}
	offsets[numGlyphs] = uint32(len(glyf))

	if indexFormat == 0 {
		if len(glyf) > 0x1fffe {
			return nil, nil, errors.New("glyf too large for short loca")
		}
		loca = make([]byte, 2*len(offsets))
		for i, o := range offsets {
			binary.BigEndian.PutUint16(loca[2*i:], uint16(o/2))
		}
	} else {
		loca = make([]byte, 4*len(offsets))
		for i, o := range offsets {
			binary.BigEndian.PutUint32(loca[4*i:], o)
		}
	}
	return glyf, loca, nil
}

func composite(nc int16, bbox []byte, comp, glyph, instr *byteReader) []byte {
	out := make([]byte, 2, 64)
	binary.BigEndian.PutUint16(out, uint16(nc))
	out = append(out, bbox...)

	start := comp.p
	var haveInstr bool
	for comp.err == nil {
		flags := comp.u16()
		comp.u16() // glyph index
		size := 2
		if flags&compArgsAreWords != 0 {
			size = 4
		}
		switch {
		case flags&compHaveScale != 0:
			size += 2
		case flags&compHaveXYScale != 0:
			size += 4
		case flags&compHaveTwoByTwo != 0:
			size += 8
		}
		comp.take(size)
		haveInstr = haveInstr || flags&compHaveInstr != 0
		if flags&compMoreComponent == 0 {
			break
		}
	}
	if comp.err != nil {
		return nil
	}
	out = append(out, comp.b[start:comp.p]...)

	if haveInstr {
		n := glyph.u255()
		out = binary.BigEndian.AppendUint16(out, n)
		out = append(out, instr.take(int(n))...)
	}
	return out
}

func simpleGlyph(nc int, bbox []byte, overlap bool, nPoints, flags, glyph, instr *byteReader) ([]byte, error) {
	endPts := make([]uint16, nc)
	total := 0
	for i := range endPts {
		total += int(nPoints.u255())
		if total > 0xffff {
			return nil, errors.New("too many points")
		}
		endPts[i] = uint16(total - 1)
	}
	if nPoints.err != nil {
		return nil, nPoints.err
	}

	xs, ys := make([]int, total), make([]int, total)
	on := make([]bool, total)
	x, y := 0, 0
	for i, f := range flags.take(total) {
		on[i] = f>>7 == 0
		f &= 0x7f
		dx, dy := decodeTriplet(f, glyph.take(tripletSize(f)))
		x, y = x+dx, y+dy
		xs[i], ys[i] = x, y
	}
	if flags.err != nil || glyph.err != nil {
		return nil, errors.Join(flags.err, glyph.err)
	}

	n := glyph.u255()
	code := instr.take(int(n))

	out := make([]byte, 10, 10+2*nc+2+len(code)+5*total)
	binary.BigEndian.PutUint16(out, uint16(nc))
	if bbox != nil {
		copy(out[2:], bbox)
	} else if total > 0 {
		xMin, yMin, xMax, yMax := xs[0], ys[0], xs[0], ys[0]
		for i := range total {
			xMin, xMax = min(xMin, xs[i]), max(xMax, xs[i])
			yMin, yMax = min(yMin, ys[i]), max(yMax, ys[i])
		}
		binary.BigEndian.PutUint16(out[2:], uint16(int16(xMin)))
		binary.BigEndian.PutUint16(out[4:], uint16(int16(yMin)))
		binary.BigEndian.PutUint16(out[6:], uint16(int16(xMax)))
		binary.BigEndian.PutUint16(out[8:], uint16(int16(yMax)))
	}
	for _, e := range endPts {
		out = binary.BigEndian.AppendUint16(out, e)
	}
	out = binary.BigEndian.AppendUint16(out, n)
	out = append(out, code...)
	return appendPoints(out, xs, ys, on, overlap), nil
}

// appendPoints writes the flag, x and y arrays of a simple glyph using
// short deltas where they fit.
func appendPoints(out []byte, xs, ys []int, on []bool, overlap bool) []byte {
	var xBytes, yBytes []byte
	px, py := 0, 0
	for i := range xs {
		var f byte
		if on[i] {
			f |= glyphOnCurve
		}
		if i == 0 && overlap {
			f |= glyphOverlap
		}
		dx, dy := xs[i]-px, ys[i]-py
		px, py = xs[i], ys[i]

		switch {
		case dx == 0:
			f |= glyphXSame
		case dx > -256 && dx < 256:
			f |= glyphXShort
			if dx > 0 {
				f |= glyphXSame
			}
			xBytes = append(xBytes, byte(abs(dx)))
		default:
			xBytes = binary.BigEndian.AppendUint16(xBytes, uint16(int16(dx)))
		}
		switch {
		case dy == 0:
			f |= glyphYSame
		case dy > -256 && dy < 256:
			f |= glyphYShort
			if dy > 0 {
				f |= glyphYSame
			}
			yBytes = append(yBytes, byte(abs(dy)))
		default:
			yBytes = binary.BigEndian.AppendUint16(yBytes, uint16(int16(dy)))
		}
		out = append(out, f)
	}
	out = append(out, xBytes...)
	return append(out, yBytes...)
}

// tripletSize is the number of glyph stream bytes a point with the given
// flag consumes.
func tripletSize(flag byte) int {
	switch {
	case flag < 84:
		return 1
	case flag < 120:
		return 2
	case flag < 124:
		return 3
	default:
		return 4
	}
}

// decodeTriplet turns a point flag and its data bytes into a coordinate
// delta.
func decodeTriplet(flag byte, in []byte) (dx, dy int) {
	if len(in) < tripletSize(flag) {
		return 0, 0
	}
	sign := func(bit byte, v int) int {
		if bit&1 != 0 {
			return v
		}
		return -v
	}
	f := int(flag)
	switch {
	case flag < 10:
		return 0, sign(flag, (f&14)<<7+int(in[0]))
	case flag < 20:
		return sign(flag, ((f-10)&14)<<7+int(in[0])), 0
	case flag < 84:
		b := f - 20
		return sign(flag, 1+(b&0x30)+int(in[0]>>4)), sign(flag>>1, 1+(b&0x0c)<<2+int(in[0]&0x0f))
	case flag < 120:
		b := f - 84
		return sign(flag, 1+(b/12)<<8+int(in[0])), sign(flag>>1, 1+((b%12)>>2)<<8+int(in[1]))
	case flag < 124:
		return sign(flag, int(in[0])<<4+int(in[1]>>4)), sign(flag>>1, int(in[1]&0x0f)<<8+int(in[2]))
	default:
		return sign(flag, int(in[0])<<8+int(in[1])), sign(flag>>1, int(in[2])<<8+int(in[3]))
	}
}

// reconstructHmtx rebuilds hmtx, filling in left side bearings the
// encoder dropped from the glyph xMin values.
func reconstructHmtx(ts *tableSet, data []byte) ([]byte, error) {
	hhea, maxp, head := ts.get("hhea"), ts.get("maxp"), ts.get("head")
	if len(hhea) < 36 || len(maxp) < 6 || len(head) < 54 {
		return nil, errNoGlyf
	}
	numH := int(binary.BigEndian.Uint16(hhea[34:]))
	numGlyphs := int(binary.BigEndian.Uint16(maxp[4:]))
	if numH == 0 || numH > numGlyphs {
		return nil, fmt.Errorf("bad metric count %d for %d glyphs", numH, numGlyphs)
	}
	glyf := ts.get("glyf")
	offsets, err := readLoca(ts.get("loca"), numGlyphs, binary.BigEndian.Uint16(head[50:]) != 0)
	if err != nil {
		return nil, err
	}
	xMin := func(g int) uint16 {
		if d := glyphData(glyf, offsets, g); len(d) >= 10 {
			return binary.BigEndian.Uint16(d[2:])
		}
		return 0
	}

	r := &byteReader{b: data}
	flags := r.u8()
	advances := make([]uint16, numH)
	for i := range advances {
		advances[i] = r.u16()
	}
	lsb := make([]uint16, numGlyphs)
	for g := range numGlyphs {
		proportional := g < numH
		switch {
		case proportional && flags&1 == 0, !proportional && flags&2 == 0:
			lsb[g] = r.u16()
		default:
			lsb[g] = xMin(g)
		}
	}
	if r.err != nil {
		return nil, r.err
	}

	out := make([]byte, 0, 4*numH+2*(numGlyphs-numH))
	for g := range numGlyphs {
		if g < numH {
			out = binary.BigEndian.AppendUint16(out, advances[g])
		}
		out = binary.BigEndian.AppendUint16(out, lsb[g])
	}
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// byteReader reads big-endian values and remembers the first overrun.
type byteReader struct {
	b   []byte
	p   int
	err error
}

func (r *byteReader) take(n int) []byte {
	if r.err != nil || n < 0 || r.p+n > len(r.b) {
		if r.err == nil {
			r.err = errTruncated
		}
		return nil
	}
	out := r.b[r.p : r.p+n]
	r.p += n
	return out
}

func (r *byteReader) u8() byte {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *byteReader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *byteReader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

// base128 reads a UIntBase128: up to five bytes, seven bits each, high bit
// set on all but the last.
func (r *byteReader) base128() uint32 {
	var v uint32
	for i := range 5 {
		b := r.u8()
		if r.err != nil {
			return 0
		}
		if i == 0 && b == 0x80 || v&0xfe000000 != 0 {
			r.err = errors.New("malformed UIntBase128")
			return 0
		}
		v = v<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return v
		}
	}
	r.err = errors.New("UIntBase128 longer than five bytes")
	return 0
}

// u255 reads a 255UInt16.
func (r *byteReader) u255() uint16 {
	switch c := r.u8(); c {
	case 253:
		return r.u16()
	case 255:
		return uint16(r.u8()) + 253
	case 254:
		return uint16(r.u8()) + 506
	default:
		return uint16(c)
	}
}
