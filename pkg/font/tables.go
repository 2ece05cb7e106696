package font

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// checkSumMagic is the value the whole-font checksum must add up to.
const checkSumMagic = 0xB1B0AFBA

var errTruncated = errors.New("truncated font data")

// table is one raw sfnt table.
type table struct {
	tag  string
	data []byte
}

// tableSet is an sfnt font split into its tables.
type tableSet struct {
	flavor uint32
	tables []table
}

// readTables splits a single-font sfnt (TrueType or CFF flavored) into its
// tables. Table data aliases the input.
func readTables(data []byte) (*tableSet, error) {
	if len(data) < 12 {
		return nil, errTruncated
	}
	flavor := binary.BigEndian.Uint32(data)
	if string(data[:4]) == "ttcf" {
		return nil, errors.New("font collections are not supported")
	}
	n := int(binary.BigEndian.Uint16(data[4:]))
	if len(data) < 12+16*n {
		return nil, errTruncated
	}

	ts := &tableSet{flavor: flavor, tables: make([]table, 0, n)}
	for i := range n {
		rec := data[12+16*i:]
		tag := string(rec[:4])
		off := binary.BigEndian.Uint32(rec[8:])
		length := binary.BigEndian.Uint32(rec[12:])
		if uint64(off)+uint64(length) > uint64(len(data)) {
			return nil, fmt.Errorf("table %q: %w", tag, errTruncated)
		}
		ts.tables = append(ts.tables, table{tag: tag, data: data[off : off+length]})
	}
	return ts, nil
}

func (ts *tableSet) get(tag string) []byte {
	for _, t := range ts.tables {
		if t.tag == tag {
			return t.data
		}
	}
	return nil
}

func (ts *tableSet) has(tag string) bool {
	return ts.get(tag) != nil
}

func (ts *tableSet) set(tag string, data []byte) {
	for i := range ts.tables {
		if ts.tables[i].tag == tag {
			ts.tables[i].data = data
			return
		}
	}
	ts.tables = append(ts.tables, table{tag: tag, data: data})
}

func (ts *tableSet) remove(tag string) {
	out := ts.tables[:0]
	for _, t := range ts.tables {
		if t.tag != tag {
			out = append(out, t)
		}
	}
	ts.tables = out
}

// encode serializes the tables into an sfnt binary with fresh table
// checksums and head.checkSumAdjustment.
func (ts *tableSet) encode() []byte {
	tables := make([]table, len(ts.tables))
	copy(tables, ts.tables)
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })

	n := len(tables)
	size := 12 + 16*n
	for _, t := range tables {
		size += pad4(len(t.data))
	}
	out := make([]byte, size)

	binary.BigEndian.PutUint32(out, ts.flavor)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	searchRange, entrySelector := 1, 0
	for searchRange*2 <= n {
		searchRange *= 2
		entrySelector++
	}
	binary.BigEndian.PutUint16(out[6:], uint16(searchRange*16))
	binary.BigEndian.PutUint16(out[8:], uint16(entrySelector))
	binary.BigEndian.PutUint16(out[10:], uint16(n*16-searchRange*16))

	headOffset := -1
	off := 12 + 16*n
	for i, t := range tables {
		copy(out[off:], t.data)
		if t.tag == "head" && len(t.data) >= 12 {
			headOffset = off
			binary.BigEndian.PutUint32(out[off+8:], 0)
		}
		rec := out[12+16*i:]
		copy(rec, t.tag)
		binary.BigEndian.PutUint32(rec[4:], checksum(out[off:off+pad4(len(t.data))]))
		binary.BigEndian.PutUint32(rec[8:], uint32(off))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(t.data)))
		off += pad4(len(t.data))
	}

	if headOffset >= 0 {
		binary.BigEndian.PutUint32(out[headOffset+8:], checkSumMagic-checksum(out))
	}
	return out
}

// checksum is the sfnt table checksum: the sum of big-endian uint32 words,
// with the tail zero padded.
func checksum(b []byte) uint32 {
	var sum uint32
	for len(b) >= 4 {
		sum += binary.BigEndian.Uint32(b)
		b = b[4:]
	}
	if len(b) > 0 {
		var tail [4]byte
		copy(tail[:], b)
		sum += binary.BigEndian.Uint32(tail[:])
	}
	return sum
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
