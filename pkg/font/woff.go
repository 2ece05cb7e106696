package font

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

const (
	woffHeaderSize   = 44
	woffTableDirSize = 20
)

// DecodeWOFF unwraps a WOFF 1.0 file into the sfnt binary it carries.
func DecodeWOFF(data []byte) ([]byte, error) {
	ts, err := decodeWOFFTables(data)
	if err != nil {
		return nil, err
	}
	return ts.encode(), nil
}

func decodeWOFFTables(data []byte) (*tableSet, error) {
	if DetectFormat(data) != FormatWOFF {
		return nil, fmt.Errorf("woff: bad signature")
	}
	if len(data) < woffHeaderSize {
		return nil, fmt.Errorf("woff: %w", errTruncated)
	}
	flavor := binary.BigEndian.Uint32(data[4:])
	n := int(binary.BigEndian.Uint16(data[12:]))
	if len(data) < woffHeaderSize+woffTableDirSize*n {
		return nil, fmt.Errorf("woff: table directory: %w", errTruncated)
	}

	ts := &tableSet{flavor: flavor, tables: make([]table, 0, n)}
	for i := range n {
		rec := data[woffHeaderSize+woffTableDirSize*i:]
		tag := string(rec[:4])
		off := binary.BigEndian.Uint32(rec[4:])
		compLen := binary.BigEndian.Uint32(rec[8:])
		origLen := binary.BigEndian.Uint32(rec[12:])
		if uint64(off)+uint64(compLen) > uint64(len(data)) || compLen > origLen {
			return nil, fmt.Errorf("woff: table %q: %w", tag, errTruncated)
		}

		raw := data[off : off+compLen]
		if compLen == origLen {
			ts.tables = append(ts.tables, table{tag: tag, data: raw})
			continue
		}

		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("woff: table %q: %w", tag, err)
		}
		out := make([]byte, origLen)
		_, err = io.ReadFull(zr, out)
		_ = zr.Close()
		if err != nil {
			return nil, fmt.Errorf("woff: table %q: inflate: %w", tag, err)
		}
		ts.tables = append(ts.tables, table{tag: tag, data: out})
	}
	return ts, nil
}
