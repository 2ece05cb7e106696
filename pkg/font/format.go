package font

import "bytes"

// Format is a font container format recognized by its leading bytes.
type Format int

const (
	FormatUnknown Format = iota
	FormatTTF
	FormatOTF
	FormatWOFF
	FormatWOFF2
)

var signatures = []struct {
	magic  []byte
	format Format
}{
	{[]byte{0x00, 0x01, 0x00, 0x00}, FormatTTF},
	{[]byte("true"), FormatTTF},
	{[]byte("ttcf"), FormatTTF},
	{[]byte("OTTO"), FormatOTF},
	{[]byte("wOFF"), FormatWOFF},
	{[]byte("wOF2"), FormatWOFF2},
}

// DetectFormat identifies data by its magic bytes. Collections (ttcf) are
// reported as TTF.
func DetectFormat(data []byte) Format {
	for _, s := range signatures {
		if bytes.HasPrefix(data, s.magic) {
			return s.format
		}
	}
	return FormatUnknown
}

func (f Format) String() string {
	switch f {
	case FormatTTF:
		return "ttf"
	case FormatOTF:
		return "otf"
	case FormatWOFF:
		return "woff"
	case FormatWOFF2:
		return "woff2"
	default:
		return "unknown"
	}
}

// MIME returns the media type used in data URLs.
func (f Format) MIME() string {
	switch f {
	case FormatTTF:
		return "font/ttf"
	case FormatOTF:
		return "font/otf"
	case FormatWOFF:
		return "font/woff"
	case FormatWOFF2:
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}

// CSS returns the name used in the format() hint of a @font-face src.
func (f Format) CSS() string {
	switch f {
	case FormatTTF:
		return "truetype"
	case FormatOTF:
		return "opentype"
	case FormatWOFF:
		return "woff"
	case FormatWOFF2:
		return "woff2"
	default:
		return ""
	}
}
