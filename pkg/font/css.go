package font

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// CSS returns the @font-face rule embedding the face as a data URL.
func (f Face) CSS() string {
	var b strings.Builder
	b.WriteString("@font-face{font-family:")
	b.WriteString(cssFamilyName(f.Family))
	b.WriteString(";src:url(data:")
	b.WriteString(f.Format.MIME())
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(f.Data))
	b.WriteString(")")
	if css := f.Format.CSS(); css != "" {
		b.WriteString(" format('")
		b.WriteString(css)
		b.WriteString("')")
	}
	b.WriteString(";font-weight:")
	if f.WeightRange != nil {
		b.WriteString(strconv.FormatFloat(f.WeightRange.Min, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(f.WeightRange.Max, 'f', -1, 64))
	} else {
		b.WriteString(strconv.Itoa(int(f.Variant.Weight)))
	}
	b.WriteString(";font-style:")
	if f.Variant.Italic {
		b.WriteString("italic")
	} else {
		b.WriteString("normal")
	}
	b.WriteString("}")
	return b.String()
}

// CSS returns the @font-face rules of all faces, one per line, in order.
func (s *Set) CSS() string {
	if s == nil || len(s.Faces) == 0 {
		return ""
	}
	rules := make([]string, len(s.Faces))
	for i, f := range s.Faces {
		rules[i] = f.CSS()
	}
	return strings.Join(rules, "\n")
}
