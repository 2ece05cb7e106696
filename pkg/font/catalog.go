package font

import (
	"strings"

	"github.com/pamburus/termframe/pkg/style"
)

// CatalogEntry tells where the files of one family live. Files are given
// in style order: regular, bold, italic, bold-italic. Further files are
// placed by the style their tables declare.
type CatalogEntry struct {
	Family  string   `toml:"family" yaml:"family" json:"family"`
	License string   `toml:"license" yaml:"license" json:"license"`
	Files   []string `toml:"files" yaml:"files" json:"files"`
}

// Catalog is the list of families available for embedding.
type Catalog []CatalogEntry

// Lookup finds the entry for family, ignoring case.
func (c Catalog) Lookup(family string) (CatalogEntry, bool) {
	for _, e := range c {
		if strings.EqualFold(e.Family, family) {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// Variant is the style a face is registered for.
type Variant struct {
	Weight style.Weight
	Italic bool
}

// positionalVariants maps catalog file positions to styles.
var positionalVariants = []Variant{
	{Weight: style.WeightNormal},
	{Weight: style.WeightBold},
	{Weight: style.WeightNormal, Italic: true},
	{Weight: style.WeightBold, Italic: true},
}

// variantFor returns the style of the file at position i, consulting the
// parsed tables for files beyond the positional ones.
func variantFor(i int, info *Info) Variant {
	if i < len(positionalVariants) {
		return positionalVariants[i]
	}
	v := Variant{Weight: style.WeightNormal}
	if info != nil {
		if info.Weight > 0 {
			v.Weight = style.Weight(info.Weight)
		} else if info.Bold {
			v.Weight = style.WeightBold
		}
		v.Italic = info.Italic
	}
	return v
}
