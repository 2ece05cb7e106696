package theme

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pamburus/termframe/pkg/color"
	"github.com/pamburus/termframe/pkg/format"
)

// Palette maps palette indices to colors. Document keys are the decimal
// index as a string ("0".."255"); YAML also accepts bare integers.
type Palette map[int]color.RGBA

func thPaletteIndex(key string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || i < 0 || i > 255 {
		return 0, fmt.Errorf("theme: invalid palette index %q", key)
	}
	return i, nil
}

func (p *Palette) set(key, value string) error {
	i, err := thPaletteIndex(key)
	if err != nil {
		return err
	}
	c, err := color.Parse(value)
	if err != nil {
		return fmt.Errorf("theme: palette[%d]: %w", i, err)
	}
	if *p == nil {
		*p = make(Palette)
	}
	(*p)[i] = c
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (p *Palette) UnmarshalTOML(v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("theme: palette must be a table, got %T", v)
	}
	for k, raw := range m {
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("theme: palette[%s] must be a color string, got %T", k, raw)
		}
		if err := p.set(k, s); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Palette) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("theme: palette must be a mapping (line %d)", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("theme: palette[%s] must be a color string (line %d)", k.Value, v.Line)
		}
		if err := p.set(k.Value, v.Value); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Palette) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("theme: palette: %w", err)
	}
	for k, v := range m {
		if err := p.set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// thFile is the on-disk representation of a theme.
type thFile struct {
	Tags   []string     `toml:"tags" yaml:"tags" json:"tags"`
	Colors *thFileColors `toml:"colors" yaml:"colors" json:"colors"`
	Modes  *thFileModes  `toml:"modes" yaml:"modes" json:"modes"`
}

type thFileModes struct {
	Dark  *thFileMode `toml:"dark" yaml:"dark" json:"dark"`
	Light *thFileMode `toml:"light" yaml:"light" json:"light"`
}

type thFileMode struct {
	Colors *thFileColors `toml:"colors" yaml:"colors" json:"colors"`
}

type thFileColors struct {
	Background       *color.RGBA `toml:"background" yaml:"background" json:"background"`
	Foreground       *color.RGBA `toml:"foreground" yaml:"foreground" json:"foreground"`
	BrightForeground *color.RGBA `toml:"bright-foreground" yaml:"bright-foreground" json:"bright-foreground"`
	Palette          Palette     `toml:"palette" yaml:"palette" json:"palette"`
}

func (fc *thFileColors) colors(name, where string) (Colors, error) {
	if fc == nil {
		return Colors{}, fmt.Errorf("%w %q: missing %s colors", ErrInvalidTheme, name, where)
	}
	if fc.Background == nil || fc.Foreground == nil {
		return Colors{}, fmt.Errorf("%w %q: %s colors need background and foreground", ErrInvalidTheme, name, where)
	}
	return Colors{
		Background:       *fc.Background,
		Foreground:       *fc.Foreground,
		BrightForeground: fc.BrightForeground,
		Palette:          map[int]color.RGBA(fc.Palette),
	}, nil
}

func (f *thFile) theme(name string) (*Theme, error) {
	t := &Theme{Name: name, Tags: f.Tags}
	switch {
	case f.Colors != nil && f.Modes != nil:
		return nil, fmt.Errorf("%w %q: both colors and modes defined", ErrInvalidTheme, name)
	case f.Colors != nil:
		c, err := f.Colors.colors(name, "base")
		if err != nil {
			return nil, err
		}
		t.Base = &c
	case f.Modes != nil:
		var dark, light Colors
		var err error
		if f.Modes.Dark == nil || f.Modes.Light == nil {
			return nil, fmt.Errorf("%w %q: modes need both dark and light", ErrInvalidTheme, name)
		}
		if dark, err = f.Modes.Dark.Colors.colors(name, "dark"); err != nil {
			return nil, err
		}
		if light, err = f.Modes.Light.Colors.colors(name, "light"); err != nil {
			return nil, err
		}
		t.Modes = &Modes{Dark: dark, Light: light}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Decode parses a theme document in the given format.
func Decode(name string, f format.Format, data []byte) (*Theme, error) {
	var tf thFile
	if err := format.Decode(f, data, &tf); err != nil {
		return nil, fmt.Errorf("theme: %s: %w", name, err)
	}
	return tf.theme(name)
}

// LoadFile reads a theme from path; the name is the file's base name.
func LoadFile(name, path string) (*Theme, error) {
	var tf thFile
	if err := format.DecodeFile(path, &tf); err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	return tf.theme(name)
}
