package winstyle

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pamburus/termframe/pkg/color"
	"github.com/pamburus/termframe/pkg/theme"
)

// DualColor is a color that may differ between dark and light mode.
// Documents give either one color string or a {dark, light} table.
type DualColor struct {
	Dark  color.RGBA
	Light color.RGBA
}

// Uniform returns a DualColor with the same color in both modes.
func Uniform(c color.RGBA) DualColor {
	return DualColor{Dark: c, Light: c}
}

func dual(dark, light string) DualColor {
	return DualColor{Dark: color.MustParse(dark), Light: color.MustParse(light)}
}

func uniform(s string) DualColor {
	return Uniform(color.MustParse(s))
}

// Resolve picks the member for mode.
func (d DualColor) Resolve(mode theme.Mode) color.RGBA {
	if mode == theme.Light {
		return d.Light
	}
	return d.Dark
}

func (d *DualColor) setUniform(s string) error {
	c, err := color.Parse(s)
	if err != nil {
		return fmt.Errorf("winstyle: %w", err)
	}
	*d = Uniform(c)
	return nil
}

func (d *DualColor) setPair(dark, light string) error {
	if dark == "" || light == "" {
		return fmt.Errorf("winstyle: adaptive color needs both dark and light")
	}
	dc, err := color.Parse(dark)
	if err != nil {
		return fmt.Errorf("winstyle: dark: %w", err)
	}
	lc, err := color.Parse(light)
	if err != nil {
		return fmt.Errorf("winstyle: light: %w", err)
	}
	*d = DualColor{Dark: dc, Light: lc}
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (d *DualColor) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		return d.setUniform(v)
	case map[string]any:
		dark, _ := v["dark"].(string)
		light, _ := v["light"].(string)
		for k := range v {
			if k != "dark" && k != "light" {
				return fmt.Errorf("winstyle: unknown color mode %q", k)
			}
		}
		return d.setPair(dark, light)
	default:
		return fmt.Errorf("winstyle: color must be a string or {dark, light} table, got %T", v)
	}
}

type dualTable struct {
	Dark  string `yaml:"dark" json:"dark"`
	Light string `yaml:"light" json:"light"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DualColor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return d.setUniform(node.Value)
	}
	var t dualTable
	if err := node.Decode(&t); err != nil {
		return fmt.Errorf("winstyle: color: %w", err)
	}
	return d.setPair(t.Dark, t.Light)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DualColor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.setUniform(s)
	}
	var t dualTable
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("winstyle: color: %w", err)
	}
	return d.setPair(t.Dark, t.Light)
}
