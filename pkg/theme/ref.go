package theme

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ref selects a theme by name, optionally a different one per mode.
type Ref struct {
	Dark  string
	Light string
}

// FixedRef refers to the same theme in both modes.
func FixedRef(name string) Ref {
	return Ref{Dark: name, Light: name}
}

// ParseRef accepts "NAME" or "dark:NAME,light:NAME" (either half may be
// omitted, in which case the other is used for both modes).
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		if s == "" {
			return Ref{}, fmt.Errorf("theme: empty theme reference")
		}
		return FixedRef(s), nil
	}
	var r Ref
	for _, part := range strings.Split(s, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), ":")
		val = strings.TrimSpace(val)
		if !ok || val == "" {
			return Ref{}, fmt.Errorf("theme: invalid theme reference %q", s)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "dark":
			r.Dark = val
		case "light":
			r.Light = val
		default:
			return Ref{}, fmt.Errorf("theme: invalid theme reference %q: unknown mode %q", s, key)
		}
	}
	return r.complete()
}

func (r Ref) complete() (Ref, error) {
	switch {
	case r.Dark == "" && r.Light == "":
		return Ref{}, fmt.Errorf("theme: empty theme reference")
	case r.Dark == "":
		r.Dark = r.Light
	case r.Light == "":
		r.Light = r.Dark
	}
	return r, nil
}

// Name returns the theme name for mode.
func (r Ref) Name(mode Mode) string {
	if mode == Light {
		return r.Light
	}
	return r.Dark
}

// IsZero reports whether the reference names nothing.
func (r Ref) IsZero() bool {
	return r.Dark == "" && r.Light == ""
}

// String formats the reference the way ParseRef accepts it.
func (r Ref) String() string {
	if r.Dark == r.Light {
		return r.Dark
	}
	return "dark:" + r.Dark + ",light:" + r.Light
}

// MarshalText implements encoding.TextMarshaler.
func (r Ref) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

type thRefTable struct {
	Dark  string `yaml:"dark" json:"dark"`
	Light string `yaml:"light" json:"light"`
}

// UnmarshalTOML implements toml.Unmarshaler for a string or a {dark, light}
// table.
func (r *Ref) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		parsed, err := ParseRef(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case map[string]any:
		var t Ref
		for k, raw := range v {
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("theme: %s theme must be a string, got %T", k, raw)
			}
			switch k {
			case "dark":
				t.Dark = s
			case "light":
				t.Light = s
			default:
				return fmt.Errorf("theme: unknown theme mode %q", k)
			}
		}
		parsed, err := t.complete()
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	default:
		return fmt.Errorf("theme: theme must be a string or table, got %T", v)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Ref) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := ParseRef(node.Value)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}
	var t thRefTable
	if err := node.Decode(&t); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	parsed, err := Ref{Dark: t.Dark, Light: t.Light}.complete()
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseRef(s)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}
	var t thRefTable
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	parsed, err := Ref{Dark: t.Dark, Light: t.Light}.complete()
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
