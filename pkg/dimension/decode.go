package dimension

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// table is the structured form {min, max, step, default}.
type table struct {
	Min     int `json:"min" yaml:"min"`
	Max     int `json:"max" yaml:"max"`
	Step    int `json:"step" yaml:"step"`
	Default int `json:"default" yaml:"default"`
}

func (t table) spec() (Spec, error) {
	s := Spec{Kind: Range, Min: t.Min, Max: t.Max, Step: t.Step, Default: t.Default}
	if t.Min == 0 && t.Max == 0 && t.Step == 0 {
		s = Spec{Kind: Auto, Default: t.Default}
	}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Spec) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalTOML implements toml.Unmarshaler for integers, strings and tables.
func (s *Spec) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case int64:
		return s.setFixed(int(v))
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case map[string]any:
		var t table
		for key, raw := range v {
			n, ok := raw.(int64)
			if !ok {
				return fmt.Errorf("%w: %s must be an integer", ErrInvalid, key)
			}
			switch key {
			case "min":
				t.Min = int(n)
			case "max":
				t.Max = int(n)
			case "step":
				t.Step = int(n)
			case "default", "initial":
				t.Default = int(n)
			default:
				return fmt.Errorf("%w: unknown field %q", ErrInvalid, key)
			}
		}
		parsed, err := t.spec()
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	default:
		return fmt.Errorf("%w: unsupported value %v", ErrInvalid, v)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!int" {
			var n int
			if err := node.Decode(&n); err != nil {
				return err
			}
			return s.setFixed(n)
		}
		parsed, err := Parse(node.Value)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case yaml.MappingNode:
		var t table
		if err := node.Decode(&t); err != nil {
			return err
		}
		parsed, err := t.spec()
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	default:
		return fmt.Errorf("%w: unsupported YAML node at line %d", ErrInvalid, node.Line)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		return s.setFixed(n)
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := Parse(text)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	var t table
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	parsed, err := t.spec()
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Spec) setFixed(n int) error {
	fixed := NewFixed(n)
	if err := fixed.Validate(); err != nil {
		return err
	}
	*s = fixed
	return nil
}
