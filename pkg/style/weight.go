package style

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Weight is a CSS font weight in the range 1..1000.
type Weight int

const (
	WeightNormal Weight = 400
	WeightBold   Weight = 700
)

// ParseWeight accepts "normal", "bold" or a number between 1 and 1000.
func ParseWeight(s string) (Weight, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "regular":
		return WeightNormal, nil
	case "bold":
		return WeightBold, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("style: invalid font weight %q", s)
	}
	return checkWeight(n)
}

func checkWeight(n int) (Weight, error) {
	if n < 1 || n > 1000 {
		return 0, fmt.Errorf("style: font weight %d out of range 1..1000", n)
	}
	return Weight(n), nil
}

// String returns the CSS value: a keyword for 400 and 700, else the number.
func (w Weight) String() string {
	switch w {
	case WeightNormal:
		return "normal"
	case WeightBold:
		return "bold"
	default:
		return strconv.Itoa(int(w))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (w Weight) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Weight) UnmarshalText(text []byte) error {
	v, err := ParseWeight(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler for keyword or integer weights.
func (w *Weight) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case int64:
		parsed, err := checkWeight(int(v))
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	case string:
		return w.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("style: font weight must be a string or integer, got %T", v)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (w *Weight) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("style: font weight must be a scalar (line %d)", node.Line)
	}
	return w.UnmarshalText([]byte(node.Value))
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Weight) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		parsed, err := checkWeight(n)
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("style: font weight: %w", err)
	}
	return w.UnmarshalText([]byte(s))
}

// Weights selects the font weight per cell attribute.
type Weights struct {
	Normal Weight `toml:"normal" yaml:"normal" json:"normal"`
	Bold   Weight `toml:"bold" yaml:"bold" json:"bold"`
	Faint  Weight `toml:"faint" yaml:"faint" json:"faint"`
}

// DefaultWeights returns normal/bold/normal.
func DefaultWeights() Weights {
	return Weights{Normal: WeightNormal, Bold: WeightBold, Faint: WeightNormal}
}

// Validate rejects unset or out-of-range weights.
func (ws Weights) Validate() error {
	named := []struct {
		name string
		w    Weight
	}{{"normal", ws.Normal}, {"bold", ws.Bold}, {"faint", ws.Faint}}
	for _, n := range named {
		if _, err := checkWeight(int(n.w)); err != nil {
			return fmt.Errorf("style: weights.%s: %w", n.name, err)
		}
	}
	return nil
}
