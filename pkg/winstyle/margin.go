package winstyle

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Edges holds one value per side, in px.
type Edges struct {
	Left, Right, Top, Bottom float64
}

// Margin is the space around the window. A document supplies exactly one
// form: a number, {horizontal, vertical} or {left, right, top, bottom}.
// Mixed forms are detected by Validate.
type Margin struct {
	Uniform    *float64
	Horizontal *float64
	Vertical   *float64
	Left       *float64
	Right      *float64
	Top        *float64
	Bottom     *float64
}

// UniformMargin returns a margin of v on every side.
func UniformMargin(v float64) Margin {
	return Margin{Uniform: &v}
}

// SymmetricMargin returns a margin of h left/right and v top/bottom.
func SymmetricMargin(h, v float64) Margin {
	return Margin{Horizontal: &h, Vertical: &v}
}

// EdgeMargin returns a per-edge margin.
func EdgeMargin(left, right, top, bottom float64) Margin {
	return Margin{Left: &left, Right: &right, Top: &top, Bottom: &bottom}
}

func (m Margin) forms() []string {
	var forms []string
	if m.Uniform != nil {
		forms = append(forms, "uniform")
	}
	if m.Horizontal != nil || m.Vertical != nil {
		forms = append(forms, "symmetric")
	}
	if m.Left != nil || m.Right != nil || m.Top != nil || m.Bottom != nil {
		forms = append(forms, "per-edge")
	}
	return forms
}

// Validate checks that exactly one form is used and values are not
// negative. Within a table form, omitted sides are zero.
func (m Margin) Validate() error {
	switch forms := m.forms(); len(forms) {
	case 0:
		return &LayoutError{Field: "margin", Reason: "missing; supply a number, {horizontal, vertical} or {left, right, top, bottom}"}
	case 1:
	default:
		return &LayoutError{Field: "margin", Reason: fmt.Sprintf("mixes %v forms; supply exactly one", forms)}
	}
	e := m.Edges()
	if e.Left < 0 || e.Right < 0 || e.Top < 0 || e.Bottom < 0 {
		return &LayoutError{Field: "margin", Reason: "must not be negative"}
	}
	return nil
}

// Edges expands the margin to per-side values. Unset sides are zero.
func (m Margin) Edges() Edges {
	get := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	switch {
	case m.Uniform != nil:
		v := *m.Uniform
		return Edges{Left: v, Right: v, Top: v, Bottom: v}
	case m.Horizontal != nil || m.Vertical != nil:
		h, v := get(m.Horizontal), get(m.Vertical)
		return Edges{Left: h, Right: h, Top: v, Bottom: v}
	default:
		return Edges{Left: get(m.Left), Right: get(m.Right), Top: get(m.Top), Bottom: get(m.Bottom)}
	}
}

func (m *Margin) setTable(t map[string]float64) error {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out Margin
	for _, k := range keys {
		v := t[k]
		switch k {
		case "horizontal":
			out.Horizontal = &v
		case "vertical":
			out.Vertical = &v
		case "left":
			out.Left = &v
		case "right":
			out.Right = &v
		case "top":
			out.Top = &v
		case "bottom":
			out.Bottom = &v
		default:
			return fmt.Errorf("winstyle: margin: unknown key %q", k)
		}
	}
	*m = out
	return nil
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// UnmarshalTOML implements toml.Unmarshaler.
func (m *Margin) UnmarshalTOML(v any) error {
	if f, ok := toFloat(v); ok {
		*m = UniformMargin(f)
		return nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("winstyle: margin must be a number or table, got %T", v)
	}
	t := make(map[string]float64, len(raw))
	for k, item := range raw {
		f, ok := toFloat(item)
		if !ok {
			return fmt.Errorf("winstyle: margin.%s must be a number, got %T", k, item)
		}
		t[k] = f
	}
	return m.setTable(t)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Margin) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("winstyle: margin: %w", err)
		}
		*m = UniformMargin(f)
		return nil
	}
	var t map[string]float64
	if err := node.Decode(&t); err != nil {
		return fmt.Errorf("winstyle: margin: %w", err)
	}
	return m.setTable(t)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Margin) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*m = UniformMargin(f)
		return nil
	}
	var t map[string]float64
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("winstyle: margin: %w", err)
	}
	return m.setTable(t)
}
