package font

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Families is an ordered font-family fallback list. Documents may give a
// single string or a list of strings.
type Families []string

// Primary returns the first family or "".
func (f Families) Primary() string {
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// CSS formats the list as a CSS font-family value, quoting names that are
// not generic families or plain identifiers.
func (f Families) CSS() string {
	parts := make([]string, 0, len(f))
	for _, name := range f {
		parts = append(parts, cssFamilyName(name))
	}
	return strings.Join(parts, ", ")
}

var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true, "ui-monospace": true, "ui-sans-serif": true,
	"ui-serif": true, "math": true, "emoji": true,
}

func cssFamilyName(name string) string {
	if genericFamilies[name] || strings.HasPrefix(name, "-") && !strings.ContainsAny(name, " '\"") {
		return name
	}
	simple := name != ""
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			simple = false
			break
		}
	}
	if simple && !(name[0] >= '0' && name[0] <= '9') {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "\\'") + "'"
}

// ParseFamilies reads a comma-separated family list such as
// "JetBrains Mono, monospace".
func ParseFamilies(s string) (Families, error) {
	var f Families
	if err := f.set(strings.Split(s, ",")); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Families) set(list []string) error {
	out := make(Families, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" {
			return fmt.Errorf("font: empty font family")
		}
		out = append(out, s)
	}
	*f = out
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (f *Families) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		return f.set([]string{v})
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("font: family entries must be strings, got %T", item)
			}
			list = append(list, s)
		}
		return f.set(list)
	default:
		return fmt.Errorf("font: family must be a string or list, got %T", v)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Families) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return f.set([]string{node.Value})
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return fmt.Errorf("font: family: %w", err)
	}
	return f.set(list)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Families) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return f.set([]string{s})
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("font: family: %w", err)
	}
	return f.set(list)
}
