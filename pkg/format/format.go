// Package format decodes configuration documents (config, themes, window
// styles) from TOML, YAML or JSON chosen by file extension.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a supported document syntax.
type Format int

const (
	TOML Format = iota
	YAML
	JSON
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case JSON:
		return "json"
	default:
		return "toml"
	}
}

// Extensions lists recognized file extensions in lookup order.
func Extensions() []string {
	return []string{".toml", ".yaml", ".yml", ".json"}
}

// FromPath detects the format from a file extension.
func FromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return TOML, fmt.Errorf("format: unsupported file extension %q", filepath.Ext(path))
	}
}

// Decode unmarshals data into v. Fields already set in v are kept unless the
// document overrides them.
func Decode(f Format, data []byte, v any) error {
	var err error
	switch f {
	case YAML:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		err = yaml.Unmarshal(data, v)
	case JSON:
		err = json.Unmarshal(data, v)
	default:
		err = toml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("format: decode %s: %w", f, err)
	}
	return nil
}

// DecodeFile reads path and decodes it according to its extension.
func DecodeFile(path string, v any) error {
	f, err := FromPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("format: read %s: %w", path, err)
	}
	if err := Decode(f, data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Find returns the first existing file dir/name+ext over Extensions.
func Find(dir, name string) (string, bool) {
	for _, ext := range Extensions() {
		p := filepath.Join(dir, name+ext)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

// List returns the base names (without extension) of supported documents in
// dir, sorted and deduplicated. A missing directory yields no names.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("format: list %s: %w", dir, err)
	}
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FromPath(e.Name()); err != nil {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
