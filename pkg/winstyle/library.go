package winstyle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pamburus/termframe/pkg/format"
	"github.com/pamburus/termframe/pkg/theme"
)

// NotFoundError reports an unknown window style.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("winstyle: unknown window style %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// wsFile is the on-disk layout: the style lives under a [window] table.
type wsFile struct {
	Window Style `toml:"window" yaml:"window" json:"window"`
}

// Library resolves window style names against the built-ins and a user
// directory of <name>.toml, .yaml, .yml or .json documents.
type Library struct {
	Dir string
}

// NewLibrary returns a library over dir. An empty dir means built-ins only.
func NewLibrary(dir string) *Library {
	return &Library{Dir: dir}
}

// Builtin returns a fresh copy of the named built-in style.
func Builtin(name string) (*Style, bool) {
	s, ok := builtins()[strings.ToLower(name)]
	return s, ok
}

// Names lists built-in and user style names.
func (l *Library) Names() ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for name := range builtins() {
		seen[name] = true
		names = append(names, name)
	}
	if l.Dir != "" {
		user, err := format.List(l.Dir)
		if err != nil {
			return nil, fmt.Errorf("winstyle: %w", err)
		}
		for _, n := range user {
			if !seen[strings.ToLower(n)] {
				seen[strings.ToLower(n)] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the validated style called name, searching built-ins first.
func (l *Library) Load(name string) (*Style, error) {
	if s, ok := Builtin(name); ok {
		return s, nil
	}
	if l.Dir != "" {
		if path, ok := format.Find(l.Dir, name); ok {
			return LoadFile(name, path)
		}
	}
	names, err := l.Names()
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			if path, ok := format.Find(l.Dir, n); ok {
				return LoadFile(n, path)
			}
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return theme.Similarity(name, names[i]) > theme.Similarity(name, names[j])
	})
	return nil, &NotFoundError{Name: name, Available: names}
}

// LoadFile reads and validates a style document.
func LoadFile(name, path string) (*Style, error) {
	var f wsFile
	if err := format.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("winstyle: %w", err)
	}
	return finish(name, &f.Window)
}

// Decode parses and validates a style document.
func Decode(name string, ff format.Format, data []byte) (*Style, error) {
	var f wsFile
	if err := format.Decode(ff, data, &f); err != nil {
		return nil, fmt.Errorf("winstyle: %s: %w", name, err)
	}
	return finish(name, &f.Window)
}

func finish(name string, s *Style) (*Style, error) {
	s.Name = name
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
