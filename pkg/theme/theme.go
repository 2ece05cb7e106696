// Package theme defines terminal color themes: the default foreground and
// background plus palette overrides, either for a single appearance or for
// both dark and light modes. It also owns the built-in theme set and the
// lookup of user-defined themes.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pamburus/termframe/pkg/color"
)

// ErrInvalidTheme is returned for themes that are neither single-mode nor
// complete dual-mode definitions.
var ErrInvalidTheme = errors.New("theme: invalid theme")

// Colors is one set of terminal colors. Palette holds overrides only; missing
// indices fall back to the built-in standard table.
type Colors struct {
	Background       color.RGBA
	Foreground       color.RGBA
	BrightForeground *color.RGBA
	Palette          map[int]color.RGBA
}

// Modes holds the dark and light variants of a dual-mode theme.
type Modes struct {
	Dark  Colors
	Light Colors
}

// Theme is a named color theme. Exactly one of Base and Modes is set.
type Theme struct {
	Name  string
	Tags  []string
	Base  *Colors
	Modes *Modes
}

// Validate checks the single-mode / dual-mode invariant and palette indices.
func (t *Theme) Validate() error {
	switch {
	case t.Base == nil && t.Modes == nil:
		return fmt.Errorf("%w %q: neither colors nor modes defined", ErrInvalidTheme, t.Name)
	case t.Base != nil && t.Modes != nil:
		return fmt.Errorf("%w %q: both colors and modes defined", ErrInvalidTheme, t.Name)
	}
	for _, c := range t.allColors() {
		for i := range c.Palette {
			if i < 0 || i > 255 {
				return fmt.Errorf("%w %q: palette index %d out of range", ErrInvalidTheme, t.Name, i)
			}
		}
	}
	return nil
}

func (t *Theme) allColors() []*Colors {
	if t.Base != nil {
		return []*Colors{t.Base}
	}
	if t.Modes != nil {
		return []*Colors{&t.Modes.Dark, &t.Modes.Light}
	}
	return nil
}

// IsAdaptive reports whether the theme has distinct dark and light variants.
func (t *Theme) IsAdaptive() bool {
	return t.Modes != nil
}

// Colors returns the color set for mode. Single-mode themes return the same
// colors for both modes.
func (t *Theme) Colors(mode Mode) Colors {
	if t.Base != nil {
		return *t.Base
	}
	if mode == Light {
		return t.Modes.Light
	}
	return t.Modes.Dark
}

// HasTag reports whether the theme carries tag (case-insensitive).
func (t *Theme) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if strings.EqualFold(v, tag) {
			return true
		}
	}
	return false
}

var (
	mu       sync.RWMutex
	registry = map[string]*Theme{}
)

func init() {
	thRegisterBuiltins()
}

// Builtin returns the built-in theme whose normalized name equals the
// normalized form of name.
func Builtin(name string) (*Theme, bool) {
	mu.RLock()
	defer mu.RUnlock()
	t, ok := registry[thNormalize(name)]
	return t, ok
}

// BuiltinNames returns the names of all built-in themes sorted
// alphabetically.
func BuiltinNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for _, t := range registry {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// thRegister adds a theme to the registry under its normalized name.
func thRegister(t *Theme) {
	if err := t.Validate(); err != nil {
		panic(err)
	}
	mu.Lock()
	defer mu.Unlock()
	registry[thNormalize(t.Name)] = t
}

// thNormalize lowercases name and drops everything that is not a letter or
// digit, so "Tokyo Night", "tokyo-night" and "tokyo_night" compare equal.
func thNormalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r > 0x7f {
			b.WriteRune(r)
		}
	}
	return b.String()
}
