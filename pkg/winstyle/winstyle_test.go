package winstyle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pamburus/termframe/pkg/format"
	"github.com/pamburus/termframe/pkg/theme"
)

// --- Built-ins ---

func TestBuiltinsValidate(t *testing.T) {
	lib := NewLibrary("")
	names, err := lib.Names()
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("Names() = %v, want 3 built-ins", names)
	}
	for _, name := range names {
		s, err := lib.Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestBuiltinReturnsCopy(t *testing.T) {
	a, _ := Builtin("macos")
	a.Header.Height = 99
	b, _ := Builtin("macos")
	if b.Header.Height == 99 {
		t.Error("Builtin returned shared state")
	}
}

func TestResolvePicksMode(t *testing.T) {
	s, _ := Builtin("macos")
	dark := s.Resolve(theme.Dark)
	light := s.Resolve(theme.Light)
	if dark.Header.Color.Hex() != "#2b2d31" || light.Header.Color.Hex() != "#e8e8e8" {
		t.Errorf("header colors dark=%s light=%s", dark.Header.Color.Hex(), light.Header.Color.Hex())
	}
	if len(dark.Buttons.Items) != 3 || dark.Buttons.Items[0].Fill == nil {
		t.Fatalf("buttons = %+v", dark.Buttons.Items)
	}
	if got := dark.Buttons.Items[0].Fill.Hex(); got != "#ff5f57" {
		t.Errorf("first button fill = %s", got)
	}
	if dark.Margin != (Edges{Left: 24, Right: 24, Top: 16, Bottom: 32}) {
		t.Errorf("margin = %+v", dark.Margin)
	}
}

// --- Margin ---

func TestMarginForms(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Edges
	}{
		{"uniform", "margin = 5", Edges{5, 5, 5, 5}},
		{"symmetric", "margin = { horizontal = 4, vertical = 2 }", Edges{4, 4, 2, 2}},
		{"per edge", "margin = { left = 1, right = 2, top = 3, bottom = 4 }", Edges{1, 2, 3, 4}},
		{"partial edge", "margin = { top = 3.5 }", Edges{0, 0, 3.5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				Margin Margin `toml:"margin"`
			}
			if err := format.Decode(format.TOML, []byte(tt.doc), &v); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if err := v.Margin.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if got := v.Margin.Edges(); got != tt.want {
				t.Errorf("Edges() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMixedMarginIsLayoutError(t *testing.T) {
	doc := "[window]\nmargin = { horizontal = 4, top = 2 }\n"
	_, err := Decode("mixed", format.TOML, []byte(doc))
	var le *LayoutError
	if !errors.As(err, &le) {
		t.Fatalf("Decode error = %v, want LayoutError", err)
	}
	if le.Style != "mixed" || le.Field != "margin" {
		t.Errorf("LayoutError = %+v", le)
	}
}

func TestMissingMarginIsLayoutError(t *testing.T) {
	tests := map[string]struct {
		f   format.Format
		doc string
	}{
		"toml without margin": {format.TOML, "[window.border]\nwidth = 1\n"},
		"empty toml table":    {format.TOML, "[window]\nmargin = {}\n"},
		"yaml without margin": {format.YAML, "window:\n  border:\n    width: 1\n"},
		"json empty object":   {format.JSON, `{"window": {"margin": {}}}`},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode("bare", tt.f, []byte(tt.doc))
			var le *LayoutError
			if !errors.As(err, &le) {
				t.Fatalf("Decode error = %v, want LayoutError", err)
			}
			if le.Field != "margin" || !strings.Contains(le.Reason, "missing") {
				t.Errorf("LayoutError = %+v", le)
			}
		})
	}

	if err := (Margin{}).Validate(); err == nil {
		t.Error("zero Margin validated")
	}
	if err := UniformMargin(0).Validate(); err != nil {
		t.Errorf("explicit zero margin: %v", err)
	}
}

func TestMarginYAMLAndJSON(t *testing.T) {
	var v struct {
		Margin Margin `yaml:"margin" json:"margin"`
	}
	if err := format.Decode(format.YAML, []byte("margin: {horizontal: 3, vertical: 1}"), &v); err != nil {
		t.Fatalf("YAML: %v", err)
	}
	if got := v.Margin.Edges(); got != (Edges{3, 3, 1, 1}) {
		t.Errorf("YAML edges = %+v", got)
	}
	if err := format.Decode(format.JSON, []byte(`{"margin": 7}`), &v); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if got := v.Margin.Edges(); got != (Edges{7, 7, 7, 7}) {
		t.Errorf("JSON edges = %+v", got)
	}
}

// --- Documents ---

const yamlStyle = `
window:
  margin: 8
  border:
    width: 2
    radius: 4
    colors:
      outer: "#111111"
      inner: {dark: "#222222", light: "#dddddd"}
  header:
    height: 24
    color: {dark: "#333333", light: "#eeeeee"}
  title:
    color: "#999999"
    font:
      family: Inter
      size: 12
      weight: bold
  buttons:
    position: right
    shape: square
    size: 10
    items:
      - offset: 16
        fill: "#ff0000"
        icon:
          path: "M0.3,0.3 L0.7,0.7"
          color: "#000000"
          width: 0.1
  shadow:
    enabled: false
`

func TestDecodeYAMLStyle(t *testing.T) {
	s, err := Decode("custom", format.YAML, []byte(yamlStyle))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	r := s.Resolve(theme.Light)
	if r.Border.Inner.Hex() != "#dddddd" || r.Border.Outer.Hex() != "#111111" {
		t.Errorf("border colors = %+v", r.Border)
	}
	if r.Buttons.Position != PositionRight || r.Buttons.Shape != ShapeSquare {
		t.Errorf("buttons = %+v", r.Buttons)
	}
	if r.Buttons.Items[0].Icon == nil || r.Buttons.Items[0].Icon.Path == "" {
		t.Errorf("icon not decoded: %+v", r.Buttons.Items[0])
	}
	if r.Title.Families.Primary() != "Inter" || r.Title.Weight.String() != "bold" {
		t.Errorf("title = %+v", r.Title)
	}
}

func TestDecodeRejectsInvalidStyles(t *testing.T) {
	tests := map[string]string{
		"bad position":      "[window.buttons]\nposition = \"top\"\n",
		"bad shape":         "[window.buttons]\nshape = \"star\"\n",
		"negative radius":   "[window.border]\nradius = -1\n",
		"half dual color":   "[window.header]\ncolor = { dark = \"#000\" }\n",
		"button too large":  "[window.header]\nheight = 10\n[window.buttons]\nsize = 12\n[[window.buttons.items]]\noffset = 5\n",
		"icon without path": "[window.header]\nheight = 20\n[window.buttons]\nsize = 12\n[[window.buttons.items]]\noffset = 5\n[window.buttons.items.icon]\ncolor = \"#000\"\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			doc = "[window]\nmargin = 0\n" + doc
			if _, err := Decode(name, format.TOML, []byte(doc)); err == nil {
				t.Error("Decode succeeded, want error")
			}
		})
	}
}

// --- Library ---

func TestLibraryUserStyle(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.yaml"), []byte(yamlStyle), 0o644); err != nil {
		t.Fatal(err)
	}
	lib := NewLibrary(dir)
	s, err := lib.Load("mine")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "mine" || s.Border.Width != 2 {
		t.Errorf("loaded %+v", s)
	}
	names, _ := lib.Names()
	if len(names) != 4 {
		t.Errorf("Names() = %v", names)
	}
}

func TestLibraryNotFound(t *testing.T) {
	_, err := NewLibrary(t.TempDir()).Load("macoss")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Load error = %v, want NotFoundError", err)
	}
	if nf.Available[0] != "macos" {
		t.Errorf("closest style = %q, want macos", nf.Available[0])
	}
}
