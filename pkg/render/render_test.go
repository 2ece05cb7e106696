package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pamburus/termframe/pkg/color"
	"github.com/pamburus/termframe/pkg/grid"
	"github.com/pamburus/termframe/pkg/style"
	"github.com/pamburus/termframe/pkg/termtest"
	"github.com/pamburus/termframe/pkg/theme"
	"github.com/pamburus/termframe/pkg/winstyle"
)

func newTestResolver(t *testing.T, opts ...func(*style.Options)) *style.Resolver {
	t.Helper()
	colors := theme.Colors{
		Background: color.MustParse("#101010"),
		Foreground: color.MustParse("#c0c0c0"),
		Palette: map[int]color.RGBA{
			1: color.MustParse("#aa0000"),
			4: color.MustParse("#0000aa"),
		},
	}
	o := style.DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return style.NewResolver(colors, o)
}

func render(t *testing.T, g *grid.Grid, res *style.Resolver, opts ...func(*Options)) string {
	t.Helper()
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	var buf bytes.Buffer
	if err := Write(&buf, g, res, o); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.String()
}

func withWindow(title string) func(*Options) {
	return func(o *Options) {
		ws, _ := winstyle.Builtin(winstyle.DefaultName)
		o.Window = ws.Resolve(theme.Dark)
		o.Title = title
	}
}

// --- Document ---

func TestRenderHelloWorld(t *testing.T) {
	g := grid.FromLines(10, 2, "Hello, Wor")
	got := render(t, g, newTestResolver(t))
	termtest.Golden(t, "hello.svg", []byte(got))
}

func TestRenderIsDeterministic(t *testing.T) {
	g := grid.FromLines(20, 3, "$ ls -la", "total 0", "drwxr-xr-x  2 user")
	g.Set(0, 0, grid.Cell{Rune: '$', FG: grid.Indexed(2), BG: grid.RGB(1, 2, 3), Attrs: grid.Attrs{Bold: true}})
	res := newTestResolver(t)

	a := render(t, g, res, withWindow("ls -la"))
	b := render(t, g, res, withWindow("ls -la"))
	if a != b {
		t.Error("two renders of the same input differ")
	}
}

func TestRenderRejectsInvalidOptions(t *testing.T) {
	o := DefaultOptions()
	o.FontSize = 0
	if _, err := Render(grid.New(1, 1), newTestResolver(t), o); err == nil {
		t.Error("expected error for zero font size")
	}
}

// --- Background ---

func TestBackgroundRuns(t *testing.T) {
	g := grid.FromLines(10, 1, "abcdefghij")
	for x := 2; x < 5; x++ {
		c := g.At(x, 0)
		c.BG = grid.Indexed(1)
		g.Set(x, 0, c)
	}
	got := render(t, g, newTestResolver(t))
	want := `<rect x="14.2" y="-0.2" width="22" height="14.8" fill="#aa0000"/>`
	if !strings.Contains(got, want) {
		t.Errorf("missing background run %s in\n%s", want, got)
	}
	if n := strings.Count(got, "<rect"); n != 2 {
		t.Errorf("got %d rects, want page background plus one run", n)
	}
}

func TestReverseDefaultPaintsBackground(t *testing.T) {
	g := grid.New(3, 1)
	g.Set(1, 0, grid.Cell{Rune: ' ', Attrs: grid.Attrs{Reverse: true}})
	got := render(t, g, newTestResolver(t))
	if !strings.Contains(got, `fill="#c0c0c0"/>`) {
		t.Errorf("reverse cell should paint the foreground as background:\n%s", got)
	}
	if strings.Contains(got, "<tspan") {
		t.Error("a row of spaces must not produce text")
	}
}

// --- Text ---

func TestSpanAttributes(t *testing.T) {
	g := grid.New(6, 1)
	g.Set(0, 0, grid.Cell{Rune: 'B', Attrs: grid.Attrs{Bold: true}})
	g.Set(1, 0, grid.Cell{Rune: 'I', Attrs: grid.Attrs{Italic: true}})
	g.Set(2, 0, grid.Cell{Rune: 'U', UnderlineColor: grid.RGB(255, 0, 0), Attrs: grid.Attrs{Underline: grid.UnderlineCurly}})
	g.Set(3, 0, grid.Cell{Rune: 'S', Attrs: grid.Attrs{Strike: true}})
	g.Set(4, 0, grid.Cell{Rune: 'F', Attrs: grid.Attrs{Faint: true}})
	g.Set(5, 0, grid.Cell{Rune: 'R', FG: grid.Indexed(1)})

	got := render(t, g, newTestResolver(t))
	for _, want := range []string{
		`<tspan font-weight="bold">B</tspan>`,
		`<tspan font-style="italic">I</tspan>`,
		`<tspan text-decoration="underline" text-decoration-color="#ff0000" text-decoration-style="wavy">U</tspan>`,
		`<tspan text-decoration="line-through">S</tspan>`,
		`<tspan fill-opacity="0.5">F</tspan>`,
		`<tspan fill="#aa0000">R</tspan>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in\n%s", want, got)
		}
	}
}

func TestSpanPositions(t *testing.T) {
	g := grid.New(8, 1)
	g.Set(0, 0, grid.Cell{Rune: 'a'})
	g.Set(1, 0, grid.Cell{Rune: '世', Attrs: grid.Attrs{Wide: true}})
	g.Set(3, 0, grid.Cell{Rune: 'b'})
	g.Set(6, 0, grid.Cell{Rune: 'c', FG: grid.Indexed(1)})

	got := render(t, g, newTestResolver(t))
	want := `<tspan>a</tspan><tspan>世</tspan><tspan x="1.8em">b</tspan><tspan x="3.6em" fill="#aa0000">c</tspan>`
	if !strings.Contains(got, want) {
		t.Errorf("missing %s in\n%s", want, got)
	}
}

func TestRowSpansTrimSpaces(t *testing.T) {
	g := grid.FromLines(10, 1, "  ab  cd  ")
	spans := rowSpans(g.Row(0))
	if len(spans) != 1 || string(spans[0].text) != "ab  cd" || spans[0].col != 2 || spans[0].cols != 6 {
		t.Errorf("spans = %+v", spans)
	}
}

func TestGridDefaultsOverrideTheme(t *testing.T) {
	g := grid.FromLines(2, 1, "ok")
	bg := grid.RGB(0x20, 0x20, 0x20)
	g.DefaultBG = &bg
	got := render(t, g, newTestResolver(t))
	if !strings.Contains(got, `fill="#202020"`) {
		t.Errorf("OSC 11 background not used:\n%s", got)
	}
}

// --- Palette and fonts ---

func TestVarPalette(t *testing.T) {
	g := grid.New(4, 1)
	g.Set(0, 0, grid.Cell{Rune: 'x', FG: grid.Indexed(4), BG: grid.Indexed(1)})
	g.Set(1, 0, grid.Cell{Rune: 'y', FG: grid.RGB(1, 2, 3)})

	got := render(t, g, newTestResolver(t), func(o *Options) { o.VarPalette = true })
	for _, want := range []string{
		"--c1:#aa0000;",
		"--c4:#0000aa;",
		"--c15:#ffffff;font-family:",
		`style="fill:var(--c1)"/>`,
		`<tspan style="fill:var(--c4)">x</tspan>`,
		`<tspan fill="#010203">y</tspan>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in\n%s", want, got)
		}
	}
}

func TestFontFacesInStylesheet(t *testing.T) {
	got := render(t, grid.FromLines(1, 1, "x"), newTestResolver(t), func(o *Options) {
		o.FontFaces = "@font-face{font-family:A}"
		o.Families = []string{"A", "monospace"}
		o.NormalWeight = 300
	})
	want := "<style>@font-face{font-family:A}\n.screen{font-family:A, monospace;font-size:12px;fill:#c0c0c0;font-weight:300}</style>"
	if !strings.Contains(got, want) {
		t.Errorf("missing %q in\n%s", want, got)
	}
}

// --- Window ---

func TestWindowChrome(t *testing.T) {
	g := grid.FromLines(40, 2, "hello")
	got := render(t, g, newTestResolver(t), withWindow("echo hello"))

	for _, want := range []string{
		`<filter id="shadow"`,
		`<clipPath id="window-clip">`,
		`class="window"`,
		`filter="url(#shadow)"`,
		`<g clip-path="url(#window-clip)">`,
		`>echo hello</text>`,
		`class="border-outer"`,
		`class="border-inner"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s", want)
		}
	}
	if n := strings.Count(got, "<circle"); n != 3 {
		t.Errorf("got %d buttons, want 3", n)
	}
	if strings.Index(got, `class="screen"`) > strings.Index(got, `class="title"`) {
		t.Error("title must be drawn above the terminal text")
	}
}

func TestWindowTitleIsTrimmed(t *testing.T) {
	g := grid.FromLines(80, 1, "x")
	title := strings.Repeat("very long title ", 20)
	got := render(t, g, newTestResolver(t), withWindow(title))
	if strings.Contains(got, title) || !strings.Contains(got, "…</text>") {
		t.Errorf("title not trimmed:\n%s", got)
	}
}

// --- Title helpers ---

func TestTrimText(t *testing.T) {
	tests := []struct {
		text     string
		width    float64
		ellipsis string
		want     string
	}{
		{"hello world", 15, "…", "hello wo…"},
		{"hello world", 12, "…", "hello…"},
		{"hello", 0.5, "…", ""},
		{"www", 10, "…", "ww…"},
		{"iiiiii", 10, "…", "iiiiii"},
		{"million", 15, "…", "million"},
		{"test", 8, "…………", ""},
		{"wwwww", 7.5, "…", "…"},
		{"", 100, "…", ""},
		{"hello", 0, "…", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := TrimText(tt.text, tt.width, 1, tt.ellipsis); got != tt.want {
				t.Errorf("TrimText(%q, %v) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestAvailableTitleWidth(t *testing.T) {
	b := winstyle.ResolvedButtons{Size: 12, Items: []winstyle.ResolvedButton{{Offset: 20}, {Offset: 40}}}
	if got := AvailableTitleWidth(300, b, 13); got != 300-2*(46+13) {
		t.Errorf("AvailableTitleWidth = %v", got)
	}
	if got := AvailableTitleWidth(100, b, 13); got != 0 {
		t.Errorf("narrow window = %v, want 0", got)
	}
	if got := AvailableTitleWidth(300, winstyle.ResolvedButtons{}, 13); got != 300 {
		t.Errorf("no buttons = %v, want full width", got)
	}
}
