package perf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/pamburus/termframe/pkg/capture"
	"github.com/pamburus/termframe/pkg/dimension"
	"github.com/pamburus/termframe/pkg/font"
	"github.com/pamburus/termframe/pkg/grid"
	"github.com/pamburus/termframe/pkg/render"
	"github.com/pamburus/termframe/pkg/style"
	"github.com/pamburus/termframe/pkg/theme"
	"github.com/pamburus/termframe/pkg/winstyle"
)

// pfColoredOutput returns n lines of output mixing basic, 256-color and
// bold attributes, as a typical colored listing would.
func pfColoredOutput(n int) []byte {
	var b bytes.Buffer
	for i := range n {
		fmt.Fprintf(&b, "\x1b[%dm%04d\x1b[0m \x1b[1;38;5;%dmentry\x1b[0m %s\r\n",
			31+i%7, i, i%256, strings.Repeat("x", i%60))
	}
	return b.Bytes()
}

// pfGrid returns an 80x24 grid holding the tail of pfColoredOutput.
func pfGrid() *grid.Grid {
	s := capture.NewScreen(80, 24, nil)
	_, _ = s.Write(pfColoredOutput(200))
	return s.Grid()
}

func pfResolver() *style.Resolver {
	th, _ := theme.Builtin(theme.DefaultName)
	return style.NewResolver(th.Colors(theme.Dark), style.DefaultOptions())
}

func BenchmarkScreenParse(b *testing.B) {
	data := pfColoredOutput(200)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := capture.NewScreen(80, 24, nil)
		_, _ = s.Write(data)
	}
}

func BenchmarkNormalizeAuto(b *testing.B) {
	lines := strings.Split(strings.TrimSpace(strings.Repeat("some output line\n", 40)), "\n")
	c := grid.CapturerFunc(func(_ context.Context, cols, rows int) (*grid.Grid, error) {
		return grid.FromLines(cols, rows, lines...), nil
	})
	opts := grid.Options{Width: dimension.NewAuto(), Height: dimension.NewAuto()}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := grid.Normalize(context.Background(), c, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRenderPlain(b *testing.B) {
	g, res, opts := pfGrid(), pfResolver(), render.DefaultOptions()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := render.Write(io.Discard, g, res, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRenderWindow(b *testing.B) {
	g, res, opts := pfGrid(), pfResolver(), render.DefaultOptions()
	ws, _ := winstyle.Builtin(winstyle.DefaultName)
	opts.Window = ws.Resolve(theme.Dark)
	opts.Title = "ls --color=always"
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := render.Write(io.Discard, g, res, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFontParse(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := font.Parse(goregular.TTF); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFontSubset(b *testing.B) {
	var chars []rune
	for r := rune(' '); r <= '~'; r++ {
		chars = append(chars, r)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := font.Subset(goregular.TTF, chars); err != nil {
			b.Fatal(err)
		}
	}
}
