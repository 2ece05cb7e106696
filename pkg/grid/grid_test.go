package grid

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pamburus/termframe/pkg/dimension"
)

// fakeCapturer renders the same lines at whatever size is requested and
// records every call.
type fakeCapturer struct {
	lines []string
	calls [][2]int
	err   error
}

func (f *fakeCapturer) Capture(_ context.Context, cols, rows int) (*Grid, error) {
	f.calls = append(f.calls, [2]int{cols, rows})
	if f.err != nil {
		return nil, f.err
	}
	return FromLines(cols, rows, f.lines...), nil
}

// --- Grid basics ---

func TestFromLinesAndText(t *testing.T) {
	g := FromLines(10, 2, "Hello, World")
	if got := g.Text(0); got != "Hello, Wor" {
		t.Errorf("Text(0) = %q, want %q", got, "Hello, Wor")
	}
	if got := g.Text(1); got != "" {
		t.Errorf("Text(1) = %q, want empty", got)
	}
}

func TestAtOutOfRangeIsBlank(t *testing.T) {
	g := FromLines(2, 1, "ab")
	if c := g.At(5, 5); c != (Cell{}) {
		t.Errorf("At(5,5) = %+v, want blank", c)
	}
	g.Set(-1, 0, Cell{Rune: 'x'}) // ignored
	if got := g.Text(0); got != "ab" {
		t.Errorf("Text(0) = %q after out of range Set", got)
	}
}

func TestChars(t *testing.T) {
	g := FromLines(8, 2, "baab c", " ca")
	want := []rune{'a', 'b', 'c'}
	if got := g.Chars(); !reflect.DeepEqual(got, want) {
		t.Errorf("Chars() = %q, want %q", got, want)
	}
}

// --- Bounds ---

func TestBoundsTrimsTrailingBlanks(t *testing.T) {
	g := FromLines(20, 5, "abc", "", "hello   ")
	cols, rows := g.Bounds(nil)
	if cols != 5 || rows != 3 {
		t.Errorf("Bounds() = (%d, %d), want (5, 3)", cols, rows)
	}
}

func TestBoundsEmptyGrid(t *testing.T) {
	g := New(10, 4)
	cols, rows := g.Bounds(nil)
	if cols != 0 || rows != 0 {
		t.Errorf("Bounds() = (%d, %d), want (0, 0)", cols, rows)
	}
}

func TestBoundsCountsBackgroundAndWideGlyphs(t *testing.T) {
	g := New(10, 3)
	g.Set(6, 0, Cell{Rune: ' ', BG: Indexed(1)})
	g.Set(2, 2, Cell{Rune: '世', Attrs: Attrs{Wide: true}})
	g.Set(3, 2, Cell{})
	cols, rows := g.Bounds(nil)
	if cols != 7 || rows != 3 {
		t.Errorf("Bounds() = (%d, %d), want (7, 3)", cols, rows)
	}

	g2 := New(10, 1)
	g2.Set(8, 0, Cell{Rune: '世', Attrs: Attrs{Wide: true}})
	if cols, _ := g2.Bounds(nil); cols != 10 {
		t.Errorf("wide glyph at edge: cols = %d, want 10", cols)
	}
}

func TestBoundsCustomPredicate(t *testing.T) {
	g := New(10, 1)
	g.Set(4, 0, Cell{Rune: ' ', BG: Indexed(0)})
	blankIfBlack := func(c Cell) bool {
		return !c.HasGlyph() && (c.BG.IsDefault() || c.BG == Indexed(0))
	}
	if cols, rows := g.Bounds(blankIfBlack); cols != 0 || rows != 0 {
		t.Errorf("Bounds(custom) = (%d, %d), want (0, 0)", cols, rows)
	}
}

// --- Normalize ---

func TestNormalizeScenarioHelloWorld(t *testing.T) {
	fc := &fakeCapturer{lines: []string{"Hello, Wor"}}
	g, err := Normalize(context.Background(), fc, Options{
		Width:  dimension.NewRange(4, 40, 2, 20),
		Height: dimension.NewRange(3, 10, 1, 0),
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if g.Cols() != 10 || g.Rows() != 3 {
		t.Errorf("size = %dx%d, want 10x3", g.Cols(), g.Rows())
	}
	want := [][2]int{{40, 10}, {10, 3}}
	if !reflect.DeepEqual(fc.calls, want) {
		t.Errorf("captures = %v, want %v", fc.calls, want)
	}
}

func TestNormalizeFixedCapturesOnce(t *testing.T) {
	fc := &fakeCapturer{lines: []string{"x"}}
	g, err := Normalize(context.Background(), fc, Options{
		Width:  dimension.NewFixed(80),
		Height: dimension.NewFixed(24),
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if g.Cols() != 80 || g.Rows() != 24 || len(fc.calls) != 1 {
		t.Errorf("size = %dx%d after %d captures, want 80x24 after 1", g.Cols(), g.Rows(), len(fc.calls))
	}
}

func TestNormalizeReusesMatchingCapture(t *testing.T) {
	fc := &fakeCapturer{lines: []string{"0123456789"}}
	_, err := Normalize(context.Background(), fc, Options{
		Width:  dimension.NewRange(0, 10, 1, 0),
		Height: dimension.NewFixed(1),
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(fc.calls) != 1 {
		t.Errorf("captures = %v, want exactly one", fc.calls)
	}
}

func TestNormalizeEmptyOutputUsesDefaults(t *testing.T) {
	fc := &fakeCapturer{}
	g, err := Normalize(context.Background(), fc, Options{
		Width:  dimension.NewRange(4, 40, 2, 20),
		Height: dimension.NewAuto(),
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if g.Cols() != 20 || g.Rows() != 1 {
		t.Errorf("size = %dx%d, want 20x1", g.Cols(), g.Rows())
	}
	if fc.calls[0] != [2]int{40, DefaultAutoRows} {
		t.Errorf("first capture = %v, want [40 %d]", fc.calls[0], DefaultAutoRows)
	}
}

func TestNormalizeSurfacesCaptureError(t *testing.T) {
	boom := errors.New("boom")
	fc := &fakeCapturer{err: boom}
	_, err := Normalize(context.Background(), fc, Options{Width: dimension.NewAuto(), Height: dimension.NewAuto()})
	if err != boom {
		t.Errorf("err = %v, want the capture error unchanged", err)
	}
	if len(fc.calls) != 1 {
		t.Errorf("captures = %d, want no retries", len(fc.calls))
	}
}

func TestNormalizeValidatesEagerly(t *testing.T) {
	fc := &fakeCapturer{}
	_, err := Normalize(context.Background(), fc, Options{
		Width:  dimension.Spec{Kind: dimension.Range, Min: 10, Max: 5},
		Height: dimension.NewAuto(),
	})
	if !errors.Is(err, dimension.ErrInvalid) {
		t.Errorf("err = %v, want dimension.ErrInvalid", err)
	}
	if len(fc.calls) != 0 {
		t.Errorf("captured %d times before validation failed", len(fc.calls))
	}
}
