// Package capture runs a command on a pseudo-terminal and records the final
// screen into a grid. Screen is a small VT emulator covering what
// non-interactive programs print: text with autowrap, cursor motion, erase,
// scrolling regions and SGR renditions. Alternate screens, mouse modes and
// scrollback are not emulated.
package capture

import (
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/pamburus/termframe/pkg/color"
	"github.com/pamburus/termframe/pkg/grid"
)

const tabWidth = 8

// Colors are the default colors reported to programs asking through
// OSC 10 and OSC 11.
type Colors struct {
	Foreground color.RGBA
	Background color.RGBA
}

// DefaultColors answers color queries when no theme is known.
func DefaultColors() Colors {
	return Colors{
		Foreground: color.Opaque(0xc0, 0xc0, 0xc0),
		Background: color.Opaque(0, 0, 0),
	}
}

type cursor struct {
	x, y     int
	pen      grid.Cell
	wrapNext bool
}

// Screen is a virtual terminal of fixed size. It implements io.Writer;
// bytes written to it are interpreted as terminal output. Screen is not
// safe for concurrent use.
type Screen struct {
	cols, rows int
	cells      []grid.Cell
	cur        cursor
	saved      cursor
	top        int // scroll region, inclusive
	bottom     int
	autowrap   bool

	colors    Colors
	defaultFG *grid.Color
	defaultBG *grid.Color

	parser *ansi.Parser
	reply  io.Writer
}

// NewScreen returns a blank screen of cols×rows cells. Replies to terminal
// queries are written to reply, which may be nil.
func NewScreen(cols, rows int, reply io.Writer) *Screen {
	cols, rows = max(cols, 1), max(rows, 1)
	s := &Screen{
		cols:   cols,
		rows:   rows,
		cells:  make([]grid.Cell, cols*rows),
		colors: DefaultColors(),
		reply:  reply,
		parser: ansi.NewParser(),
	}
	s.reset()
	s.parser.SetHandler(ansi.Handler{
		Print:     s.print,
		Execute:   s.execute,
		HandleCsi: s.handleCsi,
		HandleEsc: s.handleEsc,
		HandleOsc: s.handleOsc,
	})
	return s
}

// SetColors sets the colors reported in OSC 10/11 replies.
func (s *Screen) SetColors(c Colors) {
	s.colors = c
}

// Write feeds terminal output into the screen. It never fails.
func (s *Screen) Write(p []byte) (int, error) {
	s.parser.Parse(p)
	return len(p), nil
}

// Cursor returns the zero-based cursor position.
func (s *Screen) Cursor() (x, y int) {
	return s.cur.x, s.cur.y
}

// Grid returns a snapshot of the screen.
func (s *Screen) Grid() *grid.Grid {
	g := grid.New(s.cols, s.rows)
	for y := range s.rows {
		for x := range s.cols {
			g.Set(x, y, s.cells[y*s.cols+x])
		}
	}
	if s.defaultFG != nil {
		fg := *s.defaultFG
		g.DefaultFG = &fg
	}
	if s.defaultBG != nil {
		bg := *s.defaultBG
		g.DefaultBG = &bg
	}
	return g
}

func (s *Screen) reset() {
	clear(s.cells)
	s.cur = cursor{}
	s.saved = cursor{}
	s.top, s.bottom = 0, s.rows-1
	s.autowrap = true
	s.defaultFG, s.defaultBG = nil, nil
}

func (s *Screen) send(format string, args ...any) {
	if s.reply == nil {
		return
	}
	_, _ = fmt.Fprintf(s.reply, format, args...)
}

// --- Cells ---

func (s *Screen) at(x, y int) *grid.Cell {
	return &s.cells[y*s.cols+x]
}

// blank is an erased cell: erase operations keep the current background.
func (s *Screen) blank() grid.Cell {
	return grid.Cell{BG: s.cur.pen.BG}
}

// put stores c at (x, y), first breaking up any wide glyph the write
// would cut in half.
func (s *Screen) put(x, y int, c grid.Cell) {
	cell := s.at(x, y)
	if cell.Attrs.Wide && x+1 < s.cols {
		*s.at(x+1, y) = s.blank()
	}
	if cell.Rune == 0 && x > 0 {
		if left := s.at(x-1, y); left.Attrs.Wide {
			left.Rune = ' '
			left.Attrs.Wide = false
		}
	}
	*cell = c
}

func (s *Screen) print(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return
	}
	if w > s.cols {
		return
	}
	if s.cur.wrapNext {
		s.cur.wrapNext = false
		if s.autowrap {
			s.cur.x = 0
			s.lineFeed()
		}
	}
	if s.cur.x+w > s.cols {
		if !s.autowrap {
			return
		}
		s.put(s.cur.x, s.cur.y, s.blank())
		s.cur.x = 0
		s.lineFeed()
	}

	c := s.cur.pen
	c.Rune = r
	c.Attrs.Wide = w == 2
	s.put(s.cur.x, s.cur.y, c)
	if w == 2 {
		tail := s.cur.pen
		tail.Rune = 0
		s.put(s.cur.x+1, s.cur.y, tail)
	}

	s.cur.x += w
	if s.cur.x >= s.cols {
		s.cur.x = s.cols - 1
		s.cur.wrapNext = true
	}
}

func (s *Screen) eraseRange(y, from, to int) {
	from, to = max(from, 0), min(to, s.cols)
	for x := from; x < to; x++ {
		s.put(x, y, s.blank())
	}
}

func (s *Screen) eraseRows(from, to int) {
	for y := max(from, 0); y < min(to, s.rows); y++ {
		s.eraseRange(y, 0, s.cols)
	}
}

// --- Control characters ---

func (s *Screen) execute(b byte) {
	switch b {
	case '\n', '\v', '\f':
		s.lineFeed()
	case '\r':
		s.cur.x = 0
		s.cur.wrapNext = false
	case '\b':
		if s.cur.x > 0 {
			s.cur.x--
		}
		s.cur.wrapNext = false
	case '\t':
		s.cur.x = min(s.cols-1, (s.cur.x/tabWidth+1)*tabWidth)
		s.cur.wrapNext = false
	}
}

// lineFeed moves the cursor down, scrolling the region when it sits on the
// bottom margin.
func (s *Screen) lineFeed() {
	s.cur.wrapNext = false
	switch {
	case s.cur.y == s.bottom:
		s.scrollUp(1)
	case s.cur.y < s.rows-1:
		s.cur.y++
	}
}

func (s *Screen) reverseIndex() {
	s.cur.wrapNext = false
	switch {
	case s.cur.y == s.top:
		s.scrollDown(1)
	case s.cur.y > 0:
		s.cur.y--
	}
}

// --- Scrolling ---

func (s *Screen) scrollUp(n int) {
	s.shiftRows(s.top, s.bottom, n)
}

func (s *Screen) scrollDown(n int) {
	s.shiftRows(s.top, s.bottom, -n)
}

// shiftRows moves rows top..bottom up by n (down when n < 0) and blanks
// the rows uncovered.
func (s *Screen) shiftRows(top, bottom, n int) {
	height := bottom - top + 1
	if n == 0 || height <= 0 {
		return
	}
	if n >= height || -n >= height {
		s.eraseRows(top, bottom+1)
		return
	}
	if n > 0 {
		copy(s.cells[top*s.cols:(bottom+1)*s.cols], s.cells[(top+n)*s.cols:(bottom+1)*s.cols])
		s.eraseRows(bottom+1-n, bottom+1)
		return
	}
	n = -n
	copy(s.cells[(top+n)*s.cols:(bottom+1)*s.cols], s.cells[top*s.cols:(bottom+1-n)*s.cols])
	s.eraseRows(top, top+n)
}

// --- Cursor ---

func (s *Screen) moveTo(x, y int) {
	s.cur.x = clamp(x, 0, s.cols-1)
	s.cur.y = clamp(y, 0, s.rows-1)
	s.cur.wrapNext = false
}

func (s *Screen) saveCursor() {
	s.saved = s.cur
}

func (s *Screen) restoreCursor() {
	s.cur = s.saved
	s.moveTo(s.cur.x, s.cur.y)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
