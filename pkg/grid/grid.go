package grid

import (
	"sort"
	"strings"
)

// Grid is a fixed rows x cols matrix of cells. It is built once by the
// capture step and treated as read-only afterwards.
type Grid struct {
	cols, rows int
	cells      []Cell

	// DefaultFG and DefaultBG override the theme defaults when the captured
	// program changed them (OSC 10 / OSC 11). Nil means "use the theme".
	DefaultFG *Color
	DefaultBG *Color
}

// New returns a grid of blank cells.
func New(cols, rows int) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return &Grid{
		cols:  cols,
		rows:  rows,
		cells: make([]Cell, cols*rows),
	}
}

// FromLines builds a grid from plain text lines with default colors.
// Lines longer than cols are truncated.
func FromLines(cols, rows int, lines ...string) *Grid {
	g := New(cols, rows)
	for y, line := range lines {
		if y >= rows {
			break
		}
		x := 0
		for _, r := range line {
			if x >= cols {
				break
			}
			g.cells[y*cols+x].Rune = r
			x++
		}
	}
	return g
}

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Size returns (cols, rows).
func (g *Grid) Size() (int, int) { return g.cols, g.rows }

// At returns the cell at column x, row y. Out of range positions yield a
// blank cell.
func (g *Grid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return Cell{}
	}
	return g.cells[y*g.cols+x]
}

// Set stores c at column x, row y. Out of range positions are ignored.
func (g *Grid) Set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.cells[y*g.cols+x] = c
}

// Row returns the cells of row y. The slice aliases the grid storage and
// must not be modified by callers outside the capture step.
func (g *Grid) Row(y int) []Cell {
	if y < 0 || y >= g.rows {
		return nil
	}
	return g.cells[y*g.cols : (y+1)*g.cols]
}

// Text returns row y as a string with trailing spaces removed. The second
// column of a wide glyph contributes nothing.
func (g *Grid) Text(y int) string {
	var b strings.Builder
	row := g.Row(y)
	for x, c := range row {
		if c.Rune == 0 {
			if x == 0 || !row[x-1].Attrs.Wide {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteRune(c.Rune)
	}
	return strings.TrimRight(b.String(), " ")
}

// Chars returns the distinct visible characters of the grid in ascending
// order. It is the character set used for font subsetting.
func (g *Grid) Chars() []rune {
	seen := make(map[rune]struct{})
	for _, c := range g.cells {
		if c.HasGlyph() {
			seen[c.Rune] = struct{}{}
		}
	}
	out := make([]rune, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Bounds returns the size of the minimal box anchored at the top-left corner
// that contains every non-blank cell. A wide glyph counts for both of its
// columns. An all-blank grid yields (0, 0).
func (g *Grid) Bounds(isBlank func(Cell) bool) (cols, rows int) {
	if isBlank == nil {
		isBlank = DefaultBlank
	}
	for y := 0; y < g.rows; y++ {
		row := g.Row(y)
		for x, c := range row {
			if isBlank(c) {
				continue
			}
			right := x + 1
			if c.Attrs.Wide {
				right = x + 2
			}
			if right > g.cols {
				right = g.cols
			}
			if right > cols {
				cols = right
			}
			rows = y + 1
		}
	}
	return cols, rows
}

// DefaultBlank is the theme-independent blank predicate: no visible glyph,
// default background and no reverse video.
func DefaultBlank(c Cell) bool {
	return !c.HasGlyph() && c.BG.IsDefault() && !c.Attrs.Reverse
}
