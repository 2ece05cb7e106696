// Package render turns a captured grid into a self-contained SVG document:
// background runs, one clipped text line per non-blank row, and optional
// window chrome around the terminal area.
//
// Coordinates are chosen so that the top-left corner of the first cell is
// the origin; padding and chrome extend into negative space through the
// viewBox.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/pamburus/termframe/pkg/color"
	"github.com/pamburus/termframe/pkg/grid"
	"github.com/pamburus/termframe/pkg/layout"
	"github.com/pamburus/termframe/pkg/style"
	"github.com/pamburus/termframe/pkg/svg"
)

// basicColors is the number of palette entries exported by VarPalette.
const basicColors = 16

type renderer struct {
	opts Options
	res  *style.Resolver
	g    *grid.Grid

	cw, ch float64 // cell size in px
}

// Render lays out g using res for colors. The grid's OSC 10/11 default
// overrides take precedence over the theme defaults.
func Render(g *grid.Grid, res *style.Resolver, opts Options) (*svg.Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.NormalWeight == 0 {
		opts.NormalWeight = style.WeightNormal
	}
	r := &renderer{
		opts: opts,
		res:  res.WithDefaults(g.DefaultFG, g.DefaultBG),
		g:    g,
		cw:   opts.FontSize * opts.Metrics.Width,
		ch:   opts.FontSize * opts.LineHeight,
	}
	return r.document(), nil
}

// Write renders g and writes the document to w.
func Write(w io.Writer, g *grid.Grid, res *style.Resolver, opts Options) error {
	doc, err := Render(g, res, opts)
	if err != nil {
		return err
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("render: write: %w", err)
	}
	return nil
}

func (r *renderer) num(v float64) string {
	return svg.Num(v, r.opts.Precision)
}

func (r *renderer) em(v float64) string {
	return r.num(v) + "em"
}

func (r *renderer) document() *svg.Document {
	cols, rows := r.g.Size()
	screenW := float64(cols) * r.cw
	screenH := float64(rows) * r.ch
	padX := r.opts.Padding.Horizontal * r.opts.FontSize
	padY := r.opts.Padding.Vertical * r.opts.FontSize

	frame := layout.Compute(screenW+2*padX, screenH+2*padY, r.opts.Window)
	// Move the first cell to the origin.
	frame = frame.Translate(-(frame.Content.X + padX), -(frame.Content.Y + padY))

	doc := svg.NewDocument()
	root := doc.Root
	root.Set("viewBox", strings.Join([]string{
		r.num(frame.Canvas.X), r.num(frame.Canvas.Y),
		r.num(frame.Canvas.Width), r.num(frame.Canvas.Height),
	}, " "))
	root.Set("width", r.num(frame.Canvas.Width))
	root.Set("height", r.num(frame.Canvas.Height))
	root.Add("style").Text(r.stylesheet())

	if r.opts.Window == nil {
		root.Add("rect").
			Set("x", r.num(-padX)).
			Set("y", r.num(-padY)).
			Set("width", "100%").
			Set("height", "100%").
			Set("fill", r.res.Background().Hex())
		root.Append(r.screen(screenW))
		return doc
	}

	r.windowBody(root, frame)
	root.Append(r.screen(screenW))
	r.windowOverlay(root, frame)
	return doc
}

func (r *renderer) stylesheet() string {
	var rules []string
	if r.opts.FontFaces != "" {
		rules = append(rules, r.opts.FontFaces)
	}

	var b strings.Builder
	b.WriteString(".screen{")
	if r.opts.VarPalette {
		for i := range basicColors {
			fmt.Fprintf(&b, "--c%d:%s;", i, r.res.PaletteColor(uint8(i)).Hex())
		}
	}
	b.WriteString("font-family:")
	b.WriteString(r.opts.Families.CSS())
	b.WriteString(";font-size:")
	b.WriteString(r.num(r.opts.FontSize))
	b.WriteString("px;fill:")
	b.WriteString(r.res.Foreground().Hex())
	if r.opts.NormalWeight != style.WeightNormal {
		b.WriteString(";font-weight:")
		b.WriteString(r.opts.NormalWeight.String())
	}
	b.WriteString("}")
	rules = append(rules, b.String())

	return strings.Join(rules, "\n")
}

// setFill paints e with c, or with the palette variable of idx when
// VarPalette applies.
func (r *renderer) setFill(e *svg.Element, c color.RGBA, idx int) {
	if r.opts.VarPalette && idx >= 0 && idx < basicColors {
		e.Set("style", fmt.Sprintf("fill:var(--c%d)", idx))
		return
	}
	e.Set("fill", c.Hex())
}

func (r *renderer) screen(screenW float64) *svg.Element {
	group := svg.New("g").Set("class", "screen")
	_, rows := r.g.Size()
	for y := range rows {
		r.backgroundRuns(group, y)
	}
	for y := range rows {
		if line := r.textLine(y, screenW); line != nil {
			group.Append(line)
		}
	}
	return group
}

// backgroundRuns adds one rect per run of cells sharing a non-default
// background.
func (r *renderer) backgroundRuns(group *svg.Element, y int) {
	row := r.g.Row(y)
	def := r.res.Background()
	stroke := r.opts.Stroke
	for x := 0; x < len(row); {
		p := r.res.Resolve(row[x])
		end := x + 1
		for end < len(row) {
			q := r.res.Resolve(row[end])
			if !q.BG.SameRGB(p.BG) || q.BGIndex != p.BGIndex {
				break
			}
			end++
		}
		if !p.BG.SameRGB(def) {
			rect := group.Add("rect").
				Set("x", r.num(float64(x)*r.cw-stroke)).
				Set("y", r.num(float64(y)*r.ch-stroke)).
				Set("width", r.num(float64(end-x)*r.cw+2*stroke)).
				Set("height", r.num(r.ch+2*stroke))
			r.setFill(rect, p.BG, p.BGIndex)
		}
		x = end
	}
}

// span is a piece of one row drawn with one paint.
type span struct {
	col  int
	cols int
	text []rune
	wide bool
	cell grid.Cell
}

// rowSpans splits a row into runs of equal paint. Wide glyphs always form
// a span of their own. Leading and trailing spaces are dropped and spans
// without visible glyphs are skipped.
func rowSpans(row []grid.Cell) []span {
	var out []span
	var cur *span
	flush := func() {
		if cur == nil {
			return
		}
		s := *cur
		cur = nil
		for len(s.text) > 0 && s.text[0] == ' ' {
			s.text = s.text[1:]
			s.col++
			s.cols--
		}
		for len(s.text) > 0 && s.text[len(s.text)-1] == ' ' {
			s.text = s.text[:len(s.text)-1]
			s.cols--
		}
		if len(s.text) > 0 {
			out = append(out, s)
		}
	}

	for x := 0; x < len(row); x++ {
		c := row[x]
		if c.Rune == 0 && x > 0 && row[x-1].Attrs.Wide {
			continue
		}
		ch := c.Rune
		if ch == 0 {
			ch = ' '
		}
		if c.Attrs.Wide {
			flush()
			out = append(out, span{col: x, cols: 2, text: []rune{ch}, wide: true, cell: c})
			x++
			continue
		}
		if cur == nil || !cur.cell.SamePaint(c) {
			flush()
			cur = &span{col: x, cell: c}
		}
		cur.text = append(cur.text, ch)
		cur.cols++
	}
	flush()
	return out
}

// textLine returns the nested <svg> holding row y, or nil when the row
// shows no glyphs.
func (r *renderer) textLine(y int, screenW float64) *svg.Element {
	spans := rowSpans(r.g.Row(y))
	if len(spans) == 0 {
		return nil
	}

	m := r.opts.Metrics
	lh := r.opts.LineHeight
	line := svg.New("svg").
		Set("y", r.em(float64(y)*lh)).
		Set("width", r.num(screenW)).
		Set("height", r.em(lh)).
		Set("overflow", "hidden")
	text := line.Add("text").
		Set("y", r.em((lh+m.Descender+m.Ascender)/2)).
		Set("xml:space", "preserve")

	pos := 0
	for _, s := range spans {
		ts := text.Add("tspan")
		if s.col != pos {
			ts.Set("x", r.em(float64(s.col)*m.Width))
		}
		r.decorate(ts, r.res.Resolve(s.cell))
		ts.Text(string(s.text))

		pos = s.col + s.cols
		if s.wide {
			// A wide glyph rarely advances exactly two cells; pin the next span.
			pos = s.col + 1
		}
	}
	return line
}

var decorationStyles = map[grid.Underline]string{
	grid.UnderlineSingle: "solid",
	grid.UnderlineDouble: "double",
	grid.UnderlineCurly:  "wavy",
	grid.UnderlineDotted: "dotted",
	grid.UnderlineDashed: "dashed",
}

func (r *renderer) decorate(ts *svg.Element, p style.Paint) {
	if !p.FG.SameRGB(r.res.Foreground()) || (r.opts.VarPalette && p.FGIndex >= 0) {
		r.setFill(ts, p.FG, p.FGIndex)
	}
	if p.Opacity < 1 {
		ts.Set("fill-opacity", r.num(p.Opacity))
	}
	if p.Weight != r.opts.NormalWeight {
		ts.Set("font-weight", p.Weight.String())
	}
	if p.Italic {
		ts.Set("font-style", "italic")
	}

	var deco []string
	if p.Underline != grid.UnderlineNone {
		deco = append(deco, "underline")
	}
	if p.Strike {
		deco = append(deco, "line-through")
	}
	if len(deco) != 0 {
		ts.Set("text-decoration", strings.Join(deco, " "))
	}
	if p.UnderlineColor != nil {
		ts.Set("text-decoration-color", p.UnderlineColor.Hex())
	}
	if s, ok := decorationStyles[p.Underline]; ok {
		ts.Set("text-decoration-style", s)
	}
}
