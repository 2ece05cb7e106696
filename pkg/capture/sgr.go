package capture

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/pamburus/termframe/pkg/grid"
)

var underlineStyles = [...]grid.Underline{
	0: grid.UnderlineNone,
	1: grid.UnderlineSingle,
	2: grid.UnderlineDouble,
	3: grid.UnderlineCurly,
	4: grid.UnderlineDotted,
	5: grid.UnderlineDashed,
}

// subParams returns the colon-separated sub-parameters following params[i].
func subParams(params ansi.Params, i int) []int {
	var out []int
	for j := i; j < len(params)-1 && params[j].HasMore(); j++ {
		out = append(out, params[j+1].Param(0))
	}
	return out
}

// sgr applies a Select Graphic Rendition sequence to the pen.
func (s *Screen) sgr(params ansi.Params) {
	pen := &s.cur.pen
	if len(params) == 0 {
		s.resetPen()
		return
	}

	for i := 0; i < len(params); i++ {
		p := params[i].Param(0)
		sub := subParams(params, i)
		i += len(sub)

		switch {
		case p == 0:
			s.resetPen()
		case p == 1:
			pen.Attrs.Bold = true
		case p == 2:
			pen.Attrs.Faint = true
		case p == 3:
			pen.Attrs.Italic = true
		case p == 4:
			pen.Attrs.Underline = grid.UnderlineSingle
			if len(sub) > 0 && sub[0] < len(underlineStyles) {
				pen.Attrs.Underline = underlineStyles[sub[0]]
			}
		case p == 7:
			pen.Attrs.Reverse = true
		case p == 9:
			pen.Attrs.Strike = true
		case p == 21:
			pen.Attrs.Underline = grid.UnderlineDouble
		case p == 22:
			pen.Attrs.Bold = false
			pen.Attrs.Faint = false
		case p == 23:
			pen.Attrs.Italic = false
		case p == 24:
			pen.Attrs.Underline = grid.UnderlineNone
		case p == 27:
			pen.Attrs.Reverse = false
		case p == 29:
			pen.Attrs.Strike = false
		case p >= 30 && p <= 37:
			pen.FG = grid.Indexed(uint8(p - 30))
		case p == 39:
			pen.FG = grid.DefaultColor()
		case p >= 40 && p <= 47:
			pen.BG = grid.Indexed(uint8(p - 40))
		case p == 49:
			pen.BG = grid.DefaultColor()
		case p == 59:
			pen.UnderlineColor = grid.DefaultColor()
		case p >= 90 && p <= 97:
			pen.FG = grid.Indexed(uint8(p - 90 + 8))
		case p >= 100 && p <= 107:
			pen.BG = grid.Indexed(uint8(p - 100 + 8))
		case p == 38 || p == 48 || p == 58:
			var c grid.Color
			var ok bool
			if len(sub) > 0 {
				c, ok = extendedColor(sub, true)
			} else {
				var used int
				c, used, ok = extendedColorParams(params, i+1)
				i += used
			}
			if !ok {
				continue
			}
			switch p {
			case 38:
				pen.FG = c
			case 48:
				pen.BG = c
			default:
				pen.UnderlineColor = c
			}
		}
	}
}

func (s *Screen) resetPen() {
	s.cur.pen = grid.Cell{}
}

// extendedColor decodes "5;n" and "2;r;g;b" color arguments. In the colon
// form the truecolor variant may carry a color space id before the
// channels: "2:id:r:g:b".
func extendedColor(args []int, colon bool) (grid.Color, bool) {
	if len(args) == 0 {
		return grid.Color{}, false
	}
	switch args[0] {
	case 5:
		if len(args) < 2 || args[1] < 0 || args[1] > 255 {
			return grid.Color{}, false
		}
		return grid.Indexed(uint8(args[1])), true
	case 2:
		rgb := args[1:]
		if colon && len(rgb) >= 4 {
			rgb = rgb[1:]
		}
		if len(rgb) < 3 {
			return grid.Color{}, false
		}
		for _, v := range rgb[:3] {
			if v < 0 || v > 255 {
				return grid.Color{}, false
			}
		}
		return grid.RGB(uint8(rgb[0]), uint8(rgb[1]), uint8(rgb[2])), true
	}
	return grid.Color{}, false
}

// extendedColorParams decodes the semicolon form starting at params[i] and
// reports how many parameters it consumed.
func extendedColorParams(params ansi.Params, i int) (grid.Color, int, bool) {
	if i >= len(params) {
		return grid.Color{}, 0, false
	}
	n := 0
	switch params[i].Param(0) {
	case 5:
		n = 2
	case 2:
		n = 4
	default:
		return grid.Color{}, 1, false
	}
	if i+n > len(params) {
		return grid.Color{}, len(params) - i, false
	}
	args := make([]int, n)
	for k := range n {
		args[k] = params[i+k].Param(0)
	}
	c, ok := extendedColor(args, false)
	return c, n, ok
}
