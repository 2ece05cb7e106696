package capture

import (
	"bytes"
	"strconv"

	"github.com/charmbracelet/x/ansi"

	"github.com/pamburus/termframe/pkg/color"
	"github.com/pamburus/termframe/pkg/grid"
)

// count returns parameter i as a repeat count: missing and zero mean one.
func count(params ansi.Params, i int) int {
	n, _, _ := params.Param(i, 1)
	return max(n, 1)
}

func (s *Screen) handleCsi(cmd ansi.Cmd, params ansi.Params) {
	if cmd.Intermediate() != 0 {
		return
	}
	switch cmd.Prefix() {
	case 0:
	case '?':
		s.privateMode(cmd.Final(), params)
		return
	default:
		return
	}

	x, y := s.cur.x, s.cur.y
	switch cmd.Final() {
	case 'A': // CUU
		s.moveTo(x, y-count(params, 0))
	case 'B', 'e': // CUD, VPR
		s.moveTo(x, y+count(params, 0))
	case 'C', 'a': // CUF, HPR
		s.moveTo(x+count(params, 0), y)
	case 'D': // CUB
		s.moveTo(x-count(params, 0), y)
	case 'E': // CNL
		s.moveTo(0, y+count(params, 0))
	case 'F': // CPL
		s.moveTo(0, y-count(params, 0))
	case 'G', '`': // CHA, HPA
		s.moveTo(count(params, 0)-1, y)
	case 'd': // VPA
		s.moveTo(x, count(params, 0)-1)
	case 'H', 'f': // CUP, HVP
		s.moveTo(count(params, 1)-1, count(params, 0)-1)
	case 'J':
		s.eraseDisplay(params)
	case 'K':
		s.eraseLine(params)
	case 'X': // ECH
		s.eraseRange(y, x, x+count(params, 0))
		s.cur.wrapNext = false
	case '@':
		s.insertChars(count(params, 0))
	case 'P':
		s.deleteChars(count(params, 0))
	case 'L':
		s.insertLines(count(params, 0))
	case 'M':
		s.deleteLines(count(params, 0))
	case 'S':
		s.scrollUp(count(params, 0))
	case 'T':
		s.scrollDown(count(params, 0))
	case 'r':
		s.setScrollRegion(params)
	case 's': // SCOSC
		s.saveCursor()
	case 'u': // SCORC
		s.restoreCursor()
	case 'm':
		s.sgr(params)
	case 'n':
		s.deviceStatus(params)
	case 'c':
		if n, _, _ := params.Param(0, 0); n == 0 {
			s.send("\x1b[?1;2c")
		}
	}
}

func (s *Screen) privateMode(final byte, params ansi.Params) {
	if final != 'h' && final != 'l' {
		return
	}
	for i := range params {
		if params[i].Param(0) == 7 { // DECAWM
			s.autowrap = final == 'h'
		}
	}
}

func (s *Screen) deviceStatus(params ansi.Params) {
	switch n, _, _ := params.Param(0, 0); n {
	case 5:
		s.send("\x1b[0n")
	case 6:
		s.send("\x1b[%d;%dR", s.cur.y+1, s.cur.x+1)
	}
}

func (s *Screen) eraseDisplay(params ansi.Params) {
	x, y := s.cur.x, s.cur.y
	switch n, _, _ := params.Param(0, 0); n {
	case 0:
		s.eraseRange(y, x, s.cols)
		s.eraseRows(y+1, s.rows)
	case 1:
		s.eraseRows(0, y)
		s.eraseRange(y, 0, x+1)
	case 2, 3:
		s.eraseRows(0, s.rows)
	}
	s.cur.wrapNext = false
}

func (s *Screen) eraseLine(params ansi.Params) {
	x, y := s.cur.x, s.cur.y
	switch n, _, _ := params.Param(0, 0); n {
	case 0:
		s.eraseRange(y, x, s.cols)
	case 1:
		s.eraseRange(y, 0, x+1)
	case 2:
		s.eraseRange(y, 0, s.cols)
	}
	s.cur.wrapNext = false
}

func (s *Screen) insertChars(n int) {
	row := s.cells[s.cur.y*s.cols : (s.cur.y+1)*s.cols]
	n = min(n, s.cols-s.cur.x)
	copy(row[s.cur.x+n:], row[s.cur.x:])
	s.eraseRange(s.cur.y, s.cur.x, s.cur.x+n)
	s.cur.wrapNext = false
}

func (s *Screen) deleteChars(n int) {
	row := s.cells[s.cur.y*s.cols : (s.cur.y+1)*s.cols]
	n = min(n, s.cols-s.cur.x)
	copy(row[s.cur.x:], row[s.cur.x+n:])
	s.eraseRange(s.cur.y, s.cols-n, s.cols)
	s.cur.wrapNext = false
}

func (s *Screen) insertLines(n int) {
	if s.cur.y < s.top || s.cur.y > s.bottom {
		return
	}
	s.shiftRows(s.cur.y, s.bottom, -n)
	s.cur.x = 0
	s.cur.wrapNext = false
}

func (s *Screen) deleteLines(n int) {
	if s.cur.y < s.top || s.cur.y > s.bottom {
		return
	}
	s.shiftRows(s.cur.y, s.bottom, n)
	s.cur.x = 0
	s.cur.wrapNext = false
}

func (s *Screen) setScrollRegion(params ansi.Params) {
	top, _, _ := params.Param(0, 1)
	bottom, _, _ := params.Param(1, s.rows)
	top, bottom = max(top, 1)-1, min(max(bottom, 1), s.rows)-1
	if top >= bottom {
		return
	}
	s.top, s.bottom = top, bottom
	s.moveTo(0, 0)
}

// --- ESC sequences ---

func (s *Screen) handleEsc(cmd ansi.Cmd) {
	if cmd.Intermediate() != 0 {
		// Character set designations and DEC line attributes.
		return
	}
	switch cmd.Final() {
	case '7': // DECSC
		s.saveCursor()
	case '8': // DECRC
		s.restoreCursor()
	case 'D': // IND
		s.lineFeed()
	case 'M': // RI
		s.reverseIndex()
	case 'E': // NEL
		s.cur.x = 0
		s.lineFeed()
	case 'c': // RIS
		s.reset()
	}
}

// --- OSC ---

func (s *Screen) handleOsc(cmd int, data []byte) {
	if cmd != 10 && cmd != 11 {
		return
	}
	_, arg, ok := bytes.Cut(data, []byte{';'})
	if !ok {
		return
	}
	if string(arg) == "?" {
		c := s.colors.Foreground
		if cmd == 11 {
			c = s.colors.Background
		}
		s.send("\x1b]%d;%s\x1b\\", cmd, c.XParseColor())
		return
	}
	c, ok := parseXColor(string(arg))
	if !ok {
		return
	}
	ref := grid.RGB(c.R, c.G, c.B)
	if cmd == 10 {
		s.defaultFG = &ref
		s.colors.Foreground = c
	} else {
		s.defaultBG = &ref
		s.colors.Background = c
	}
}

// parseXColor accepts the color forms programs send in OSC 10/11:
// "#rgb", "#rrggbb" and "rgb:r/g/b" with one to four hex digits per channel.
func parseXColor(spec string) (color.RGBA, bool) {
	if len(spec) > 4 && spec[:4] == "rgb:" {
		parts := bytes.Split([]byte(spec[4:]), []byte{'/'})
		if len(parts) != 3 {
			return color.RGBA{}, false
		}
		var ch [3]uint8
		for i, p := range parts {
			if len(p) < 1 || len(p) > 4 {
				return color.RGBA{}, false
			}
			v, err := strconv.ParseUint(string(p), 16, 16)
			if err != nil {
				return color.RGBA{}, false
			}
			limit := uint64(1)<<(4*len(p)) - 1
			ch[i] = uint8((v*255 + limit/2) / limit)
		}
		return color.Opaque(ch[0], ch[1], ch[2]), true
	}
	c, err := color.Parse(spec)
	if err != nil || len(spec) == 0 || spec[0] != '#' {
		return color.RGBA{}, false
	}
	return color.Opaque(c.R, c.G, c.B), true
}
