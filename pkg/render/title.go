package render

import (
	"github.com/pamburus/termframe/pkg/layout"
	"github.com/pamburus/termframe/pkg/winstyle"
)

// titleSafetyChars is the width, in characters, kept free on each side of
// a trimmed title.
const titleSafetyChars = 3.2

// titleCharWidth is the average advance of a proportional title font, in em.
const titleCharWidth = 0.55

// estimateCharWidth returns the approximate advance of r relative to an
// average character of a proportional font.
func estimateCharWidth(r rune) float64 {
	switch r {
	case 'i', 'l', '.', ',', '!', ':', ';', '\'':
		return 0.4
	case 'm', 'w', 'W':
		return 1.3
	default:
		return 1.0
	}
}

func estimateWidth(s string, charWidth float64) float64 {
	w := 0.0
	for _, r := range s {
		w += estimateCharWidth(r) * charWidth
	}
	return w
}

// TrimText shortens text so that it fits into width, appending ellipsis
// when characters were dropped. charWidth is the advance of an average
// character. It returns "" when not even the ellipsis fits.
func TrimText(text string, width, charWidth float64, ellipsis string) string {
	if width <= 0 || charWidth <= 0 || text == "" {
		return ""
	}
	usable := width - 2*titleSafetyChars*charWidth
	if estimateWidth(text, charWidth) <= usable {
		return text
	}

	ellW := estimateWidth(ellipsis, charWidth)
	if ellW > usable {
		return ""
	}

	acc := 0.0
	end := 0
	for i, r := range text {
		w := estimateCharWidth(r) * charWidth
		if acc+w+ellW > usable {
			break
		}
		acc += w
		end = i + len(string(r))
	}
	return text[:end] + ellipsis
}

// AvailableTitleWidth returns the part of a header of the given width that
// a centered title may use: buttons reserve their extent plus one font
// size of spacing on both sides.
func AvailableTitleWidth(width float64, buttons winstyle.ResolvedButtons, fontSize float64) float64 {
	reserve := layout.ButtonReserve(buttons, fontSize)
	if reserve == 0 {
		return width
	}
	return max(0, width-2*reserve)
}
