package theme

import "github.com/pamburus/termframe/pkg/color"

// thStandard is the built-in 256-color table used for palette indices a
// theme does not override. It is computed once and never modified.
var thStandard = thBuildStandard()

// Standard returns the built-in color for palette index i.
func Standard(i uint8) color.RGBA {
	return thStandard[i]
}

// Resolve returns palette index i from c, falling back to the standard table.
func (c Colors) Resolve(i uint8) color.RGBA {
	if v, ok := c.Palette[int(i)]; ok {
		return v
	}
	return thStandard[i]
}

// thBuildStandard fills the xterm-like basic 16, the 6x6x6 cube and the
// 24-step gray ramp.
func thBuildStandard() [256]color.RGBA {
	var t [256]color.RGBA
	for i := 0; i < 16; i++ {
		t[i] = thBasicColor(i)
	}
	for i := 16; i < 232; i++ {
		r, g, b := thCubeToRGB(i)
		t[i] = color.Opaque(r, g, b)
	}
	for i := 232; i < 256; i++ {
		v := thGrayToValue(i)
		t[i] = color.Opaque(v, v, v)
	}
	return t
}

// thBasicColor returns one of the 16 basic colors. Normal intensity channels
// are 0x80, bright ones 0xff; 7 and 8 are the two special grays.
func thBasicColor(i int) color.RGBA {
	switch i {
	case 0:
		return color.Opaque(0, 0, 0)
	case 7:
		return color.Opaque(0xc0, 0xc0, 0xc0)
	case 8:
		return color.Opaque(0x80, 0x80, 0x80)
	case 15:
		return color.Opaque(0xff, 0xff, 0xff)
	}
	k := uint8(0x80)
	if i&8 != 0 {
		k = 0xff
	}
	ch := func(bit int) uint8 {
		if i&bit != 0 {
			return k
		}
		return 0
	}
	return color.Opaque(ch(1), ch(2), ch(4))
}

// thCubeToRGB converts a 256-color cube index (16-231) to RGB values.
func thCubeToRGB(idx int) (r, g, b uint8) {
	levels := [6]uint8{0, 95, 135, 175, 215, 255}
	idx -= 16
	ri := idx / 36
	gi := (idx % 36) / 6
	bi := idx % 6
	return levels[ri], levels[gi], levels[bi]
}

// thGrayToValue converts a 256-color grayscale index (232-255) to a gray level.
func thGrayToValue(idx int) uint8 {
	// Gray values: 8, 18, 28, ..., 238
	return uint8(8 + (idx-232)*10)
}
