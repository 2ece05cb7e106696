package layout

import "github.com/pamburus/termframe/pkg/winstyle"

// Frame is the computed geometry of one document.
type Frame struct {
	// Canvas is the whole document, origin at (0, 0).
	Canvas Rect
	// Window is the outer edge of the window border. It equals Content when
	// no window is drawn.
	Window Rect
	// Header is the title bar inside the border; zero height when absent.
	Header Rect
	// Content holds the terminal text including its padding.
	Content Rect
}

// Point is a position in px.
type Point struct {
	X, Y float64
}

// Compute lays out content of the given size. A nil style means no window:
// the canvas is exactly the content box.
func Compute(contentWidth, contentHeight float64, ws *winstyle.Resolved) Frame {
	if ws == nil {
		c := Rect{Width: contentWidth, Height: contentHeight}
		return Frame{Canvas: c, Window: c, Content: c}
	}

	m := ws.Margin
	bw := ws.Border.Width
	windowW := contentWidth + 2*bw
	windowH := ws.Header.Height + contentHeight + 2*bw

	canvas := Rect{
		Width:  m.Left + windowW + m.Right,
		Height: m.Top + windowH + m.Bottom,
	}
	middle := SplitVertical(canvas, Length{m.Top}, Fill{1}, Length{m.Bottom})[1]
	window := SplitHorizontal(middle, Length{m.Left}, Fill{1}, Length{m.Right})[1]

	rows := SplitVertical(window.Inner(bw), Length{ws.Header.Height}, Fill{1})
	return Frame{
		Canvas:  canvas,
		Window:  window,
		Header:  rows[0],
		Content: rows[1],
	}
}

// Translate moves every rectangle of the frame by (dx, dy).
func (f Frame) Translate(dx, dy float64) Frame {
	return Frame{
		Canvas:  f.Canvas.Translate(dx, dy),
		Window:  f.Window.Translate(dx, dy),
		Header:  f.Header.Translate(dx, dy),
		Content: f.Content.Translate(dx, dy),
	}
}

// HasHeader reports whether a title bar is drawn.
func (f Frame) HasHeader() bool {
	return f.Header.Height > 0
}

// ButtonCenters returns the center of each button, measured from the edge
// of the window the buttons are anchored to and vertically centered in the
// header.
func (f Frame) ButtonCenters(b winstyle.ResolvedButtons) []Point {
	if !f.HasHeader() {
		return nil
	}
	out := make([]Point, 0, len(b.Items))
	for _, item := range b.Items {
		x := f.Window.X + item.Offset
		if b.Position == winstyle.PositionRight {
			x = f.Window.Right() - item.Offset
		}
		out = append(out, Point{X: x, Y: f.Header.CenterY()})
	}
	return out
}

// ButtonReserve returns the header width occupied by buttons on their side,
// from the window edge to the far edge of the outermost button plus gap.
func ButtonReserve(b winstyle.ResolvedButtons, gap float64) float64 {
	if len(b.Items) == 0 {
		return 0
	}
	extent := 0.0
	for _, item := range b.Items {
		extent = max(extent, item.Offset+b.Size/2)
	}
	return extent + gap
}

// TitleArea returns the region of the header available to a centered title:
// buttons reserve the same width on both sides so the title stays centered.
func (f Frame) TitleArea(b winstyle.ResolvedButtons, gap float64) Rect {
	reserve := ButtonReserve(b, gap)
	if reserve == 0 {
		return f.Header
	}
	header := Rect{X: f.Window.X, Y: f.Header.Y, Width: f.Window.Width, Height: f.Header.Height}
	return SplitHorizontal(header, Length{reserve}, Fill{1}, Length{reserve})[1]
}
