package render

import (
	"github.com/pamburus/termframe/pkg/color"
	"github.com/pamburus/termframe/pkg/layout"
	"github.com/pamburus/termframe/pkg/svg"
	"github.com/pamburus/termframe/pkg/winstyle"
)

const (
	shadowID = "shadow"
	clipID   = "window-clip"
	ellipsis = "…"
)

// setPaint sets attr (fill or stroke) to c, adding an opacity attribute for
// translucent colors.
func (r *renderer) setPaint(e *svg.Element, attr string, c color.RGBA) {
	e.Set(attr, c.Hex())
	if !c.IsOpaque() {
		e.Set(attr+"-opacity", r.num(c.Opacity()))
	}
}

func (r *renderer) rect(parent *svg.Element, box layout.Rect) *svg.Element {
	return parent.Add("rect").
		Set("x", r.num(box.X)).
		Set("y", r.num(box.Y)).
		Set("width", r.num(box.Width)).
		Set("height", r.num(box.Height))
}

// windowBody draws everything below the terminal text: the shadow, the
// window background and the header.
func (r *renderer) windowBody(root *svg.Element, f layout.Frame) {
	ws := r.opts.Window
	radius := ws.Border.Radius

	defs := root.Add("defs")
	if ws.Shadow.Enabled {
		defs.Add("filter").
			Set("id", shadowID).
			Set("x", "-50%").
			Set("y", "-50%").
			Set("width", "200%").
			Set("height", "200%").
			Add("feDropShadow").
			Set("dx", r.num(ws.Shadow.X)).
			Set("dy", r.num(ws.Shadow.Y)).
			Set("stdDeviation", r.num(ws.Shadow.Blur/2)).
			Set("flood-color", ws.Shadow.Color.Hex()).
			Set("flood-opacity", r.num(ws.Shadow.Color.Opacity()))
	}
	r.rect(defs.Add("clipPath").Set("id", clipID), f.Window).Set("rx", r.num(radius))

	body := r.rect(root, f.Window).
		Set("class", "window").
		Set("rx", r.num(radius)).
		Set("fill", r.res.Background().Hex())
	if ws.Shadow.Enabled {
		body.Set("filter", "url(#"+shadowID+")")
	}

	if !f.HasHeader() {
		return
	}
	g := root.Add("g").Set("clip-path", "url(#"+clipID+")")
	header := layout.Rect{
		X:      f.Window.X,
		Y:      f.Window.Y,
		Width:  f.Window.Width,
		Height: f.Header.Bottom() - f.Window.Y,
	}
	r.setPaint(r.rect(g, header), "fill", ws.Header.Color)
	if hb := ws.Header.BorderWidth; hb > 0 {
		line := layout.Rect{X: f.Window.X, Y: f.Header.Bottom() - hb, Width: f.Window.Width, Height: hb}
		r.setPaint(r.rect(g, line), "fill", ws.Header.BorderColor)
	}
}

// windowOverlay draws everything above the terminal text: title, buttons
// and borders.
func (r *renderer) windowOverlay(root *svg.Element, f layout.Frame) {
	ws := r.opts.Window
	if f.HasHeader() {
		r.title(root, f, ws)
		r.buttons(root, f, ws.Buttons)
	}
	r.borders(root, f, ws.Border)
}

func (r *renderer) title(root *svg.Element, f layout.Frame, ws *winstyle.Resolved) {
	size := ws.Title.Size
	if r.opts.Title == "" || size <= 0 {
		return
	}
	avail := AvailableTitleWidth(f.Window.Width, ws.Buttons, size)
	text := TrimText(r.opts.Title, avail, size*titleCharWidth, ellipsis)
	if text == "" {
		return
	}
	area := f.TitleArea(ws.Buttons, size)
	t := root.Add("text").
		Set("class", "title").
		Set("x", r.num(area.CenterX())).
		Set("y", r.num(f.Header.CenterY())).
		Set("text-anchor", "middle").
		Set("dominant-baseline", "central").
		Set("font-family", ws.Title.Families.CSS()).
		Set("font-size", r.num(size)).
		Set("font-weight", ws.Title.Weight.String())
	r.setPaint(t, "fill", ws.Title.Color)
	t.Text(text)
}

func (r *renderer) buttons(root *svg.Element, f layout.Frame, b winstyle.ResolvedButtons) {
	centers := f.ButtonCenters(b)
	if len(centers) == 0 {
		return
	}
	g := root.Add("g").Set("class", "buttons")
	half := b.Size / 2
	for i, item := range b.Items {
		c := centers[i]
		var e *svg.Element
		switch b.Shape {
		case winstyle.ShapeSquare:
			e = r.rect(g, layout.Rect{X: c.X - half, Y: c.Y - half, Width: b.Size, Height: b.Size})
			if b.Roundness > 0 {
				e.Set("rx", r.num(b.Roundness))
			}
		default:
			e = g.Add("circle").
				Set("cx", r.num(c.X)).
				Set("cy", r.num(c.Y)).
				Set("r", r.num(half))
		}
		if item.Fill != nil {
			r.setPaint(e, "fill", *item.Fill)
		} else {
			e.Set("fill", "none")
		}
		if item.Stroke != nil && item.StrokeWidth > 0 {
			r.setPaint(e, "stroke", *item.Stroke)
			e.Set("stroke-width", r.num(item.StrokeWidth))
		}

		if icon := item.Icon; icon != nil {
			p := g.Add("path").
				Set("d", icon.Path).
				Set("transform", "translate("+r.num(c.X-half)+" "+r.num(c.Y-half)+")").
				Set("fill", "none")
			r.setPaint(p, "stroke", icon.Color)
			if icon.Width > 0 {
				p.Set("stroke-width", r.num(icon.Width))
			}
		}
	}
}

// borders strokes the outer edge of the window and, inside it after gap,
// the inner highlight.
func (r *renderer) borders(root *svg.Element, f layout.Frame, b winstyle.ResolvedBorder) {
	if b.Width <= 0 {
		return
	}
	stroke := func(inset float64, c color.RGBA, class string) {
		e := r.rect(root, f.Window.Inner(inset)).
			Set("class", class).
			Set("rx", r.num(max(0, b.Radius-inset))).
			Set("fill", "none")
		r.setPaint(e, "stroke", c)
		e.Set("stroke-width", r.num(b.Width))
	}
	stroke(b.Width/2, b.Outer, "border-outer")
	if b.Gap > 0 {
		stroke(b.Width/2+b.Gap, b.Inner, "border-inner")
	}
}
