// Package layout computes the geometry of the rendered document: the canvas,
// the window with its header, and the terminal content box. It includes a
// small constraint solver that splits a rectangle along one axis.
//
// Constraint types:
//   - Length(n): fixed size in px
//   - Percentage(p): percentage of available space (0-100)
//   - Fill(w): fills remaining space proportional to weight
//
// The solver runs in two passes:
//  1. Allocate fixed sizes (Length, Percentage)
//  2. Distribute remaining space to Fill items by weight
//
// When fixed sizes exceed the available space they are shrunk
// proportionally.
package layout

// Rect is an axis-aligned rectangle in px.
type Rect struct {
	X, Y, Width, Height float64
}

// Empty returns true if this rectangle has zero area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 {
	return r.X + r.Width/2
}

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 {
	return r.Y + r.Height/2
}

// Inner returns a new Rect shrunk by margin on all sides.
// If the margin would cause negative dimensions, a zero-size rect is returned.
func (r Rect) Inner(margin float64) Rect {
	return r.Inset(margin, margin, margin, margin)
}

// Inset shrinks the rectangle by per-side amounts, never below zero size.
func (r Rect) Inset(left, right, top, bottom float64) Rect {
	out := Rect{
		X:      r.X + max(left, 0),
		Y:      r.Y + max(top, 0),
		Width:  r.Width - max(left, 0) - max(right, 0),
		Height: r.Height - max(top, 0) - max(bottom, 0),
	}
	out.Width = max(out.Width, 0)
	out.Height = max(out.Height, 0)
	return out
}

// Outset grows the rectangle by per-side amounts.
func (r Rect) Outset(left, right, top, bottom float64) Rect {
	return Rect{X: r.X - left, Y: r.Y - top, Width: r.Width + left + right, Height: r.Height + top + bottom}
}

// Translate moves the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Direction controls the axis along which a Layout splits space.
type Direction int

const (
	// Horizontal splits left-to-right (constraints control width).
	Horizontal Direction = iota
	// Vertical splits top-to-bottom (constraints control height).
	Vertical
)

// Constraint is the interface satisfied by all layout constraint types.
type Constraint interface {
	constraint() // sealed marker
}

// Length allocates exactly Value px.
type Length struct{ Value float64 }

func (Length) constraint() {}

// Percentage allocates Value percent of the total available space (0-100).
type Percentage struct{ Value float64 }

func (Percentage) constraint() {}

// Fill distributes remaining space proportional to Weight.
// A Weight of 0 is treated as 1.
type Fill struct{ Weight float64 }

func (Fill) constraint() {}

// Layout splits a Rect into sub-regions according to constraints.
type Layout struct {
	direction   Direction
	constraints []Constraint
	spacing     float64
}

// NewLayout creates a Layout with the given direction and constraints.
func NewLayout(dir Direction, constraints ...Constraint) *Layout {
	return &Layout{direction: dir, constraints: constraints}
}

// WithSpacing sets the gap between each output region.
func (l *Layout) WithSpacing(s float64) *Layout {
	l.spacing = max(s, 0)
	return l
}

// Split divides area into len(constraints) non-overlapping Rects.
func (l *Layout) Split(area Rect) []Rect {
	n := len(l.constraints)
	if n == 0 {
		return nil
	}

	total := area.Width
	if l.direction == Vertical {
		total = area.Height
	}
	available := max(total-l.spacing*float64(n-1), 0)

	// --- Pass 1: fixed allocations ---
	allocs := make([]float64, n)
	weights := make([]float64, n)
	fixed, totalWeight := 0.0, 0.0
	for i, c := range l.constraints {
		switch v := c.(type) {
		case Length:
			allocs[i] = max(v.Value, 0)
			fixed += allocs[i]
		case Percentage:
			allocs[i] = available * min(max(v.Value, 0), 100) / 100
			fixed += allocs[i]
		case Fill:
			w := v.Weight
			if w <= 0 {
				w = 1
			}
			weights[i] = w
			totalWeight += w
		}
	}

	// --- Pass 2: distribute the remainder ---
	if fixed > available {
		for i := range allocs {
			if weights[i] == 0 && fixed > 0 {
				allocs[i] = allocs[i] * available / fixed
			}
		}
	} else if totalWeight > 0 {
		remaining := available - fixed
		for i := range allocs {
			if weights[i] > 0 {
				allocs[i] = remaining * weights[i] / totalWeight
			}
		}
	}

	rects := make([]Rect, n)
	pos := 0.0
	for i := range allocs {
		switch l.direction {
		case Horizontal:
			rects[i] = Rect{X: area.X + pos, Y: area.Y, Width: allocs[i], Height: area.Height}
		case Vertical:
			rects[i] = Rect{X: area.X, Y: area.Y + pos, Width: area.Width, Height: allocs[i]}
		}
		pos += allocs[i] + l.spacing
	}
	return rects
}

// SplitVertical is a convenience function that splits area top-to-bottom
// according to the given constraints.
func SplitVertical(area Rect, constraints ...Constraint) []Rect {
	return NewLayout(Vertical, constraints...).Split(area)
}

// SplitHorizontal is a convenience function that splits area left-to-right
// according to the given constraints.
func SplitHorizontal(area Rect, constraints ...Constraint) []Rect {
	return NewLayout(Horizontal, constraints...).Split(area)
}
