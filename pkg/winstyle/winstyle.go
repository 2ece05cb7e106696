// Package winstyle describes the window chrome drawn around the terminal
// content: margin, border, header with title and buttons, and drop shadow.
//
// A Style is what documents describe; every color in it may differ by mode.
// Resolve projects a Style onto one mode, producing a Resolved value with
// plain colors that the renderer consumes without further mode checks.
package winstyle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pamburus/termframe/pkg/color"
	"github.com/pamburus/termframe/pkg/font"
	"github.com/pamburus/termframe/pkg/style"
	"github.com/pamburus/termframe/pkg/theme"
)

// LayoutError reports an invalid window style combination.
type LayoutError struct {
	Style  string
	Field  string
	Reason string
}

func (e *LayoutError) Error() string {
	if e.Style != "" {
		return fmt.Sprintf("winstyle: %s: %s %s", e.Style, e.Field, e.Reason)
	}
	return fmt.Sprintf("winstyle: %s %s", e.Field, e.Reason)
}

// Position is the header edge buttons are anchored to.
type Position string

const (
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(text []byte) error {
	switch v := Position(strings.ToLower(string(text))); v {
	case PositionLeft, PositionRight:
		*p = v
		return nil
	default:
		return fmt.Errorf("winstyle: invalid button position %q (expected left or right)", text)
	}
}

// Shape is the button outline.
type Shape string

const (
	ShapeCircle Shape = "circle"
	ShapeSquare Shape = "square"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	switch v := Shape(strings.ToLower(string(text))); v {
	case ShapeCircle, ShapeSquare:
		*s = v
		return nil
	default:
		return fmt.Errorf("winstyle: invalid button shape %q (expected circle or square)", text)
	}
}

// Style is a window style as written in a document.
type Style struct {
	Name    string  `toml:"-" yaml:"-" json:"-"`
	Margin  Margin  `toml:"margin" yaml:"margin" json:"margin"`
	Border  Border  `toml:"border" yaml:"border" json:"border"`
	Header  Header  `toml:"header" yaml:"header" json:"header"`
	Title   Title   `toml:"title" yaml:"title" json:"title"`
	Buttons Buttons `toml:"buttons" yaml:"buttons" json:"buttons"`
	Shadow  Shadow  `toml:"shadow" yaml:"shadow" json:"shadow"`
}

type Border struct {
	Width  float64      `toml:"width" yaml:"width" json:"width"`
	Gap    float64      `toml:"gap" yaml:"gap" json:"gap"`
	Radius float64      `toml:"radius" yaml:"radius" json:"radius"`
	Colors BorderColors `toml:"colors" yaml:"colors" json:"colors"`
}

type BorderColors struct {
	Outer DualColor `toml:"outer" yaml:"outer" json:"outer"`
	Inner DualColor `toml:"inner" yaml:"inner" json:"inner"`
}

type Header struct {
	Height float64      `toml:"height" yaml:"height" json:"height"`
	Color  DualColor    `toml:"color" yaml:"color" json:"color"`
	Border HeaderBorder `toml:"border" yaml:"border" json:"border"`
}

type HeaderBorder struct {
	Width float64   `toml:"width" yaml:"width" json:"width"`
	Color DualColor `toml:"color" yaml:"color" json:"color"`
}

type Title struct {
	Color DualColor `toml:"color" yaml:"color" json:"color"`
	Font  TitleFont `toml:"font" yaml:"font" json:"font"`
}

type TitleFont struct {
	Family font.Families `toml:"family" yaml:"family" json:"family"`
	Size   float64       `toml:"size" yaml:"size" json:"size"`
	Weight style.Weight  `toml:"weight" yaml:"weight" json:"weight"`
}

type Buttons struct {
	Position  Position `toml:"position" yaml:"position" json:"position"`
	Shape     Shape    `toml:"shape" yaml:"shape" json:"shape"`
	Size      float64  `toml:"size" yaml:"size" json:"size"`
	Roundness float64  `toml:"roundness" yaml:"roundness" json:"roundness"`
	Items     []Button `toml:"items" yaml:"items" json:"items"`
}

// Button is one header button. Offset is the distance from the anchored
// edge of the window to the button center.
type Button struct {
	Offset      float64    `toml:"offset" yaml:"offset" json:"offset"`
	Fill        *DualColor `toml:"fill" yaml:"fill" json:"fill"`
	Stroke      *DualColor `toml:"stroke" yaml:"stroke" json:"stroke"`
	StrokeWidth float64    `toml:"stroke-width" yaml:"stroke-width" json:"stroke-width"`
	Icon        *Icon      `toml:"icon" yaml:"icon" json:"icon"`
}

// Icon is an SVG path drawn inside a button, in a coordinate system where
// the button spans [0, 1] on both axes.
type Icon struct {
	Path  string    `toml:"path" yaml:"path" json:"path"`
	Color DualColor `toml:"color" yaml:"color" json:"color"`
	Width float64   `toml:"width" yaml:"width" json:"width"`
}

type Shadow struct {
	Enabled bool      `toml:"enabled" yaml:"enabled" json:"enabled"`
	Color   DualColor `toml:"color" yaml:"color" json:"color"`
	Blur    float64   `toml:"blur" yaml:"blur" json:"blur"`
	X       float64   `toml:"x" yaml:"x" json:"x"`
	Y       float64   `toml:"y" yaml:"y" json:"y"`
}

// Validate checks structural constraints.
func (s *Style) Validate() error {
	if err := s.validate(); err != nil {
		var le *LayoutError
		if errors.As(err, &le) && le.Style == "" {
			le.Style = s.Name
		}
		return err
	}
	return nil
}

func (s *Style) validate() error {
	if err := s.Margin.Validate(); err != nil {
		return err
	}
	nonNegative := []struct {
		field string
		v     float64
	}{
		{"border.width", s.Border.Width},
		{"border.gap", s.Border.Gap},
		{"border.radius", s.Border.Radius},
		{"header.height", s.Header.Height},
		{"header.border.width", s.Header.Border.Width},
		{"title.font.size", s.Title.Font.Size},
		{"buttons.size", s.Buttons.Size},
		{"buttons.roundness", s.Buttons.Roundness},
		{"shadow.blur", s.Shadow.Blur},
	}
	for _, n := range nonNegative {
		if n.v < 0 {
			return &LayoutError{Field: n.field, Reason: "must not be negative"}
		}
	}
	if s.Buttons.Roundness > 1 {
		return &LayoutError{Field: "buttons.roundness", Reason: "must be within 0..1"}
	}
	if len(s.Buttons.Items) > 0 && s.Buttons.Size > s.Header.Height {
		return &LayoutError{Field: "buttons.size", Reason: "exceeds header height"}
	}
	for i, b := range s.Buttons.Items {
		if b.Offset < 0 || b.StrokeWidth < 0 {
			return &LayoutError{Field: fmt.Sprintf("buttons.items[%d]", i), Reason: "offset and stroke-width must not be negative"}
		}
		if b.Icon != nil && strings.TrimSpace(b.Icon.Path) == "" {
			return &LayoutError{Field: fmt.Sprintf("buttons.items[%d].icon", i), Reason: "needs a path"}
		}
	}
	return nil
}

// Resolved is a Style projected onto one mode.
type Resolved struct {
	Margin  Edges
	Border  ResolvedBorder
	Header  ResolvedHeader
	Title   ResolvedTitle
	Buttons ResolvedButtons
	Shadow  ResolvedShadow
}

type ResolvedBorder struct {
	Width, Gap, Radius float64
	Outer, Inner       color.RGBA
}

type ResolvedHeader struct {
	Height      float64
	Color       color.RGBA
	BorderWidth float64
	BorderColor color.RGBA
}

type ResolvedTitle struct {
	Color    color.RGBA
	Families font.Families
	Size     float64
	Weight   style.Weight
}

type ResolvedButtons struct {
	Position  Position
	Shape     Shape
	Size      float64
	Roundness float64
	Items     []ResolvedButton
}

type ResolvedButton struct {
	Offset      float64
	Fill        *color.RGBA
	Stroke      *color.RGBA
	StrokeWidth float64
	Icon        *ResolvedIcon
}

type ResolvedIcon struct {
	Path  string
	Color color.RGBA
	Width float64
}

type ResolvedShadow struct {
	Enabled bool
	Color   color.RGBA
	Blur    float64
	X, Y    float64
}

// Resolve projects s onto mode. Call Validate first.
func (s *Style) Resolve(mode theme.Mode) *Resolved {
	r := &Resolved{
		Margin: s.Margin.Edges(),
		Border: ResolvedBorder{
			Width:  s.Border.Width,
			Gap:    s.Border.Gap,
			Radius: s.Border.Radius,
			Outer:  s.Border.Colors.Outer.Resolve(mode),
			Inner:  s.Border.Colors.Inner.Resolve(mode),
		},
		Header: ResolvedHeader{
			Height:      s.Header.Height,
			Color:       s.Header.Color.Resolve(mode),
			BorderWidth: s.Header.Border.Width,
			BorderColor: s.Header.Border.Color.Resolve(mode),
		},
		Title: ResolvedTitle{
			Color:    s.Title.Color.Resolve(mode),
			Families: s.Title.Font.Family,
			Size:     s.Title.Font.Size,
			Weight:   s.Title.Font.Weight,
		},
		Buttons: ResolvedButtons{
			Position:  s.Buttons.Position,
			Shape:     s.Buttons.Shape,
			Size:      s.Buttons.Size,
			Roundness: s.Buttons.Roundness,
		},
		Shadow: ResolvedShadow{
			Enabled: s.Shadow.Enabled,
			Color:   s.Shadow.Color.Resolve(mode),
			Blur:    s.Shadow.Blur,
			X:       s.Shadow.X,
			Y:       s.Shadow.Y,
		},
	}
	if r.Buttons.Position == "" {
		r.Buttons.Position = PositionLeft
	}
	if r.Buttons.Shape == "" {
		r.Buttons.Shape = ShapeCircle
	}
	if r.Title.Weight == 0 {
		r.Title.Weight = style.WeightNormal
	}
	for _, b := range s.Buttons.Items {
		rb := ResolvedButton{Offset: b.Offset, StrokeWidth: b.StrokeWidth}
		if b.Fill != nil {
			c := b.Fill.Resolve(mode)
			rb.Fill = &c
		}
		if b.Stroke != nil {
			c := b.Stroke.Resolve(mode)
			rb.Stroke = &c
		}
		if b.Icon != nil {
			rb.Icon = &ResolvedIcon{Path: b.Icon.Path, Color: b.Icon.Color.Resolve(mode), Width: b.Icon.Width}
		}
		r.Buttons.Items = append(r.Buttons.Items, rb)
	}
	return r
}
