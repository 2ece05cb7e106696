package winstyle

import (
	"github.com/pamburus/termframe/pkg/font"
	"github.com/pamburus/termframe/pkg/style"
)

// DefaultName is the window style used when none is configured.
const DefaultName = "macos"

var titleFamilies = font.Families{"system-ui", "-apple-system", "Segoe UI", "Helvetica", "Arial", "sans-serif"}

func trafficLights(first, step float64) []Button {
	fills := []DualColor{uniform("#ff5f57"), uniform("#febc2e"), uniform("#28c840")}
	stroke := dual("#00000040", "#00000026")
	items := make([]Button, 0, len(fills))
	for i := range fills {
		items = append(items, Button{
			Offset:      first + float64(i)*step,
			Fill:        &fills[i],
			Stroke:      &stroke,
			StrokeWidth: 0.5,
		})
	}
	return items
}

func builtins() map[string]*Style {
	return map[string]*Style{
		"macos": {
			Name:   "macos",
			Margin: EdgeMargin(24, 24, 16, 32),
			Border: Border{
				Width:  1,
				Gap:    1,
				Radius: 10,
				Colors: BorderColors{
					Outer: dual("#000000c0", "#00000040"),
					Inner: dual("#ffffff26", "#ffffff80"),
				},
			},
			Header: Header{
				Height: 28,
				Color:  dual("#2b2d31", "#e8e8e8"),
				Border: HeaderBorder{Width: 1, Color: dual("#00000080", "#00000020")},
			},
			Title: Title{
				Color: dual("#a0a0a0", "#4d4d4d"),
				Font:  TitleFont{Family: titleFamilies, Size: 13, Weight: 600},
			},
			Buttons: Buttons{
				Position: PositionLeft,
				Shape:    ShapeCircle,
				Size:     12,
				Items:    trafficLights(20, 20),
			},
			Shadow: Shadow{
				Enabled: true,
				Color:   dual("#00000099", "#00000059"),
				Blur:    10,
				Y:       8,
			},
		},
		"compact": {
			Name:   "compact",
			Margin: SymmetricMargin(12, 12),
			Border: Border{
				Width:  1,
				Gap:    1,
				Radius: 6,
				Colors: BorderColors{
					Outer: dual("#000000c0", "#00000040"),
					Inner: dual("#ffffff1a", "#ffffff66"),
				},
			},
			Header: Header{
				Height: 20,
				Color:  dual("#2b2d31", "#e8e8e8"),
				Border: HeaderBorder{Width: 1, Color: dual("#00000080", "#00000020")},
			},
			Title: Title{
				Color: dual("#a0a0a0", "#4d4d4d"),
				Font:  TitleFont{Family: titleFamilies, Size: 11, Weight: style.WeightNormal},
			},
			Buttons: Buttons{
				Position: PositionLeft,
				Shape:    ShapeCircle,
				Size:     9,
				Items:    trafficLights(14, 14),
			},
			Shadow: Shadow{
				Enabled: true,
				Color:   dual("#00000080", "#00000040"),
				Blur:    5,
				Y:       3,
			},
		},
		"basic": {
			Name:   "basic",
			Margin: UniformMargin(0),
			Border: Border{
				Width: 1,
				Colors: BorderColors{
					Outer: dual("#3a3a3a", "#c8c8c8"),
					Inner: uniform("#00000000"),
				},
			},
			Title: Title{
				Color: dual("#a0a0a0", "#4d4d4d"),
				Font:  TitleFont{Family: titleFamilies, Size: 12, Weight: style.WeightNormal},
			},
			Buttons: Buttons{Position: PositionRight, Shape: ShapeSquare},
		},
	}
}
