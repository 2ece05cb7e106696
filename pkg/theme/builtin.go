package theme

import "github.com/pamburus/termframe/pkg/color"

// DefaultName is the theme used when none is configured.
const DefaultName = "default"

// thColors builds a color set from hex strings; palette lists indices 0..15.
func thColors(bg, fg string, palette ...string) Colors {
	c := Colors{
		Background: color.MustParse(bg),
		Foreground: color.MustParse(fg),
		Palette:    make(map[int]color.RGBA, len(palette)),
	}
	for i, p := range palette {
		c.Palette[i] = color.MustParse(p)
	}
	return c
}

func thSingle(name string, tags []string, c Colors) *Theme {
	return &Theme{Name: name, Tags: tags, Base: &c}
}

func thAdaptive(name string, tags []string, dark, light Colors) *Theme {
	return &Theme{Name: name, Tags: tags, Modes: &Modes{Dark: dark, Light: light}}
}

// thRegisterBuiltins registers every theme compiled into the binary.
func thRegisterBuiltins() {
	thRegister(thAdaptive(DefaultName, []string{"dark", "light"},
		thColors("#282c30", "#acb2be",
			"#282c34", "#d17277", "#a1c281", "#de9b64", "#74ade9", "#bb7cd7", "#29a9bc", "#acb2be",
			"#676f82", "#e6676d", "#a9d47f", "#de9b64", "#66acff", "#c671eb", "#69c6d1", "#cccccc"),
		thColors("#f9f9f9", "#2a2c33",
			"#000000", "#c91b00", "#00c200", "#c7c400", "#0225c7", "#c930c7", "#00c5c7", "#c7c7c7",
			"#676767", "#ff6d67", "#5ff967", "#fefb67", "#6871ff", "#ff76ff", "#5ffdff", "#fffeff"),
	))

	thRegister(thSingle("dracula", []string{"dark"},
		thColors("#282a36", "#f8f8f2",
			"#21222c", "#ff5555", "#50fa7b", "#f1fa8c", "#bd93f9", "#ff79c6", "#8be9fd", "#f8f8f2",
			"#6272a4", "#ff6e6e", "#69ff94", "#ffffa5", "#d6acff", "#ff92df", "#a4ffff", "#ffffff"),
	))

	thRegister(thSingle("nord", []string{"dark"},
		thColors("#2e3440", "#d8dee9",
			"#3b4252", "#bf616a", "#a3be8c", "#ebcb8b", "#81a1c1", "#b48ead", "#88c0d0", "#e5e9f0",
			"#4c566a", "#bf616a", "#a3be8c", "#ebcb8b", "#81a1c1", "#b48ead", "#8fbcbb", "#eceff4"),
	))

	thRegister(thSingle("tokyo-night", []string{"dark"},
		thColors("#1a1b26", "#c0caf5",
			"#15161e", "#f7768e", "#9ece6a", "#e0af68", "#7aa2f7", "#bb9af7", "#7dcfff", "#a9b1d6",
			"#414868", "#f7768e", "#9ece6a", "#e0af68", "#7aa2f7", "#bb9af7", "#7dcfff", "#c0caf5"),
	))

	thRegister(thAdaptive("gruvbox", []string{"dark", "light"},
		thColors("#282828", "#ebdbb2",
			"#282828", "#cc241d", "#98971a", "#d79921", "#458588", "#b16286", "#689d6a", "#a89984",
			"#928374", "#fb4934", "#b8bb26", "#fabd2f", "#83a598", "#d3869b", "#8ec07c", "#ebdbb2"),
		thColors("#fbf1c7", "#3c3836",
			"#fbf1c7", "#cc241d", "#98971a", "#d79921", "#458588", "#b16286", "#689d6a", "#7c6f64",
			"#928374", "#9d0006", "#79740e", "#b57614", "#076678", "#8f3f71", "#427b58", "#3c3836"),
	))

	thRegister(thAdaptive("catppuccin", []string{"dark", "light"},
		thColors("#1e1e2e", "#cdd6f4",
			"#45475a", "#f38ba8", "#a6e3a1", "#f9e2af", "#89b4fa", "#f5c2e7", "#94e2d5", "#bac2de",
			"#585b70", "#f38ba8", "#a6e3a1", "#f9e2af", "#89b4fa", "#f5c2e7", "#94e2d5", "#a6adc8"),
		thColors("#eff1f5", "#4c4f69",
			"#5c5f77", "#d20f39", "#40a02b", "#df8e1d", "#1e66f5", "#ea76cb", "#179299", "#acb0be",
			"#6c6f85", "#d20f39", "#40a02b", "#df8e1d", "#1e66f5", "#ea76cb", "#179299", "#bcc0cc"),
	))

	solarized := []string{
		"#073642", "#dc322f", "#859900", "#b58900", "#268bd2", "#d33682", "#2aa198", "#eee8d5",
		"#002b36", "#cb4b16", "#586e75", "#657b83", "#839496", "#6c71c4", "#93a1a1", "#fdf6e3",
	}
	thRegister(thAdaptive("solarized", []string{"dark", "light"},
		thColors("#002b36", "#839496", solarized...),
		thColors("#fdf6e3", "#657b83", solarized...),
	))
}
