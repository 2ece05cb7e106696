package config

import (
	"errors"
	"fmt"

	"github.com/pamburus/termframe/pkg/dimension"
	"github.com/pamburus/termframe/pkg/font"
	"github.com/pamburus/termframe/pkg/style"
	"github.com/pamburus/termframe/pkg/theme"
)

// Config is the complete set of file-configurable settings.
type Config struct {
	Mode    theme.ModeRequest `toml:"mode" yaml:"mode" json:"mode"`
	Theme   theme.Ref         `toml:"theme" yaml:"theme" json:"theme"`
	Timeout Duration          `toml:"timeout" yaml:"timeout" json:"timeout"`
	// CacheDir holds downloaded fonts. Empty means the XDG cache directory.
	CacheDir string `toml:"cache-dir" yaml:"cache-dir" json:"cache-dir"`

	Terminal  TerminalConfig    `toml:"terminal" yaml:"terminal" json:"terminal"`
	Font      FontConfig        `toml:"font" yaml:"font" json:"font"`
	Padding   PaddingConfig     `toml:"padding" yaml:"padding" json:"padding"`
	Command   CommandConfig     `toml:"command" yaml:"command" json:"command"`
	Window    WindowConfig      `toml:"window" yaml:"window" json:"window"`
	Rendering RenderingConfig   `toml:"rendering" yaml:"rendering" json:"rendering"`
	Fonts     font.Catalog      `toml:"fonts" yaml:"fonts" json:"fonts"`
	Env       map[string]string `toml:"env" yaml:"env" json:"env"`
}

// TerminalConfig sizes the virtual terminal.
type TerminalConfig struct {
	Width  dimension.Spec `toml:"width" yaml:"width" json:"width"`
	Height dimension.Spec `toml:"height" yaml:"height" json:"height"`
}

// FontConfig selects the terminal font.
type FontConfig struct {
	Family  font.Families `toml:"family" yaml:"family" json:"family"`
	Size    float64       `toml:"size" yaml:"size" json:"size"`
	Weights style.Weights `toml:"weights" yaml:"weights" json:"weights"`
}

// PaddingConfig is the space around the terminal text, in em.
type PaddingConfig struct {
	Horizontal float64 `toml:"horizontal" yaml:"horizontal" json:"horizontal"`
	Vertical   float64 `toml:"vertical" yaml:"vertical" json:"vertical"`
}

// CommandConfig controls the command echo printed above the output.
type CommandConfig struct {
	Show        bool   `toml:"show" yaml:"show" json:"show"`
	Prompt      string `toml:"prompt" yaml:"prompt" json:"prompt"`
	SyntaxTheme string `toml:"syntax-theme" yaml:"syntax-theme" json:"syntax-theme"`
}

// WindowConfig controls the window chrome.
type WindowConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Style   string `toml:"style" yaml:"style" json:"style"`
	// Title defaults to the command line when empty.
	Title string `toml:"title" yaml:"title" json:"title"`
}

// RenderingConfig controls how cells are painted.
type RenderingConfig struct {
	LineHeight   float64   `toml:"line-height" yaml:"line-height" json:"line-height"`
	FaintOpacity float64   `toml:"faint-opacity" yaml:"faint-opacity" json:"faint-opacity"`
	BoldIsBright bool      `toml:"bold-is-bright" yaml:"bold-is-bright" json:"bold-is-bright"`
	SVG          SVGConfig `toml:"svg" yaml:"svg" json:"svg"`
}

// SVGConfig controls the SVG output.
type SVGConfig struct {
	Precision   int     `toml:"precision" yaml:"precision" json:"precision"`
	Stroke      float64 `toml:"stroke" yaml:"stroke" json:"stroke"`
	EmbedFonts  bool    `toml:"embed-fonts" yaml:"embed-fonts" json:"embed-fonts"`
	SubsetFonts bool    `toml:"subset-fonts" yaml:"subset-fonts" json:"subset-fonts"`
	VarPalette  bool    `toml:"var-palette" yaml:"var-palette" json:"var-palette"`
}

// StyleOptions returns the cell style options described by c.
func (c *Config) StyleOptions() style.Options {
	return style.Options{
		BoldIsBright: c.Rendering.BoldIsBright,
		FaintOpacity: c.Rendering.FaintOpacity,
		Weights:      c.Font.Weights,
	}
}

// Validate checks every setting that can be checked without loading
// themes, window styles or fonts.
func (c *Config) Validate() error {
	var errs []error
	if c.Theme.IsZero() {
		errs = append(errs, errors.New("theme: a theme name is required"))
	}
	if err := c.Terminal.Width.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("terminal.width: %w", err))
	}
	if err := c.Terminal.Height.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("terminal.height: %w", err))
	}
	if len(c.Font.Family) == 0 {
		errs = append(errs, errors.New("font.family: at least one family required"))
	}
	if c.Font.Size <= 0 {
		errs = append(errs, fmt.Errorf("font.size: must be positive, got %v", c.Font.Size))
	}
	if err := c.StyleOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Padding.Horizontal < 0 || c.Padding.Vertical < 0 {
		errs = append(errs, errors.New("padding: must not be negative"))
	}
	if c.Rendering.LineHeight <= 0 {
		errs = append(errs, fmt.Errorf("rendering.line-height: must be positive, got %v", c.Rendering.LineHeight))
	}
	if p := c.Rendering.SVG.Precision; p < 0 || p > 8 {
		errs = append(errs, fmt.Errorf("rendering.svg.precision: %d out of range 0..8", p))
	}
	if c.Rendering.SVG.Stroke < 0 {
		errs = append(errs, errors.New("rendering.svg.stroke: must not be negative"))
	}
	for i, e := range c.Fonts {
		if e.Family == "" || len(e.Files) == 0 {
			errs = append(errs, fmt.Errorf("fonts[%d]: family and files are required", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
