package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pamburus/termframe/pkg/capture"
	"github.com/pamburus/termframe/pkg/dimension"
	"github.com/pamburus/termframe/pkg/font"
	"github.com/pamburus/termframe/pkg/format"
	"github.com/pamburus/termframe/pkg/render"
	"github.com/pamburus/termframe/pkg/style"
	"github.com/pamburus/termframe/pkg/theme"
	"github.com/pamburus/termframe/pkg/winstyle"
)

// AppName names the config and cache subdirectories.
const AppName = "termframe"

const fontBaseURL = "https://raw.githubusercontent.com/pamburus/fonts/refs/heads/main/JetBrainsMono/fonts/webfonts/"

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/termframe/config.{toml,yaml,yml,json}
//  2. ~/.config/termframe/config.{toml,yaml,yml,json}
//
// If no file exists, returns DefaultConfig() with env overrides applied.
func Load() (*Config, error) {
	for _, dir := range configSearchDirs() {
		if p, ok := format.Find(dir, "config"); ok {
			return LoadFromFile(p)
		}
	}
	return finish(DefaultConfig())
}

// LoadFromFile reads configuration from a specific file path. The format
// follows the file extension. A missing file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	ff, err := format.FromPath(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finish(DefaultConfig())
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	cfg, err := LoadFromReader(f, ff)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return cfg, nil
}

// LoadFromReader reads configuration in format ff from r.
func LoadFromReader(r io.Reader, ff format.Format) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	cfg := DefaultConfig()
	if err := format.Decode(ff, data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	ro := render.DefaultOptions()
	return &Config{
		Mode:    theme.ModeAuto,
		Theme:   theme.FixedRef(theme.DefaultName),
		Timeout: Duration{10 * time.Second},
		Terminal: TerminalConfig{
			Width:  dimension.NewAuto(),
			Height: dimension.NewAuto(),
		},
		Font: FontConfig{
			Family:  font.Families{"JetBrains Mono", "monospace"},
			Size:    ro.FontSize,
			Weights: style.DefaultWeights(),
		},
		Padding: PaddingConfig{Horizontal: ro.Padding.Horizontal, Vertical: ro.Padding.Vertical},
		Command: CommandConfig{
			Show:        true,
			Prompt:      capture.DefaultPrompt,
			SyntaxTheme: capture.DefaultSyntaxTheme,
		},
		Window: WindowConfig{
			Enabled: true,
			Style:   winstyle.DefaultName,
		},
		Rendering: RenderingConfig{
			LineHeight:   ro.LineHeight,
			FaintOpacity: style.DefaultFaintOpacity,
			SVG: SVGConfig{
				Precision:   ro.Precision,
				Stroke:      ro.Stroke,
				SubsetFonts: true,
			},
		},
		Fonts: font.Catalog{{
			Family:  "JetBrains Mono",
			License: "OFL-1.1",
			Files: []string{
				fontBaseURL + "JetBrainsMono-Regular.woff2",
				fontBaseURL + "JetBrainsMono-Bold.woff2",
				fontBaseURL + "JetBrainsMono-Italic.woff2",
				fontBaseURL + "JetBrainsMono-BoldItalic.woff2",
			},
		}},
	}
}

// applyEnvOverrides checks TERMFRAME_* environment variables and overrides
// config values.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TERMFRAME_THEME"); v != "" {
		ref, err := theme.ParseRef(v)
		if err != nil {
			return fmt.Errorf("config: TERMFRAME_THEME: %w", err)
		}
		cfg.Theme = ref
	}
	if v := os.Getenv("TERMFRAME_MODE"); v != "" {
		m, err := theme.ParseModeRequest(v)
		if err != nil {
			return fmt.Errorf("config: TERMFRAME_MODE: %w", err)
		}
		cfg.Mode = m
	}
	if v := os.Getenv("TERMFRAME_WINDOW_STYLE"); v != "" {
		cfg.Window.Style = v
	}
	if v := os.Getenv("TERMFRAME_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("TERMFRAME_EMBED_FONTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: TERMFRAME_EMBED_FONTS: %w", err)
		}
		cfg.Rendering.SVG.EmbedFonts = b
	}
	return nil
}

// Dir returns the directory holding the config file and the user's
// themes/ and window-styles/ directories.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgConfigHome(home), AppName)
}

// ThemeDir returns the user theme directory.
func ThemeDir() string {
	return filepath.Join(Dir(), "themes")
}

// WindowStyleDir returns the user window style directory.
func WindowStyleDir() string {
	return filepath.Join(Dir(), "window-styles")
}

// CacheDirOrDefault returns the configured cache directory or the XDG one.
func (c *Config) CacheDirOrDefault() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgCacheHome(home), AppName)
}

// configSearchDirs returns the ordered list of config directories to try.
func configSearchDirs() []string {
	home, _ := os.UserHomeDir()
	var dirs []string

	xdg := xdgConfigHome(home)
	dirs = append(dirs, filepath.Join(xdg, AppName))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		dirs = append(dirs, filepath.Join(defaultXDG, AppName))
	}

	return dirs
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgCacheHome returns XDG_CACHE_HOME or ~/.cache as fallback.
func xdgCacheHome(home string) string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".cache")
}
