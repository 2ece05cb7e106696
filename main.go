// termframe runs a command in a virtual terminal and renders its output as
// an SVG picture of a terminal window.
//
// Usage:
//
//	termframe [flags] [--] command [args...]
//
// Flags:
//
//	-config string        Path to configuration file (default: ~/.config/termframe/config.toml)
//	-width string         Terminal width: auto, N or min..max:step
//	-height string        Terminal height: auto, N or min..max:step
//	-mode string          Color mode (auto|dark|light)
//	-theme string         Theme name, or dark:NAME,light:NAME
//	-window-style string  Window style name
//	-no-window            Render the terminal without window chrome
//	-title string         Window title (default: the command line)
//	-o string             Output file (default: stdout)
//	-timeout duration     Command timeout
//	-font-family string   Comma-separated font family list
//	-font-size float      Font size in pixels
//	-embed-fonts          Embed fonts into the SVG
//	-subset-fonts         Subset embedded fonts to the used characters
//	-cache-dir string     Font cache directory
//	-clear-cache          Remove all cached fonts and exit
//	-list-themes          List available themes and exit
//	-list-window-styles   List available window styles and exit
//	-verbose              Enable verbose logging
//	-version              Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pamburus/termframe/pkg/app"
	"github.com/pamburus/termframe/pkg/config"
	"github.com/pamburus/termframe/pkg/dimension"
	"github.com/pamburus/termframe/pkg/font"
	"github.com/pamburus/termframe/pkg/terminal"
	"github.com/pamburus/termframe/pkg/theme"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

type flags struct {
	configPath       string
	width            string
	height           string
	mode             string
	theme            string
	windowStyle      string
	noWindow         bool
	title            string
	output           string
	timeout          time.Duration
	fontFamily       string
	fontSize         float64
	embedFonts       bool
	subsetFonts      bool
	cacheDir         string
	clearCache       bool
	listThemes       bool
	listWindowStyles bool
	verbose          bool
	showVersion      bool
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&f.width, "width", "", "Terminal width: auto, N or min..max:step")
	flag.StringVar(&f.height, "height", "", "Terminal height: auto, N or min..max:step")
	flag.StringVar(&f.mode, "mode", "", "Color mode (auto|dark|light)")
	flag.StringVar(&f.theme, "theme", "", "Theme name, or dark:NAME,light:NAME")
	flag.StringVar(&f.windowStyle, "window-style", "", "Window style name")
	flag.BoolVar(&f.noWindow, "no-window", false, "Render the terminal without window chrome")
	flag.StringVar(&f.title, "title", "", "Window title (default: the command line)")
	flag.StringVar(&f.output, "o", "", "Output file (default: stdout)")
	flag.DurationVar(&f.timeout, "timeout", 0, "Command timeout")
	flag.StringVar(&f.fontFamily, "font-family", "", "Comma-separated font family list")
	flag.Float64Var(&f.fontSize, "font-size", 0, "Font size in pixels")
	flag.BoolVar(&f.embedFonts, "embed-fonts", false, "Embed fonts into the SVG")
	flag.BoolVar(&f.subsetFonts, "subset-fonts", true, "Subset embedded fonts to the used characters")
	flag.StringVar(&f.cacheDir, "cache-dir", "", "Font cache directory")
	flag.BoolVar(&f.clearCache, "clear-cache", false, "Remove all cached fonts and exit")
	flag.BoolVar(&f.listThemes, "list-themes", false, "List available themes and exit")
	flag.BoolVar(&f.listWindowStyles, "list-window-styles", false, "List available window styles and exit")
	flag.BoolVar(&f.verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&f.showVersion, "version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: termframe [flags] [--] command [args...]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if f.showVersion {
		fmt.Printf("termframe %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if f.verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(f, flag.Args(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "termframe: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags, args []string, logger *slog.Logger) error {
	host := terminal.DetectCapabilities()
	logger.Debug("host terminal",
		"term", host.Term,
		"interactive", host.Interactive,
		"width", host.Width)

	switch {
	case f.listThemes:
		return app.ListThemes(os.Stdout, config.ThemeDir(), host.Width)
	case f.listWindowStyles:
		return app.ListWindowStyles(os.Stdout, config.WindowStyleDir(), host.Width)
	}

	if len(args) == 0 && !f.clearCache {
		flag.Usage()
		return errors.New("no command given")
	}

	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.LoadFromFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, f); err != nil {
		return err
	}
	if f.clearCache {
		return app.ClearCache(os.Stdout, cfg.CacheDirOrDefault())
	}

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return app.Run(ctx, app.Options{
		Config:         cfg,
		Command:        args[0],
		Args:           args[1:],
		Output:         f.output,
		Stdout:         os.Stdout,
		ThemeDir:       config.ThemeDir(),
		WindowStyleDir: config.WindowStyleDir(),
		DetectMode:     terminal.DetectMode,
		Logger:         logger,
	})
}

// applyFlags overrides configuration values with the flags given on the
// command line. Flags left at their defaults keep the file values.
func applyFlags(cfg *config.Config, f flags) error {
	var errs []error
	flag.Visit(func(fl *flag.Flag) {
		var err error
		switch fl.Name {
		case "width":
			cfg.Terminal.Width, err = dimension.Parse(f.width)
		case "height":
			cfg.Terminal.Height, err = dimension.Parse(f.height)
		case "mode":
			cfg.Mode, err = theme.ParseModeRequest(f.mode)
		case "theme":
			cfg.Theme, err = theme.ParseRef(f.theme)
		case "window-style":
			cfg.Window.Style = f.windowStyle
		case "no-window":
			cfg.Window.Enabled = !f.noWindow
		case "title":
			cfg.Window.Title = f.title
		case "timeout":
			cfg.Timeout = config.Duration{Duration: f.timeout}
		case "font-family":
			cfg.Font.Family, err = font.ParseFamilies(f.fontFamily)
		case "font-size":
			cfg.Font.Size = f.fontSize
		case "embed-fonts":
			cfg.Rendering.SVG.EmbedFonts = f.embedFonts
		case "subset-fonts":
			cfg.Rendering.SVG.SubsetFonts = f.subsetFonts
		case "cache-dir":
			cfg.CacheDir = f.cacheDir
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("-%s: %w", fl.Name, err))
		}
	})
	return errors.Join(errs...)
}
