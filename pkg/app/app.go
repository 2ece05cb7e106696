// Package app runs one termframe invocation: it captures a command on a
// virtual terminal, resolves colors, fonts and window chrome, and writes the
// SVG picture.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/pamburus/termframe/pkg/cache"
	"github.com/pamburus/termframe/pkg/capture"
	"github.com/pamburus/termframe/pkg/config"
	"github.com/pamburus/termframe/pkg/fetch"
	"github.com/pamburus/termframe/pkg/grid"
	"github.com/pamburus/termframe/pkg/render"
	"github.com/pamburus/termframe/pkg/style"
	"github.com/pamburus/termframe/pkg/terminal"
	"github.com/pamburus/termframe/pkg/theme"
	"github.com/pamburus/termframe/pkg/winstyle"
)

// Options describes one invocation.
type Options struct {
	Config  *config.Config
	Command string
	Args    []string

	// Output is the destination file. Empty means Stdout.
	Output string
	Stdout io.Writer

	ThemeDir       string
	WindowStyleDir string

	// DetectMode answers "auto" mode requests. Nil means dark.
	DetectMode theme.ModeDetector

	// Capturer replaces the pseudo-terminal runner when set.
	Capturer grid.Capturer
	// Getter replaces the HTTP client used for fonts when set.
	Getter fetch.Getter

	Logger *slog.Logger
}

// job is an invocation whose inputs have all been validated.
type job struct {
	opts     Options
	cfg      *config.Config
	log      *slog.Logger
	mode     theme.Mode
	colors   theme.Colors
	resolver *style.Resolver
	window   *winstyle.Resolved
	render   render.Options
}

// Run executes the whole pipeline. Configuration, theme and window style
// problems are reported before the command is started.
func Run(ctx context.Context, opts Options) error {
	j, err := prepare(opts)
	if err != nil {
		return err
	}

	g, err := j.capture(ctx)
	if err != nil {
		return err
	}

	set, err := j.fonts(ctx, g)
	if err != nil {
		return err
	}
	ro := j.render
	ro.Metrics = set.Metrics
	ro.FontFaces = set.CSS()

	var buf bytes.Buffer
	if err := render.Write(&buf, g, j.resolver, ro); err != nil {
		return err
	}
	return j.write(buf.Bytes())
}

func prepare(opts Options) (*job, error) {
	if opts.Command == "" {
		return nil, errors.New("app: no command given")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	mode := theme.ResolveMode(cfg.Mode, opts.DetectMode)
	th, err := theme.NewLibrary(opts.ThemeDir, log).Load(cfg.Theme.Name(mode))
	if err != nil {
		return nil, err
	}
	colors := th.Colors(mode)
	log.Debug("theme resolved", "theme", th.Name, "mode", mode, "adaptive", th.IsAdaptive())

	j := &job{
		opts:     opts,
		cfg:      cfg,
		log:      log,
		mode:     mode,
		colors:   colors,
		resolver: style.NewResolver(colors, cfg.StyleOptions()),
	}

	if cfg.Window.Enabled {
		ws, err := winstyle.NewLibrary(opts.WindowStyleDir).Load(cfg.Window.Style)
		if err != nil {
			return nil, err
		}
		j.window = ws.Resolve(mode)
	}

	j.render = renderOptions(cfg, j.window, j.title())
	if err := j.render.Validate(); err != nil {
		return nil, err
	}
	return j, nil
}

func renderOptions(cfg *config.Config, window *winstyle.Resolved, title string) render.Options {
	ro := render.DefaultOptions()
	ro.Families = cfg.Font.Family
	ro.FontSize = cfg.Font.Size
	ro.NormalWeight = cfg.Font.Weights.Normal
	ro.LineHeight = cfg.Rendering.LineHeight
	ro.Padding = render.Padding{Horizontal: cfg.Padding.Horizontal, Vertical: cfg.Padding.Vertical}
	ro.Precision = cfg.Rendering.SVG.Precision
	ro.Stroke = cfg.Rendering.SVG.Stroke
	ro.VarPalette = cfg.Rendering.SVG.VarPalette
	ro.Window = window
	ro.Title = title
	return ro
}

func (j *job) title() string {
	if j.cfg.Window.Title != "" {
		return j.cfg.Window.Title
	}
	return capture.CommandLine(j.opts.Command, j.opts.Args)
}

// capture runs the command, sizing the terminal from the configuration. The
// configured timeout covers every run Normalize makes.
func (j *job) capture(ctx context.Context) (*grid.Grid, error) {
	if d := j.cfg.Timeout.Duration; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	c := j.opts.Capturer
	if c == nil {
		c = j.runner()
	}
	g, err := grid.Normalize(ctx, c, grid.Options{
		Width:   j.cfg.Terminal.Width,
		Height:  j.cfg.Terminal.Height,
		IsBlank: j.resolver.IsBlank,
		Logger:  j.log,
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, capture.ErrTimeout
	}
	if err != nil {
		return nil, err
	}
	cols, rows := g.Size()
	j.log.Debug("captured", "cols", cols, "rows", rows)
	return g, nil
}

func (j *job) runner() *capture.Runner {
	r := &capture.Runner{
		Command: j.opts.Command,
		Args:    j.opts.Args,
		Env:     envList(j.cfg.Env),
		Colors:  capture.Colors{Foreground: j.colors.Foreground, Background: j.colors.Background},
		Logger:  j.log,
	}
	if j.cfg.Command.Show {
		r.Echo = &capture.Echo{Prompt: j.cfg.Command.Prompt, SyntaxTheme: j.cfg.Command.SyntaxTheme}
	}
	return r
}

// envList turns the configured environment into sorted KEY=VALUE entries.
func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// write delivers the document to the output file or to stdout.
func (j *job) write(doc []byte) error {
	if j.opts.Output != "" {
		if err := cache.WriteFile(j.opts.Output, doc, 0o644); err != nil {
			return fmt.Errorf("app: %w", err)
		}
		j.log.Debug("written", "path", j.opts.Output, "bytes", len(doc))
		return nil
	}

	w := j.opts.Stdout
	if w == nil {
		w = os.Stdout
	}
	if f, ok := w.(*os.File); ok && terminal.IsTerminal(f) {
		j.log.Warn("writing SVG to a terminal, use -o to write a file")
	}
	if _, err := w.Write(doc); err != nil {
		return fmt.Errorf("app: write output: %w", err)
	}
	return nil
}
