package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/pamburus/termframe/pkg/cache"
	"github.com/pamburus/termframe/pkg/capture"
	"github.com/pamburus/termframe/pkg/config"
	"github.com/pamburus/termframe/pkg/dimension"
	"github.com/pamburus/termframe/pkg/font"
	"github.com/pamburus/termframe/pkg/font/woff2test"
	"github.com/pamburus/termframe/pkg/grid"
	"github.com/pamburus/termframe/pkg/theme"
	"github.com/pamburus/termframe/pkg/winstyle"
)

type fakeGetter struct {
	data  map[string][]byte
	calls atomic.Int32
}

func (f *fakeGetter) Get(_ context.Context, location string) ([]byte, error) {
	f.calls.Add(1)
	if d, ok := f.data[location]; ok {
		return d, nil
	}
	return nil, errors.New("not found")
}

func linesCapturer(calls *atomic.Int32, lines ...string) grid.Capturer {
	return grid.CapturerFunc(func(_ context.Context, cols, rows int) (*grid.Grid, error) {
		if calls != nil {
			calls.Add(1)
		}
		return grid.FromLines(cols, rows, lines...), nil
	})
}

// newTestOptions returns options that render "Hello" without a window,
// without network access and with the cache in a temporary directory.
func newTestOptions(t *testing.T, opts ...func(*Options)) (Options, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.Window.Enabled = false
	cfg.Fonts = nil

	var out bytes.Buffer
	o := Options{
		Config:   cfg,
		Command:  "echo",
		Args:     []string{"Hello"},
		Stdout:   &out,
		Capturer: linesCapturer(nil, "Hello"),
		Getter:   &fakeGetter{},
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o, &out
}

func run(t *testing.T, o Options) {
	t.Helper()
	if err := Run(context.Background(), o); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

// --- Pipeline ---

func TestRunWritesSVG(t *testing.T) {
	o, out := newTestOptions(t)
	run(t, o)

	got := out.String()
	if !strings.HasPrefix(got, "<svg ") {
		t.Fatalf("output does not start with <svg: %.40q", got)
	}
	if !strings.Contains(got, ">Hello<") {
		t.Errorf("output does not contain the captured text:\n%s", got)
	}
	// The auto-sized terminal is trimmed to the content: 5 columns.
	if !strings.Contains(got, `width="36"`) {
		t.Errorf("expected a 5-column screen (36px wide):\n%s", got)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	o1, out1 := newTestOptions(t)
	o2, out2 := newTestOptions(t)
	run(t, o1)
	run(t, o2)
	if out1.String() != out2.String() {
		t.Errorf("two runs differ:\n%s\n---\n%s", out1, out2)
	}
}

func TestRunWritesOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	o, out := newTestOptions(t, func(o *Options) { o.Output = path })
	run(t, o)

	if out.Len() != 0 {
		t.Errorf("stdout received %d bytes with -o set", out.Len())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), ">Hello<") {
		t.Errorf("file content missing text:\n%s", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("perm = %o, want 644", perm)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("output dir has %d entries, want only the output file", len(entries))
	}
}

func TestRunWithWindow(t *testing.T) {
	o, out := newTestOptions(t, func(o *Options) {
		o.Config.Window.Enabled = true
		o.Config.Window.Style = winstyle.DefaultName
		o.Config.Terminal.Width = dimension.NewFixed(40)
	})
	run(t, o)
	// The title defaults to the command line.
	if !strings.Contains(out.String(), "echo Hello") {
		t.Errorf("window title missing:\n%s", out)
	}
}

func TestRunModeDetection(t *testing.T) {
	tests := []struct {
		name   string
		mode   theme.ModeRequest
		detect theme.ModeDetector
		want   string
	}{
		{"auto detects light", theme.ModeAuto, func() (theme.Mode, bool) { return theme.Light, true }, "#f9f9f9"},
		{"auto undetected is dark", theme.ModeAuto, func() (theme.Mode, bool) { return 0, false }, "#282c30"},
		{"explicit dark wins", theme.ModeDark, func() (theme.Mode, bool) { return theme.Light, true }, "#282c30"},
		{"no detector", theme.ModeAuto, nil, "#282c30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, out := newTestOptions(t, func(o *Options) {
				o.Config.Mode = tt.mode
				o.DetectMode = tt.detect
			})
			run(t, o)
			if !strings.Contains(out.String(), `fill="`+tt.want+`"`) {
				t.Errorf("background %s not found:\n%s", tt.want, out)
			}
		})
	}
}

func TestRunFixedSize(t *testing.T) {
	o, out := newTestOptions(t, func(o *Options) {
		o.Config.Terminal.Width = dimension.NewFixed(10)
		o.Config.Terminal.Height = dimension.NewFixed(2)
	})
	run(t, o)
	// 10 columns at 0.6em of 12px.
	if !strings.Contains(out.String(), `width="72"`) {
		t.Errorf("expected a 10-column screen:\n%s", out)
	}
}

// --- Validation ---

func TestRunValidatesBeforeCapture(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Options)
		check func(error) bool
	}{
		{
			name:  "no command",
			setup: func(o *Options) { o.Command = "" },
			check: func(err error) bool { return strings.Contains(err.Error(), "no command") },
		},
		{
			name:  "unknown theme",
			setup: func(o *Options) { o.Config.Theme = theme.FixedRef("no-such-theme-at-all") },
			check: func(err error) bool {
				var nf *theme.NotFoundError
				return errors.As(err, &nf)
			},
		},
		{
			name: "unknown window style",
			setup: func(o *Options) {
				o.Config.Window.Enabled = true
				o.Config.Window.Style = "no-such-style"
			},
			check: func(err error) bool {
				var nf *winstyle.NotFoundError
				return errors.As(err, &nf)
			},
		},
		{
			name:  "invalid config",
			setup: func(o *Options) { o.Config.Rendering.LineHeight = 0 },
			check: func(err error) bool { return strings.Contains(err.Error(), "line-height") },
		},
		{
			name:  "invalid font size",
			setup: func(o *Options) { o.Config.Font.Size = -1 },
			check: func(err error) bool { return err != nil },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			o, _ := newTestOptions(t, func(o *Options) { o.Capturer = linesCapturer(&calls, "x") })
			tt.setup(&o)
			err := Run(context.Background(), o)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
			if calls.Load() != 0 {
				t.Errorf("command captured %d times before validation failed", calls.Load())
			}
		})
	}
}

// --- Capture failures ---

func TestRunExitError(t *testing.T) {
	o, out := newTestOptions(t, func(o *Options) {
		o.Capturer = grid.CapturerFunc(func(_ context.Context, cols, rows int) (*grid.Grid, error) {
			return nil, &capture.ExitError{Status: 2, Grid: grid.FromLines(cols, rows, "oops")}
		})
	})
	err := Run(context.Background(), o)
	var exitErr *capture.ExitError
	if !errors.As(err, &exitErr) || exitErr.Status != 2 {
		t.Fatalf("err = %v, want ExitError with status 2", err)
	}
	if out.Len() != 0 {
		t.Errorf("output written despite failure")
	}
}

func TestRunTimeout(t *testing.T) {
	o, _ := newTestOptions(t, func(o *Options) {
		o.Config.Timeout = config.Duration{Duration: 20 * time.Millisecond}
		o.Capturer = grid.CapturerFunc(func(ctx context.Context, _, _ int) (*grid.Grid, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
	})
	err := Run(context.Background(), o)
	if !errors.Is(err, capture.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

// --- Fonts ---

func TestRunEmbedsFonts(t *testing.T) {
	const url = "https://fonts.example/go-regular.ttf"
	getter := &fakeGetter{data: map[string][]byte{url: goregular.TTF}}
	o, out := newTestOptions(t, func(o *Options) {
		o.Getter = getter
		o.Config.Font.Family = font.Families{"Go", "monospace"}
		o.Config.Fonts = font.Catalog{{Family: "Go", Files: []string{url}}}
		o.Config.Rendering.SVG.EmbedFonts = true
	})
	run(t, o)

	got := out.String()
	if !strings.Contains(got, "@font-face{font-family:") {
		t.Errorf("no @font-face rule:\n%.300s", got)
	}
	if getter.calls.Load() != 1 {
		t.Errorf("getter called %d times, want 1", getter.calls.Load())
	}

	// A second run is served from the cache.
	o.Stdout = &bytes.Buffer{}
	run(t, o)
	if getter.calls.Load() != 1 {
		t.Errorf("getter called %d times after a cached run, want 1", getter.calls.Load())
	}
}

func TestFontsFromDefaultCatalog(t *testing.T) {
	catalog := config.DefaultConfig().Fonts
	if len(catalog) == 0 || len(catalog[0].Files) != 4 {
		t.Fatalf("default catalog = %+v", catalog)
	}
	getter := &fakeGetter{data: map[string][]byte{}}
	for i, ttf := range [][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF} {
		data, err := woff2test.Encode(ttf, woff2test.Options{Glyf: true, Hmtx: true})
		if err != nil {
			t.Fatalf("woff2test.Encode: %v", err)
		}
		getter.data[catalog[0].Files[i]] = data
	}

	o, _ := newTestOptions(t, func(o *Options) {
		o.Getter = getter
		o.Config.Fonts = catalog
		o.Config.Rendering.SVG.EmbedFonts = true
	})
	j, err := prepare(o)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	set, err := j.fonts(context.Background(), grid.FromLines(10, 1, "Hello"))
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}

	plain, err := font.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if set.Metrics != plain.Metrics || set.MetricsFamily != catalog[0].Family {
		t.Errorf("metrics = %+v from %q, want %+v", set.Metrics, set.MetricsFamily, plain.Metrics)
	}
	if set.Metrics == font.FallbackMetrics() {
		t.Error("default catalog fell back to built-in metrics")
	}
	if len(set.Faces) != 4 || len(set.Warnings) != 0 {
		t.Fatalf("faces = %d, warnings = %v", len(set.Faces), set.Warnings)
	}
	for _, f := range set.Faces {
		if !f.Subsetted {
			t.Errorf("face %v not subset", f.Variant)
		}
	}
}

func TestRunFontFailureDegrades(t *testing.T) {
	o, out := newTestOptions(t, func(o *Options) {
		o.Config.Fonts = font.Catalog{{Family: "JetBrains Mono", Files: []string{"https://fonts.example/missing.woff2"}}}
	})
	run(t, o)
	if !strings.Contains(out.String(), ">Hello<") {
		t.Errorf("render did not fall back:\n%s", out)
	}
}

func TestRunNoUsableFont(t *testing.T) {
	o, _ := newTestOptions(t, func(o *Options) {
		o.Config.Fonts = font.Catalog{{Family: "JetBrains Mono", Files: []string{"https://fonts.example/missing.woff2"}}}
		o.Config.Rendering.SVG.EmbedFonts = true
	})
	err := Run(context.Background(), o)
	if !errors.Is(err, font.ErrNoUsableFont) {
		t.Fatalf("err = %v, want ErrNoUsableFont", err)
	}
}

// --- Helpers ---

func TestEnvList(t *testing.T) {
	got := envList(map[string]string{"B": "2", "A": "1", "C": "x=y"})
	want := []string{"A=1", "B=2", "C=x=y"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("envList = %v, want %v", got, want)
	}
}

func TestRunnerFromConfig(t *testing.T) {
	o, _ := newTestOptions(t, func(o *Options) {
		o.Config.Command.Show = false
		o.Config.Env = map[string]string{"FOO": "bar"}
	})
	j, err := prepare(o)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	r := j.runner()
	if r.Echo != nil {
		t.Error("echo set with command.show = false")
	}
	if len(r.Env) != 1 || r.Env[0] != "FOO=bar" {
		t.Errorf("Env = %v", r.Env)
	}
	if r.Colors.Background != j.colors.Background {
		t.Errorf("runner colors do not follow the theme")
	}

	j.cfg.Command.Show = true
	if j.runner().Echo == nil {
		t.Error("echo missing with command.show = true")
	}
}

func TestTitle(t *testing.T) {
	o, _ := newTestOptions(t, func(o *Options) { o.Args = []string{"it's"} })
	j, err := prepare(o)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if got, want := j.title(), `echo 'it'\''s'`; got != want {
		t.Errorf("title = %q, want %q", got, want)
	}
	j.cfg.Window.Title = "demo"
	if got := j.title(); got != "demo" {
		t.Errorf("title = %q, want demo", got)
	}
}

// --- Cache maintenance ---

func TestClearCache(t *testing.T) {
	dir := t.TempDir()
	s, err := cache.NewStore(cache.StoreConfig{Dir: dir})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	hash, err := s.Put(goregular.TTF)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Link("https://fonts.example/go.ttf", hash); err != nil {
		t.Fatalf("Link: %v", err)
	}

	var buf bytes.Buffer
	if err := ClearCache(&buf, dir); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	want := fmt.Sprintf("removed 1 cache entries (%d bytes) from %s\n", len(goregular.TTF), dir)
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if _, ok := s.Fetch("https://fonts.example/go.ttf"); ok {
		t.Error("cleared ref still resolves")
	}

	buf.Reset()
	if err := ClearCache(&buf, dir); err != nil {
		t.Fatalf("second ClearCache: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "removed 0 cache entries (0 bytes)") {
		t.Errorf("output = %q", buf.String())
	}
}

// --- Listing ---

func TestListThemes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.toml"), []byte("[base]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := ListThemes(&buf, dir, 200); err != nil {
		t.Fatalf("ListThemes: %v", err)
	}
	for _, name := range []string{theme.DefaultName, "dracula", "mine"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("listing misses %q:\n%s", name, buf.String())
		}
	}
}

func TestListWindowStyles(t *testing.T) {
	var buf bytes.Buffer
	if err := ListWindowStyles(&buf, "", 80); err != nil {
		t.Fatalf("ListWindowStyles: %v", err)
	}
	if !strings.Contains(buf.String(), winstyle.DefaultName) {
		t.Errorf("listing misses %q:\n%s", winstyle.DefaultName, buf.String())
	}
}
