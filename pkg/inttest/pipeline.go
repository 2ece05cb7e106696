package inttest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pamburus/termframe/pkg/app"
	"github.com/pamburus/termframe/pkg/capture"
	"github.com/pamburus/termframe/pkg/config"
	"github.com/pamburus/termframe/pkg/dimension"
)

// Tags of the pipeline suite.
const (
	TagPTY    = "pty"
	TagConfig = "config"
)

// PipelineSuite returns the end-to-end suite. Tests tagged TagPTY run
// /bin/sh on a pseudo-terminal.
func PipelineSuite() *TestSuite {
	s := NewSuite("pipeline")
	s.AddTimed("colored output", 10*time.Second, itColoredOutput, TagPTY)
	s.AddTimed("auto size", 10*time.Second, itAutoSize, TagPTY)
	s.AddTimed("command echo", 10*time.Second, itCommandEcho, TagPTY)
	s.AddTimed("environment", 10*time.Second, itEnvironment, TagPTY, TagConfig)
	s.AddTimed("exit status", 10*time.Second, itExitStatus, TagPTY)
	s.AddTimed("timeout", 10*time.Second, itTimeout, TagPTY)
	s.AddTimed("config file", 10*time.Second, itConfigFile, TagPTY, TagConfig)
	return s
}

// itConfig returns a configuration that needs no network: no font
// catalog, no window and no echo.
func itConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.Fonts = nil
	cfg.Window.Enabled = false
	cfg.Command.Show = false
	return cfg
}

// itRender runs script with /bin/sh and returns the SVG document.
func itRender(t *testing.T, cfg *config.Config, script string) (string, error) {
	t.Helper()
	if _, err := exec.LookPath("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	var out bytes.Buffer
	err := app.Run(context.Background(), app.Options{
		Config:  cfg,
		Command: "/bin/sh",
		Args:    []string{"-c", script},
		Stdout:  &out,
	})
	return out.String(), err
}

func itMustRender(t *testing.T, cfg *config.Config, script string) string {
	t.Helper()
	doc, err := itRender(t, cfg, script)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return doc
}

func itColoredOutput(t *testing.T) {
	cfg := itConfig(t)
	cfg.Terminal.Width = dimension.NewFixed(40)
	doc := itMustRender(t, cfg, `printf '\033[31mred\033[0m plain\n'`)

	if !strings.Contains(doc, "red") || !strings.Contains(doc, "plain") {
		t.Errorf("text missing:\n%s", doc)
	}
	// Palette index 1 of the default dark theme.
	if !strings.Contains(doc, `fill="#d17277"`) {
		t.Errorf("red span not colored:\n%s", doc)
	}
}

func itAutoSize(t *testing.T) {
	doc := itMustRender(t, itConfig(t), `printf 'abc\nde\n'`)
	// Three columns of 7.2px and two rows.
	if !strings.Contains(doc, `width="21.6"`) {
		t.Errorf("screen not trimmed to 3 columns:\n%s", doc)
	}
	if strings.Count(doc, "<text ") != 2 {
		t.Errorf("expected 2 text rows:\n%s", doc)
	}
}

func itCommandEcho(t *testing.T) {
	cfg := itConfig(t)
	cfg.Command.Show = true
	cfg.Command.Prompt = "$ "
	doc := itMustRender(t, cfg, `echo hi`)
	if !strings.Contains(doc, "-c") || !strings.Contains(doc, "hi") {
		t.Errorf("echo line missing:\n%s", doc)
	}
}

func itEnvironment(t *testing.T) {
	cfg := itConfig(t)
	cfg.Env = map[string]string{"ITEST_VALUE": "from-config"}
	doc := itMustRender(t, cfg, `printf '%s %s' "$ITEST_VALUE" "$TERM"`)
	if !strings.Contains(doc, "from-config xterm-256color") {
		t.Errorf("environment not passed:\n%s", doc)
	}
}

func itExitStatus(t *testing.T) {
	_, err := itRender(t, itConfig(t), `echo partial; exit 3`)
	var exitErr *capture.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want ExitError", err)
	}
	if exitErr.Status != 3 {
		t.Errorf("status = %d, want 3", exitErr.Status)
	}
	if exitErr.Grid == nil || exitErr.Grid.Text(0) == "" {
		t.Errorf("partial output not kept")
	}
}

func itTimeout(t *testing.T) {
	cfg := itConfig(t)
	cfg.Timeout = config.Duration{Duration: 200 * time.Millisecond}
	start := time.Now()
	_, err := itRender(t, cfg, `sleep 30`)
	if !errors.Is(err, capture.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("timeout took %v", d)
	}
}

func itConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	doc := `theme = "dracula"
timeout = "5s"

[window]
enabled = false

[command]
show = false

[terminal]
width = 20
height = 2
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	cfg.CacheDir = t.TempDir()
	cfg.Fonts = nil

	out := itMustRender(t, cfg, `echo configured`)
	if !strings.Contains(out, `fill="#282a36"`) {
		t.Errorf("dracula background missing:\n%s", out)
	}
	// Twenty columns of 7.2px.
	if !strings.Contains(out, `width="144"`) {
		t.Errorf("fixed width not applied:\n%s", out)
	}
}
