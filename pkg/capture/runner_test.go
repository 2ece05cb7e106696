package capture

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/pamburus/termframe/pkg/grid"
)

func newTestRunner(t *testing.T, script string, opts ...func(*Runner)) *Runner {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	r := &Runner{Command: "/bin/sh", Args: []string{"-c", script}, Timeout: 10 * time.Second}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

func TestRunnerCapturesOutput(t *testing.T) {
	r := newTestRunner(t, `printf 'hello\n\033[31mred\033[0m'`)
	g, err := r.Capture(context.Background(), 20, 4)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	checkLines(t, g, "hello", "red", "")
	if c := g.At(0, 1); c.FG != grid.Indexed(1) {
		t.Errorf("red cell = %+v", c)
	}
	if cols, rows := g.Size(); cols != 20 || rows != 4 {
		t.Errorf("size = %dx%d", cols, rows)
	}
}

func TestRunnerEnvironment(t *testing.T) {
	r := newTestRunner(t, `printf '%s %s %s %s' "$TERM" "$COLUMNS" "$LINES" "$GREETING"`, func(r *Runner) {
		r.Env = []string{"GREETING=hey"}
	})
	g, err := r.Capture(context.Background(), 33, 7)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	checkLines(t, g, "xterm-256color 33 7 hey")
}

func TestRunnerEcho(t *testing.T) {
	r := newTestRunner(t, "echo hi", func(r *Runner) { r.Echo = &Echo{Prompt: "$ "} })
	g, err := r.Capture(context.Background(), 30, 3)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	checkLines(t, g, "$ /bin/sh -c 'echo hi'", "hi")
}

func TestRunnerExitStatus(t *testing.T) {
	r := newTestRunner(t, "echo partial; exit 3")
	_, err := r.Capture(context.Background(), 20, 2)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if exitErr.Status != 3 {
		t.Errorf("status = %d, want 3", exitErr.Status)
	}
	if exitErr.Grid == nil || exitErr.Grid.Text(0) != "partial" {
		t.Error("exit error should carry the captured screen")
	}
}

func TestRunnerTimeoutKillsProcessGroup(t *testing.T) {
	r := newTestRunner(t, "sleep 30 & sleep 30", func(r *Runner) { r.Timeout = 200 * time.Millisecond })
	start := time.Now()
	_, err := r.Capture(context.Background(), 20, 2)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("timeout took %v", d)
	}
}

func TestRunnerCanceled(t *testing.T) {
	r := newTestRunner(t, "sleep 30")
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)
	_, err := r.Capture(ctx, 20, 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunnerMissingCommand(t *testing.T) {
	r := &Runner{Command: "/nonexistent/termframe-test"}
	if _, err := r.Capture(context.Background(), 10, 2); err == nil {
		t.Fatal("expected error for a missing command")
	}
	if _, err := (&Runner{}).Capture(context.Background(), 10, 2); err == nil {
		t.Fatal("expected error for an empty command")
	}
}

func TestRunnerWithNormalize(t *testing.T) {
	r := newTestRunner(t, `printf 'abc\ndefgh'`)
	g, err := grid.Normalize(context.Background(), r, grid.Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cols, rows := g.Size(); cols != 5 || rows != 2 {
		t.Errorf("size = %dx%d, want 5x2", cols, rows)
	}
}
