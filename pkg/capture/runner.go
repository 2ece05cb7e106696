package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"github.com/pamburus/termframe/pkg/grid"
)

// ErrTimeout is returned when the command outlives its deadline.
var ErrTimeout = errors.New("capture: command timed out")

// ExitError reports a command that exited with a non-zero status. Grid
// holds what the command printed before it exited.
type ExitError struct {
	Status int
	Grid   *grid.Grid
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("capture: command exited with status %d", e.Status)
}

// drainTimeout bounds how long output is still read after the command
// exited; background children may keep the terminal open.
const drainTimeout = 500 * time.Millisecond

// Runner runs a command on a pseudo-terminal. It implements grid.Capturer;
// every Capture call starts the command afresh.
type Runner struct {
	Command string
	Args    []string
	// Env is added to the inherited environment as KEY=VALUE entries.
	Env []string
	Dir string
	// Timeout limits a single run. Zero leaves only the context deadline.
	Timeout time.Duration
	// Echo, when set, prints the command line before its output.
	Echo *Echo
	// Colors answer OSC 10/11 queries.
	Colors Colors

	Logger *slog.Logger
}

var _ grid.Capturer = (*Runner)(nil)

// Capture runs the command on a cols×rows terminal and returns the final
// screen.
func (r *Runner) Capture(ctx context.Context, cols, rows int) (*grid.Grid, error) {
	if r.Command == "" {
		return nil, errors.New("capture: no command")
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.Command(r.Command, r.Args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		"COLUMNS="+strconv.Itoa(cols),
		"LINES="+strconv.Itoa(rows),
	)
	cmd.Env = append(cmd.Env, r.Env...)

	// StartWithSize makes the child a session leader, so its pid is also
	// the process group id.
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("capture: start %s: %w", r.Command, err)
	}
	defer ptmx.Close()
	log.Debug("command started", "command", r.Command, "pid", cmd.Process.Pid, "cols", cols, "rows", rows)

	screen := NewScreen(cols, rows, ptmx)
	if r.Colors != (Colors{}) {
		screen.SetColors(r.Colors)
	}
	if r.Echo != nil {
		_, _ = screen.Write(r.Echo.Bytes(r.Command, r.Args))
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		// The read ends with EIO once the last holder of the terminal
		// exits, or when ptmx is closed.
		_, _ = io.Copy(screen, ptmx)
	}()

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	select {
	case err = <-waitDone:
	case <-ctx.Done():
		_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		<-waitDone
		_ = ptmx.Close()
		<-readDone
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("capture: %w", ctx.Err())
	}

	select {
	case <-readDone:
	case <-time.After(drainTimeout):
		log.Debug("terminal still open after exit, dropping remaining output")
		_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		_ = ptmx.Close()
		<-readDone
	}

	g := screen.Grid()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{Status: exitErr.ExitCode(), Grid: g}
		}
		return nil, fmt.Errorf("capture: wait: %w", err)
	}
	return g, nil
}
