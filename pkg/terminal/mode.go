package terminal

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/pamburus/termframe/pkg/theme"
)

// IsTerminal reports whether f is a terminal, including Cygwin and MSYS
// pseudo-terminals.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DetectMode asks the host terminal whether its background is dark. ok is
// false when stdout is not a terminal or the emulator is known not to
// answer color queries.
func DetectMode() (theme.Mode, bool) {
	return detectMode(os.Stdout, DetectCapabilities().Term)
}

func detectMode(f *os.File, t Terminal) (theme.Mode, bool) {
	if !IsTerminal(f) || !t.AnswersColorQueries() {
		return theme.Dark, false
	}
	out := termenv.NewOutput(f)
	if out.HasDarkBackground() {
		return theme.Dark, true
	}
	return theme.Light, true
}

var _ theme.ModeDetector = DetectMode
