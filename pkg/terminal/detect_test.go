package terminal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pamburus/termframe/pkg/theme"
)

// termEnvVars lists all environment variables inspected during detection.
var termEnvVars = []string{
	"TERM_PROGRAM", "TERM",
	"KITTY_WINDOW_ID", "ITERM_SESSION_ID", "WEZTERM_EXECUTABLE",
	"TILIX_ID", "VTE_VERSION", "LC_TERMINAL",
	"INSIDE_EMACS", "TMUX", "STY",
	"COLUMNS",
}

// clearTermEnv unsets all terminal-related env vars; t.Setenv restores
// them after the test.
func clearTermEnv(t *testing.T) {
	t.Helper()
	for _, v := range termEnvVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

// --- Detection ---

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Terminal
	}{
		{"ghostty program", map[string]string{"TERM_PROGRAM": "ghostty"}, TermGhostty},
		{"ghostty term", map[string]string{"TERM": "xterm-ghostty"}, TermGhostty},
		{"kitty term", map[string]string{"TERM": "xterm-kitty"}, TermKitty},
		{"kitty window", map[string]string{"KITTY_WINDOW_ID": "1"}, TermKitty},
		{"wezterm", map[string]string{"WEZTERM_EXECUTABLE": "/usr/bin/wezterm"}, TermWezTerm},
		{"iterm2 program", map[string]string{"TERM_PROGRAM": "iTerm.app"}, TermITerm2},
		{"iterm2 over ssh", map[string]string{"LC_TERMINAL": "iTerm2"}, TermITerm2},
		{"alacritty", map[string]string{"TERM": "alacritty"}, TermAlacritty},
		{"tilix", map[string]string{"VTE_VERSION": "7200", "TILIX_ID": "x"}, TermTilix},
		{"gnome", map[string]string{"VTE_VERSION": "7200"}, TermGNOME},
		{"vscode", map[string]string{"TERM_PROGRAM": "vscode"}, TermVSCode},
		{"emacs", map[string]string{"INSIDE_EMACS": "29.1,vterm"}, TermEmacs},
		{"tmux", map[string]string{"TMUX": "/tmp/tmux-501/default,1,0"}, TermTmux},
		{"screen", map[string]string{"TERM": "screen-256color", "STY": "1.pts"}, TermScreen},
		{"program beats tmux", map[string]string{"TERM_PROGRAM": "ghostty", "TMUX": "x"}, TermGhostty},
		{"emulator beats tmux", map[string]string{"TERM": "screen-256color", "TMUX": "x", "KITTY_WINDOW_ID": "3"}, TermKitty},
		{"tmux screen term", map[string]string{"TERM": "screen-256color", "TMUX": "x"}, TermTmux},
		{"unknown program", map[string]string{"TERM_PROGRAM": "Apple_Terminal"}, TermGeneric},
		{"generic", nil, TermGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTermEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := Detect(); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTerminalString(t *testing.T) {
	if got := TermGNOME.String(); got != "gnome-terminal" {
		t.Errorf("String() = %q", got)
	}
	if got := Terminal(99).String(); got != "unknown" {
		t.Errorf("out of range String() = %q", got)
	}
}

func TestAnswersColorQueries(t *testing.T) {
	for _, term := range []Terminal{TermEmacs, TermScreen, TermUnknown} {
		if term.AnswersColorQueries() {
			t.Errorf("%v should not be queried", term)
		}
	}
	for _, term := range []Terminal{TermGhostty, TermTmux, TermGeneric} {
		if !term.AnswersColorQueries() {
			t.Errorf("%v should be queried", term)
		}
	}
}

// --- Mode ---

func TestDetectModeWithoutTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if IsTerminal(f) {
		t.Fatal("a regular file is not a terminal")
	}
	mode, ok := detectMode(f, TermGhostty)
	if ok || mode != theme.Dark {
		t.Errorf("detectMode = (%v, %v), want (dark, false)", mode, ok)
	}
	if IsTerminal(nil) {
		t.Error("nil file is not a terminal")
	}
}

// --- Size ---

func TestWidthFallsBackToEnv(t *testing.T) {
	clearTermEnv(t)
	t.Setenv("COLUMNS", "132")
	// Under a terminal the ioctl wins; either way the width is positive.
	if got := Width(); got <= 0 {
		t.Errorf("Width() = %d", got)
	}
	if got := widthOf(nil); got != 0 {
		t.Errorf("widthOf(nil) = %d", got)
	}
}

func TestEnvInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"42", 42},
		{"invalid", 10},
		{"-5", 10},
		{"0", 10},
		{"", 10},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_INT_VAR", tt.value)
			if got := envInt("TEST_INT_VAR", 10); got != tt.want {
				t.Errorf("envInt(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

// --- Columns ---

func TestWriteColumns(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		width int
		want  string
	}{
		{"empty", nil, 80, ""},
		{"one row", []string{"a", "bb", "c"}, 80, "a   bb  c\n"},
		{"column major", []string{"a", "b", "c", "d", "e"}, 7, "a  c  e\nb  d\n"},
		{"narrow", []string{"alpha", "beta"}, 3, "alpha\nbeta\n"},
		{"styled", []string{"\x1b[1mab\x1b[0m", "cd"}, 80, "\x1b[1mab\x1b[0m  cd\n"},
		{"wide", []string{"世界", "ab"}, 80, "世界  ab\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteColumns(&buf, tt.items, tt.width); err != nil {
				t.Fatal(err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Capabilities ---

func TestDetectCapabilities(t *testing.T) {
	clearTermEnv(t)
	t.Setenv("TERM_PROGRAM", "tmux")

	caps := detect()
	if caps.Term != TermTmux {
		t.Errorf("Term = %v", caps.Term)
	}
	if caps.Interactive != IsTerminal(os.Stdout) {
		t.Errorf("Interactive = %v", caps.Interactive)
	}
	if caps.Width <= 0 {
		t.Errorf("Width = %d", caps.Width)
	}
	if DetectCapabilities() != DetectCapabilities() {
		t.Error("capabilities must be cached")
	}
}
