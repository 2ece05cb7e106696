// Package terminal inspects the host terminal termframe itself runs in:
// whether stdout is a terminal, how wide it is and whether its background
// is dark. None of this affects the virtual terminal used for capture.
//
// Emulator identification is environment-only (no I/O); it decides whether
// a background color query is worth sending at all.
package terminal

import (
	"os"
	"strings"
)

// Terminal identifies the terminal emulator in use.
type Terminal int

const (
	TermUnknown Terminal = iota
	TermGhostty
	TermKitty
	TermWezTerm
	TermITerm2
	TermAlacritty
	TermTilix
	TermGNOME
	TermTmux
	TermScreen
	TermVSCode
	TermEmacs
	TermGeneric
)

var terminalNames = [...]string{
	TermUnknown:   "unknown",
	TermGhostty:   "ghostty",
	TermKitty:     "kitty",
	TermWezTerm:   "wezterm",
	TermITerm2:    "iterm2",
	TermAlacritty: "alacritty",
	TermTilix:     "tilix",
	TermGNOME:     "gnome-terminal",
	TermTmux:      "tmux",
	TermScreen:    "screen",
	TermVSCode:    "vscode",
	TermEmacs:     "emacs",
	TermGeneric:   "generic",
}

// String returns the human-readable name of the terminal.
func (t Terminal) String() string {
	if t >= 0 && int(t) < len(terminalNames) {
		return terminalNames[t]
	}
	return "unknown"
}

// AnswersColorQueries reports whether the terminal replies to OSC 11
// background color queries. Emacs terminals and GNU Screen swallow them,
// which would stall the query until its timeout.
func (t Terminal) AnswersColorQueries() bool {
	switch t {
	case TermEmacs, TermScreen, TermUnknown:
		return false
	default:
		return true
	}
}

// termPrograms maps lowercased TERM_PROGRAM values, the most reliable
// signal, to emulators.
var termPrograms = map[string]Terminal{
	"ghostty":   TermGhostty,
	"kitty":     TermKitty,
	"wezterm":   TermWezTerm,
	"iterm.app": TermITerm2,
	"vscode":    TermVSCode,
	"alacritty": TermAlacritty,
	"tmux":      TermTmux,
}

type envLookup func(string) string

// detectRules are tried in order after TERM_PROGRAM. Multiplexers come
// late so that the emulator running them wins.
var detectRules = []struct {
	term  Terminal
	match func(env envLookup) bool
}{
	{TermGhostty, func(env envLookup) bool { return env("TERM") == "xterm-ghostty" }},
	{TermKitty, func(env envLookup) bool { return env("TERM") == "xterm-kitty" }},
	{TermAlacritty, func(env envLookup) bool { return strings.HasPrefix(env("TERM"), "alacritty") }},
	// tmux also sets TERM=screen*; only STY identifies GNU Screen.
	{TermScreen, func(env envLookup) bool { return strings.HasPrefix(env("TERM"), "screen") && env("STY") != "" }},
	{TermKitty, isSet("KITTY_WINDOW_ID")},
	{TermITerm2, isSet("ITERM_SESSION_ID")},
	{TermWezTerm, isSet("WEZTERM_EXECUTABLE")},
	{TermTilix, func(env envLookup) bool { return env("VTE_VERSION") != "" && env("TILIX_ID") != "" }},
	{TermGNOME, isSet("VTE_VERSION")},
	{TermEmacs, isSet("INSIDE_EMACS")},
	{TermTmux, isSet("TMUX")},
	{TermScreen, isSet("STY")},
	// Forwarded by iTerm2 through ssh, where TERM_PROGRAM is lost.
	{TermITerm2, func(env envLookup) bool { return env("LC_TERMINAL") == "iTerm2" }},
}

func isSet(name string) func(envLookup) bool {
	return func(env envLookup) bool { return env(name) != "" }
}

// Detect identifies the terminal emulator from environment variables.
func Detect() Terminal {
	return detectFrom(os.Getenv)
}

func detectFrom(env envLookup) Terminal {
	if t, ok := termPrograms[strings.ToLower(env("TERM_PROGRAM"))]; ok {
		return t
	}
	for _, r := range detectRules {
		if r.match(env) {
			return r.term
		}
	}
	return TermGeneric
}
