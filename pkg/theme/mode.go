package theme

import (
	"fmt"
	"strings"
)

// Mode is a concrete appearance.
type Mode int

const (
	Dark Mode = iota
	Light
)

// String returns "dark" or "light".
func (m Mode) String() string {
	if m == Light {
		return "light"
	}
	return "dark"
}

// ModeRequest is the configured appearance, possibly deferred to the host.
type ModeRequest int

const (
	ModeAuto ModeRequest = iota
	ModeDark
	ModeLight
)

// ParseModeRequest parses "auto", "dark" or "light".
func ParseModeRequest(s string) (ModeRequest, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "dark":
		return ModeDark, nil
	case "light":
		return ModeLight, nil
	default:
		return ModeAuto, fmt.Errorf("theme: invalid mode %q (expected auto, dark or light)", s)
	}
}

// String returns the configuration keyword.
func (r ModeRequest) String() string {
	switch r {
	case ModeDark:
		return "dark"
	case ModeLight:
		return "light"
	default:
		return "auto"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r ModeRequest) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ModeRequest) UnmarshalText(text []byte) error {
	parsed, err := ParseModeRequest(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ModeDetector reports the host's preferred appearance. ok is false when the
// host cannot tell.
type ModeDetector func() (mode Mode, ok bool)

// ResolveMode turns a request into a concrete mode. Auto consults detect and
// falls back to Dark when detection is unavailable.
func ResolveMode(req ModeRequest, detect ModeDetector) Mode {
	switch req {
	case ModeDark:
		return Dark
	case ModeLight:
		return Light
	}
	if detect != nil {
		if m, ok := detect(); ok {
			return m
		}
	}
	return Dark
}
