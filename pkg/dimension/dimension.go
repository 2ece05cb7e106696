// Package dimension describes how one axis of the virtual terminal is sized.
//
// A Spec is either a fixed number of cells, fully automatic, or a stepped
// range with optional bounds and an optional default used when the captured
// content turns out to be empty:
//
//	auto           fit to content
//	80             exactly 80 cells
//	40..160:4      fit to content, clamp into [40, 160], align to 40+4k
//	..120          fit to content, at most 120
//
// The table form {min, max, step, default} is accepted by the TOML, YAML and
// JSON decoders.
package dimension

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid is returned for specs that violate the range invariants.
var ErrInvalid = errors.New("dimension: invalid spec")

// Kind selects the sizing strategy of a Spec.
type Kind int

const (
	// Auto fits the axis to the captured content.
	Auto Kind = iota
	// Fixed uses Value unconditionally.
	Fixed
	// Range fits to content within optional bounds, aligned to Step.
	Range
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Auto:
		return "auto"
	case Fixed:
		return "fixed"
	case Range:
		return "range"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Spec is a per-axis sizing contract. Zero values of Min, Max and Default
// mean "not set". Step defaults to 1.
type Spec struct {
	Kind    Kind
	Value   int // Fixed only
	Min     int
	Max     int
	Step    int
	Default int
}

// NewFixed returns a Spec that always resolves to n.
func NewFixed(n int) Spec {
	return Spec{Kind: Fixed, Value: n}
}

// NewAuto returns an unbounded automatic Spec.
func NewAuto() Spec {
	return Spec{Kind: Auto}
}

// NewRange returns a stepped range Spec. Pass 0 for bounds that are not set.
func NewRange(min, max, step, def int) Spec {
	return Spec{Kind: Range, Min: min, Max: max, Step: step, Default: def}
}

// step returns the effective alignment step.
func (s Spec) step() int {
	if s.Step <= 0 {
		return 1
	}
	return s.Step
}

// Validate checks the invariants: positive fixed values, a positive step,
// min <= max and min <= default <= max when present. A step must fit
// inside the bounds and the default must be aligned to it, so that Fit
// always lands on min+k*step (k*step when min is not set).
func (s Spec) Validate() error {
	switch s.Kind {
	case Fixed:
		if s.Value <= 0 {
			return fmt.Errorf("%w: fixed size must be positive, got %d", ErrInvalid, s.Value)
		}
		return nil
	case Auto, Range:
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalid, int(s.Kind))
	}

	if s.Step < 0 {
		return fmt.Errorf("%w: step must be positive, got %d", ErrInvalid, s.Step)
	}
	if s.Min < 0 || s.Max < 0 || s.Default < 0 {
		return fmt.Errorf("%w: negative bound in %s", ErrInvalid, s)
	}
	if s.Min > 0 && s.Max > 0 && s.Min > s.Max {
		return fmt.Errorf("%w: min %d exceeds max %d", ErrInvalid, s.Min, s.Max)
	}
	if s.Default > 0 {
		if s.Min > 0 && s.Default < s.Min {
			return fmt.Errorf("%w: default %d below min %d", ErrInvalid, s.Default, s.Min)
		}
		if s.Max > 0 && s.Default > s.Max {
			return fmt.Errorf("%w: default %d above max %d", ErrInvalid, s.Default, s.Max)
		}
	}

	// Every value Fit can return must lie on min+k*step.
	step := s.step()
	if s.Max > 0 && s.Max != s.Min && step > s.Max-s.Min {
		return fmt.Errorf("%w: step %d does not fit between %d and %d", ErrInvalid, step, s.Min, s.Max)
	}
	if s.Default > 0 && (s.Default-s.Min)%step != 0 {
		return fmt.Errorf("%w: default %d is not %d plus a multiple of step %d", ErrInvalid, s.Default, s.Min, step)
	}
	return nil
}

// IsFixed reports whether the spec resolves without inspecting content.
func (s Spec) IsFixed() bool {
	return s.Kind == Fixed
}

// CaptureSize returns the size to capture at before the content is known:
// the fixed value, the range maximum, or fallback for unbounded specs.
func (s Spec) CaptureSize(fallback int) int {
	switch {
	case s.Kind == Fixed:
		return s.Value
	case s.Max > 0:
		return s.Max
	case s.Min > fallback:
		return s.Min
	default:
		return fallback
	}
}

// Fit resolves the final size for an axis whose content occupies content
// cells. Empty content resolves to Default, else Min, else one step.
// Otherwise the value is clamped into [Min, Max] and aligned down to
// Min + k*Step without ever dropping below the smallest legal value.
func (s Spec) Fit(content int) int {
	if s.Kind == Fixed {
		return s.Value
	}

	if content <= 0 {
		switch {
		case s.Default > 0:
			return s.Default
		case s.Min > 0:
			return s.Min
		default:
			return s.step()
		}
	}

	v := content
	if s.Max > 0 && v > s.Max {
		v = s.Max
	}
	if s.Min > 0 && v < s.Min {
		v = s.Min
	}

	step := s.step()
	base := s.Min
	v = base + (v-base)/step*step
	if v < 1 {
		// Unbounded below: the smallest legal value is one step.
		v = step
		if s.Max > 0 && v > s.Max {
			v = s.Max
		}
	}
	return v
}

// String formats the spec in the same syntax Parse accepts.
func (s Spec) String() string {
	switch s.Kind {
	case Fixed:
		return strconv.Itoa(s.Value)
	case Auto:
		if s.Default > 0 {
			return fmt.Sprintf("auto=%d", s.Default)
		}
		return "auto"
	}

	var b strings.Builder
	if s.Min > 0 {
		b.WriteString(strconv.Itoa(s.Min))
	}
	b.WriteString("..")
	if s.Max > 0 {
		b.WriteString(strconv.Itoa(s.Max))
	}
	if s.Step > 1 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(s.Step))
	}
	if s.Default > 0 {
		b.WriteString("=")
		b.WriteString(strconv.Itoa(s.Default))
	}
	return b.String()
}

// Parse parses the textual form of a Spec. An optional "=N" suffix sets the
// default used for empty content.
func Parse(text string) (Spec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Spec{}, fmt.Errorf("%w: empty value", ErrInvalid)
	}

	def := 0
	if i := strings.LastIndexByte(text, '='); i >= 0 {
		n, err := parsePositive(text[i+1:], "default")
		if err != nil {
			return Spec{}, err
		}
		def = n
		text = strings.TrimSpace(text[:i])
	}

	var s Spec
	switch {
	case strings.EqualFold(text, "auto"):
		s = Spec{Kind: Auto, Default: def}
	case strings.Contains(text, ".."):
		r, err := parseRange(text)
		if err != nil {
			return Spec{}, err
		}
		r.Default = def
		s = r
	default:
		n, err := parsePositive(text, "size")
		if err != nil {
			return Spec{}, err
		}
		if def > 0 {
			return Spec{}, fmt.Errorf("%w: default is not allowed for fixed size %q", ErrInvalid, text)
		}
		s = NewFixed(n)
	}

	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// parseRange parses "min..max[:step]" where either bound may be omitted.
func parseRange(text string) (Spec, error) {
	s := Spec{Kind: Range}

	if i := strings.IndexByte(text, ':'); i >= 0 {
		step, err := parsePositive(text[i+1:], "step")
		if err != nil {
			return Spec{}, err
		}
		s.Step = step
		text = text[:i]
	}

	lo, hi, _ := strings.Cut(text, "..")
	if lo = strings.TrimSpace(lo); lo != "" {
		n, err := parsePositive(lo, "min")
		if err != nil {
			return Spec{}, err
		}
		s.Min = n
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		n, err := parsePositive(hi, "max")
		if err != nil {
			return Spec{}, err
		}
		s.Max = n
	}
	return s, nil
}

func parsePositive(text, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrInvalid, what, text)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, what, n)
	}
	return n, nil
}
