package font

import (
	"errors"
	"fmt"
)

// ErrNoUsableFont is returned when embedding was requested, the family
// list has catalog entries, and none of them yields metrics.
var ErrNoUsableFont = errors.New("font: no usable font")

// FetchError reports a font binary that could not be retrieved.
type FetchError struct {
	Family string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("font: fetch %s (%s): %v", e.URL, e.Family, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a font binary whose tables could not be read.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("font: parse: %v", e.Err)
	}
	return fmt.Sprintf("font: parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SubsetError reports a font that could not be subset. The full binary is
// still usable.
type SubsetError struct {
	Source string
	Err    error
}

func (e *SubsetError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("font: subset: %v", e.Err)
	}
	return fmt.Sprintf("font: subset %s: %v", e.Source, e.Err)
}

func (e *SubsetError) Unwrap() error { return e.Err }
