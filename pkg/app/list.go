package app

import (
	"io"

	"github.com/pamburus/termframe/pkg/terminal"
	"github.com/pamburus/termframe/pkg/theme"
	"github.com/pamburus/termframe/pkg/winstyle"
)

// ListThemes writes the built-in and user theme names in columns that fit
// into width.
func ListThemes(w io.Writer, dir string, width int) error {
	names, err := theme.NewLibrary(dir, nil).Names()
	if err != nil {
		return err
	}
	return terminal.WriteColumns(w, names, width)
}

// ListWindowStyles writes the built-in and user window style names.
func ListWindowStyles(w io.Writer, dir string, width int) error {
	names, err := winstyle.NewLibrary(dir).Names()
	if err != nil {
		return err
	}
	return terminal.WriteColumns(w, names, width)
}
