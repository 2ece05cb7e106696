package terminal

import (
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
)

// DefaultWidth is used when neither the terminal nor COLUMNS tell the width.
const DefaultWidth = 80

// Width returns the number of columns of the host terminal. It tries, in
// order:
//  1. the terminal attached to stdout
//  2. the terminal attached to stderr (stdout may be redirected to a file)
//  3. the COLUMNS environment variable
//  4. DefaultWidth
func Width() int {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if w := widthOf(f); w > 0 {
			return w
		}
	}
	return envInt("COLUMNS", DefaultWidth)
}

// widthOf returns the column count of the terminal behind f, or 0.
func widthOf(f *os.File) int {
	if f == nil || !IsTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(f.Fd())
	if err != nil {
		return 0
	}
	return w
}

// envInt reads an integer from the named environment variable. Returns
// the fallback value if the variable is unset, empty, or not a valid
// positive integer.
func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
