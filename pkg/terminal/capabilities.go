package terminal

import (
	"os"
	"sync"
)

// Capabilities is what termframe needs to know about the terminal it runs
// in: which emulator it is, for the color query, and where listings go.
type Capabilities struct {
	Term Terminal
	// Interactive is true when stdout is a terminal.
	Interactive bool
	// Width is the column count listings are laid out for.
	Width int
}

var (
	cached     *Capabilities
	detectOnce sync.Once
)

// DetectCapabilities inspects the host terminal once per process.
func DetectCapabilities() *Capabilities {
	detectOnce.Do(func() {
		cached = detect()
	})
	return cached
}

func detect() *Capabilities {
	return &Capabilities{
		Term:        Detect(),
		Interactive: IsTerminal(os.Stdout),
		Width:       Width(),
	}
}
