package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const columnGap = 2

// WriteColumns writes items in column-major order, as ls does, using as
// many columns as fit into width. Widths are measured in terminal cells,
// so items may carry escape sequences or wide characters.
func WriteColumns(w io.Writer, items []string, width int) error {
	if len(items) == 0 {
		return nil
	}
	widest := 0
	for _, it := range items {
		widest = max(widest, ansi.StringWidth(it))
	}
	cols := max(1, (width+columnGap)/(widest+columnGap))
	cols = min(cols, len(items))
	rows := (len(items) + cols - 1) / cols

	var b strings.Builder
	for r := range rows {
		for c := range cols {
			i := c*rows + r
			if i >= len(items) {
				break
			}
			b.WriteString(items[i])
			last := c == cols-1 || (c+1)*rows+r >= len(items)
			if !last {
				b.WriteString(strings.Repeat(" ", widest-ansi.StringWidth(items[i])+columnGap))
			}
		}
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("terminal: write columns: %w", err)
	}
	return nil
}
