// Package termtest compares rendered documents with golden snapshots kept
// under a test's testdata directory.
package termtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// UpdateEnv names the environment variable that makes Golden rewrite the
// snapshot files instead of comparing against them.
const UpdateEnv = "TERMFRAME_UPDATE_GOLDEN"

// Snapshot is a named rendering of a grid of the given size.
type Snapshot struct {
	Name    string
	Width   int
	Height  int
	Content string
}

// CaptureSnapshot renders content at the given dimensions.
func CaptureSnapshot(name string, renderFn func(w, h int) string, width, height int) Snapshot {
	return Snapshot{
		Name:    name,
		Width:   width,
		Height:  height,
		Content: renderFn(width, height),
	}
}

// Diff describes a single line difference between two snapshots.
type Diff struct {
	Line     int // 1-based
	Expected string
	Actual   string
}

func (d Diff) String() string {
	return fmt.Sprintf("line %d:\n  want %q\n   got %q", d.Line, d.Expected, d.Actual)
}

// CompareSnapshots returns the differing lines, or nil for identical
// content.
func CompareSnapshots(expected, actual Snapshot) []Diff {
	return Compare(expected.Content, actual.Content)
}

// Compare returns the lines that differ between expected and actual.
func Compare(expected, actual string) []Diff {
	expectedLines := ttSplitLines(expected)
	actualLines := ttSplitLines(actual)

	var diffs []Diff
	for i := range max(len(expectedLines), len(actualLines)) {
		var eLine, aLine string
		if i < len(expectedLines) {
			eLine = expectedLines[i]
		}
		if i < len(actualLines) {
			aLine = actualLines[i]
		}
		if eLine != aLine {
			diffs = append(diffs, Diff{Line: i + 1, Expected: eLine, Actual: aLine})
		}
	}
	return diffs
}

// Golden compares actual with testdata/<name>. With UpdateEnv set it
// writes actual to the file instead.
func Golden(tb testing.TB, name string, actual []byte) {
	tb.Helper()
	path := filepath.Join("testdata", name)

	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("termtest: %v", err)
		}
		if err := os.WriteFile(path, actual, 0o644); err != nil {
			tb.Fatalf("termtest: %v", err)
		}
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("termtest: %v (set %s=1 to create it)", err, UpdateEnv)
	}
	diffs := Compare(string(expected), string(actual))
	if len(diffs) == 0 {
		return
	}
	const shown = 5
	var b strings.Builder
	for i, d := range diffs {
		if i == shown {
			fmt.Fprintf(&b, "\n... %d more", len(diffs)-shown)
			break
		}
		b.WriteString("\n")
		b.WriteString(d.String())
	}
	tb.Errorf("%s differs from the golden file in %d lines:%s", name, len(diffs), b.String())
}

// ttSplitLines splits s into lines; an empty string is one empty line.
func ttSplitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}
