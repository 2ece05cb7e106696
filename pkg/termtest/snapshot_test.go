package termtest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- Snapshot Tests ---

func TestCaptureSnapshot(t *testing.T) {
	renderFn := func(w, h int) string {
		return strings.Repeat("x", w) + "\n" + strings.Repeat("y", h)
	}
	snap := CaptureSnapshot("grid", renderFn, 3, 2)
	if snap.Name != "grid" || snap.Width != 3 || snap.Height != 2 {
		t.Errorf("snapshot header = %+v", snap)
	}
	if snap.Content != "xxx\nyy" {
		t.Errorf("Content = %q", snap.Content)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		expected  string
		actual    string
		wantLines []int
	}{
		{"identical", "a\nb", "a\nb", nil},
		{"both empty", "", "", nil},
		{"one line differs", "a\nb\nc", "a\nX\nc", []int{2}},
		{"extra line", "a", "a\nb", []int{2}},
		{"missing line", "a\nb", "a", []int{2}},
		{"empty vs text", "", "a", []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diffs := Compare(tt.expected, tt.actual)
			if len(diffs) != len(tt.wantLines) {
				t.Fatalf("got %d diffs, want %d: %v", len(diffs), len(tt.wantLines), diffs)
			}
			for i, d := range diffs {
				if d.Line != tt.wantLines[i] {
					t.Errorf("diff %d at line %d, want %d", i, d.Line, tt.wantLines[i])
				}
			}
		})
	}
}

func TestCompareSnapshots(t *testing.T) {
	expected := Snapshot{Name: "a", Content: "line1\nline2"}
	actual := Snapshot{Name: "a", Content: "line1\nchanged"}
	diffs := CompareSnapshots(expected, actual)
	if len(diffs) != 1 {
		t.Fatalf("got %d diffs, want 1", len(diffs))
	}
	if diffs[0].Expected != "line2" || diffs[0].Actual != "changed" {
		t.Errorf("diff = %+v", diffs[0])
	}
	if !strings.Contains(diffs[0].String(), "line 2") {
		t.Errorf("String() = %q", diffs[0].String())
	}
}

// --- Golden ---

func TestGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Setenv(UpdateEnv, "1")
	Golden(t, "doc.svg", []byte("<svg/>\n"))
	data, err := os.ReadFile(filepath.Join(dir, "testdata", "doc.svg"))
	if err != nil {
		t.Fatalf("golden file not written: %v", err)
	}
	if string(data) != "<svg/>\n" {
		t.Errorf("golden content = %q", data)
	}

	t.Setenv(UpdateEnv, "")
	Golden(t, "doc.svg", []byte("<svg/>\n"))
}
