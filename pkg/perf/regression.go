// Package perf holds benchmarks of the capture, layout, font and rendering
// stages together with the budgets they are checked against.
package perf

import (
	"sort"
	"testing"
)

// Threshold defines a performance budget for a named operation.
type Threshold struct {
	// Name identifies the operation; results are matched by it.
	Name string

	// MaxNs is the maximum allowed nanoseconds per operation. Zero disables
	// the check.
	MaxNs int64

	// MaxAlloc is the maximum allowed bytes allocated per operation. Zero
	// disables the check.
	MaxAlloc int64
}

// Violation records a threshold breach for a specific benchmark.
type Violation struct {
	Threshold Threshold
	Actual    int64
	// Field is "ns" for time or "alloc" for memory.
	Field string
}

// DefaultThresholds returns the budgets of the pipeline's hot paths.
//
//   - screen_parse: 200 lines of colored output fed through the emulator
//   - normalize_auto: auto-sized capture at 240x1000 and trim
//   - render_plain: 80x24 colored grid, no window
//   - render_window: the same grid with macOS chrome
//   - font_parse: metrics of a TrueType font
//   - font_subset: subsetting a TrueType font to ASCII
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Name: "screen_parse", MaxNs: 20_000_000, MaxAlloc: 4_194_304},
		{Name: "normalize_auto", MaxNs: 200_000_000, MaxAlloc: 67_108_864},
		{Name: "render_plain", MaxNs: 20_000_000, MaxAlloc: 8_388_608},
		{Name: "render_window", MaxNs: 25_000_000, MaxAlloc: 8_388_608},
		{Name: "font_parse", MaxNs: 20_000_000, MaxAlloc: 4_194_304},
		{Name: "font_subset", MaxNs: 100_000_000, MaxAlloc: 16_777_216},
	}
}

// CheckRegression compares benchmark results against thresholds and returns
// every violation, ordered by threshold name. Results without a threshold
// and thresholds without a result are ignored.
func CheckRegression(results map[string]testing.BenchmarkResult, thresholds []Threshold) []Violation {
	if len(results) == 0 || len(thresholds) == 0 {
		return nil
	}

	sorted := append([]Threshold(nil), thresholds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var violations []Violation
	for _, t := range sorted {
		r, ok := results[t.Name]
		if !ok {
			continue
		}
		if ns := r.NsPerOp(); t.MaxNs > 0 && ns > t.MaxNs {
			violations = append(violations, Violation{Threshold: t, Actual: ns, Field: "ns"})
		}
		if alloc := r.AllocedBytesPerOp(); t.MaxAlloc > 0 && alloc > t.MaxAlloc {
			violations = append(violations, Violation{Threshold: t, Actual: alloc, Field: "alloc"})
		}
	}
	return violations
}
