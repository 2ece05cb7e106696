package perf

import (
	"os"
	"testing"
	"time"
)

// pfBenchmarks maps threshold names to the benchmarks measuring them.
var pfBenchmarks = map[string]func(*testing.B){
	"screen_parse":   BenchmarkScreenParse,
	"normalize_auto": BenchmarkNormalizeAuto,
	"render_plain":   BenchmarkRenderPlain,
	"render_window":  BenchmarkRenderWindow,
	"font_parse":     BenchmarkFontParse,
	"font_subset":    BenchmarkFontSubset,
}

// --- Thresholds ---

func TestDefaultThresholdsCoverBenchmarks(t *testing.T) {
	seen := make(map[string]bool)
	for _, th := range DefaultThresholds() {
		if seen[th.Name] {
			t.Errorf("duplicate threshold %q", th.Name)
		}
		seen[th.Name] = true
		if th.MaxNs <= 0 {
			t.Errorf("threshold %q has no time budget", th.Name)
		}
		if _, ok := pfBenchmarks[th.Name]; !ok {
			t.Errorf("threshold %q has no benchmark", th.Name)
		}
	}
	for name := range pfBenchmarks {
		if !seen[name] {
			t.Errorf("benchmark %q has no threshold", name)
		}
	}
}

func TestCheckRegression(t *testing.T) {
	thresholds := []Threshold{
		{Name: "fast", MaxNs: 1_000_000, MaxAlloc: 1024},
		{Name: "slow", MaxNs: 1_000},
		{Name: "greedy", MaxAlloc: 100},
	}
	results := map[string]testing.BenchmarkResult{
		// 100ns/op, 64 bytes/op.
		"fast": {N: 1000, T: 100 * time.Microsecond, MemBytes: 64000},
		// 10ms/op.
		"slow": {N: 1, T: 10 * time.Millisecond},
		// 1000 bytes/op.
		"greedy":  {N: 1, T: time.Nanosecond, MemBytes: 1000},
		"unknown": {N: 1, T: time.Hour},
	}

	got := CheckRegression(results, thresholds)
	if len(got) != 2 {
		t.Fatalf("expected 2 violations, got %d: %+v", len(got), got)
	}
	if got[0].Threshold.Name != "greedy" || got[0].Field != "alloc" || got[0].Actual != 1000 {
		t.Errorf("violation[0] = %+v", got[0])
	}
	if got[1].Threshold.Name != "slow" || got[1].Field != "ns" || got[1].Actual != 10_000_000 {
		t.Errorf("violation[1] = %+v", got[1])
	}
}

func TestCheckRegressionEmptyInputs(t *testing.T) {
	if v := CheckRegression(nil, DefaultThresholds()); v != nil {
		t.Errorf("expected nil for nil results, got %v", v)
	}
	one := map[string]testing.BenchmarkResult{"x": {N: 1, T: time.Second}}
	if v := CheckRegression(one, nil); v != nil {
		t.Errorf("expected nil for nil thresholds, got %v", v)
	}
}

// --- Benchmarks ---

func TestBenchmarksSmoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping benchmark smoke runs in short mode")
	}
	for name, fn := range pfBenchmarks {
		t.Run(name, func(t *testing.T) {
			if r := testing.Benchmark(fn); r.N == 0 {
				t.Errorf("%s did not run", name)
			}
		})
	}
}

// TestBudgets runs every benchmark against its budget. Timing depends on
// the machine, so it only runs when TERMFRAME_PERF_BUDGETS is set.
func TestBudgets(t *testing.T) {
	if os.Getenv("TERMFRAME_PERF_BUDGETS") == "" {
		t.Skip("set TERMFRAME_PERF_BUDGETS=1 to check performance budgets")
	}
	results := make(map[string]testing.BenchmarkResult, len(pfBenchmarks))
	for name, fn := range pfBenchmarks {
		results[name] = testing.Benchmark(fn)
	}
	for _, v := range CheckRegression(results, DefaultThresholds()) {
		t.Errorf("%s: %s %d exceeds budget (ns %d, alloc %d)",
			v.Threshold.Name, v.Field, v.Actual, v.Threshold.MaxNs, v.Threshold.MaxAlloc)
	}
}
