package inttest

import (
	"strings"
	"testing"
)

// --- Suite framework ---

func TestSuiteRunsAllWithSetupAndTeardown(t *testing.T) {
	var order []string
	s := NewSuite("demo")
	s.Setup = func() error { order = append(order, "setup"); return nil }
	s.Teardown = func() error { order = append(order, "teardown"); return nil }
	s.Add("a", func(t *testing.T) { order = append(order, "a") })
	s.Add("b", func(t *testing.T) { order = append(order, "b") })

	t.Run("suite", s.Run)

	want := "setup a b teardown"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("order = %q, want %q", got, want)
	}
}

func TestSuiteRunTagged(t *testing.T) {
	var ran []string
	s := NewSuite("tagged")
	s.Add("pty", func(t *testing.T) { ran = append(ran, "pty") }, TagPTY)
	s.Add("config", func(t *testing.T) { ran = append(ran, "config") }, TagConfig)
	s.Add("both", func(t *testing.T) { ran = append(ran, "both") }, TagPTY, TagConfig)

	t.Run("config only", func(t *testing.T) { s.RunTagged(t, TagConfig) })
	if got := strings.Join(ran, " "); got != "config both" {
		t.Errorf("ran = %q, want %q", got, "config both")
	}

	ran = nil
	t.Run("no tags", func(t *testing.T) { s.RunTagged(t) })
	if len(ran) != 0 {
		t.Errorf("RunTagged without tags ran %v", ran)
	}
}

// --- Pipeline ---

func TestPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end runs in short mode")
	}
	PipelineSuite().Run(t)
}
