// Package inttest runs termframe end to end: real commands on a
// pseudo-terminal through configuration, capture, fonts and rendering.
//
// Tests are grouped in suites with optional setup and teardown and can be
// filtered by tag.
package inttest

import (
	"testing"
	"time"
)

// TestSuite groups related integration tests with optional setup and teardown.
type TestSuite struct {
	Name  string
	Tests []IntegrationTest

	// Setup runs once before any test in the suite. An error fails the suite.
	Setup func() error

	// Teardown runs once after all tests complete, regardless of pass/fail.
	Teardown func() error
}

// IntegrationTest defines a single integration test with metadata.
type IntegrationTest struct {
	Name string
	Run  func(t *testing.T)
	Tags []string

	// Timeout is the maximum duration for this test. Zero means no timeout.
	Timeout time.Duration
}

// NewSuite creates a new empty TestSuite with the given name.
func NewSuite(name string) *TestSuite {
	return &TestSuite{Name: name}
}

// Add appends a new test to the suite with the given name, function, and
// optional tags.
func (s *TestSuite) Add(name string, fn func(t *testing.T), tags ...string) {
	s.AddTimed(name, 0, fn, tags...)
}

// AddTimed is Add with a per-test timeout.
func (s *TestSuite) AddTimed(name string, timeout time.Duration, fn func(t *testing.T), tags ...string) {
	s.Tests = append(s.Tests, IntegrationTest{Name: name, Run: fn, Tags: tags, Timeout: timeout})
}

// Run executes all tests in the suite as subtests of t.
func (s *TestSuite) Run(t *testing.T) {
	t.Helper()
	s.run(t, func(IntegrationTest) bool { return true })
}

// RunTagged executes only the tests whose Tags include at least one of
// the specified tags. If no tags are provided, no tests are executed.
func (s *TestSuite) RunTagged(t *testing.T, tags ...string) {
	t.Helper()
	if len(tags) == 0 {
		return
	}
	tagSet := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tagSet[tag] = true
	}
	s.run(t, func(test IntegrationTest) bool { return itHasMatchingTag(test.Tags, tagSet) })
}

func (s *TestSuite) run(t *testing.T, include func(IntegrationTest) bool) {
	t.Helper()

	if s.Setup != nil {
		if err := s.Setup(); err != nil {
			t.Fatalf("suite %q setup failed: %v", s.Name, err)
		}
	}

	if s.Teardown != nil {
		t.Cleanup(func() {
			if err := s.Teardown(); err != nil {
				t.Errorf("suite %q teardown failed: %v", s.Name, err)
			}
		})
	}

	for _, test := range s.Tests {
		if !include(test) {
			continue
		}
		t.Run(test.Name, func(t *testing.T) {
			if test.Timeout > 0 {
				timer := time.AfterFunc(test.Timeout, func() {
					t.Errorf("test %q exceeded timeout of %v", test.Name, test.Timeout)
				})
				defer timer.Stop()
			}
			test.Run(t)
		})
	}
}

// itHasMatchingTag returns true if any of testTags exists in the tagSet.
func itHasMatchingTag(testTags []string, tagSet map[string]bool) bool {
	for _, tag := range testTags {
		if tagSet[tag] {
			return true
		}
	}
	return false
}
