package framework

import (
	"fmt"
	"regexp"
	"strings"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns the number of tests that ran and the number that were skipped. Group nodes
// whose only content was subtests are included, matching what the test logger reports.
func (r Results) Counts() (ran, skipped int) {
	for _, t := range r.Tests {
		if t.Skipped {
			skipped++
		} else {
			ran++
		}
	}
	return
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Pattern returns an anchored regex that matches this test's ID exactly, suitable for
// passing back to the -run parameter.
func (t TestID) Pattern() string {
	return "^" + regexp.QuoteMeta(t.String()) + "$"
}

// PrintResults writes a summary of the test run, including every failure, to standard output.
func PrintResults(results Results) {
	ran, skipped := results.Counts()
	if results.OK() {
		fmt.Printf("All tests passed (%d run, %d skipped)\n", ran, skipped)
		return
	}
	fmt.Printf("FAILED TESTS (%d of %d):\n", len(results.Failures), ran)
	for _, f := range results.Failures {
		fmt.Printf("  * %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(reformatError(err).Error(), "\n") {
				fmt.Printf("      %s\n", line)
			}
		}
	}
}
