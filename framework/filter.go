package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

// AsFilter matches a test if it, or one of its parent tests, matches at least one -run pattern
// (or none were given), and neither it nor any parent matches a -skip pattern. Selecting a
// group therefore selects everything in it.
func (r RegexFilters) AsFilter(id TestID) bool {
	names := make([]string, 0, len(id.Path))
	for i := range id.Path {
		names = append(names, TestID{Path: id.Path[:i+1]}.String())
	}
	if r.MustNotMatch.AnyMatch(names...) {
		return false
	}
	return !r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(names...)
}

type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

// AnyMatch reports whether any pattern matches any of the given strings.
func (r RegexList) AnyMatch(ss ...string) bool {
	for _, p := range r.patterns {
		for _, s := range ss {
			if p.MatchString(s) {
				return true
			}
		}
	}
	return false
}

func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}
}
