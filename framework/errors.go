package framework

import (
	"errors"
	"strings"
)

// reformatError simplifies the multi-line output of testify assertions for console display.
// The "Error Trace" section refers to harness source lines, which are not useful to someone
// reading a report about a remote service, so it is dropped.
func reformatError(err error) error {
	s := err.Error()
	if !strings.Contains(s, "Error Trace:") {
		return err
	}
	var out []string
	inTrace := false
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "Error Trace:"):
			inTrace = true
			continue
		case strings.HasPrefix(trimmed, "Error:"), strings.HasPrefix(trimmed, "Messages:"):
			inTrace = false
		}
		if inTrace {
			continue
		}
		out = append(out, strings.TrimPrefix(line, "\t"))
	}
	return errors.New(strings.Join(out, "\n"))
}
