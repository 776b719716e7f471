package framework

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Response is a fully read HTTP response from the service under test.
type Response struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON parses the body as JSON. It returns ldvalue.Null() if the body is empty or is not
// valid JSON; use IsJSON to tell those apart from a literal null.
func (r *Response) JSON() ldvalue.Value {
	return ldvalue.Parse(r.Body)
}

// IsJSON reports whether the body is syntactically valid JSON.
func (r *Response) IsJSON() bool {
	return gjson.ValidBytes(r.Body)
}

// Get looks up a value in the JSON body using gjson path syntax.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// StatusIn reports whether the status code is one of the given values.
func (r *Response) StatusIn(statuses ...int) bool {
	for _, s := range statuses {
		if r.StatusCode == s {
			return true
		}
	}
	return false
}

func (r *Response) String() string {
	return fmt.Sprintf("%s %s returned %d: %s", r.Method, r.Path, r.StatusCode, truncateForLog(r.Body))
}
